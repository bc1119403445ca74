package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

func newAccountUseCase(users *memUsers) *AccountUseCase {
	log := logger.NewNopLogger()
	policy := access.NewPolicy(config.HelpdeskConfig{}, nil, log)
	return NewAccountUseCase(users, plainHasher{}, policy, config.PasswordConfig{MinLength: 8}, log)
}

func TestAccountUseCase_Register(t *testing.T) {
	users := newMemUsers(newTestUser(t, 1, "alice", "alice@example.com", true))
	uc := newAccountUseCase(users)

	u, err := uc.Register(context.Background(), CreateAccountCommand{
		Username:    "erin",
		Email:       "erin@example.com",
		Password:    "long enough",
		IsSuperuser: true,
	})
	require.NoError(t, err)
	assert.False(t, u.IsStaff)
	assert.False(t, u.IsSuperuser)

	_, err = uc.Register(context.Background(), CreateAccountCommand{
		Username: "alice2",
		Email:    "ALICE@example.com",
		Password: "long enough",
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, err = uc.Register(context.Background(), CreateAccountCommand{
		Username: "frank",
		Email:    "frank@example.com",
		Password: "short",
	})
	assert.True(t, errors.IsValidationError(err))
}

func TestAccountUseCase_SetupOnlyOnce(t *testing.T) {
	uc := newAccountUseCase(newMemUsers())

	u, err := uc.Setup(context.Background(), CreateAccountCommand{
		Username: "root",
		Email:    "root@example.com",
		Password: "long enough",
	})
	require.NoError(t, err)
	assert.True(t, u.IsSuperuser)
	assert.True(t, u.IsStaff)

	_, err = uc.Setup(context.Background(), CreateAccountCommand{
		Username: "root2",
		Email:    "root2@example.com",
		Password: "long enough",
	})
	assert.True(t, errors.IsConflictError(err))
}

func TestAccountUseCase_CreateRequiresSuperuser(t *testing.T) {
	uc := newAccountUseCase(newMemUsers())
	cmd := CreateAccountCommand{Username: "gina", Email: "gina@example.com", Password: "long enough"}

	_, err := uc.Create(context.Background(), access.Actor{Kind: access.ActorStaff, UserID: 5}, cmd)
	assert.True(t, errors.IsForbiddenError(err))

	_, err = uc.Create(context.Background(), access.Actor{Kind: access.ActorStaff, UserID: 5, IsSuperuser: true}, cmd)
	assert.NoError(t, err)
}

func TestAccountUseCase_ProvisionSuperuserImpliesStaff(t *testing.T) {
	uc := newAccountUseCase(newMemUsers())

	u, err := uc.Provision(context.Background(), CreateAccountCommand{
		Username:    "ops",
		Email:       "ops@example.com",
		Password:    "long enough",
		IsSuperuser: true,
	})
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)
}
