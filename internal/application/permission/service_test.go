package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/domain/permission"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

type stubUsers struct {
	user.Repository
	byID map[uint]*user.User
}

func (s *stubUsers) GetByID(ctx context.Context, id uint) (*user.User, error) {
	return s.byID[id], nil
}

type stubQueues struct {
	queue.Repository
	byID map[uint]*queue.Queue
}

func (s *stubQueues) GetByID(ctx context.Context, id uint) (*queue.Queue, error) {
	return s.byID[id], nil
}

func (s *stubQueues) GetBySlug(ctx context.Context, slug string) (*queue.Queue, error) {
	for _, q := range s.byID {
		if q.Slug() == slug {
			return q, nil
		}
	}
	return nil, nil
}

type memEnforcer struct {
	rules map[[3]string]bool
}

func (m *memEnforcer) Enforce(sub, obj, act string) (bool, error) {
	return m.rules[[3]string{sub, obj, act}], nil
}

func (m *memEnforcer) AddPolicy(sub, obj, act string) error {
	m.rules[[3]string{sub, obj, act}] = true
	return nil
}

func (m *memEnforcer) RemovePolicy(sub, obj, act string) error {
	delete(m.rules, [3]string{sub, obj, act})
	return nil
}

func (m *memEnforcer) PoliciesFor(sub string) ([][]string, error) {
	var out [][]string
	for r := range m.rules {
		if r[0] == sub {
			out = append(out, []string{r[0], r[1], r[2]})
		}
	}
	return out, nil
}

func (m *memEnforcer) RenameObject(from, to string) error { return nil }
func (m *memEnforcer) RemoveObject(object string) error   { return nil }

func newTestService(t *testing.T) (*Service, *memEnforcer) {
	t.Helper()
	mk := func(id uint, staff bool) *user.User {
		u, err := user.ReconstructUser(user.UserData{
			ID: id, Username: "u" + string(rune('0'+id)), Email: "u@example.com",
			PasswordHash: "x", IsStaff: staff, IsActive: true,
		})
		require.NoError(t, err)
		return u
	}
	q, err := queue.ReconstructQueue(queue.QueueData{ID: 5, Settings: queue.Settings{Title: "Billing", Slug: "billing"}})
	require.NoError(t, err)

	enf := &memEnforcer{rules: map[[3]string]bool{}}
	log := logger.NewNopLogger()
	policy := access.NewPolicy(config.HelpdeskConfig{PerQueueStaffPermission: true}, enf, log)
	svc := NewService(
		&stubUsers{byID: map[uint]*user.User{1: mk(1, true), 2: mk(2, false)}},
		&stubQueues{byID: map[uint]*queue.Queue{5: q}},
		enf, policy, log,
	)
	return svc, enf
}

var admin = access.Actor{Kind: access.ActorStaff, UserID: 99, IsSuperuser: true}

func TestService_GrantListRevoke(t *testing.T) {
	svc, enf := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, admin, 1, 5))
	assert.True(t, enf.rules[[3]string{permission.UserSubject(1), "queue:billing", permission.ActionAccess}])

	grants, err := svc.List(ctx, admin, 1)
	require.NoError(t, err)
	assert.Equal(t, []QueueGrantDTO{{QueueID: 5, Slug: "billing", Title: "Billing"}}, grants)

	require.NoError(t, svc.Revoke(ctx, admin, 1, 5))
	grants, err = svc.List(ctx, admin, 1)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestService_Rejects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.Grant(ctx, access.Actor{Kind: access.ActorStaff, UserID: 1}, 1, 5)
	assert.True(t, errors.IsForbiddenError(err), "only superusers manage grants")

	err = svc.Grant(ctx, admin, 2, 5)
	assert.True(t, errors.IsValidationError(err), "non-staff users cannot hold queue grants")

	err = svc.Grant(ctx, admin, 42, 5)
	assert.True(t, errors.IsNotFoundError(err))

	err = svc.Grant(ctx, admin, 1, 42)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestService_ListSkipsDeletedQueues(t *testing.T) {
	svc, enf := newTestService(t)
	require.NoError(t, enf.AddPolicy(permission.UserSubject(1), "queue:gone", permission.ActionAccess))

	grants, err := svc.List(context.Background(), admin, 1)
	require.NoError(t, err)
	assert.Empty(t, grants)
}
