package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	uvo "github.com/openhelpdesk/helpdesk/internal/domain/user/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

func createTestUser(t *testing.T, repo *UserRepository, username, email string, staff, superuser bool) *user.User {
	t.Helper()
	addr, err := uvo.NewEmail(email)
	require.NoError(t, err)
	u, err := user.NewUser(username, addr, "$2a$04$hash", staff, superuser)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository(t *testing.T) {
	database := setupTestDB(t)
	repo := NewUserRepository(database, logger.NewNopLogger())
	ctx := context.Background()

	admin := createTestUser(t, repo, "admin", "admin@example.com", false, true)
	alice := createTestUser(t, repo, "alice", "Alice@Example.com", true, false)
	alice2 := createTestUser(t, repo, "alice2", "alice@example.com", false, false)
	createTestUser(t, repo, "bob", "bob@example.com", false, false)

	t.Run("lookups", func(t *testing.T) {
		found, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, alice.ID(), found.ID())

		missing, err := repo.GetByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, missing)

		matches, err := repo.FindActiveByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		assert.Len(t, matches, 2)

		exists, err := repo.ExistsByEmail(ctx, "BOB@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByUsername(ctx, "carol")
		require.NoError(t, err)
		assert.False(t, exists)

		has, err := repo.HasSuperuser(ctx)
		require.NoError(t, err)
		assert.True(t, has)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("staff list", func(t *testing.T) {
		staff, err := repo.ListStaff(ctx)
		require.NoError(t, err)
		require.Len(t, staff, 2)
		assert.Equal(t, admin.ID(), staff[0].ID())
		assert.Equal(t, alice.ID(), staff[1].ID())
	})

	t.Run("update deactivates", func(t *testing.T) {
		alice2.Deactivate()
		require.NoError(t, repo.Update(ctx, alice2))

		matches, err := repo.FindActiveByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, alice.ID(), matches[0].ID())

		users, err := repo.GetByIDs(ctx, []uint{alice.ID(), alice2.ID()})
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}

func TestUserSettingsRepository(t *testing.T) {
	database := setupTestDB(t)
	repo := NewUserSettingsRepository(database)
	ctx := context.Background()

	s, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, user.DefaultSettings(), s)

	s.TicketsPerPage = 50
	s.EmailOnTicketChange = false
	require.NoError(t, repo.Save(ctx, 1, s))

	s.TicketsPerPage = 10
	require.NoError(t, repo.Save(ctx, 1, s))

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, got.TicketsPerPage)
	assert.False(t, got.EmailOnTicketChange)
	assert.True(t, got.LoginViewTicketList)
}

func TestRememberTokenRepository(t *testing.T) {
	database := setupTestDB(t)
	repo := NewRememberTokenRepository(database)
	ctx := context.Background()

	first, _, err := user.NewRememberToken(1, "Firefox")
	require.NoError(t, err)
	second, _, err := user.NewRememberToken(1, "Safari")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	found, err := repo.GetByUserAndHash(ctx, 1, first.TokenHash())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Firefox", found.UserAgent())

	wrongUser, err := repo.GetByUserAndHash(ctx, 2, first.TokenHash())
	require.NoError(t, err)
	assert.Nil(t, wrongUser)

	later := time.Date(2026, 10, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastUsed(ctx, found.ID(), later))
	found, err = repo.GetByUserAndHash(ctx, 1, first.TokenHash())
	require.NoError(t, err)
	assert.True(t, later.Equal(found.LastUsed()))

	require.NoError(t, repo.DeleteByUserAndHash(ctx, 1, first.TokenHash()))
	gone, err := repo.GetByUserAndHash(ctx, 1, first.TokenHash())
	require.NoError(t, err)
	assert.Nil(t, gone)

	require.NoError(t, repo.DeleteByUser(ctx, 1))
	gone, err = repo.GetByUserAndHash(ctx, 1, second.TokenHash())
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestPasswordResetTokenRepository(t *testing.T) {
	database := setupTestDB(t)
	repo := NewPasswordResetTokenRepository(database)
	ctx := context.Background()
	now := time.Date(2026, 10, 2, 8, 0, 0, 0, time.UTC)

	tok, _, err := user.NewPasswordResetToken(3, now, time.Hour)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tok))

	found, err := repo.GetByHash(ctx, tok.TokenHash())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsUsable(now.Add(time.Minute)))

	require.NoError(t, repo.MarkUsed(ctx, found.ID(), now.Add(time.Minute)))
	assert.Error(t, repo.MarkUsed(ctx, found.ID(), now.Add(2*time.Minute)))

	found, err = repo.GetByHash(ctx, tok.TokenHash())
	require.NoError(t, err)
	require.NotNil(t, found.UsedAt())
	assert.False(t, found.IsUsable(now.Add(time.Minute)))

	require.NoError(t, repo.DeleteByUser(ctx, 3))
	gone, err := repo.GetByHash(ctx, tok.TokenHash())
	require.NoError(t, err)
	assert.Nil(t, gone)
}
