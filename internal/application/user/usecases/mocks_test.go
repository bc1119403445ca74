package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/domain/user"
)

type memUsers struct {
	user.Repository
	byID    map[uint]*user.User
	updates int
}

func newMemUsers(users ...*user.User) *memUsers {
	m := &memUsers{byID: map[uint]*user.User{}}
	for _, u := range users {
		m.byID[u.ID()] = u
	}
	return m
}

func (m *memUsers) Update(ctx context.Context, u *user.User) error {
	m.updates++
	m.byID[u.ID()] = u
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, id uint) (*user.User, error) {
	return m.byID[id], nil
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Username() == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindActiveByEmail(ctx context.Context, email string) ([]*user.User, error) {
	var out []*user.User
	for _, u := range m.byID {
		if u.IsActive() && u.Email().MatchesString(email) {
			out = append(out, u)
		}
	}
	return out, nil
}

type memRemember struct {
	tokens []*user.RememberToken
	nextID uint
}

func (m *memRemember) Create(ctx context.Context, t *user.RememberToken) error {
	m.nextID++
	if err := t.SetID(m.nextID); err != nil {
		return err
	}
	m.tokens = append(m.tokens, t)
	return nil
}

func (m *memRemember) GetByUserAndHash(ctx context.Context, userID uint, tokenHash string) (*user.RememberToken, error) {
	for _, t := range m.tokens {
		if t.UserID() == userID && t.TokenHash() == tokenHash {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memRemember) TouchLastUsed(ctx context.Context, id uint, at time.Time) error {
	for _, t := range m.tokens {
		if t.ID() == id {
			t.Touch(at)
		}
	}
	return nil
}

func (m *memRemember) DeleteByUserAndHash(ctx context.Context, userID uint, tokenHash string) error {
	kept := m.tokens[:0]
	for _, t := range m.tokens {
		if t.UserID() != userID || t.TokenHash() != tokenHash {
			kept = append(kept, t)
		}
	}
	m.tokens = kept
	return nil
}

func (m *memRemember) DeleteByUser(ctx context.Context, userID uint) error {
	kept := m.tokens[:0]
	for _, t := range m.tokens {
		if t.UserID() != userID {
			kept = append(kept, t)
		}
	}
	m.tokens = kept
	return nil
}

type memResetTokens struct {
	tokens []*user.PasswordResetToken
	nextID uint
}

func (m *memResetTokens) Create(ctx context.Context, t *user.PasswordResetToken) error {
	m.nextID++
	if err := t.SetID(m.nextID); err != nil {
		return err
	}
	m.tokens = append(m.tokens, t)
	return nil
}

func (m *memResetTokens) GetByHash(ctx context.Context, tokenHash string) (*user.PasswordResetToken, error) {
	for _, t := range m.tokens {
		if t.TokenHash() == tokenHash {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memResetTokens) MarkUsed(ctx context.Context, id uint, at time.Time) error {
	return nil
}

func (m *memResetTokens) DeleteByUser(ctx context.Context, userID uint) error {
	return nil
}

// plainHasher prefixes instead of hashing. "old:" hashes verify but ask
// to be rehashed.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (plainHasher) Verify(password, hash string) error {
	if hash != "plain:"+password && hash != "old:"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

func (plainHasher) NeedsRehash(hash string) bool {
	return !strings.HasPrefix(hash, "plain:")
}

type fakeSessions struct {
	issued int
}

func (s *fakeSessions) Issue(u *user.User) (string, time.Time, error) {
	s.issued++
	return fmt.Sprintf("session-%d-%d", u.ID(), s.issued), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

type sentReset struct {
	to, username, link string
}

type fakeResetMailer struct {
	sent []sentReset
}

func (m *fakeResetMailer) SendPasswordReset(ctx context.Context, to, username, link string) error {
	m.sent = append(m.sent, sentReset{to: to, username: username, link: link})
	return nil
}

// fakeLimiter allows limit attempts per key; Err makes every call fail.
type fakeLimiter struct {
	counts map[string]int
	Err    error
}

func (l *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if l.Err != nil {
		return false, l.Err
	}
	if l.counts == nil {
		l.counts = map[string]int{}
	}
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

type inlineTx struct{}

func (inlineTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func tokenFromLink(link string) string {
	_, tok, _ := strings.Cut(link, "?token=")
	return tok
}

func (m *memUsers) Create(ctx context.Context, u *user.User) error {
	if err := u.SetID(uint(len(m.byID) + 1)); err != nil {
		return err
	}
	m.byID[u.ID()] = u
	return nil
}

func (m *memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	u, _ := m.GetByUsername(ctx, username)
	return u != nil, nil
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.byID {
		if u.Email().MatchesString(email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) HasSuperuser(ctx context.Context) (bool, error) {
	for _, u := range m.byID {
		if u.IsSuperuser() {
			return true, nil
		}
	}
	return false, nil
}
