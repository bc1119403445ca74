package user

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// FindActiveByEmail matches case-insensitively and may return several users.
	FindActiveByEmail(ctx context.Context, email string) ([]*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	HasSuperuser(ctx context.Context) (bool, error)
	ListStaff(ctx context.Context) ([]*User, error)
	Count(ctx context.Context) (int64, error)
}

type SettingsRepository interface {
	// Get returns DefaultSettings when nothing is stored.
	Get(ctx context.Context, userID uint) (Settings, error)
	Save(ctx context.Context, userID uint, s Settings) error
}

type RememberTokenRepository interface {
	Create(ctx context.Context, t *RememberToken) error
	GetByUserAndHash(ctx context.Context, userID uint, tokenHash string) (*RememberToken, error)
	TouchLastUsed(ctx context.Context, id uint, at time.Time) error
	DeleteByUserAndHash(ctx context.Context, userID uint, tokenHash string) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type PasswordResetTokenRepository interface {
	Create(ctx context.Context, t *PasswordResetToken) error
	GetByHash(ctx context.Context, tokenHash string) (*PasswordResetToken, error)
	MarkUsed(ctx context.Context, id uint, at time.Time) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
	// NeedsRehash reports a hash made with outdated parameters.
	NeedsRehash(hash string) bool
}
