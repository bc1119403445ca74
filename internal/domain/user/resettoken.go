package user

import (
	"fmt"
	"time"

	vo "github.com/openhelpdesk/helpdesk/internal/domain/user/valueobjects"
)

type PasswordResetToken struct {
	id        uint
	userID    uint
	tokenHash string
	expiresAt time.Time
	usedAt    *time.Time
	createdAt time.Time
}

// NewPasswordResetToken returns the token and the raw value to mail out.
func NewPasswordResetToken(userID uint, now time.Time, ttl time.Duration) (*PasswordResetToken, string, error) {
	if userID == 0 {
		return nil, "", fmt.Errorf("user ID is required")
	}
	if ttl <= 0 {
		return nil, "", fmt.Errorf("reset token lifetime must be positive")
	}
	tok, err := vo.GenerateToken()
	if err != nil {
		return nil, "", err
	}
	return &PasswordResetToken{
		userID:    userID,
		tokenHash: tok.Hash(),
		expiresAt: now.Add(ttl),
		createdAt: now,
	}, tok.Value(), nil
}

func ReconstructPasswordResetToken(id, userID uint, tokenHash string, expiresAt time.Time, usedAt *time.Time, createdAt time.Time) *PasswordResetToken {
	return &PasswordResetToken{
		id:        id,
		userID:    userID,
		tokenHash: tokenHash,
		expiresAt: expiresAt,
		usedAt:    usedAt,
		createdAt: createdAt,
	}
}

func (t *PasswordResetToken) ID() uint {
	return t.id
}

func (t *PasswordResetToken) UserID() uint {
	return t.userID
}

func (t *PasswordResetToken) TokenHash() string {
	return t.tokenHash
}

func (t *PasswordResetToken) ExpiresAt() time.Time {
	return t.expiresAt
}

func (t *PasswordResetToken) UsedAt() *time.Time {
	return t.usedAt
}

func (t *PasswordResetToken) CreatedAt() time.Time {
	return t.createdAt
}

func (t *PasswordResetToken) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("reset token ID is already set")
	}
	t.id = id
	return nil
}

func (t *PasswordResetToken) IsUsable(now time.Time) bool {
	return t.usedAt == nil && now.Before(t.expiresAt)
}

func (t *PasswordResetToken) Consume(now time.Time) error {
	if !t.IsUsable(now) {
		return fmt.Errorf("reset token is expired or already used")
	}
	t.usedAt = &now
	return nil
}
