package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// errPasswordMismatch covers every verify failure, so a wrong password and
// a corrupt stored hash look the same to the caller.
var errPasswordMismatch = errors.New("password verification failed")

// PasswordHasher hashes account passwords with bcrypt at the configured
// cost. Hashes made at another cost still verify and are reported by
// NeedsRehash so login can upgrade them.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h *PasswordHasher) Verify(password, hash string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return errPasswordMismatch
	}
	return nil
}

// NeedsRehash is true when hash was made at a different cost or is not a
// bcrypt hash at all.
func (h *PasswordHasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost != h.cost
}
