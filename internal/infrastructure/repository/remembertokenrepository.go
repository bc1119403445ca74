package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
	"github.com/openhelpdesk/helpdesk/internal/shared/db"
)

// RememberTokenRepository stores hashed remember-me tokens. Raw tokens never
// reach the database.
type RememberTokenRepository struct {
	db *gorm.DB
}

func NewRememberTokenRepository(db *gorm.DB) *RememberTokenRepository {
	return &RememberTokenRepository{db: db}
}

func (r *RememberTokenRepository) Create(ctx context.Context, t *user.RememberToken) error {
	model := &models.RememberTokenModel{
		UserID:    t.UserID(),
		TokenHash: t.TokenHash(),
		UserAgent: t.UserAgent(),
		CreatedAt: t.CreatedAt(),
		LastUsed:  t.LastUsed(),
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create remember token: %w", err)
	}
	return t.SetID(model.ID)
}

func (r *RememberTokenRepository) GetByUserAndHash(ctx context.Context, userID uint, tokenHash string) (*user.RememberToken, error) {
	var model models.RememberTokenModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND token_hash = ?", userID, tokenHash).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get remember token: %w", err)
	}
	return user.ReconstructRememberToken(
		model.ID,
		model.UserID,
		model.TokenHash,
		model.UserAgent,
		model.CreatedAt.UTC(),
		model.LastUsed.UTC(),
	), nil
}

func (r *RememberTokenRepository) TouchLastUsed(ctx context.Context, id uint, at time.Time) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.RememberTokenModel{}).
		Where("id = ?", id).
		UpdateColumn("last_used", at).Error; err != nil {
		return fmt.Errorf("failed to touch remember token: %w", err)
	}
	return nil
}

func (r *RememberTokenRepository) DeleteByUserAndHash(ctx context.Context, userID uint, tokenHash string) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND token_hash = ?", userID, tokenHash).
		Delete(&models.RememberTokenModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete remember token: %w", err)
	}
	return nil
}

func (r *RememberTokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Delete(&models.RememberTokenModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete remember tokens: %w", err)
	}
	return nil
}
