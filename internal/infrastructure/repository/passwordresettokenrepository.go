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

type PasswordResetTokenRepository struct {
	db *gorm.DB
}

func NewPasswordResetTokenRepository(db *gorm.DB) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db}
}

func (r *PasswordResetTokenRepository) Create(ctx context.Context, t *user.PasswordResetToken) error {
	model := &models.PasswordResetTokenModel{
		UserID:    t.UserID(),
		TokenHash: t.TokenHash(),
		ExpiresAt: t.ExpiresAt(),
		UsedAt:    t.UsedAt(),
		CreatedAt: t.CreatedAt(),
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create password reset token: %w", err)
	}
	return t.SetID(model.ID)
}

func (r *PasswordResetTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*user.PasswordResetToken, error) {
	var model models.PasswordResetTokenModel
	if err := db.GetTxFromContext(ctx, r.db).Where("token_hash = ?", tokenHash).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get password reset token: %w", err)
	}

	var usedAt *time.Time
	if model.UsedAt != nil {
		u := model.UsedAt.UTC()
		usedAt = &u
	}
	return user.ReconstructPasswordResetToken(
		model.ID,
		model.UserID,
		model.TokenHash,
		model.ExpiresAt.UTC(),
		usedAt,
		model.CreatedAt.UTC(),
	), nil
}

// MarkUsed only consumes a token that is still unused, so two concurrent
// confirmations cannot both succeed.
func (r *PasswordResetTokenRepository) MarkUsed(ctx context.Context, id uint, at time.Time) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PasswordResetTokenModel{}).
		Where("id = ? AND used_at IS NULL", id).
		UpdateColumn("used_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to mark password reset token used: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("password reset token %d already used", id)
	}
	return nil
}

func (r *PasswordResetTokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Delete(&models.PasswordResetTokenModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete password reset tokens: %w", err)
	}
	return nil
}
