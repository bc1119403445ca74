package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/mappers"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
	"github.com/openhelpdesk/helpdesk/internal/shared/db"
)

type UserSettingsRepository struct {
	db     *gorm.DB
	mapper mappers.UserMapper
}

func NewUserSettingsRepository(db *gorm.DB) *UserSettingsRepository {
	return &UserSettingsRepository{
		db:     db,
		mapper: mappers.NewUserMapper(),
	}
}

func (r *UserSettingsRepository) Get(ctx context.Context, userID uint) (user.Settings, error) {
	var model models.UserSettingsModel
	if err := db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.DefaultSettings(), nil
		}
		return user.Settings{}, fmt.Errorf("failed to get user settings: %w", err)
	}
	return r.mapper.SettingsToDomain(&model)
}

// Save upserts the whole preference document.
func (r *UserSettingsRepository) Save(ctx context.Context, userID uint, s user.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode user settings: %w", err)
	}

	model := &models.UserSettingsModel{
		UserID:      userID,
		Preferences: datatypes.JSON(raw),
		UpdatedAt:   biztime.NowUTC(),
	}
	if err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"preferences", "updated_at"}),
	}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save user settings: %w", err)
	}
	return nil
}
