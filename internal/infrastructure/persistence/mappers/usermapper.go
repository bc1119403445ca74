package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
	"github.com/openhelpdesk/helpdesk/internal/shared/mapper"
)

// UserMapper handles the conversion between domain entities and persistence models
type UserMapper interface {
	// ToEntity converts a persistence model to a domain entity
	ToEntity(model *models.UserModel) (*user.User, error)

	// ToModel converts a domain entity to a persistence model
	ToModel(entity *user.User) *models.UserModel

	// ToEntities converts multiple persistence models to domain entities
	ToEntities(models []*models.UserModel) ([]*user.User, error)

	// SettingsToDomain decodes stored preferences over the defaults
	SettingsToDomain(model *models.UserSettingsModel) (user.Settings, error)
}

// UserMapperImpl is the concrete implementation of UserMapper
type UserMapperImpl struct{}

// NewUserMapper creates a new user mapper
func NewUserMapper() UserMapper {
	return &UserMapperImpl{}
}

// ToEntity converts a persistence model to a domain entity
func (m *UserMapperImpl) ToEntity(model *models.UserModel) (*user.User, error) {
	if model == nil {
		return nil, nil
	}

	u, err := user.ReconstructUser(user.UserData{
		ID:           model.ID,
		Username:     model.Username,
		Email:        model.Email,
		FirstName:    model.FirstName,
		LastName:     model.LastName,
		PasswordHash: model.PasswordHash,
		IsStaff:      model.IsStaff,
		IsSuperuser:  model.IsSuperuser,
		IsActive:     model.IsActive,
		LastLogin:    utcPtr(model.LastLogin),
		CreatedAt:    model.CreatedAt.UTC(),
		UpdatedAt:    model.UpdatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct user entity: %w", err)
	}
	return u, nil
}

// ToModel converts a domain entity to a persistence model
func (m *UserMapperImpl) ToModel(entity *user.User) *models.UserModel {
	if entity == nil {
		return nil
	}
	return &models.UserModel{
		ID:           entity.ID(),
		Username:     entity.Username(),
		Email:        entity.Email().String(),
		FirstName:    entity.FirstName(),
		LastName:     entity.LastName(),
		PasswordHash: entity.PasswordHash(),
		IsStaff:      entity.IsStaff(),
		IsSuperuser:  entity.IsSuperuser(),
		IsActive:     entity.IsActive(),
		LastLogin:    entity.LastLogin(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}
}

// ToEntities converts multiple persistence models to domain entities
func (m *UserMapperImpl) ToEntities(userModels []*models.UserModel) ([]*user.User, error) {
	return mapper.MapSlicePtrWithID(userModels, m.ToEntity, func(um *models.UserModel) uint {
		return um.ID
	})
}

func (m *UserMapperImpl) SettingsToDomain(model *models.UserSettingsModel) (user.Settings, error) {
	s := user.DefaultSettings()
	if model == nil || len(model.Preferences) == 0 {
		return s, nil
	}
	// absent keys keep their defaults
	if err := json.Unmarshal(model.Preferences, &s); err != nil {
		return user.DefaultSettings(), fmt.Errorf("failed to decode user settings: %w", err)
	}
	return s, nil
}
