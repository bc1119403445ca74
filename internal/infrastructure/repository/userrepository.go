package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/mappers"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
	"github.com/openhelpdesk/helpdesk/internal/shared/db"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// UserRepository implements user.Repository on gorm.
type UserRepository struct {
	db     *gorm.DB
	mapper mappers.UserMapper
	logger logger.Interface
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, logger logger.Interface) *UserRepository {
	return &UserRepository{
		db:     db,
		mapper: mappers.NewUserMapper(),
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, userEntity *user.User) error {
	model := r.mapper.ToModel(userEntity)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create user in database", "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	// Set the ID back to the entity
	if err := userEntity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set user ID: %w", err)
	}

	r.logger.Infow("user created successfully", "id", model.ID, "username", model.Username)
	return nil
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, userEntity *user.User) error {
	model := r.mapper.ToModel(userEntity)

	result := db.GetTxFromContext(ctx, r.db).Model(&models.UserModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"username":      model.Username,
			"email":         model.Email,
			"first_name":    model.FirstName,
			"last_name":     model.LastName,
			"password_hash": model.PasswordHash,
			"is_staff":      model.IsStaff,
			"is_superuser":  model.IsSuperuser,
			"is_active":     model.IsActive,
			"last_login":    model.LastLogin,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update user", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update user: %w", result.Error)
	}

	// Note: RowsAffected may be 0 when updated values are identical to existing values.
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByIDs retrieves multiple users by ID. Unmappable rows are skipped.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uint) ([]*user.User, error) {
	if len(ids) == 0 {
		return []*user.User{}, nil
	}

	var userModels []*models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id IN ?", ids).Order("id ASC").Find(&userModels).Error; err != nil {
		r.logger.Errorw("failed to get users by IDs", "ids", ids, "error", err)
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}

	users := make([]*user.User, 0, len(userModels))
	for _, model := range userModels {
		entity, err := r.mapper.ToEntity(model)
		if err != nil {
			r.logger.Warnw("failed to map user model to entity, skipping", "id", model.ID, "error", err)
			continue
		}
		users = append(users, entity)
	}
	return users, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.first(ctx, "username = ?", strings.TrimSpace(username))
}

func (r *UserRepository) FindActiveByEmail(ctx context.Context, email string) ([]*user.User, error) {
	var userModels []*models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("LOWER(email) = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		Order("id ASC").
		Find(&userModels).Error; err != nil {
		return nil, fmt.Errorf("failed to find users by email: %w", err)
	}
	return r.mapper.ToEntities(userModels)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", strings.TrimSpace(username))
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) HasSuperuser(ctx context.Context) (bool, error) {
	return r.exists(ctx, "is_superuser = ?", true)
}

// ListStaff returns active staff ordered by username.
func (r *UserRepository) ListStaff(ctx context.Context) ([]*user.User, error) {
	var userModels []*models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("is_staff = ? AND is_active = ?", true, true).
		Order("username ASC").
		Find(&userModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return r.mapper.ToEntities(userModels)
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.UserModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) first(ctx context.Context, query string, args ...interface{}) (*user.User, error) {
	var model models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get user", "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map user model to entity", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to map user: %w", err)
	}
	return entity, nil
}

func (r *UserRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.UserModel{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}
