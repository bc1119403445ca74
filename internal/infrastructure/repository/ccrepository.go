package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/mappers"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
	db "github.com/openhelpdesk/helpdesk/internal/shared/db"
)

type CCRepository struct {
	db *gorm.DB
}

func NewCCRepository(db *gorm.DB) *CCRepository {
	return &CCRepository{db: db}
}

func (r *CCRepository) Create(ctx context.Context, cc *ticket.CC) error {
	model := mappers.CCToModel(cc)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create ticket cc: %w", err)
	}
	return cc.SetID(model.ID)
}

func (r *CCRepository) Delete(ctx context.Context, ccID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Delete(&models.CCModel{}, ccID).Error; err != nil {
		return fmt.Errorf("failed to delete ticket cc: %w", err)
	}
	return nil
}

func (r *CCRepository) GetByID(ctx context.Context, ccID uint) (*ticket.CC, error) {
	var model models.CCModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, ccID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ticket cc: %w", err)
	}
	return mappers.CCToDomain(&model), nil
}

func (r *CCRepository) ListByTicket(ctx context.Context, ticketID uint) ([]*ticket.CC, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var ccModels []models.CCModel
	if err := tx.Where("ticket_id = ?", ticketID).Order("id ASC").Find(&ccModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list ticket ccs: %w", err)
	}
	return ccsToDomain(ccModels), nil
}

func (r *CCRepository) ListForUser(ctx context.Context, userID uint, email string) ([]*ticket.CC, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	email = strings.ToLower(strings.TrimSpace(email))

	query := tx.Where("user_id = ?", userID)
	if email != "" {
		query = tx.Where("user_id = ? OR LOWER(email) = ?", userID, email)
	}

	var ccModels []models.CCModel
	if err := query.Order("id ASC").Find(&ccModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list ccs for user: %w", err)
	}
	return ccsToDomain(ccModels), nil
}

func ccsToDomain(ccModels []models.CCModel) []*ticket.CC {
	out := make([]*ticket.CC, 0, len(ccModels))
	for i := range ccModels {
		out = append(out, mappers.CCToDomain(&ccModels[i]))
	}
	return out
}
