package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/mappers"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
	db "github.com/openhelpdesk/helpdesk/internal/shared/db"
)

type AttachmentRepository struct {
	db     *gorm.DB
	mapper mappers.FollowUpMapper
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{
		db:     db,
		mapper: mappers.NewFollowUpMapper(),
	}
}

func (r *AttachmentRepository) Create(ctx context.Context, a *ticket.Attachment) error {
	model := r.mapper.AttachmentToModel(a)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}
	return a.SetID(model.ID)
}

func (r *AttachmentRepository) Delete(ctx context.Context, attachmentID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Delete(&models.AttachmentModel{}, attachmentID).Error; err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

func (r *AttachmentRepository) GetByID(ctx context.Context, attachmentID uint) (*ticket.Attachment, error) {
	var model models.AttachmentModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return r.mapper.AttachmentToDomain(&model), nil
}

func (r *AttachmentRepository) List(ctx context.Context, page, pageSize int) ([]*ticket.Attachment, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var total int64
	if err := tx.Model(&models.AttachmentModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count attachments: %w", err)
	}

	var attachmentModels []models.AttachmentModel
	if err := tx.Order("id ASC").Scopes(db.Paginate(page, pageSize)).Find(&attachmentModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list attachments: %w", err)
	}
	return r.toDomainList(attachmentModels), total, nil
}

func (r *AttachmentRepository) ListByFollowUp(ctx context.Context, followUpID uint) ([]*ticket.Attachment, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var attachmentModels []models.AttachmentModel
	if err := tx.Where("followup_id = ?", followUpID).Order("id ASC").Find(&attachmentModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return r.toDomainList(attachmentModels), nil
}

func (r *AttachmentRepository) ListByTicket(ctx context.Context, ticketID uint) ([]*ticket.Attachment, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	followUpIDs := tx.Model(&models.FollowUpModel{}).Select("id").Where("ticket_id = ?", ticketID)

	var attachmentModels []models.AttachmentModel
	if err := tx.Where("followup_id IN (?)", followUpIDs).Order("id ASC").Find(&attachmentModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list ticket attachments: %w", err)
	}
	return r.toDomainList(attachmentModels), nil
}

func (r *AttachmentRepository) toDomainList(attachmentModels []models.AttachmentModel) []*ticket.Attachment {
	out := make([]*ticket.Attachment, 0, len(attachmentModels))
	for i := range attachmentModels {
		out = append(out, r.mapper.AttachmentToDomain(&attachmentModels[i]))
	}
	return out
}
