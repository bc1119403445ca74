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

// FollowUpRepository stores follow-ups with their ticket changes and
// attachment rows. Changes are immutable once written.
type FollowUpRepository struct {
	db     *gorm.DB
	mapper mappers.FollowUpMapper
}

func NewFollowUpRepository(db *gorm.DB) *FollowUpRepository {
	return &FollowUpRepository{
		db:     db,
		mapper: mappers.NewFollowUpMapper(),
	}
}

func (r *FollowUpRepository) Create(ctx context.Context, f *ticket.FollowUp) error {
	tx := db.GetTxFromContext(ctx, r.db)

	model := r.mapper.ToModel(f)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create follow-up: %w", err)
	}
	if err := f.SetID(model.ID); err != nil {
		return err
	}

	for _, c := range f.Changes() {
		cm := r.mapper.ChangeToModel(c)
		if err := tx.Create(cm).Error; err != nil {
			return fmt.Errorf("failed to create ticket change: %w", err)
		}
		c.SetID(cm.ID)
	}

	for _, a := range f.Attachments() {
		if a.ID() != 0 {
			continue
		}
		am := r.mapper.AttachmentToModel(a)
		if err := tx.Create(am).Error; err != nil {
			return fmt.Errorf("failed to create attachment: %w", err)
		}
		if err := a.SetID(am.ID); err != nil {
			return err
		}
	}

	return nil
}

// Update rewrites the editable columns only. Changes and attachments are
// managed separately.
func (r *FollowUpRepository) Update(ctx context.Context, f *ticket.FollowUp) error {
	model := r.mapper.ToModel(f)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Model(&models.FollowUpModel{}).
		Where("id = ?", model.ID).
		Select("ticket_id", "title", "comment", "public", "new_status", "time_spent_seconds", "last_edited").
		Updates(model).Error; err != nil {
		return fmt.Errorf("failed to update follow-up: %w", err)
	}
	return nil
}

func (r *FollowUpRepository) Delete(ctx context.Context, followUpID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("followup_id = ?", followUpID).Delete(&models.TicketChangeModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete ticket changes: %w", err)
	}
	if err := tx.Where("followup_id = ?", followUpID).Delete(&models.AttachmentModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete attachments: %w", err)
	}
	if err := tx.Delete(&models.FollowUpModel{}, followUpID).Error; err != nil {
		return fmt.Errorf("failed to delete follow-up: %w", err)
	}
	return nil
}

func (r *FollowUpRepository) GetByID(ctx context.Context, followUpID uint) (*ticket.FollowUp, error) {
	var model models.FollowUpModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, followUpID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get follow-up: %w", err)
	}

	out, err := r.hydrate(ctx, []models.FollowUpModel{model})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// ListByTicket returns the thread in date order.
func (r *FollowUpRepository) ListByTicket(ctx context.Context, ticketID uint, publicOnly bool) ([]*ticket.FollowUp, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Where("ticket_id = ?", ticketID)
	if publicOnly {
		query = query.Where("public = ?", true)
	}

	var followUpModels []models.FollowUpModel
	if err := query.Order("date ASC").Order("id ASC").Find(&followUpModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	return r.hydrate(ctx, followUpModels)
}

func (r *FollowUpRepository) List(ctx context.Context, page, pageSize int) ([]*ticket.FollowUp, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var total int64
	if err := tx.Model(&models.FollowUpModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count follow-ups: %w", err)
	}

	var followUpModels []models.FollowUpModel
	if err := tx.Order("id ASC").Scopes(db.Paginate(page, pageSize)).Find(&followUpModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list follow-ups: %w", err)
	}

	out, err := r.hydrate(ctx, followUpModels)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *FollowUpRepository) MoveToTicket(ctx context.Context, fromTicketID, toTicketID uint) (int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.FollowUpModel{}).
		Where("ticket_id = ?", fromTicketID).
		Update("ticket_id", toTicketID)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to move follow-ups: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// hydrate loads changes and attachments for all follow-ups in two queries.
func (r *FollowUpRepository) hydrate(ctx context.Context, followUpModels []models.FollowUpModel) ([]*ticket.FollowUp, error) {
	if len(followUpModels) == 0 {
		return []*ticket.FollowUp{}, nil
	}
	tx := db.GetTxFromContext(ctx, r.db)

	ids := make([]uint, len(followUpModels))
	for i, m := range followUpModels {
		ids[i] = m.ID
	}

	var changeModels []models.TicketChangeModel
	if err := tx.Where("followup_id IN ?", ids).Order("id ASC").Find(&changeModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load ticket changes: %w", err)
	}
	var attachmentModels []models.AttachmentModel
	if err := tx.Where("followup_id IN ?", ids).Order("id ASC").Find(&attachmentModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load attachments: %w", err)
	}

	changesBy := make(map[uint][]models.TicketChangeModel)
	for _, c := range changeModels {
		changesBy[c.FollowUpID] = append(changesBy[c.FollowUpID], c)
	}
	attachmentsBy := make(map[uint][]models.AttachmentModel)
	for _, a := range attachmentModels {
		attachmentsBy[a.FollowUpID] = append(attachmentsBy[a.FollowUpID], a)
	}

	out := make([]*ticket.FollowUp, 0, len(followUpModels))
	for i := range followUpModels {
		m := &followUpModels[i]
		f, err := r.mapper.ToDomain(m, changesBy[m.ID], attachmentsBy[m.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
