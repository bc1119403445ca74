package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/mappers"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
	db "github.com/openhelpdesk/helpdesk/internal/shared/db"
)

type QueueRepository struct {
	db     *gorm.DB
	mapper mappers.QueueMapper
}

func NewQueueRepository(db *gorm.DB) *QueueRepository {
	return &QueueRepository{
		db:     db,
		mapper: mappers.NewQueueMapper(),
	}
}

func (r *QueueRepository) Create(ctx context.Context, q *queue.Queue) error {
	model := r.mapper.ToModel(q)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create queue: %w", err)
	}
	return q.SetID(model.ID)
}

func (r *QueueRepository) Update(ctx context.Context, q *queue.Queue) error {
	model := r.mapper.ToModel(q)
	tx := db.GetTxFromContext(ctx, r.db)

	// last_check belongs to the poller and is written by UpdateLastCheck only.
	if err := tx.Model(&models.QueueModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("id", "created_at", "email_box_last_check").
		Updates(model).Error; err != nil {
		return fmt.Errorf("failed to update queue: %w", err)
	}
	return nil
}

func (r *QueueRepository) Delete(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Delete(&models.QueueModel{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete queue: %w", err)
	}
	return nil
}

func (r *QueueRepository) GetByID(ctx context.Context, id uint) (*queue.Queue, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *QueueRepository) GetBySlug(ctx context.Context, slug string) (*queue.Queue, error) {
	return r.first(ctx, "slug = ?", strings.TrimSpace(slug))
}

func (r *QueueRepository) GetByIDs(ctx context.Context, ids []uint) ([]*queue.Queue, error) {
	if len(ids) == 0 {
		return []*queue.Queue{}, nil
	}
	return r.find(ctx, db.GetTxFromContext(ctx, r.db).Where("id IN ?", ids).Order("id ASC"))
}

func (r *QueueRepository) List(ctx context.Context, publicOnly bool) ([]*queue.Queue, error) {
	query := db.GetTxFromContext(ctx, r.db).Order("title ASC").Order("id ASC")
	if publicOnly {
		query = query.Where("allow_public_submission = ?", true)
	}
	return r.find(ctx, query)
}

func (r *QueueRepository) ListWithEscalation(ctx context.Context) ([]*queue.Queue, error) {
	return r.find(ctx, db.GetTxFromContext(ctx, r.db).Where("escalate_days > 0").Order("id ASC"))
}

func (r *QueueRepository) ListEmailEnabled(ctx context.Context) ([]*queue.Queue, error) {
	return r.find(ctx, db.GetTxFromContext(ctx, r.db).
		Where("allow_email_submission = ?", true).
		Order("id ASC"))
}

func (r *QueueRepository) UpdateLastCheck(ctx context.Context, id uint, at time.Time) error {
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.QueueModel{}).
		Where("id = ?", id).
		UpdateColumn("email_box_last_check", at).Error; err != nil {
		return fmt.Errorf("failed to update queue last check: %w", err)
	}
	return nil
}

func (r *QueueRepository) HasTickets(ctx context.Context, id uint) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var count int64
	if err := tx.Model(&models.TicketModel{}).Where("queue_id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check queue tickets: %w", err)
	}
	return count > 0, nil
}

func (r *QueueRepository) first(ctx context.Context, query string, args ...interface{}) (*queue.Queue, error) {
	var model models.QueueModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get queue: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *QueueRepository) find(_ context.Context, query *gorm.DB) ([]*queue.Queue, error) {
	var queueModels []models.QueueModel
	if err := query.Find(&queueModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list queues: %w", err)
	}

	out := make([]*queue.Queue, 0, len(queueModels))
	for i := range queueModels {
		q, err := r.mapper.ToDomain(&queueModels[i])
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}
