package queue

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, q *Queue) error
	Update(ctx context.Context, q *Queue) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Queue, error)
	GetBySlug(ctx context.Context, slug string) (*Queue, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*Queue, error)
	// List orders by title. publicOnly keeps queues accepting public submissions.
	List(ctx context.Context, publicOnly bool) ([]*Queue, error)
	ListWithEscalation(ctx context.Context) ([]*Queue, error)
	ListEmailEnabled(ctx context.Context) ([]*Queue, error)
	UpdateLastCheck(ctx context.Context, id uint, at time.Time) error
	HasTickets(ctx context.Context, id uint) (bool, error)
}
