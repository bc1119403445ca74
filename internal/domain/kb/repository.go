package kb

import "context"

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Category, error)
	// GetBySlug matches case-insensitively.
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context, publicOnly bool) ([]*Category, error)
}

type ItemRepository interface {
	Create(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Item, error)
	// GetByIDForUpdate locks the item row for the rest of the transaction in ctx.
	GetByIDForUpdate(ctx context.Context, id uint) (*Item, error)
	// ListByCategory orders by (order, title).
	ListByCategory(ctx context.Context, categoryID uint, enabledOnly bool) ([]*Item, error)
	// RecordVote stores the voter's row and adds the deltas in v to the
	// item's counters. Other voters' rows are left alone.
	RecordVote(ctx context.Context, itemID uint, v VoteChange) error
	// VoteTotals sums the sizes of all voter sets.
	VoteTotals(ctx context.Context) (likes int64, dislikes int64, err error)
}
