package usecases

import (
	"context"
	"strings"

	"github.com/openhelpdesk/helpdesk/internal/domain/kb"
)

type memCategories struct {
	byID   map[uint]*kb.Category
	nextID uint
}

func newMemCategories() *memCategories {
	return &memCategories{byID: map[uint]*kb.Category{}}
}

func (m *memCategories) Create(ctx context.Context, c *kb.Category) error {
	m.nextID++
	if err := c.SetID(m.nextID); err != nil {
		return err
	}
	m.byID[c.ID()] = c
	return nil
}

func (m *memCategories) Update(ctx context.Context, c *kb.Category) error {
	m.byID[c.ID()] = c
	return nil
}

func (m *memCategories) Delete(ctx context.Context, id uint) error {
	delete(m.byID, id)
	return nil
}

func (m *memCategories) GetByID(ctx context.Context, id uint) (*kb.Category, error) {
	return m.byID[id], nil
}

func (m *memCategories) GetBySlug(ctx context.Context, slug string) (*kb.Category, error) {
	for _, c := range m.byID {
		if strings.EqualFold(c.Slug(), slug) {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memCategories) List(ctx context.Context, publicOnly bool) ([]*kb.Category, error) {
	var out []*kb.Category
	for id := uint(1); id <= m.nextID; id++ {
		if c, ok := m.byID[id]; ok && (!publicOnly || c.IsPublic()) {
			out = append(out, c)
		}
	}
	return out, nil
}

type memItems struct {
	byID     map[uint]*kb.Item
	nextID   uint
	saves    int
	locks    int
	recorded []kb.VoteChange
}

func newMemItems() *memItems {
	return &memItems{byID: map[uint]*kb.Item{}}
}

func (m *memItems) Create(ctx context.Context, it *kb.Item) error {
	m.nextID++
	if err := it.SetID(m.nextID); err != nil {
		return err
	}
	m.byID[it.ID()] = it
	return nil
}

func (m *memItems) Update(ctx context.Context, it *kb.Item) error {
	m.byID[it.ID()] = it
	return nil
}

func (m *memItems) Delete(ctx context.Context, id uint) error {
	delete(m.byID, id)
	return nil
}

func (m *memItems) GetByID(ctx context.Context, id uint) (*kb.Item, error) {
	return m.byID[id], nil
}

func (m *memItems) ListByCategory(ctx context.Context, categoryID uint, enabledOnly bool) ([]*kb.Item, error) {
	var out []*kb.Item
	for id := uint(1); id <= m.nextID; id++ {
		it, ok := m.byID[id]
		if ok && it.CategoryID() == categoryID && (!enabledOnly || it.IsEnabled()) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memItems) GetByIDForUpdate(ctx context.Context, id uint) (*kb.Item, error) {
	m.locks++
	return m.byID[id], nil
}

func (m *memItems) RecordVote(ctx context.Context, itemID uint, v kb.VoteChange) error {
	m.saves++
	m.recorded = append(m.recorded, v)
	return nil
}

func (m *memItems) VoteTotals(ctx context.Context) (int64, int64, error) {
	var likes, dislikes int64
	for _, it := range m.byID {
		likes += int64(len(it.VotedBy()))
		dislikes += int64(len(it.DownvotedBy()))
	}
	return likes, dislikes, nil
}

// inlineTx runs fn directly; the in-memory stores have nothing to roll back.
type inlineTx struct{}

func (inlineTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
