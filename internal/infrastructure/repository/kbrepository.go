package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openhelpdesk/helpdesk/internal/domain/kb"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/mappers"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
	db "github.com/openhelpdesk/helpdesk/internal/shared/db"
	"github.com/openhelpdesk/helpdesk/internal/shared/mapper"
)

type KBCategoryRepository struct {
	db     *gorm.DB
	mapper mappers.KBMapper
}

func NewKBCategoryRepository(db *gorm.DB) *KBCategoryRepository {
	return &KBCategoryRepository{
		db:     db,
		mapper: mappers.NewKBMapper(),
	}
}

func (r *KBCategoryRepository) Create(ctx context.Context, c *kb.Category) error {
	model := r.mapper.CategoryToModel(c)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create kb category: %w", err)
	}
	return c.SetID(model.ID)
}

func (r *KBCategoryRepository) Update(ctx context.Context, c *kb.Category) error {
	model := r.mapper.CategoryToModel(c)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Model(&models.KBCategoryModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(model).Error; err != nil {
		return fmt.Errorf("failed to update kb category: %w", err)
	}
	return nil
}

// Delete removes the category with its items and their votes.
func (r *KBCategoryRepository) Delete(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)

	itemIDs := tx.Model(&models.KBItemModel{}).Select("id").Where("category_id = ?", id)
	if err := tx.Where("item_id IN (?)", itemIDs).Delete(&models.KBItemVoteModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete kb votes: %w", err)
	}
	if err := tx.Where("category_id = ?", id).Delete(&models.KBItemModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete kb items: %w", err)
	}
	if err := tx.Delete(&models.KBCategoryModel{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete kb category: %w", err)
	}
	return nil
}

func (r *KBCategoryRepository) GetByID(ctx context.Context, id uint) (*kb.Category, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *KBCategoryRepository) GetBySlug(ctx context.Context, slug string) (*kb.Category, error) {
	return r.first(ctx, "LOWER(slug) = ?", strings.ToLower(strings.TrimSpace(slug)))
}

func (r *KBCategoryRepository) List(ctx context.Context, publicOnly bool) ([]*kb.Category, error) {
	query := db.GetTxFromContext(ctx, r.db).Order("title ASC").Order("id ASC")
	if publicOnly {
		query = query.Where("public = ?", true)
	}

	var categoryModels []models.KBCategoryModel
	if err := query.Find(&categoryModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list kb categories: %w", err)
	}

	return mapper.MapSliceWithError(categoryModels, func(m models.KBCategoryModel) (*kb.Category, error) {
		return r.mapper.CategoryToDomain(&m)
	})
}

func (r *KBCategoryRepository) first(ctx context.Context, query string, args ...interface{}) (*kb.Category, error) {
	var model models.KBCategoryModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get kb category: %w", err)
	}
	return r.mapper.CategoryToDomain(&model)
}

type KBItemRepository struct {
	db     *gorm.DB
	mapper mappers.KBMapper
}

func NewKBItemRepository(db *gorm.DB) *KBItemRepository {
	return &KBItemRepository{
		db:     db,
		mapper: mappers.NewKBMapper(),
	}
}

func (r *KBItemRepository) Create(ctx context.Context, it *kb.Item) error {
	model := r.mapper.ItemToModel(it)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create kb item: %w", err)
	}
	return it.SetID(model.ID)
}

// Update writes the content columns. Counters and voters go through RecordVote.
func (r *KBItemRepository) Update(ctx context.Context, it *kb.Item) error {
	model := r.mapper.ItemToModel(it)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Model(&models.KBItemModel{}).
		Where("id = ?", model.ID).
		Select("category_id", "title", "question", "answer", "last_updated", "item_order", "enabled", "team", "allow_ticket_creation").
		Updates(model).Error; err != nil {
		return fmt.Errorf("failed to update kb item: %w", err)
	}
	return nil
}

func (r *KBItemRepository) Delete(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("item_id = ?", id).Delete(&models.KBItemVoteModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete kb votes: %w", err)
	}
	if err := tx.Delete(&models.KBItemModel{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete kb item: %w", err)
	}
	return nil
}

func (r *KBItemRepository) GetByID(ctx context.Context, id uint) (*kb.Item, error) {
	var model models.KBItemModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get kb item: %w", err)
	}

	items, err := r.withVotes(ctx, []models.KBItemModel{model})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

func (r *KBItemRepository) GetByIDForUpdate(ctx context.Context, id uint) (*kb.Item, error) {
	var model models.KBItemModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock kb item: %w", err)
	}

	items, err := r.withVotes(ctx, []models.KBItemModel{model})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

func (r *KBItemRepository) ListByCategory(ctx context.Context, categoryID uint, enabledOnly bool) ([]*kb.Item, error) {
	query := db.GetTxFromContext(ctx, r.db).Where("category_id = ?", categoryID)
	if enabledOnly {
		query = query.Where("enabled = ?", true)
	}

	var itemModels []models.KBItemModel
	if err := query.Order("item_order ASC").Order("title ASC").Find(&itemModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list kb items: %w", err)
	}
	return r.withVotes(ctx, itemModels)
}

func (r *KBItemRepository) RecordVote(ctx context.Context, itemID uint, v kb.VoteChange) error {
	if !v.Changed {
		return nil
	}
	tx := db.GetTxFromContext(ctx, r.db)

	row := models.KBItemVoteModel{ItemID: itemID, UserID: v.UserID, Direction: string(v.Direction)}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"direction"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save kb vote: %w", err)
	}

	if err := tx.Model(&models.KBItemModel{}).
		Where("id = ?", itemID).
		UpdateColumns(map[string]interface{}{
			"votes":           gorm.Expr("votes + ?", v.Votes),
			"recommendations": gorm.Expr("recommendations + ?", v.Recommendations),
		}).Error; err != nil {
		return fmt.Errorf("failed to update kb item counters: %w", err)
	}
	return nil
}

func (r *KBItemRepository) VoteTotals(ctx context.Context) (int64, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var rows []struct {
		Direction string
		Count     int64
	}
	if err := tx.Model(&models.KBItemVoteModel{}).
		Select("direction, COUNT(*) AS count").
		Group("direction").
		Scan(&rows).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count kb votes: %w", err)
	}

	var likes, dislikes int64
	for _, row := range rows {
		switch kb.VoteDirection(row.Direction) {
		case kb.VoteUp:
			likes = row.Count
		case kb.VoteDown:
			dislikes = row.Count
		}
	}
	return likes, dislikes, nil
}

func (r *KBItemRepository) withVotes(ctx context.Context, itemModels []models.KBItemModel) ([]*kb.Item, error) {
	if len(itemModels) == 0 {
		return []*kb.Item{}, nil
	}
	ids := make([]uint, len(itemModels))
	for i, m := range itemModels {
		ids[i] = m.ID
	}

	var voteModels []models.KBItemVoteModel
	if err := db.GetTxFromContext(ctx, r.db).Where("item_id IN ?", ids).Find(&voteModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load kb votes: %w", err)
	}
	votesBy := make(map[uint][]models.KBItemVoteModel)
	for _, v := range voteModels {
		votesBy[v.ItemID] = append(votesBy[v.ItemID], v)
	}

	out := make([]*kb.Item, 0, len(itemModels))
	for i := range itemModels {
		it, err := r.mapper.ItemToDomain(&itemModels[i], votesBy[itemModels[i].ID])
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}
