package usecases

import (
	"context"
	"fmt"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/kb/dto"
	"github.com/openhelpdesk/helpdesk/internal/domain/kb"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// ManageUseCase is the staff CRUD over categories and items.
type ManageUseCase struct {
	categories kb.CategoryRepository
	items      kb.ItemRepository
	queues     queue.Repository
	policy     *access.Policy
	logger     logger.Interface
}

func NewManageUseCase(
	categories kb.CategoryRepository,
	items kb.ItemRepository,
	queues queue.Repository,
	policy *access.Policy,
	logger logger.Interface,
) *ManageUseCase {
	return &ManageUseCase{
		categories: categories,
		items:      items,
		queues:     queues,
		policy:     policy,
		logger:     logger,
	}
}

func (uc *ManageUseCase) guard(actor access.Actor) error {
	if !uc.policy.KBEnabled() {
		return errKBDisabled()
	}
	return uc.policy.RequireStaff(actor)
}

func (uc *ManageUseCase) CreateCategory(ctx context.Context, actor access.Actor, s kb.CategorySettings) (*dto.CategoryDTO, error) {
	uc.logger.Infow("executing create kb category use case", "name", s.Name, "user_id", actor.UserID)

	if err := uc.guard(actor); err != nil {
		return nil, err
	}
	if err := uc.checkQueue(ctx, s.QueueID); err != nil {
		return nil, err
	}
	c, err := kb.NewCategory(s)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.ensureSlugFree(ctx, c.Slug(), 0); err != nil {
		return nil, err
	}
	if err := uc.categories.Create(ctx, c); err != nil {
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError("a category with this slug already exists", c.Slug())
		}
		uc.logger.Errorw("failed to create kb category", "slug", c.Slug(), "error", err)
		return nil, errors.NewInternalError("failed to create category")
	}
	uc.logger.Infow("kb category created successfully", "category_id", c.ID(), "slug", c.Slug())
	return dto.ToCategoryDTO(c), nil
}

func (uc *ManageUseCase) UpdateCategory(ctx context.Context, actor access.Actor, id uint, s kb.CategorySettings) (*dto.CategoryDTO, error) {
	uc.logger.Infow("executing update kb category use case", "category_id", id, "user_id", actor.UserID)

	if err := uc.guard(actor); err != nil {
		return nil, err
	}
	c, err := uc.category(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.checkQueue(ctx, s.QueueID); err != nil {
		return nil, err
	}
	if err := c.Update(s); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.ensureSlugFree(ctx, c.Slug(), c.ID()); err != nil {
		return nil, err
	}
	if err := uc.categories.Update(ctx, c); err != nil {
		uc.logger.Errorw("failed to update kb category", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update category")
	}
	return dto.ToCategoryDTO(c), nil
}

// DeleteCategory removes the category and its items.
func (uc *ManageUseCase) DeleteCategory(ctx context.Context, actor access.Actor, id uint) error {
	uc.logger.Infow("executing delete kb category use case", "category_id", id, "user_id", actor.UserID)

	if err := uc.guard(actor); err != nil {
		return err
	}
	if _, err := uc.category(ctx, id); err != nil {
		return err
	}
	if err := uc.categories.Delete(ctx, id); err != nil {
		uc.logger.Errorw("failed to delete kb category", "category_id", id, "error", err)
		return errors.NewInternalError("failed to delete category")
	}
	return nil
}

func (uc *ManageUseCase) CreateItem(ctx context.Context, actor access.Actor, c kb.ItemContent) (*dto.ItemDTO, error) {
	uc.logger.Infow("executing create kb item use case", "category_id", c.CategoryID, "user_id", actor.UserID)

	if err := uc.guard(actor); err != nil {
		return nil, err
	}
	if _, err := uc.category(ctx, c.CategoryID); err != nil {
		return nil, asValidation(err)
	}
	it, err := kb.NewItem(c)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.items.Create(ctx, it); err != nil {
		uc.logger.Errorw("failed to create kb item", "category_id", c.CategoryID, "error", err)
		return nil, errors.NewInternalError("failed to create item")
	}
	uc.logger.Infow("kb item created successfully", "item_id", it.ID())
	d := dto.ToItemDTO(it, 0, true)
	return &d, nil
}

func (uc *ManageUseCase) UpdateItem(ctx context.Context, actor access.Actor, id uint, c kb.ItemContent) (*dto.ItemDTO, error) {
	uc.logger.Infow("executing update kb item use case", "item_id", id, "user_id", actor.UserID)

	if err := uc.guard(actor); err != nil {
		return nil, err
	}
	it, err := uc.item(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := uc.category(ctx, c.CategoryID); err != nil {
		return nil, asValidation(err)
	}
	if err := it.Update(c); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.items.Update(ctx, it); err != nil {
		uc.logger.Errorw("failed to update kb item", "item_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update item")
	}
	d := dto.ToItemDTO(it, 0, true)
	return &d, nil
}

func (uc *ManageUseCase) DeleteItem(ctx context.Context, actor access.Actor, id uint) error {
	uc.logger.Infow("executing delete kb item use case", "item_id", id, "user_id", actor.UserID)

	if err := uc.guard(actor); err != nil {
		return err
	}
	if _, err := uc.item(ctx, id); err != nil {
		return err
	}
	if err := uc.items.Delete(ctx, id); err != nil {
		uc.logger.Errorw("failed to delete kb item", "item_id", id, "error", err)
		return errors.NewInternalError("failed to delete item")
	}
	return nil
}

func (uc *ManageUseCase) category(ctx context.Context, id uint) (*kb.Category, error) {
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		uc.logger.Errorw("failed to get kb category", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to load category")
	}
	if c == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("category %d not found", id))
	}
	return c, nil
}

func (uc *ManageUseCase) item(ctx context.Context, id uint) (*kb.Item, error) {
	it, err := uc.items.GetByID(ctx, id)
	if err != nil {
		uc.logger.Errorw("failed to get kb item", "item_id", id, "error", err)
		return nil, errors.NewInternalError("failed to load item")
	}
	if it == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("item %d not found", id))
	}
	return it, nil
}

func (uc *ManageUseCase) checkQueue(ctx context.Context, queueID *uint) error {
	if queueID == nil {
		return nil
	}
	q, err := uc.queues.GetByID(ctx, *queueID)
	if err != nil {
		uc.logger.Errorw("failed to get queue", "queue_id", *queueID, "error", err)
		return errors.NewInternalError("failed to load queue")
	}
	if q == nil {
		return errors.NewValidationError(fmt.Sprintf("queue %d does not exist", *queueID))
	}
	return nil
}

func (uc *ManageUseCase) ensureSlugFree(ctx context.Context, slug string, selfID uint) error {
	existing, err := uc.categories.GetBySlug(ctx, slug)
	if err != nil {
		uc.logger.Errorw("failed to check kb slug", "slug", slug, "error", err)
		return errors.NewInternalError("failed to check category slug")
	}
	if existing != nil && existing.ID() != selfID {
		return errors.NewConflictError("a category with this slug already exists", slug)
	}
	return nil
}

// asValidation turns a missing reference into a field error.
func asValidation(err error) error {
	if errors.IsNotFoundError(err) {
		return errors.NewValidationError(err.Error())
	}
	return err
}
