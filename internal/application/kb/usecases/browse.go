package usecases

import (
	"context"
	"fmt"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/kb/dto"
	"github.com/openhelpdesk/helpdesk/internal/domain/kb"
	"github.com/openhelpdesk/helpdesk/internal/shared/db"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/services/markdown"
)

// errKBDisabled hides the whole knowledge base when it is switched off.
func errKBDisabled() error {
	return errors.NewNotFoundError("knowledge base is disabled")
}

// BrowseUseCase serves the reader side of the knowledge base: listing,
// category pages, single items and voting.
type BrowseUseCase struct {
	categories kb.CategoryRepository
	items      kb.ItemRepository
	txMgr      db.TxRunner
	policy     *access.Policy
	renderer   markdown.Renderer
	logger     logger.Interface
}

func NewBrowseUseCase(
	categories kb.CategoryRepository,
	items kb.ItemRepository,
	txMgr db.TxRunner,
	policy *access.Policy,
	renderer markdown.Renderer,
	logger logger.Interface,
) *BrowseUseCase {
	return &BrowseUseCase{
		categories: categories,
		items:      items,
		txMgr:      txMgr,
		policy:     policy,
		renderer:   renderer,
		logger:     logger,
	}
}

// ListCategories returns public categories to anonymous readers and all of
// them to signed-in users.
func (uc *BrowseUseCase) ListCategories(ctx context.Context, actor access.Actor) ([]*dto.CategoryDTO, error) {
	uc.logger.Infow("executing list kb categories use case", "actor", actor.Kind.String())

	if !uc.policy.KBEnabled() {
		return nil, errKBDisabled()
	}
	cs, err := uc.categories.List(ctx, !actor.IsAuthenticated() && actor.Kind != access.ActorSystem)
	if err != nil {
		uc.logger.Errorw("failed to list kb categories", "error", err)
		return nil, errors.NewInternalError("failed to list categories")
	}
	out := make([]*dto.CategoryDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, dto.ToCategoryDTO(c))
	}
	return out, nil
}

// GetCategory returns the category named by slug with its enabled items.
func (uc *BrowseUseCase) GetCategory(ctx context.Context, actor access.Actor, slug string) (*dto.CategoryDTO, error) {
	uc.logger.Infow("executing get kb category use case", "slug", slug)

	if !uc.policy.KBEnabled() {
		return nil, errKBDisabled()
	}
	c, err := uc.categories.GetBySlug(ctx, slug)
	if err != nil {
		uc.logger.Errorw("failed to get kb category", "slug", slug, "error", err)
		return nil, errors.NewInternalError("failed to load category")
	}
	if c == nil || !uc.policy.CanViewKBCategory(actor, c) {
		return nil, errors.NewNotFoundError(fmt.Sprintf("category %q not found", slug))
	}
	staff := uc.policy.ActsAsStaff(actor)
	items, err := uc.items.ListByCategory(ctx, c.ID(), !staff)
	if err != nil {
		uc.logger.Errorw("failed to list kb items", "category_id", c.ID(), "error", err)
		return nil, errors.NewInternalError("failed to list items")
	}
	out := dto.ToCategoryDTO(c)
	out.Items = make([]dto.ItemDTO, 0, len(items))
	for _, it := range items {
		out.Items = append(out.Items, uc.itemDTO(it, actor, staff))
	}
	return out, nil
}

func (uc *BrowseUseCase) GetItem(ctx context.Context, actor access.Actor, itemID uint) (*dto.ItemDTO, error) {
	uc.logger.Infow("executing get kb item use case", "item_id", itemID)

	if !uc.policy.KBEnabled() {
		return nil, errKBDisabled()
	}
	it, err := uc.visibleItem(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}
	d := uc.itemDTO(it, actor, uc.policy.ActsAsStaff(actor))
	return &d, nil
}

// Vote records actor's vote. Repeating a vote is a no-op; switching
// direction removes the earlier one.
func (uc *BrowseUseCase) Vote(ctx context.Context, actor access.Actor, itemID uint, direction string) (*dto.ItemDTO, error) {
	uc.logger.Infow("executing kb vote use case", "item_id", itemID, "user_id", actor.UserID, "direction", direction)

	if !uc.policy.KBEnabled() {
		return nil, errKBDisabled()
	}
	if err := uc.policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	dir, err := kb.ParseVoteDirection(direction)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	var voted *kb.Item
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		it, err := uc.lockedItem(txCtx, actor, itemID)
		if err != nil {
			return err
		}
		vc, err := it.Vote(actor.UserID, dir)
		if err != nil {
			return errors.NewValidationError(err.Error())
		}
		voted = it
		if !vc.Changed {
			return nil
		}
		return uc.items.RecordVote(txCtx, it.ID(), vc)
	})
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		uc.logger.Errorw("failed to record kb vote", "item_id", itemID, "error", err)
		return nil, errors.NewInternalError("failed to record vote")
	}

	uc.logger.Infow("kb vote recorded", "item_id", itemID, "votes", voted.Votes(), "recommendations", voted.Recommendations())
	d := uc.itemDTO(voted, actor, uc.policy.ActsAsStaff(actor))
	return &d, nil
}

func (uc *BrowseUseCase) visibleItem(ctx context.Context, actor access.Actor, itemID uint) (*kb.Item, error) {
	return uc.checkItem(ctx, actor, itemID, uc.items.GetByID)
}

// lockedItem is visibleItem with the item row locked until the
// transaction in ctx ends.
func (uc *BrowseUseCase) lockedItem(ctx context.Context, actor access.Actor, itemID uint) (*kb.Item, error) {
	return uc.checkItem(ctx, actor, itemID, uc.items.GetByIDForUpdate)
}

func (uc *BrowseUseCase) checkItem(
	ctx context.Context,
	actor access.Actor,
	itemID uint,
	get func(context.Context, uint) (*kb.Item, error),
) (*kb.Item, error) {
	it, err := get(ctx, itemID)
	if err != nil {
		uc.logger.Errorw("failed to get kb item", "item_id", itemID, "error", err)
		return nil, errors.NewInternalError("failed to load item")
	}
	notFound := errors.NewNotFoundError(fmt.Sprintf("item %d not found", itemID))
	if it == nil {
		return nil, notFound
	}
	c, err := uc.categories.GetByID(ctx, it.CategoryID())
	if err != nil {
		uc.logger.Errorw("failed to get kb category", "category_id", it.CategoryID(), "error", err)
		return nil, errors.NewInternalError("failed to load category")
	}
	if c == nil || !uc.policy.CanViewKBCategory(actor, c) {
		return nil, notFound
	}
	if !it.IsEnabled() && !uc.policy.ActsAsStaff(actor) {
		return nil, notFound
	}
	return it, nil
}

func (uc *BrowseUseCase) itemDTO(it *kb.Item, actor access.Actor, staff bool) dto.ItemDTO {
	var viewer uint
	if actor.IsAuthenticated() {
		viewer = actor.UserID
	}
	d := dto.ToItemDTO(it, viewer, staff)
	if uc.renderer != nil {
		d.AnswerHTML = uc.renderer.Render(it.Answer())
	}
	return d
}
