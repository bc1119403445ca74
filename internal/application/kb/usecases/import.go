package usecases

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/openhelpdesk/helpdesk/internal/domain/kb"
	"github.com/openhelpdesk/helpdesk/internal/shared/db"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// ImportFile is the layout read by `helpdesk kb import`.
type ImportFile struct {
	Categories []ImportCategory `yaml:"categories"`
}

type ImportCategory struct {
	Name        string       `yaml:"name"`
	Title       string       `yaml:"title"`
	Slug        string       `yaml:"slug"`
	Description string       `yaml:"description"`
	Public      *bool        `yaml:"public"`
	Items       []ImportItem `yaml:"items"`
}

type ImportItem struct {
	Title               string `yaml:"title"`
	Question            string `yaml:"question"`
	Answer              string `yaml:"answer"`
	Order               int    `yaml:"order"`
	Enabled             *bool  `yaml:"enabled"`
	Team                string `yaml:"team"`
	AllowTicketCreation bool   `yaml:"allow_ticket_creation"`
}

type ImportResult struct {
	CategoriesCreated int
	CategoriesUpdated int
	ItemsCreated      int
}

// ImportUseCase bulk-loads categories and items. Categories are matched by
// slug and updated in place; items are always added.
type ImportUseCase struct {
	categories kb.CategoryRepository
	items      kb.ItemRepository
	txMgr      db.TxRunner
	logger     logger.Interface
}

func NewImportUseCase(categories kb.CategoryRepository, items kb.ItemRepository, txMgr db.TxRunner, logger logger.Interface) *ImportUseCase {
	return &ImportUseCase{
		categories: categories,
		items:      items,
		txMgr:      txMgr,
		logger:     logger,
	}
}

func (uc *ImportUseCase) Execute(ctx context.Context, r io.Reader) (*ImportResult, error) {
	uc.logger.Infow("executing kb import use case")

	var file ImportFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid import file: %v", err))
	}

	res := &ImportResult{}
	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		for i, ic := range file.Categories {
			c, created, err := uc.upsertCategory(txCtx, ic)
			if err != nil {
				return errors.NewValidationError(fmt.Sprintf("category %d (%s): %v", i+1, ic.Name, err))
			}
			if created {
				res.CategoriesCreated++
			} else {
				res.CategoriesUpdated++
			}
			for j, ii := range ic.Items {
				enabled := ii.Enabled == nil || *ii.Enabled
				it, err := kb.NewItem(kb.ItemContent{
					CategoryID:          c.ID(),
					Title:               ii.Title,
					Question:            ii.Question,
					Answer:              ii.Answer,
					Order:               ii.Order,
					Enabled:             enabled,
					Team:                ii.Team,
					AllowTicketCreation: ii.AllowTicketCreation,
				})
				if err != nil {
					return errors.NewValidationError(fmt.Sprintf("category %s item %d: %v", c.Slug(), j+1, err))
				}
				if err := uc.items.Create(txCtx, it); err != nil {
					return err
				}
				res.ItemsCreated++
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("kb import rolled back", "error", err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to import knowledge base")
	}

	uc.logger.Infow("kb import completed",
		"categories_created", res.CategoriesCreated,
		"categories_updated", res.CategoriesUpdated,
		"items_created", res.ItemsCreated,
	)
	return res, nil
}

func (uc *ImportUseCase) upsertCategory(ctx context.Context, ic ImportCategory) (*kb.Category, bool, error) {
	public := ic.Public == nil || *ic.Public
	s := kb.CategorySettings{
		Name:        ic.Name,
		Title:       ic.Title,
		Slug:        ic.Slug,
		Description: ic.Description,
		Public:      public,
	}
	c, err := kb.NewCategory(s)
	if err != nil {
		return nil, false, err
	}
	existing, err := uc.categories.GetBySlug(ctx, c.Slug())
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		s.QueueID = existing.QueueID()
		if err := existing.Update(s); err != nil {
			return nil, false, err
		}
		return existing, false, uc.categories.Update(ctx, existing)
	}
	return c, true, uc.categories.Create(ctx, c)
}
