package mappers

import (
	"fmt"

	"github.com/openhelpdesk/helpdesk/internal/domain/kb"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
)

// KBMapper converts categories and items. Item voter sets travel as
// KBItemVoteModel rows.
type KBMapper interface {
	CategoryToModel(c *kb.Category) *models.KBCategoryModel
	CategoryToDomain(model *models.KBCategoryModel) (*kb.Category, error)
	ItemToModel(it *kb.Item) *models.KBItemModel
	ItemToDomain(model *models.KBItemModel, votes []models.KBItemVoteModel) (*kb.Item, error)
}

type KBMapperImpl struct{}

func NewKBMapper() KBMapper {
	return &KBMapperImpl{}
}

func (m *KBMapperImpl) CategoryToModel(c *kb.Category) *models.KBCategoryModel {
	return &models.KBCategoryModel{
		ID:          c.ID(),
		Name:        c.Name(),
		Title:       c.Title(),
		Slug:        c.Slug(),
		Description: c.Description(),
		QueueID:     c.QueueID(),
		Public:      c.IsPublic(),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
}

func (m *KBMapperImpl) CategoryToDomain(model *models.KBCategoryModel) (*kb.Category, error) {
	if model == nil {
		return nil, nil
	}
	c, err := kb.ReconstructCategory(model.ID, kb.CategorySettings{
		Name:        model.Name,
		Title:       model.Title,
		Slug:        model.Slug,
		Description: model.Description,
		QueueID:     model.QueueID,
		Public:      model.Public,
	}, model.CreatedAt.UTC(), model.UpdatedAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct kb category %d: %w", model.ID, err)
	}
	return c, nil
}

func (m *KBMapperImpl) ItemToModel(it *kb.Item) *models.KBItemModel {
	return &models.KBItemModel{
		ID:                  it.ID(),
		CategoryID:          it.CategoryID(),
		Title:               it.Title(),
		Question:            it.Question(),
		Answer:              it.Answer(),
		Votes:               it.Votes(),
		Recommendations:     it.Recommendations(),
		LastUpdated:         it.LastUpdated(),
		Order:               it.Order(),
		Enabled:             it.IsEnabled(),
		Team:                it.Team(),
		AllowTicketCreation: it.AllowTicketCreation(),
	}
}

func (m *KBMapperImpl) ItemToDomain(model *models.KBItemModel, votes []models.KBItemVoteModel) (*kb.Item, error) {
	if model == nil {
		return nil, nil
	}

	var up, down []uint
	for _, v := range votes {
		switch kb.VoteDirection(v.Direction) {
		case kb.VoteUp:
			up = append(up, v.UserID)
		case kb.VoteDown:
			down = append(down, v.UserID)
		}
	}

	it, err := kb.ReconstructItem(kb.ItemData{
		ID: model.ID,
		Content: kb.ItemContent{
			CategoryID:          model.CategoryID,
			Title:               model.Title,
			Question:            model.Question,
			Answer:              model.Answer,
			Order:               model.Order,
			Enabled:             model.Enabled,
			Team:                model.Team,
			AllowTicketCreation: model.AllowTicketCreation,
		},
		Votes:           model.Votes,
		Recommendations: model.Recommendations,
		VotedBy:         up,
		DownvotedBy:     down,
		LastUpdated:     model.LastUpdated.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct kb item %d: %w", model.ID, err)
	}
	return it, nil
}
