package dto

import (
	"time"

	"github.com/openhelpdesk/helpdesk/internal/domain/kb"
)

type CategoryDTO struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	QueueID     *uint     `json:"queue_id"`
	Public      bool      `json:"public"`
	CreatedAt   time.Time `json:"created"`
	UpdatedAt   time.Time `json:"modified"`
	Items       []ItemDTO `json:"items,omitempty"`
}

// ItemDTO includes the voter sets only for staff.
type ItemDTO struct {
	ID                  uint      `json:"id"`
	CategoryID          uint      `json:"category_id"`
	Title               string    `json:"title"`
	Question            string    `json:"question"`
	Answer              string    `json:"answer"`
	AnswerHTML          string    `json:"answer_html,omitempty"`
	Votes               int       `json:"votes"`
	Recommendations     int       `json:"recommendations"`
	Score               float64   `json:"score"`
	VotedBy             []uint    `json:"voted_by,omitempty"`
	DownvotedBy         []uint    `json:"downvoted_by,omitempty"`
	LastUpdated         time.Time `json:"last_updated"`
	Order               int       `json:"order"`
	Enabled             bool      `json:"enabled"`
	Team                string    `json:"team,omitempty"`
	AllowTicketCreation bool      `json:"allow_ticket_creation"`
	MyVote              string    `json:"my_vote,omitempty"`
}

func ToCategoryDTO(c *kb.Category) *CategoryDTO {
	if c == nil {
		return nil
	}
	return &CategoryDTO{
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

// ToItemDTO converts it. viewerID selects MyVote; zero means anonymous.
func ToItemDTO(it *kb.Item, viewerID uint, withVoters bool) ItemDTO {
	d := ItemDTO{
		ID:                  it.ID(),
		CategoryID:          it.CategoryID(),
		Title:               it.Title(),
		Question:            it.Question(),
		Answer:              it.Answer(),
		Votes:               it.Votes(),
		Recommendations:     it.Recommendations(),
		Score:               it.Score(),
		LastUpdated:         it.LastUpdated(),
		Order:               it.Order(),
		Enabled:             it.IsEnabled(),
		Team:                it.Team(),
		AllowTicketCreation: it.AllowTicketCreation(),
	}
	if withVoters {
		d.VotedBy = it.VotedBy()
		d.DownvotedBy = it.DownvotedBy()
	}
	if viewerID != 0 {
		switch {
		case it.HasUpvoted(viewerID):
			d.MyVote = string(kb.VoteUp)
		case it.HasDownvoted(viewerID):
			d.MyVote = string(kb.VoteDown)
		}
	}
	return d
}
