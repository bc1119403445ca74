package ticket

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/forms"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

// SubmitTicketRequest is accepted as JSON or as a multipart form carrying
// attachments.
type SubmitTicketRequest struct {
	QueueID        uint       `json:"queue" form:"queue" binding:"required"`
	Title          string     `json:"title" form:"title" binding:"required,max=200"`
	Body           string     `json:"body" form:"body"`
	SubmitterEmail string     `json:"submitter_email" form:"submitter_email" binding:"omitempty,email"`
	Priority       int        `json:"priority" form:"priority" binding:"omitempty,min=1,max=5"`
	DueDate        *time.Time `json:"due_date" form:"due_date" time_format:"2006-01-02"`
	AssignedTo     *uint      `json:"assigned_to" form:"assigned_to"`
	KBItemID       *uint      `json:"kbitem" form:"kbitem"`
	CCEmails       []string   `json:"cc_emails" form:"cc_emails"`
}

func (r *SubmitTicketRequest) ToCommand(actor access.Actor, uploads []usecases.AttachmentUpload) usecases.SubmitTicketCommand {
	return usecases.SubmitTicketCommand{
		Actor: actor,
		Input: forms.Input{
			QueueID:        r.QueueID,
			Title:          r.Title,
			Body:           r.Body,
			SubmitterEmail: r.SubmitterEmail,
			Priority:       r.Priority,
			DueDate:        r.DueDate,
			AssignedTo:     r.AssignedTo,
			KBItemID:       r.KBItemID,
			CCEmails:       r.CCEmails,
		},
		Attachments: uploads,
	}
}

// UpdateTicketRequest posts a follow-up. Priority, owner and due date
// changes ride along and are audited on the same follow-up.
type UpdateTicketRequest struct {
	Title     string     `json:"title" form:"title" binding:"max=200"`
	Comment   string     `json:"comment" form:"comment"`
	Public    bool       `json:"public" form:"public"`
	NewStatus string     `json:"new_status" form:"new_status"`
	TimeSpent int        `json:"time_spent" form:"time_spent" binding:"min=0"`
	Priority  *int       `json:"priority" form:"priority" binding:"omitempty,min=1,max=5"`
	Owner     *uint      `json:"owner" form:"owner"`
	DueDate   *time.Time `json:"due_date" form:"due_date" time_format:"2006-01-02"`
}

func (r *UpdateTicketRequest) ToCommand(ticketID uint, actor access.Actor, uploads []usecases.AttachmentUpload) usecases.UpdateTicketCommand {
	cmd := usecases.UpdateTicketCommand{
		TicketID:    ticketID,
		Actor:       actor,
		Title:       r.Title,
		Comment:     r.Comment,
		Public:      r.Public,
		NewStatus:   r.NewStatus,
		TimeSpent:   time.Duration(r.TimeSpent) * time.Minute,
		Attachments: uploads,
	}
	edits := &usecases.FieldEdits{Priority: r.Priority, Owner: r.Owner, DueDate: r.DueDate}
	if edits.Any() {
		cmd.Edits = edits
	}
	return cmd
}

type EditTicketRequest struct {
	Title          *string    `json:"title" binding:"omitempty,max=200"`
	Description    *string    `json:"description"`
	Priority       *int       `json:"priority" binding:"omitempty,min=1,max=5"`
	DueDate        *time.Time `json:"due_date"`
	ClearDueDate   bool       `json:"clear_due_date"`
	SubmitterEmail *string    `json:"submitter_email" binding:"omitempty,email"`
	Owner          *uint      `json:"owner"`
}

func (r *EditTicketRequest) ToCommand(ticketID uint, actor access.Actor) usecases.EditTicketCommand {
	return usecases.EditTicketCommand{
		TicketID:       ticketID,
		Actor:          actor,
		Title:          r.Title,
		Description:    r.Description,
		Priority:       r.Priority,
		DueDate:        r.DueDate,
		ClearDueDate:   r.ClearDueDate,
		SubmitterEmail: r.SubmitterEmail,
		Owner:          r.Owner,
	}
}

type MergeTicketsRequest struct {
	MainID    uint   `json:"main_ticket" binding:"required"`
	TicketIDs []uint `json:"tickets" binding:"required,min=1"`
}

type MassUpdateRequest struct {
	TicketIDs []uint `json:"tickets" binding:"required,min=1"`
	Action    string `json:"action" binding:"required"`
	AssignTo  uint   `json:"assign_to"`
}

type AddCCRequest struct {
	UserID    *uint  `json:"user"`
	Email     string `json:"email" binding:"omitempty,email"`
	CanView   bool   `json:"can_view"`
	CanUpdate bool   `json:"can_update"`
}

type EditFollowUpRequest struct {
	Title     string `json:"title" binding:"max=200"`
	Comment   string `json:"comment"`
	Public    bool   `json:"public"`
	TimeSpent int    `json:"time_spent" binding:"min=0"`
}

type PublicViewRequest struct {
	Ticket string `form:"ticket" json:"ticket"`
	Email  string `form:"email" json:"email"`
	Key    string `form:"key" json:"key"`
}

// parseListQuery reads the staff ticket list filters from the query string.
func parseListQuery(c *gin.Context, actor access.Actor) (usecases.ListTicketsQuery, error) {
	queueIDs, err := utils.ParseIDsQuery(c, "queue")
	if err != nil {
		return usecases.ListTicketsQuery{}, err
	}
	p := utils.ParsePagination(c)
	desc, _ := strconv.ParseBool(c.DefaultQuery("desc", "true"))
	return usecases.ListTicketsQuery{
		Actor:    actor,
		QueueIDs: queueIDs,
		Statuses: utils.ParseCSVQuery(c, "status"),
		Owner:    c.Query("owner"),
		Keyword:  c.Query("q"),
		Page:     p.Page,
		PageSize: p.PageSize,
		SortBy:   c.Query("sort"),
		SortDesc: desc,
	}, nil
}
