package dto

import (
	"time"

	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/mapper"
)

type TicketDTO struct {
	ID             uint          `json:"id"`
	QueueID        uint          `json:"queue_id"`
	QueueSlug      string        `json:"queue_slug,omitempty"`
	Reference      string        `json:"reference,omitempty"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Status         string        `json:"status"`
	StatusLabel    string        `json:"status_label"`
	Priority       int           `json:"priority"`
	PriorityLabel  string        `json:"priority_label"`
	SubmitterEmail string        `json:"submitter_email"`
	AssignedTo     *uint         `json:"assigned_to"`
	DueDate        *time.Time    `json:"due_date"`
	OnHold         bool          `json:"on_hold"`
	Resolution     string        `json:"resolution,omitempty"`
	MergedTo       *uint         `json:"merged_to,omitempty"`
	KBItemID       *uint         `json:"kbitem_id,omitempty"`
	LastEscalation *time.Time    `json:"last_escalation,omitempty"`
	SecretKey      string        `json:"secret_key,omitempty"`
	CreatedAt      time.Time     `json:"created"`
	UpdatedAt      time.Time     `json:"modified"`
	FollowUps      []FollowUpDTO `json:"followups,omitempty"`
	CCs            []CCDTO       `json:"ccs,omitempty"`
}

type FollowUpDTO struct {
	ID          uint            `json:"id"`
	TicketID    uint            `json:"ticket_id"`
	UserID      *uint           `json:"user_id"`
	Title       string          `json:"title"`
	Comment     string          `json:"comment"`
	CommentHTML string          `json:"comment_html,omitempty"`
	Public      bool            `json:"public"`
	NewStatus   string          `json:"new_status,omitempty"`
	TimeSpent   string          `json:"time_spent,omitempty"`
	Date        time.Time       `json:"date"`
	LastEdited  *time.Time      `json:"last_edited,omitempty"`
	Changes     []ChangeDTO     `json:"changes"`
	Attachments []AttachmentDTO `json:"attachments"`
}

type ChangeDTO struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

type AttachmentDTO struct {
	ID         uint      `json:"id"`
	FollowUpID uint      `json:"followup_id"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created"`
}

type CCDTO struct {
	ID        uint   `json:"id"`
	TicketID  uint   `json:"ticket_id"`
	UserID    *uint  `json:"user_id"`
	Email     string `json:"email"`
	CanView   bool   `json:"can_view"`
	CanUpdate bool   `json:"can_update"`
}

type TicketListItemDTO struct {
	ID             uint      `json:"id"`
	QueueID        uint      `json:"queue_id"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	Priority       int       `json:"priority"`
	SubmitterEmail string    `json:"submitter_email"`
	AssignedTo     *uint     `json:"assigned_to"`
	OnHold         bool      `json:"on_hold"`
	CreatedAt      time.Time `json:"created"`
	UpdatedAt      time.Time `json:"modified"`
}

// ToTicketDTO converts t. m may be nil; labels then fall back to the raw
// status name. The secret key is included only when withSecret is set.
func ToTicketDTO(t *ticket.Ticket, q *queue.Queue, m *vo.StatusMachine, withSecret bool) *TicketDTO {
	if t == nil {
		return nil
	}
	if m == nil {
		m = vo.DefaultStatusMachine()
	}
	d := &TicketDTO{
		ID:             t.ID(),
		QueueID:        t.QueueID(),
		Title:          t.Title(),
		Description:    t.Description(),
		Status:         t.Status().String(),
		StatusLabel:    m.Label(t.Status()),
		Priority:       t.Priority().Int(),
		PriorityLabel:  t.Priority().Label(),
		SubmitterEmail: t.SubmitterEmail(),
		AssignedTo:     t.AssignedTo(),
		DueDate:        t.DueDate(),
		OnHold:         t.OnHold(),
		Resolution:     t.Resolution(),
		MergedTo:       t.MergedTo(),
		KBItemID:       t.KBItemID(),
		LastEscalation: t.LastEscalation(),
		CreatedAt:      t.CreatedAt(),
		UpdatedAt:      t.UpdatedAt(),
	}
	if q != nil {
		d.QueueSlug = q.Slug()
		d.Reference = t.TicketForURL(q.Slug())
	}
	if withSecret {
		d.SecretKey = t.SecretKey()
	}
	return d
}

func ToFollowUpDTO(f *ticket.FollowUp) FollowUpDTO {
	d := FollowUpDTO{
		ID:          f.ID(),
		TicketID:    f.TicketID(),
		UserID:      f.UserID(),
		Title:       f.Title(),
		Comment:     f.Comment(),
		Public:      f.IsPublic(),
		NewStatus:   f.NewStatus().String(),
		Date:        f.Date(),
		LastEdited:  f.LastEdited(),
		Changes:     mapper.MapSlice(f.Changes(), ToChangeDTO),
		Attachments: mapper.MapSlice(f.Attachments(), ToAttachmentDTO),
	}
	if f.TimeSpent() > 0 {
		d.TimeSpent = f.TimeSpent().String()
	}
	if d.Changes == nil {
		d.Changes = []ChangeDTO{}
	}
	if d.Attachments == nil {
		d.Attachments = []AttachmentDTO{}
	}
	return d
}

func ToFollowUpDTOs(fs []*ticket.FollowUp) []FollowUpDTO {
	return mapper.MapSlice(fs, ToFollowUpDTO)
}

func ToChangeDTO(c *ticket.TicketChange) ChangeDTO {
	return ChangeDTO{
		Field:    c.Field(),
		OldValue: c.OldValue(),
		NewValue: c.NewValue(),
	}
}

func ToAttachmentDTO(a *ticket.Attachment) AttachmentDTO {
	return AttachmentDTO{
		ID:         a.ID(),
		FollowUpID: a.FollowUpID(),
		Filename:   a.Filename(),
		MimeType:   a.MimeType(),
		Size:       a.Size(),
		CreatedAt:  a.CreatedAt(),
	}
}

func ToCCDTO(c *ticket.CC) CCDTO {
	return CCDTO{
		ID:        c.ID(),
		TicketID:  c.TicketID(),
		UserID:    c.UserID(),
		Email:     c.Email(),
		CanView:   c.CanView(),
		CanUpdate: c.CanUpdate(),
	}
}

func ToTicketListItemDTO(t *ticket.Ticket) TicketListItemDTO {
	return TicketListItemDTO{
		ID:             t.ID(),
		QueueID:        t.QueueID(),
		Title:          t.Title(),
		Status:         t.Status().String(),
		Priority:       t.Priority().Int(),
		SubmitterEmail: t.SubmitterEmail(),
		AssignedTo:     t.AssignedTo(),
		OnHold:         t.OnHold(),
		CreatedAt:      t.CreatedAt(),
		UpdatedAt:      t.UpdatedAt(),
	}
}

func ToTicketListItemDTOs(tickets []*ticket.Ticket) []TicketListItemDTO {
	return mapper.MapSlice(tickets, ToTicketListItemDTO)
}

// SLAItemDTO is one row of the SLA page.
type SLAItemDTO struct {
	TicketListItemDTO
	QueueTitle   string `json:"queue_title"`
	EscalateDays int    `json:"escalate_days"`
	AgeDays      int    `json:"age_days"`
	Overdue      bool   `json:"overdue"`
}

type DashboardDTO struct {
	StatusCounts   map[string]int64 `json:"status_counts"`
	Unassigned     int64            `json:"unassigned"`
	AssignedToMe   int64            `json:"assigned_to_me"`
	TotalUsers     int64            `json:"total_users"`
	KBLikes        int64            `json:"kb_likes"`
	KBDislikes     int64            `json:"kb_dislikes"`
	OpenClassTotal int64            `json:"open_total"`
}
