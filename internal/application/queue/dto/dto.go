package dto

import (
	"time"

	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/shared/mapper"
)

// QueueDTO never carries the mailbox password.
type QueueDTO struct {
	ID                    uint       `json:"id"`
	Title                 string     `json:"title"`
	Slug                  string     `json:"slug"`
	EmailAddress          string     `json:"email_address,omitempty"`
	Locale                string     `json:"locale,omitempty"`
	AllowPublicSubmission bool       `json:"allow_public_submission"`
	AllowEmailSubmission  bool       `json:"allow_email_submission"`
	EscalateDays          int        `json:"escalate_days"`
	NewTicketCC           string     `json:"new_ticket_cc,omitempty"`
	UpdatedTicketCC       string     `json:"updated_ticket_cc,omitempty"`
	NotifyOnEmailEvents   bool       `json:"enable_notifications_on_email_events"`
	Mailbox               MailboxDTO `json:"mailbox"`
	LastCheck             *time.Time `json:"last_check,omitempty"`
	DefaultOwnerID        *uint      `json:"default_owner"`
	DedicatedTimeMinutes  int        `json:"dedicated_time_minutes"`
	CreatedAt             time.Time  `json:"created"`
	UpdatedAt             time.Time  `json:"modified"`
}

type MailboxDTO struct {
	Type            string `json:"email_box_type,omitempty"`
	Host            string `json:"host,omitempty"`
	Port            int    `json:"port,omitempty"`
	SSL             bool   `json:"ssl"`
	User            string `json:"user,omitempty"`
	HasPassword     bool   `json:"has_password"`
	IMAPFolder      string `json:"imap_folder,omitempty"`
	LocalDir        string `json:"local_dir,omitempty"`
	IntervalMinutes int    `json:"interval,omitempty"`
}

// PublicQueueDTO is what anonymous submitters see.
type PublicQueueDTO struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

func ToQueueDTO(q *queue.Queue) *QueueDTO {
	if q == nil {
		return nil
	}
	mb := q.Mailbox()
	return &QueueDTO{
		ID:                    q.ID(),
		Title:                 q.Title(),
		Slug:                  q.Slug(),
		EmailAddress:          q.EmailAddress(),
		Locale:                q.Locale(),
		AllowPublicSubmission: q.AllowPublicSubmission(),
		AllowEmailSubmission:  q.AllowEmailSubmission(),
		EscalateDays:          q.EscalateDays(),
		NewTicketCC:           q.NewTicketCC(),
		UpdatedTicketCC:       q.UpdatedTicketCC(),
		NotifyOnEmailEvents:   q.NotifyOnEmailEvents(),
		Mailbox: MailboxDTO{
			Type:            mb.Type.String(),
			Host:            mb.Host,
			Port:            mb.Port,
			SSL:             mb.SSL,
			User:            mb.User,
			HasPassword:     mb.Password != "",
			IMAPFolder:      mb.IMAPFolder,
			LocalDir:        mb.LocalDir,
			IntervalMinutes: mb.IntervalMinutes,
		},
		LastCheck:            q.LastCheck(),
		DefaultOwnerID:       q.DefaultOwnerID(),
		DedicatedTimeMinutes: int(q.DedicatedTime().Minutes()),
		CreatedAt:            q.CreatedAt(),
		UpdatedAt:            q.UpdatedAt(),
	}
}

func ToPublicQueueDTO(q *queue.Queue) PublicQueueDTO {
	return PublicQueueDTO{ID: q.ID(), Title: q.Title(), Slug: q.Slug()}
}

func ToPublicQueueDTOs(qs []*queue.Queue) []PublicQueueDTO {
	return mapper.MapSlice(qs, ToPublicQueueDTO)
}
