package queue

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/openhelpdesk/helpdesk/internal/domain/queue/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

// Queue is a named bucket of tickets with its own notification and
// mailbox settings.
type Queue struct {
	id                    uint
	title                 string
	slug                  string
	emailAddress          string
	locale                string
	allowPublicSubmission bool
	allowEmailSubmission  bool
	escalateDays          int
	newTicketCC           string
	updatedTicketCC       string
	notifyOnEmailEvents   bool
	mailbox               vo.MailboxConfig
	lastCheck             *time.Time
	defaultOwnerID        *uint
	dedicatedTime         time.Duration
	createdAt             time.Time
	updatedAt             time.Time
}

// Settings is the editable part of a queue.
type Settings struct {
	Title                 string
	Slug                  string
	EmailAddress          string
	Locale                string
	AllowPublicSubmission bool
	AllowEmailSubmission  bool
	EscalateDays          int
	NewTicketCC           string
	UpdatedTicketCC       string
	NotifyOnEmailEvents   bool
	Mailbox               vo.MailboxConfig
	DefaultOwnerID        *uint
	DedicatedTime         time.Duration
}

// NewQueue validates settings. An empty slug is generated from the title.
func NewQueue(s Settings) (*Queue, error) {
	q := &Queue{}
	if err := q.apply(s); err != nil {
		return nil, err
	}
	now := biztime.NowUTC()
	q.createdAt = now
	q.updatedAt = now
	return q, nil
}

type QueueData struct {
	ID        uint
	Settings  Settings
	LastCheck *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func ReconstructQueue(d QueueData) (*Queue, error) {
	if d.ID == 0 {
		return nil, fmt.Errorf("queue ID cannot be zero")
	}
	s := d.Settings
	return &Queue{
		id:                    d.ID,
		title:                 s.Title,
		slug:                  s.Slug,
		emailAddress:          s.EmailAddress,
		locale:                s.Locale,
		allowPublicSubmission: s.AllowPublicSubmission,
		allowEmailSubmission:  s.AllowEmailSubmission,
		escalateDays:          s.EscalateDays,
		newTicketCC:           s.NewTicketCC,
		updatedTicketCC:       s.UpdatedTicketCC,
		notifyOnEmailEvents:   s.NotifyOnEmailEvents,
		mailbox:               s.Mailbox,
		lastCheck:             d.LastCheck,
		defaultOwnerID:        s.DefaultOwnerID,
		dedicatedTime:         s.DedicatedTime,
		createdAt:             d.CreatedAt,
		updatedAt:             d.UpdatedAt,
	}, nil
}

// Update replaces the settings after validating them.
func (q *Queue) Update(s Settings) error {
	if err := q.apply(s); err != nil {
		return err
	}
	q.updatedAt = biztime.NowUTC()
	return nil
}

func (q *Queue) apply(s Settings) error {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > 100 {
		return fmt.Errorf("title exceeds maximum length of 100 characters")
	}
	slug := utils.Slugify(s.Slug, constants.SlugMaxLen)
	if slug == "" {
		slug = utils.Slugify(title, constants.SlugMaxLen)
	}
	if slug == "" {
		return fmt.Errorf("slug cannot be derived from title %q", title)
	}
	if s.EscalateDays < 0 {
		return fmt.Errorf("escalate days cannot be negative")
	}
	if s.DedicatedTime < 0 {
		return fmt.Errorf("dedicated time cannot be negative")
	}
	if err := s.Mailbox.Validate(); err != nil {
		return err
	}
	if s.AllowEmailSubmission && !s.Mailbox.IsConfigured() {
		return fmt.Errorf("email submission requires a mailbox type")
	}

	q.title = title
	q.slug = slug
	q.emailAddress = strings.TrimSpace(s.EmailAddress)
	q.locale = strings.TrimSpace(s.Locale)
	q.allowPublicSubmission = s.AllowPublicSubmission
	q.allowEmailSubmission = s.AllowEmailSubmission
	q.escalateDays = s.EscalateDays
	q.newTicketCC = strings.TrimSpace(s.NewTicketCC)
	q.updatedTicketCC = strings.TrimSpace(s.UpdatedTicketCC)
	q.notifyOnEmailEvents = s.NotifyOnEmailEvents
	q.mailbox = s.Mailbox
	q.defaultOwnerID = s.DefaultOwnerID
	q.dedicatedTime = s.DedicatedTime
	return nil
}

func (q *Queue) ID() uint {
	return q.id
}

func (q *Queue) Title() string {
	return q.title
}

func (q *Queue) Slug() string {
	return q.slug
}

func (q *Queue) EmailAddress() string {
	return q.emailAddress
}

func (q *Queue) Locale() string {
	return q.locale
}

func (q *Queue) AllowPublicSubmission() bool {
	return q.allowPublicSubmission
}

func (q *Queue) AllowEmailSubmission() bool {
	return q.allowEmailSubmission
}

func (q *Queue) EscalateDays() int {
	return q.escalateDays
}

func (q *Queue) NewTicketCC() string {
	return q.newTicketCC
}

func (q *Queue) UpdatedTicketCC() string {
	return q.updatedTicketCC
}

func (q *Queue) NotifyOnEmailEvents() bool {
	return q.notifyOnEmailEvents
}

func (q *Queue) Mailbox() vo.MailboxConfig {
	return q.mailbox
}

func (q *Queue) LastCheck() *time.Time {
	return q.lastCheck
}

func (q *Queue) DefaultOwnerID() *uint {
	return q.defaultOwnerID
}

func (q *Queue) DedicatedTime() time.Duration {
	return q.dedicatedTime
}

func (q *Queue) CreatedAt() time.Time {
	return q.createdAt
}

func (q *Queue) UpdatedAt() time.Time {
	return q.updatedAt
}

// Settings returns the editable fields, used to apply partial updates.
func (q *Queue) Settings() Settings {
	return Settings{
		Title:                 q.title,
		Slug:                  q.slug,
		EmailAddress:          q.emailAddress,
		Locale:                q.locale,
		AllowPublicSubmission: q.allowPublicSubmission,
		AllowEmailSubmission:  q.allowEmailSubmission,
		EscalateDays:          q.escalateDays,
		NewTicketCC:           q.newTicketCC,
		UpdatedTicketCC:       q.updatedTicketCC,
		NotifyOnEmailEvents:   q.notifyOnEmailEvents,
		Mailbox:               q.mailbox,
		DefaultOwnerID:        q.defaultOwnerID,
		DedicatedTime:         q.dedicatedTime,
	}
}

func (q *Queue) SetID(id uint) error {
	if q.id != 0 {
		return fmt.Errorf("queue ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("queue ID cannot be zero")
	}
	q.id = id
	return nil
}

// NewTicketCCList splits new_ticket_cc on commas.
func (q *Queue) NewTicketCCList() []string {
	return splitAddresses(q.newTicketCC)
}

func (q *Queue) UpdatedTicketCCList() []string {
	return splitAddresses(q.updatedTicketCC)
}

// MailboxDue reports whether the poller should fetch this queue's mailbox.
func (q *Queue) MailboxDue(now time.Time) bool {
	if !q.allowEmailSubmission || !q.mailbox.IsConfigured() {
		return false
	}
	if q.lastCheck == nil {
		return true
	}
	return !now.Before(q.lastCheck.Add(q.mailbox.Interval()))
}

func (q *Queue) MarkChecked(now time.Time) {
	at := now.UTC()
	q.lastCheck = &at
}

// FromAddress is the queue's own address, or fallback when unset.
func (q *Queue) FromAddress(fallback string) string {
	if q.emailAddress != "" {
		return q.emailAddress
	}
	return fallback
}

func splitAddresses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
