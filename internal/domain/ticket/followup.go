package ticket

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
)

const maxFollowUpTitleLength = 200

// FollowUp is one entry in a ticket's audit log: a comment, an optional
// status change and the field changes and attachments written with it.
type FollowUp struct {
	id          uint
	ticketID    uint
	userID      *uint
	title       string
	comment     string
	public      bool
	newStatus   vo.TicketStatus
	timeSpent   time.Duration
	date        time.Time
	lastEdited  *time.Time
	changes     []*TicketChange
	attachments []*Attachment
}

// NewFollowUp builds an unsaved follow-up. userID is nil for anonymous and
// email-originated entries; newStatus is empty when the status is untouched.
func NewFollowUp(
	ticketID uint,
	userID *uint,
	title string,
	comment string,
	public bool,
	newStatus vo.TicketStatus,
	timeSpent time.Duration,
) (*FollowUp, error) {
	if ticketID == 0 {
		return nil, fmt.Errorf("ticket ID is required")
	}
	title = strings.TrimSpace(title)
	if len(title) > maxFollowUpTitleLength {
		return nil, fmt.Errorf("title exceeds maximum length of %d characters", maxFollowUpTitleLength)
	}
	if timeSpent < 0 {
		return nil, fmt.Errorf("time spent cannot be negative")
	}
	return &FollowUp{
		ticketID:  ticketID,
		userID:    userID,
		title:     title,
		comment:   comment,
		public:    public,
		newStatus: newStatus,
		timeSpent: timeSpent,
		date:      biztime.NowUTC(),
	}, nil
}

type FollowUpData struct {
	ID          uint
	TicketID    uint
	UserID      *uint
	Title       string
	Comment     string
	Public      bool
	NewStatus   vo.TicketStatus
	TimeSpent   time.Duration
	Date        time.Time
	LastEdited  *time.Time
	Changes     []*TicketChange
	Attachments []*Attachment
}

func ReconstructFollowUp(d FollowUpData) (*FollowUp, error) {
	if d.ID == 0 {
		return nil, fmt.Errorf("follow-up ID cannot be zero")
	}
	if d.TicketID == 0 {
		return nil, fmt.Errorf("ticket ID is required")
	}
	return &FollowUp{
		id:          d.ID,
		ticketID:    d.TicketID,
		userID:      d.UserID,
		title:       d.Title,
		comment:     d.Comment,
		public:      d.Public,
		newStatus:   d.NewStatus,
		timeSpent:   d.TimeSpent,
		date:        d.Date,
		lastEdited:  d.LastEdited,
		changes:     d.Changes,
		attachments: d.Attachments,
	}, nil
}

func (f *FollowUp) ID() uint {
	return f.id
}

func (f *FollowUp) TicketID() uint {
	return f.ticketID
}

func (f *FollowUp) UserID() *uint {
	return f.userID
}

func (f *FollowUp) Title() string {
	return f.title
}

func (f *FollowUp) Comment() string {
	return f.comment
}

func (f *FollowUp) IsPublic() bool {
	return f.public
}

func (f *FollowUp) NewStatus() vo.TicketStatus {
	return f.newStatus
}

func (f *FollowUp) TimeSpent() time.Duration {
	return f.timeSpent
}

func (f *FollowUp) Date() time.Time {
	return f.date
}

func (f *FollowUp) LastEdited() *time.Time {
	return f.lastEdited
}

func (f *FollowUp) Changes() []*TicketChange {
	out := make([]*TicketChange, len(f.changes))
	copy(out, f.changes)
	return out
}

func (f *FollowUp) Attachments() []*Attachment {
	out := make([]*Attachment, len(f.attachments))
	copy(out, f.attachments)
	return out
}

func (f *FollowUp) SetID(id uint) error {
	if f.id != 0 {
		return fmt.Errorf("follow-up ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("follow-up ID cannot be zero")
	}
	f.id = id
	for _, c := range f.changes {
		c.followUpID = id
	}
	for _, a := range f.attachments {
		a.followUpID = id
	}
	return nil
}

// RecordChange appends a field change to be written with this follow-up.
func (f *FollowUp) RecordChange(c FieldChange) {
	f.changes = append(f.changes, &TicketChange{
		followUpID: f.id,
		field:      c.Field,
		oldValue:   c.OldValue,
		newValue:   c.NewValue,
	})
}

// AddAttachment attaches a stored file to this follow-up.
func (f *FollowUp) AddAttachment(a *Attachment) {
	a.followUpID = f.id
	f.attachments = append(f.attachments, a)
}

// Edit replaces the editable fields and stamps the edit time. The audit rows
// already written stay as they are.
func (f *FollowUp) Edit(title, comment string, public bool, timeSpent time.Duration) error {
	title = strings.TrimSpace(title)
	if len(title) > maxFollowUpTitleLength {
		return fmt.Errorf("title exceeds maximum length of %d characters", maxFollowUpTitleLength)
	}
	if timeSpent < 0 {
		return fmt.Errorf("time spent cannot be negative")
	}
	f.title = title
	f.comment = comment
	f.public = public
	f.timeSpent = timeSpent
	now := biztime.NowUTC()
	f.lastEdited = &now
	return nil
}

// SetDefaultTitle fills in title when none was given.
func (f *FollowUp) SetDefaultTitle(title string) {
	if f.title == "" {
		f.title = strings.TrimSpace(title)
	}
}

// MoveTo re-parents the follow-up, used when merging tickets.
func (f *FollowUp) MoveTo(ticketID uint) {
	f.ticketID = ticketID
}
