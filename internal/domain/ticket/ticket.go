package ticket

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
)

const (
	maxTitleLength = 200
	maxEmailLength = 254
)

// Ticket field names used in the change log.
const (
	FieldStatus         = "status"
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldPriority       = "priority"
	FieldOwner          = "owner"
	FieldDueDate        = "due_date"
	FieldSubmitterEmail = "submitter_email"
	FieldOnHold         = "on_hold"
	FieldQueue          = "queue"
	FieldMergedTo       = "merged_to"

	// Not shown in the change log, but tracked for persistence.
	FieldResolution     = "resolution"
	FieldKBItem         = "kb_item"
	FieldLastEscalation = "last_escalation"
)

// FieldChange is a single before/after pair produced by a ticket mutation.
type FieldChange struct {
	Field    string
	OldValue string
	NewValue string
}

type Ticket struct {
	id             uint
	queueID        uint
	title          string
	description    string
	status         vo.TicketStatus
	submitterEmail string
	assignedTo     *uint
	priority       vo.Priority
	dueDate        *time.Time
	secretKey      string
	onHold         bool
	resolution     string
	mergedTo       *uint
	kbItemID       *uint
	lastEscalation *time.Time
	createdAt      time.Time
	updatedAt      time.Time

	// dirty names the fields mutated since the ticket was loaded.
	dirty map[string]struct{}
}

// NewTicket builds an open ticket with a fresh secret key.
func NewTicket(
	queueID uint,
	title string,
	description string,
	submitterEmail string,
	priority vo.Priority,
) (*Ticket, error) {
	title = strings.TrimSpace(title)
	submitterEmail = strings.TrimSpace(submitterEmail)

	if queueID == 0 {
		return nil, fmt.Errorf("queue is required")
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLength {
		return nil, fmt.Errorf("title exceeds maximum length of %d characters", maxTitleLength)
	}
	if len(submitterEmail) > maxEmailLength {
		return nil, fmt.Errorf("submitter email is too long")
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid priority")
	}

	now := biztime.NowUTC()
	return &Ticket{
		queueID:        queueID,
		title:          title,
		description:    description,
		status:         vo.StatusOpen,
		submitterEmail: submitterEmail,
		priority:       priority,
		secretKey:      uuid.NewString(),
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// TicketData carries persisted state into ReconstructTicket.
type TicketData struct {
	ID             uint
	QueueID        uint
	Title          string
	Description    string
	Status         vo.TicketStatus
	SubmitterEmail string
	AssignedTo     *uint
	Priority       vo.Priority
	DueDate        *time.Time
	SecretKey      string
	OnHold         bool
	Resolution     string
	MergedTo       *uint
	KBItemID       *uint
	LastEscalation *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func ReconstructTicket(d TicketData) (*Ticket, error) {
	if d.ID == 0 {
		return nil, fmt.Errorf("ticket ID cannot be zero")
	}
	if d.QueueID == 0 {
		return nil, fmt.Errorf("queue is required")
	}
	if d.SecretKey == "" {
		return nil, fmt.Errorf("secret key is required")
	}
	if !d.Priority.IsValid() {
		return nil, fmt.Errorf("invalid priority")
	}
	return &Ticket{
		id:             d.ID,
		queueID:        d.QueueID,
		title:          d.Title,
		description:    d.Description,
		status:         d.Status,
		submitterEmail: d.SubmitterEmail,
		assignedTo:     d.AssignedTo,
		priority:       d.Priority,
		dueDate:        d.DueDate,
		secretKey:      d.SecretKey,
		onHold:         d.OnHold,
		resolution:     d.Resolution,
		mergedTo:       d.MergedTo,
		kbItemID:       d.KBItemID,
		lastEscalation: d.LastEscalation,
		createdAt:      d.CreatedAt,
		updatedAt:      d.UpdatedAt,
	}, nil
}

func (t *Ticket) ID() uint                   { return t.id }
func (t *Ticket) QueueID() uint              { return t.queueID }
func (t *Ticket) Title() string              { return t.title }
func (t *Ticket) Description() string        { return t.description }
func (t *Ticket) Status() vo.TicketStatus    { return t.status }
func (t *Ticket) SubmitterEmail() string     { return t.submitterEmail }
func (t *Ticket) AssignedTo() *uint          { return t.assignedTo }
func (t *Ticket) Priority() vo.Priority      { return t.priority }
func (t *Ticket) DueDate() *time.Time        { return t.dueDate }
func (t *Ticket) SecretKey() string          { return t.secretKey }
func (t *Ticket) OnHold() bool               { return t.onHold }
func (t *Ticket) Resolution() string         { return t.resolution }
func (t *Ticket) MergedTo() *uint            { return t.mergedTo }
func (t *Ticket) KBItemID() *uint            { return t.kbItemID }
func (t *Ticket) LastEscalation() *time.Time { return t.lastEscalation }
func (t *Ticket) CreatedAt() time.Time       { return t.createdAt }
func (t *Ticket) UpdatedAt() time.Time       { return t.updatedAt }

func (t *Ticket) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("ticket ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("ticket ID cannot be zero")
	}
	t.id = id
	return nil
}

// SetKBItem links the ticket to the KB item it was raised from.
func (t *Ticket) SetKBItem(itemID uint) {
	t.kbItemID = &itemID
	t.mark(FieldKBItem)
}

// DirtyFields lists the fields changed since load or the last ClearDirty,
// in sorted order.
func (t *Ticket) DirtyFields() []string {
	fields := make([]string, 0, len(t.dirty))
	for f := range t.dirty {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ClearDirty is called once the changes are persisted.
func (t *Ticket) ClearDirty() {
	t.dirty = nil
}

func (t *Ticket) mark(field string) {
	if t.dirty == nil {
		t.dirty = make(map[string]struct{})
	}
	t.dirty[field] = struct{}{}
}

// TicketForURL is the "<slug>-<id>" tag used in mail subjects.
func (t *Ticket) TicketForURL(queueSlug string) string {
	return fmt.Sprintf("%s-%d", queueSlug, t.id)
}

// IsAssignedTo reports whether userID owns the ticket.
func (t *Ticket) IsAssignedTo(userID uint) bool {
	return t.assignedTo != nil && *t.assignedTo == userID
}

// SubmitterMatches compares email with the submitter case-insensitively.
// An empty submitter never matches.
func (t *Ticket) SubmitterMatches(email string) bool {
	email = strings.TrimSpace(email)
	return t.submitterEmail != "" && email != "" && strings.EqualFold(t.submitterEmail, email)
}

// SecretKeyMatches compares key with the ticket's secret key case-insensitively.
func (t *Ticket) SecretKeyMatches(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && strings.EqualFold(t.secretKey, key)
}

// ChangeStatus moves the ticket to next. The machine decides whether the
// move is allowed for the actor. Returns changed=false when next is the
// current status.
func (t *Ticket) ChangeStatus(m *vo.StatusMachine, next vo.TicketStatus, staff bool) (FieldChange, bool, error) {
	if !m.CanTransition(t.status, next, staff) {
		return FieldChange{}, false, fmt.Errorf("cannot change status from %s to %s", t.status, next)
	}
	if t.status == next {
		return FieldChange{}, false, nil
	}
	change := FieldChange{Field: FieldStatus, OldValue: t.status.String(), NewValue: next.String()}
	t.status = next
	t.mark(FieldStatus)
	t.touch()
	return change, true, nil
}

// SetResolution records the comment that resolved or closed the ticket.
func (t *Ticket) SetResolution(comment string) {
	if t.resolution == comment {
		return
	}
	t.resolution = comment
	t.mark(FieldResolution)
}

func (t *Ticket) ChangeTitle(title string) (FieldChange, bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return FieldChange{}, false, fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLength {
		return FieldChange{}, false, fmt.Errorf("title exceeds maximum length of %d characters", maxTitleLength)
	}
	if title == t.title {
		return FieldChange{}, false, nil
	}
	change := FieldChange{Field: FieldTitle, OldValue: t.title, NewValue: title}
	t.title = title
	t.mark(FieldTitle)
	t.touch()
	return change, true, nil
}

func (t *Ticket) ChangeDescription(description string) (FieldChange, bool) {
	if description == t.description {
		return FieldChange{}, false
	}
	change := FieldChange{Field: FieldDescription, OldValue: t.description, NewValue: description}
	t.description = description
	t.mark(FieldDescription)
	t.touch()
	return change, true
}

func (t *Ticket) ChangePriority(p vo.Priority) (FieldChange, bool, error) {
	if !p.IsValid() {
		return FieldChange{}, false, fmt.Errorf("invalid priority: %d", p)
	}
	if p == t.priority {
		return FieldChange{}, false, nil
	}
	change := FieldChange{Field: FieldPriority, OldValue: t.priority.String(), NewValue: p.String()}
	t.priority = p
	t.mark(FieldPriority)
	t.touch()
	return change, true, nil
}

// Assign sets the owner; nil unassigns. Values in the change log are user
// IDs, or empty for unassigned.
func (t *Ticket) Assign(userID *uint) (FieldChange, bool) {
	if sameUint(t.assignedTo, userID) {
		return FieldChange{}, false
	}
	change := FieldChange{Field: FieldOwner, OldValue: uintString(t.assignedTo), NewValue: uintString(userID)}
	if userID == nil {
		t.assignedTo = nil
	} else {
		id := *userID
		t.assignedTo = &id
	}
	t.mark(FieldOwner)
	t.touch()
	return change, true
}

func (t *Ticket) ChangeDueDate(due *time.Time) (FieldChange, bool) {
	if sameTime(t.dueDate, due) {
		return FieldChange{}, false
	}
	change := FieldChange{Field: FieldDueDate, OldValue: timeString(t.dueDate), NewValue: timeString(due)}
	if due == nil {
		t.dueDate = nil
	} else {
		d := due.UTC()
		t.dueDate = &d
	}
	t.mark(FieldDueDate)
	t.touch()
	return change, true
}

func (t *Ticket) ChangeSubmitterEmail(email string) (FieldChange, bool, error) {
	email = strings.TrimSpace(email)
	if len(email) > maxEmailLength {
		return FieldChange{}, false, fmt.Errorf("submitter email is too long")
	}
	if email == t.submitterEmail {
		return FieldChange{}, false, nil
	}
	change := FieldChange{Field: FieldSubmitterEmail, OldValue: t.submitterEmail, NewValue: email}
	t.submitterEmail = email
	t.mark(FieldSubmitterEmail)
	t.touch()
	return change, true, nil
}

// SetOnHold toggles the hold flag.
func (t *Ticket) SetOnHold(hold bool) (FieldChange, bool) {
	if t.onHold == hold {
		return FieldChange{}, false
	}
	change := FieldChange{Field: FieldOnHold, OldValue: boolString(t.onHold), NewValue: boolString(hold)}
	t.onHold = hold
	t.mark(FieldOnHold)
	t.touch()
	return change, true
}

// MergeInto marks the ticket as a duplicate of main. The status change
// bypasses the machine's actor check; merging is a staff operation.
func (t *Ticket) MergeInto(mainID uint) ([]FieldChange, error) {
	if mainID == 0 || mainID == t.id {
		return nil, fmt.Errorf("cannot merge ticket %d into itself", t.id)
	}
	if t.mergedTo != nil {
		return nil, fmt.Errorf("ticket %d is already merged into %d", t.id, *t.mergedTo)
	}
	changes := []FieldChange{{Field: FieldMergedTo, OldValue: "", NewValue: fmt.Sprintf("%d", mainID)}}
	if t.status != vo.StatusDuplicate {
		changes = append(changes, FieldChange{Field: FieldStatus, OldValue: t.status.String(), NewValue: vo.StatusDuplicate.String()})
		t.status = vo.StatusDuplicate
		t.mark(FieldStatus)
	}
	t.mergedTo = &mainID
	t.mark(FieldMergedTo)
	t.touch()
	return changes, nil
}

// Escalate bumps the priority one step and stamps last_escalation.
func (t *Ticket) Escalate(now time.Time) (FieldChange, bool) {
	next := t.priority.Escalated()
	at := now.UTC()
	t.lastEscalation = &at
	t.mark(FieldLastEscalation)
	t.touch()
	if next == t.priority {
		return FieldChange{}, false
	}
	change := FieldChange{Field: FieldPriority, OldValue: t.priority.String(), NewValue: next.String()}
	t.priority = next
	t.mark(FieldPriority)
	return change, true
}

// EscalationDue reports whether escalateDays whole days have passed since
// the last escalation, or since creation when there was none.
func (t *Ticket) EscalationDue(escalateDays int, now time.Time) bool {
	if escalateDays <= 0 || t.onHold {
		return false
	}
	since := t.createdAt
	if t.lastEscalation != nil {
		since = *t.lastEscalation
	}
	return biztime.DaysBetween(since, now) >= escalateDays
}

// AgeDays is the number of business days since creation.
func (t *Ticket) AgeDays(now time.Time) int {
	return biztime.DaysBetween(t.createdAt, now)
}

func (t *Ticket) touch() {
	t.updatedAt = biztime.NowUTC()
}

func sameUint(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func uintString(v *uint) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func timeString(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
