package valueobjects

import (
	"fmt"
	"regexp"
	"strings"
)

type TicketStatus string

const (
	StatusOpen      TicketStatus = "open"
	StatusReopened  TicketStatus = "reopened"
	StatusResolved  TicketStatus = "resolved"
	StatusClosed    TicketStatus = "closed"
	StatusDuplicate TicketStatus = "duplicate"
)

var builtinLabels = map[TicketStatus]string{
	StatusOpen:      "Open",
	StatusReopened:  "Reopened",
	StatusResolved:  "Resolved",
	StatusClosed:    "Closed",
	StatusDuplicate: "Duplicate",
}

var builtinOrder = []TicketStatus{StatusOpen, StatusReopened, StatusResolved, StatusClosed, StatusDuplicate}

// builtinTransitions excludes extras; those are added per machine.
var builtinTransitions = map[TicketStatus][]TicketStatus{
	StatusOpen:      {StatusReopened, StatusResolved, StatusClosed, StatusDuplicate},
	StatusReopened:  {StatusResolved, StatusClosed, StatusDuplicate},
	StatusResolved:  {StatusReopened, StatusClosed},
	StatusClosed:    {StatusReopened},
	StatusDuplicate: {StatusReopened},
}

var extraNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,29}$`)

func (s TicketStatus) String() string {
	return string(s)
}

// ExtraStatus is a configured working state such as "waiting_on_customer".
type ExtraStatus struct {
	Name  string
	Label string
}

// StatusInfo describes one status for listings and forms.
type StatusInfo struct {
	Name      TicketStatus `json:"name"`
	Label     string       `json:"label"`
	OpenClass bool         `json:"open_class"`
}

// StatusMachine holds the built-in statuses plus the configured extras and
// answers transition questions.
type StatusMachine struct {
	extras map[TicketStatus]string
	order  []TicketStatus
}

// NewStatusMachine validates extras: names must be lowercase identifiers,
// unique, and must not shadow a built-in status.
func NewStatusMachine(extras []ExtraStatus) (*StatusMachine, error) {
	m := &StatusMachine{
		extras: make(map[TicketStatus]string, len(extras)),
		order:  append([]TicketStatus{}, builtinOrder...),
	}
	for _, e := range extras {
		name := TicketStatus(strings.TrimSpace(e.Name))
		if !extraNamePattern.MatchString(string(name)) {
			return nil, fmt.Errorf("invalid extra status name %q", e.Name)
		}
		if _, ok := builtinLabels[name]; ok {
			return nil, fmt.Errorf("extra status %q collides with a built-in status", name)
		}
		if _, ok := m.extras[name]; ok {
			return nil, fmt.Errorf("duplicate extra status %q", name)
		}
		label := strings.TrimSpace(e.Label)
		if label == "" {
			label = string(name)
		}
		m.extras[name] = label
		m.order = append(m.order, name)
	}
	return m, nil
}

// DefaultStatusMachine has no extras.
func DefaultStatusMachine() *StatusMachine {
	m, _ := NewStatusMachine(nil)
	return m
}

func (m *StatusMachine) IsKnown(s TicketStatus) bool {
	if _, ok := builtinLabels[s]; ok {
		return true
	}
	_, ok := m.extras[s]
	return ok
}

func (m *StatusMachine) IsExtra(s TicketStatus) bool {
	_, ok := m.extras[s]
	return ok
}

// Parse returns the status named by s.
func (m *StatusMachine) Parse(s string) (TicketStatus, error) {
	st := TicketStatus(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsKnown(st) {
		return "", fmt.Errorf("invalid ticket status: %s", s)
	}
	return st, nil
}

// IsOpenClass reports whether tickets in s still need work: open, reopened
// and every extra.
func (m *StatusMachine) IsOpenClass(s TicketStatus) bool {
	return s == StatusOpen || s == StatusReopened || m.IsExtra(s)
}

// OpenClassStatuses lists the open-class statuses in display order.
func (m *StatusMachine) OpenClassStatuses() []TicketStatus {
	var out []TicketStatus
	for _, s := range m.order {
		if m.IsOpenClass(s) {
			out = append(out, s)
		}
	}
	return out
}

func (m *StatusMachine) Label(s TicketStatus) string {
	if l, ok := builtinLabels[s]; ok {
		return l
	}
	if l, ok := m.extras[s]; ok {
		return l
	}
	return string(s)
}

func (m *StatusMachine) Statuses() []StatusInfo {
	out := make([]StatusInfo, 0, len(m.order))
	for _, s := range m.order {
		out = append(out, StatusInfo{Name: s, Label: m.Label(s), OpenClass: m.IsOpenClass(s)})
	}
	return out
}

// CanTransition reports whether from -> to is allowed. Staying on the same
// status is always allowed and is not a change. Non-staff actors may only
// confirm a resolution (resolved -> closed).
func (m *StatusMachine) CanTransition(from, to TicketStatus, staff bool) bool {
	if !m.IsKnown(to) {
		return false
	}
	if from == to {
		return true
	}
	if !staff {
		return from == StatusResolved && to == StatusClosed
	}
	if m.IsExtra(from) {
		return to == StatusResolved || to == StatusClosed || to == StatusDuplicate || m.IsExtra(to)
	}
	for _, allowed := range builtinTransitions[from] {
		if allowed == to {
			return true
		}
	}
	// open and reopened may enter any extra
	return (from == StatusOpen || from == StatusReopened) && m.IsExtra(to)
}

// Targets lists every status reachable from from, excluding from itself.
func (m *StatusMachine) Targets(from TicketStatus, staff bool) []TicketStatus {
	var out []TicketStatus
	for _, s := range m.order {
		if s != from && m.CanTransition(from, s, staff) {
			out = append(out, s)
		}
	}
	return out
}
