package ticket

import (
	"fmt"
	"strings"
)

// CC is an extra recipient of ticket updates, either a user or a bare
// email address.
type CC struct {
	id        uint
	ticketID  uint
	userID    *uint
	email     string
	canView   bool
	canUpdate bool
}

func NewCC(ticketID uint, userID *uint, email string, canView, canUpdate bool) (*CC, error) {
	email = strings.TrimSpace(email)
	if ticketID == 0 {
		return nil, fmt.Errorf("ticket ID is required")
	}
	if userID == nil && email == "" {
		return nil, fmt.Errorf("either a user or an email address is required")
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email address: %s", email)
	}
	return &CC{
		ticketID:  ticketID,
		userID:    userID,
		email:     email,
		canView:   canView,
		canUpdate: canUpdate,
	}, nil
}

func ReconstructCC(id, ticketID uint, userID *uint, email string, canView, canUpdate bool) *CC {
	return &CC{
		id:        id,
		ticketID:  ticketID,
		userID:    userID,
		email:     email,
		canView:   canView,
		canUpdate: canUpdate,
	}
}

func (c *CC) ID() uint {
	return c.id
}

func (c *CC) TicketID() uint {
	return c.ticketID
}

func (c *CC) UserID() *uint {
	return c.userID
}

// Email is the stored address. For user CCs the address is resolved from
// the user at notification time and this may be empty.
func (c *CC) Email() string {
	return c.email
}

func (c *CC) CanView() bool {
	return c.canView
}

func (c *CC) CanUpdate() bool {
	return c.canUpdate
}

func (c *CC) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("cc ID is already set")
	}
	c.id = id
	return nil
}

// Matches reports whether the CC refers to the given user or address.
func (c *CC) Matches(userID uint, email string) bool {
	if c.userID != nil && userID != 0 && *c.userID == userID {
		return true
	}
	return c.email != "" && email != "" && strings.EqualFold(c.email, strings.TrimSpace(email))
}

// MoveTo re-parents the CC, used when merging tickets.
func (c *CC) MoveTo(ticketID uint) {
	c.ticketID = ticketID
}
