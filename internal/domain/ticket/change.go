package ticket

// TicketChange is a field-level diff recorded under one follow-up.
type TicketChange struct {
	id         uint
	followUpID uint
	field      string
	oldValue   string
	newValue   string
}

func ReconstructTicketChange(id, followUpID uint, field, oldValue, newValue string) *TicketChange {
	return &TicketChange{
		id:         id,
		followUpID: followUpID,
		field:      field,
		oldValue:   oldValue,
		newValue:   newValue,
	}
}

func (c *TicketChange) ID() uint {
	return c.id
}

func (c *TicketChange) FollowUpID() uint {
	return c.followUpID
}

func (c *TicketChange) Field() string {
	return c.field
}

func (c *TicketChange) OldValue() string {
	return c.oldValue
}

func (c *TicketChange) NewValue() string {
	return c.newValue
}

func (c *TicketChange) SetID(id uint) {
	if c.id == 0 {
		c.id = id
	}
}
