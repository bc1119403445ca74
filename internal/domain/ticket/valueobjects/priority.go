package valueobjects

import "fmt"

// Priority runs from 1 (critical) to 5 (very low).
type Priority int

const (
	PriorityCritical Priority = 1
	PriorityHigh     Priority = 2
	PriorityNormal   Priority = 3
	PriorityLow      Priority = 4
	PriorityVeryLow  Priority = 5
)

var priorityLabels = map[Priority]string{
	PriorityCritical: "1. Critical",
	PriorityHigh:     "2. High",
	PriorityNormal:   "3. Normal",
	PriorityLow:      "4. Low",
	PriorityVeryLow:  "5. Very Low",
}

func NewPriority(v int) (Priority, error) {
	p := Priority(v)
	if !p.IsValid() {
		return 0, fmt.Errorf("invalid priority: %d", v)
	}
	return p, nil
}

func (p Priority) IsValid() bool {
	return p >= PriorityCritical && p <= PriorityVeryLow
}

func (p Priority) Int() int {
	return int(p)
}

func (p Priority) String() string {
	return fmt.Sprintf("%d", int(p))
}

func (p Priority) Label() string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return p.String()
}

// Escalated moves one step towards critical and stops there.
func (p Priority) Escalated() Priority {
	if p <= PriorityCritical {
		return PriorityCritical
	}
	return p - 1
}
