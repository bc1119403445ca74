package valueobjects

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+'-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email is an address as the user typed it. Comparisons ignore case.
type Email struct {
	value string
}

func NewEmail(value string) (*Email, error) {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}

	if len(trimmed) > 254 {
		return nil, fmt.Errorf("email cannot exceed 254 characters")
	}

	if !emailRegex.MatchString(trimmed) {
		return nil, fmt.Errorf("invalid email format: %s", value)
	}

	return &Email{value: trimmed}, nil
}

func (e *Email) String() string {
	if e == nil {
		return ""
	}
	return e.value
}

// Normalized is the lower-cased form used for lookups.
func (e *Email) Normalized() string {
	return strings.ToLower(e.String())
}

func (e *Email) Equals(other *Email) bool {
	if e == nil || other == nil {
		return e == other
	}
	return strings.EqualFold(e.value, other.value)
}

func (e *Email) MatchesString(s string) bool {
	return e != nil && strings.EqualFold(e.value, strings.TrimSpace(s))
}

func (e *Email) Domain() string {
	parts := strings.Split(e.String(), "@")
	if len(parts) == 2 {
		return parts[1]
	}
	return ""
}
