// Package biztime resolves calendar days in the helpdesk's configured
// timezone. Storage stays in UTC.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const DefaultTimezone = "UTC"

var (
	mu          sync.RWMutex
	bizLocation = time.UTC
)

// Init sets the business timezone. An empty tz means UTC.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	mu.Lock()
	bizLocation = loc
	mu.Unlock()
	return nil
}

func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return bizLocation
}

func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfDayUTC is midnight of t's business day, expressed in UTC.
func StartOfDayUTC(t time.Time) time.Time {
	b := t.In(Location())
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, Location()).UTC()
}

// DaysBetween counts whole business days from since to now. Times on the
// same business day give 0.
func DaysBetween(since, now time.Time) int {
	from := StartOfDayUTC(since)
	to := StartOfDayUTC(now)
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from).Hours()+12) / 24
}

// ParseDate parses YYYY-MM-DD as business midnight in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q: %w", s, err)
	}
	return t.UTC(), nil
}
