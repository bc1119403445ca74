package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	require.NoError(t, Init("UTC"))

	base := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysBetween(base, base.Add(20*time.Minute).Add(-time.Hour)))
	assert.Equal(t, 1, DaysBetween(base, base.Add(time.Hour)))
	assert.Equal(t, 3, DaysBetween(base, base.Add(72*time.Hour)))
	assert.Equal(t, 0, DaysBetween(base.Add(48*time.Hour), base))
}

func TestDaysBetween_UsesBusinessTimezone(t *testing.T) {
	require.NoError(t, Init("Asia/Tokyo"))
	defer func() { _ = Init("UTC") }()

	// 14:00 and 16:00 UTC fall on different days in Tokyo (23:00 and 01:00).
	a := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(a, b))
}

func TestParseDate(t *testing.T) {
	require.NoError(t, Init("UTC"))
	got, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}

func TestInit_UnknownZone(t *testing.T) {
	assert.Error(t, Init("Mars/Olympus"))
}
