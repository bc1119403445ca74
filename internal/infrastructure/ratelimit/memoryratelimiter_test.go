package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRateLimiter(t *testing.T) {
	l := NewMemoryRateLimiter()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "k", 3, time.Minute)
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "other", 3, time.Minute)
	assert.True(t, ok)

	now = now.Add(61 * time.Second)
	ok, _ = l.Allow(ctx, "k", 3, time.Minute)
	assert.True(t, ok, "window slid past the earlier attempts")

	require.NoError(t, l.Reset(ctx, "k"))
	assert.Empty(t, l.attempts["k"])

	ok, _ = l.Allow(ctx, "k", 0, time.Minute)
	assert.True(t, ok)
}
