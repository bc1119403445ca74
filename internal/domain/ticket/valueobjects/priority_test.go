package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPriority(t *testing.T) {
	for v := 1; v <= 5; v++ {
		p, err := NewPriority(v)
		require.NoError(t, err)
		assert.Equal(t, v, p.Int())
	}

	_, err := NewPriority(0)
	assert.Error(t, err)
	_, err = NewPriority(6)
	assert.Error(t, err)
}

func TestPriority_Escalated(t *testing.T) {
	assert.Equal(t, PriorityNormal, PriorityLow.Escalated())
	assert.Equal(t, PriorityCritical, PriorityHigh.Escalated())
	assert.Equal(t, PriorityCritical, PriorityCritical.Escalated())
}

func TestPriority_Label(t *testing.T) {
	assert.Equal(t, "3. Normal", PriorityNormal.Label())
	assert.Equal(t, "9", Priority(9).Label())
}
