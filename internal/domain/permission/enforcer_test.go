package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectAndObjectNames(t *testing.T) {
	assert.Equal(t, "user:12", UserSubject(12))
	assert.Equal(t, "queue:billing", QueueObject("billing"))
}
