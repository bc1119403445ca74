package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry(3)

	for _, name := range []string{"default", "minimal", "kb", "", "KB"} {
		f, err := r.Get(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := r.Get("helpdesk.forms.CustomForm")
	assert.Error(t, err)
	assert.Error(t, r.Validate("default", "bogus"))
	assert.NoError(t, r.Validate("default", "minimal"))
	assert.Equal(t, []string{"default", "kb", "minimal"}, r.Names())
}

func TestDefaultForm_Clean(t *testing.T) {
	f, err := NewRegistry(3).Get("default")
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      Input
		staff   bool
		wantErr bool
	}{
		{"public complete", Input{QueueID: 1, Title: "Printer", Body: "jammed", SubmitterEmail: "a@example.com"}, false, false},
		{"public missing email", Input{QueueID: 1, Title: "Printer", Body: "jammed"}, false, true},
		{"public missing body", Input{QueueID: 1, Title: "Printer", SubmitterEmail: "a@example.com"}, false, true},
		{"staff without email", Input{QueueID: 1, Title: "Printer"}, true, false},
		{"missing queue", Input{Title: "Printer"}, true, true},
		{"bad priority", Input{QueueID: 1, Title: "Printer", Priority: 9}, true, true},
		{"bad email", Input{QueueID: 1, Title: "Printer", SubmitterEmail: "nope"}, true, true},
		{"bad cc", Input{QueueID: 1, Title: "Printer", CCEmails: []string{"x"}}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			err := f.Clean(&in, tt.staff)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, in.Priority)
		})
	}
}

func TestDefaultForm_PublicCannotAssign(t *testing.T) {
	f, err := NewRegistry(3).Get("default")
	require.NoError(t, err)
	owner := uint(4)
	in := Input{QueueID: 1, Title: "t", Body: "b", SubmitterEmail: "a@example.com", AssignedTo: &owner}
	require.NoError(t, f.Clean(&in, false))
	assert.Nil(t, in.AssignedTo)
}

func TestMinimalForm_DropsExtras(t *testing.T) {
	f, err := NewRegistry(2).Get("minimal")
	require.NoError(t, err)
	due := time.Now()
	in := Input{QueueID: 1, Title: "t", Body: "b", SubmitterEmail: "a@example.com", Priority: 1, DueDate: &due, CCEmails: []string{"c@example.com"}}
	require.NoError(t, f.Clean(&in, false))
	assert.Equal(t, 2, in.Priority)
	assert.Nil(t, in.DueDate)
	assert.Empty(t, in.CCEmails)
}

func TestKBForm_RequiresItem(t *testing.T) {
	f, err := NewRegistry(3).Get("kb")
	require.NoError(t, err)
	in := Input{QueueID: 1, Title: "t", Body: "b", SubmitterEmail: "a@example.com"}
	assert.Error(t, f.Clean(&in, false))
	item := uint(7)
	in.KBItemID = &item
	assert.NoError(t, f.Clean(&in, false))
}
