package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
)

func TestNewFollowUp(t *testing.T) {
	staff := uint(3)
	f, err := NewFollowUp(42, &staff, "Comment", "Rebooted the spooler", true, vo.StatusResolved, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusResolved, f.NewStatus())
	assert.True(t, f.IsPublic())
	assert.Nil(t, f.LastEdited())

	_, err = NewFollowUp(0, nil, "", "", false, "", 0)
	assert.Error(t, err)
	_, err = NewFollowUp(42, nil, "", "", false, "", -time.Minute)
	assert.Error(t, err)
}

func TestFollowUp_SetIDPropagatesToChildren(t *testing.T) {
	f, err := NewFollowUp(42, nil, "", "", true, "", 0)
	require.NoError(t, err)

	f.RecordChange(FieldChange{Field: FieldStatus, OldValue: "open", NewValue: "resolved"})
	att, err := NewAttachment("../../etc/report.pdf", "application/pdf", 12, "tickets/42/x-report.pdf")
	require.NoError(t, err)
	f.AddAttachment(att)

	require.NoError(t, f.SetID(9))
	assert.Equal(t, uint(9), f.Changes()[0].FollowUpID())
	assert.Equal(t, uint(9), f.Attachments()[0].FollowUpID())
	assert.Equal(t, "report.pdf", f.Attachments()[0].Filename())
	assert.Error(t, f.SetID(10))
}

func TestFollowUp_Edit(t *testing.T) {
	f, err := NewFollowUp(42, nil, "old", "old comment", false, vo.StatusResolved, 0)
	require.NoError(t, err)
	f.RecordChange(FieldChange{Field: FieldStatus, OldValue: "open", NewValue: "resolved"})

	require.NoError(t, f.Edit("new", "new comment", true, time.Hour))
	assert.Equal(t, "new comment", f.Comment())
	assert.True(t, f.IsPublic())
	assert.Equal(t, time.Hour, f.TimeSpent())
	assert.NotNil(t, f.LastEdited())
	assert.Len(t, f.Changes(), 1)
	assert.Equal(t, vo.StatusResolved, f.NewStatus())
}

func TestCC(t *testing.T) {
	_, err := NewCC(1, nil, "", true, false)
	assert.Error(t, err)
	_, err = NewCC(1, nil, "not-an-address", true, false)
	assert.Error(t, err)

	uid := uint(4)
	cc, err := NewCC(1, &uid, "", true, true)
	require.NoError(t, err)
	assert.True(t, cc.Matches(4, ""))
	assert.False(t, cc.Matches(5, "x@example.com"))

	byMail, err := NewCC(1, nil, "Carol@Example.com", true, false)
	require.NoError(t, err)
	assert.True(t, byMail.Matches(0, "carol@example.com"))
}
