package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkPaidAndUndo(t *testing.T) {
	now := time.Date(2025, 4, 1, 10, 30, 0, 0, time.UTC)

	effect, err := ApplyTransition(StatusPending, StatusPaid, now)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, effect.Status)
	assert.True(t, effect.SetPaidAt)
	require.NotNil(t, effect.PaidAt)
	assert.Equal(t, now, *effect.PaidAt)

	undo, err := ApplyTransition(StatusPaid, StatusPending, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, undo.Status)
	assert.True(t, undo.SetPaidAt)
	assert.Nil(t, undo.PaidAt)
}

func TestTransitionTable(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusDraft, StatusSent},
		{StatusDraft, StatusPending},
		{StatusSent, StatusPaid},
		{StatusPending, StatusOverdue},
		{StatusOverdue, StatusPaid},
		{StatusPending, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	rejected := []struct{ from, to Status }{
		{StatusCancelled, StatusPending},
		{StatusPaid, StatusOverdue},
		{StatusPaid, StatusCancelled},
		{StatusOverdue, StatusPending},
		{StatusPending, StatusPending},
	}
	for _, tc := range rejected {
		_, err := ApplyTransition(tc.from, tc.to, time.Now())
		var terr *TransitionError
		require.ErrorAs(t, err, &terr, "%s -> %s should be rejected", tc.from, tc.to)
		assert.Equal(t, tc.from, terr.From)
		assert.Equal(t, tc.to, terr.To)
	}
}

func TestApplyTransition_UnknownStatus(t *testing.T) {
	_, err := ApplyTransition(StatusPending, Status("archived"), time.Now())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusSent, StatusPending, StatusPaid, StatusOverdue, StatusCancelled} {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus(Status(StatusAll)))
	assert.False(t, ValidStatus(Status("unknown")))
}
