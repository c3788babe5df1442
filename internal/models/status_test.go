package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{StatusPending, StatusUploaded, true},
		{StatusPending, StatusFailed, true},
		{StatusUploaded, StatusProcessing, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusFailed, StatusProcessing, true}, // operator re-enqueue path

		{StatusPending, StatusProcessing, false},
		{StatusUploaded, StatusCompleted, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusCompleted, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTransitionTo_CompletedIsTerminal(t *testing.T) {
	doc := &Document{Status: StatusCompleted}

	err := doc.TransitionTo(StatusProcessing)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusCompleted, doc.Status, "status must not be downgraded")
}

func TestTransitionTo_SelfTransitionIsNoop(t *testing.T) {
	doc := &Document{Status: StatusProcessing}
	require.NoError(t, doc.TransitionTo(StatusProcessing))
	assert.Equal(t, StatusProcessing, doc.Status)
}

func TestTransitionTo_FullLifecycle(t *testing.T) {
	doc := &Document{Status: StatusPending}
	require.NoError(t, doc.TransitionTo(StatusUploaded))
	require.NoError(t, doc.TransitionTo(StatusProcessing))
	require.NoError(t, doc.TransitionTo(StatusCompleted))
	assert.True(t, IsTerminal(doc.Status))
}
