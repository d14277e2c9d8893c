package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUndoTicket_Window(t *testing.T) {
	committed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ev := &Event{ID: 7, UserID: 42}

	ticket := NewUndoTicket(ev, committed, 5*time.Second)

	assert.False(t, ticket.Expired(committed))
	assert.False(t, ticket.Expired(committed.Add(4999*time.Millisecond)))
	assert.True(t, ticket.Expired(committed.Add(5*time.Second)))
	assert.True(t, ticket.Expired(committed.Add(time.Minute)))
}

func TestUndoTicket_Matches(t *testing.T) {
	committed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ticket := NewUndoTicket(&Event{ID: 7, UserID: 42}, committed, 5*time.Second)

	assert.True(t, ticket.Matches(7, committed.Add(time.Second)))
	assert.False(t, ticket.Matches(8, committed.Add(time.Second)))
	assert.False(t, ticket.Matches(7, committed.Add(6*time.Second)))
}

func TestNewUndoTicket_DefaultWindow(t *testing.T) {
	committed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ticket := NewUndoTicket(&Event{ID: 7, UserID: 42}, committed, 0)
	assert.Equal(t, committed.Add(DefaultUndoWindow), ticket.ExpiresAt)
}
