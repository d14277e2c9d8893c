package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
)

func armedTicket(t *testing.T, store *TicketStore, ml int, committed time.Time) intake.UndoTicket {
	t.Helper()
	ev, err := intake.NewEvent(42, committed, 0, intake.DrinkWater, ml)
	require.NoError(t, err)
	ev.ID = 1

	ticket := intake.NewUndoTicket(ev, committed, 5*time.Second)
	require.NoError(t, store.Arm(context.Background(), ticket))
	return ticket
}

func TestTicketStore_TakeConsumes(t *testing.T) {
	store := NewTicketStore()
	ctx := context.Background()
	committed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ticket := armedTicket(t, store, 250, committed)

	got, ok, err := store.Take(ctx, 42, ticket.EntryID, committed.Add(2*time.Second))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ticket.EntryID, got.EntryID)

	_, ok, err = store.Take(ctx, 42, ticket.EntryID, committed.Add(3*time.Second))
	require.NoError(t, err)
	assert.False(t, ok, "a ticket is single use")
}

func TestTicketStore_TakeExpired(t *testing.T) {
	store := NewTicketStore()
	ctx := context.Background()
	committed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ticket := armedTicket(t, store, 250, committed)

	_, ok, err := store.Take(ctx, 42, ticket.EntryID, committed.Add(5*time.Second))
	require.NoError(t, err)
	assert.False(t, ok, "the window is closed exactly at expiry")
}

func TestTicketStore_TakeWrongEntry(t *testing.T) {
	store := NewTicketStore()
	ctx := context.Background()
	committed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ticket := armedTicket(t, store, 250, committed)

	_, ok, err := store.Take(ctx, 42, ticket.EntryID+1, committed.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	// A mismatched take does not burn the live ticket.
	_, ok, err = store.Take(ctx, 42, ticket.EntryID, committed.Add(2*time.Second))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTicketStore_ArmReplaces(t *testing.T) {
	store := NewTicketStore()
	ctx := context.Background()
	committed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	first := armedTicket(t, store, 250, committed)

	ev, err := intake.NewEvent(42, committed.Add(time.Second), 0, intake.DrinkTea, 300)
	require.NoError(t, err)
	ev.ID = 2
	second := intake.NewUndoTicket(ev, committed.Add(time.Second), 5*time.Second)
	require.NoError(t, store.Arm(ctx, second))

	_, ok, err := store.Take(ctx, 42, first.EntryID, committed.Add(2*time.Second))
	require.NoError(t, err)
	assert.False(t, ok, "arming supersedes the previous ticket")

	_, ok, err = store.Take(ctx, 42, second.EntryID, committed.Add(2*time.Second))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTicketStore_PeekAndClear(t *testing.T) {
	store := NewTicketStore()
	ctx := context.Background()
	committed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ticket := armedTicket(t, store, 250, committed)

	got, ok, err := store.Peek(ctx, 42, committed.Add(time.Second))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ticket.EntryID, got.EntryID)

	// Peek does not consume.
	_, ok, err = store.Peek(ctx, 42, committed.Add(2*time.Second))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Clear(ctx, 42))
	_, ok, err = store.Peek(ctx, 42, committed.Add(3*time.Second))
	require.NoError(t, err)
	assert.False(t, ok)
}
