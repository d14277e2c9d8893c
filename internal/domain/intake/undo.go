package intake

import (
	"context"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

// DefaultUndoWindow is how long after a commit the entry stays reversible.
const DefaultUndoWindow = 5 * time.Second

// UndoTicket is a short-lived capability bound to the most recent intake
// event of one user. State machine per user:
//
//	NONE -> ARMED(entryID, expiresAt) -> NONE (expiry or reversal)
//
// Arming always replaces any previous ticket; at most one ticket is live per
// user. Expiry is checked lazily against a wall-clock read at reversal time;
// no timer is held for an armed ticket.
type UndoTicket struct {
	UserID    shared.UserID
	EntryID   shared.EntryID
	LocalDate time.Time
	ExpiresAt time.Time
}

// NewUndoTicket arms a ticket for a freshly committed event.
func NewUndoTicket(ev *Event, committedAt time.Time, window time.Duration) UndoTicket {
	if window <= 0 {
		window = DefaultUndoWindow
	}
	return UndoTicket{
		UserID:    ev.UserID,
		EntryID:   ev.ID,
		LocalDate: ev.LocalDate,
		ExpiresAt: committedAt.Add(window),
	}
}

// Expired reports whether the ticket is past its window at the given instant.
func (t UndoTicket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Matches reports whether the ticket is live for the given entry at the given
// instant. Expiry or mismatch is the user-facing "too late" condition, never
// a fault.
func (t UndoTicket) Matches(entryID shared.EntryID, now time.Time) bool {
	return t.EntryID == entryID && !t.Expired(now)
}

// TicketStore holds at most one live undo ticket per user.
type TicketStore interface {
	// Arm stores the ticket, invalidating any previous one for the user.
	Arm(ctx context.Context, ticket UndoTicket) error

	// Take claims the user's ticket if it is live and matches the entry ID,
	// clearing it. The bool result is false on mismatch or expiry.
	Take(ctx context.Context, userID shared.UserID, entryID shared.EntryID, now time.Time) (UndoTicket, bool, error)

	// Peek returns the user's live ticket, if any, without clearing it.
	Peek(ctx context.Context, userID shared.UserID, now time.Time) (UndoTicket, bool, error)

	// Clear drops the user's ticket unconditionally.
	Clear(ctx context.Context, userID shared.UserID) error
}
