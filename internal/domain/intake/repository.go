package intake

import (
	"context"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

// Repository is the persistence boundary for the intake ledger.
//
// Implementations must keep each user's ledger sequentially consistent:
// Append either fully succeeds and is visible to subsequent reads, or fails
// and leaves state unchanged. The engine performs no retries; those belong to
// the storage collaborator.
type Repository interface {
	// Append persists the event, assigning the next monotonically
	// increasing entry ID for the user, and returns the stored event.
	Append(ctx context.Context, ev *Event) (*Event, error)

	// Delete removes one event (the undo compensating transaction).
	// Returns shared.ErrEntryNotFound if the entry does not exist.
	Delete(ctx context.Context, userID shared.UserID, entryID shared.EntryID) error

	// EventsByDate returns the user's events for one local calendar day,
	// ordered by entry ID.
	EventsByDate(ctx context.Context, userID shared.UserID, localDate time.Time) ([]Event, error)

	// DailyTotals returns effective-ml sums per day key (YYYY-MM-DD) for
	// local dates in [from, to]. Days without events are absent from the map.
	DailyTotals(ctx context.Context, userID shared.UserID, from, to time.Time) (map[string]shared.Milliliters, error)

	// FirstDay returns the earliest local date with any event for the user.
	// The bool result is false for an empty ledger.
	FirstDay(ctx context.Context, userID shared.UserID) (time.Time, bool, error)
}
