package intake

import (
	"sort"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// INTAKE EVENT
// ═══════════════════════════════════════════════════════════════════════════

// Event is a single logged drink. Immutable once committed past the undo
// window; owned exclusively by the ledger.
type Event struct {
	// ID is assigned by the ledger: monotonically increasing per user.
	ID shared.EntryID

	// UserID is the owner of the ledger this event belongs to.
	UserID shared.UserID

	// Timestamp is the UTC instant the drink was logged.
	Timestamp time.Time

	// LocalDate is the user's calendar day the event counts toward,
	// derived from Timestamp plus the client's timezone offset.
	LocalDate time.Time

	// Drink is the drink type.
	Drink DrinkType

	// RawMl is the volume as logged.
	RawMl shared.Milliliters

	// EffectiveMl is the weighted volume counted toward the goal.
	EffectiveMl shared.Milliliters
}

// NewEvent validates input and builds an un-persisted intake event.
// The ledger assigns the ID on append.
func NewEvent(userID shared.UserID, timestampUTC time.Time, tzOffsetMin shared.TZOffsetMinutes, drink DrinkType, rawMl int) (*Event, error) {
	if !userID.IsValid() {
		return nil, shared.NewDomainError("intake", "NewEvent", shared.ErrInvalidID, "user ID must be positive")
	}
	effective, err := EffectiveVolume(rawMl, drink)
	if err != nil {
		return nil, err
	}
	ts := timestampUTC.UTC()
	return &Event{
		UserID:      userID,
		Timestamp:   ts,
		LocalDate:   timeutil.LocalDay(ts, tzOffsetMin.Int()),
		Drink:       drink,
		RawMl:       shared.Milliliters(rawMl),
		EffectiveMl: effective,
	}, nil
}

// DayKey returns the canonical YYYY-MM-DD key of the event's local date.
func (e *Event) DayKey() string {
	return timeutil.DayKey(e.LocalDate)
}

// ═══════════════════════════════════════════════════════════════════════════
// DAILY RECORD
// ═══════════════════════════════════════════════════════════════════════════

// DailyRecord is one local day reduced from the ledger. Derived, never stored
// independently: recomputed from the events on every read.
type DailyRecord struct {
	// LocalDate is the calendar day this record covers.
	LocalDate time.Time

	// TotalMl is the sum of effective volumes for the day.
	TotalMl shared.Milliliters

	// GoalMl is the goal that was in effect on this day. Zero means the
	// goal was unknown; such a day never counts toward a streak.
	GoalMl shared.Milliliters

	// Entries are the day's events ordered by entry ID.
	Entries []Event
}

// AggregateDay reduces a day's events into its DailyRecord. A day with zero
// events yields TotalMl = 0, which is distinct from an unknown goal
// (GoalMl = 0).
func AggregateDay(localDate time.Time, goalMl shared.Milliliters, events []Event) DailyRecord {
	entries := make([]Event, len(events))
	copy(entries, events)
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	var total shared.Milliliters
	for i := range entries {
		total = total.Add(entries[i].EffectiveMl)
	}

	return DailyRecord{
		LocalDate: timeutil.Truncate(localDate),
		TotalMl:   total,
		GoalMl:    goalMl,
		Entries:   entries,
	}
}

// GoalMet reports whether the day counts as met: there was a known goal and
// the total reached it.
func (r DailyRecord) GoalMet() bool {
	return r.GoalMl > 0 && r.TotalMl >= r.GoalMl
}

// Ratio returns total/goal capped to [0, 2] for heat-map bucketing.
// Zero when the goal is unknown.
func (r DailyRecord) Ratio() float64 {
	if r.GoalMl <= 0 {
		return 0
	}
	ratio := float64(r.TotalMl) / float64(r.GoalMl)
	if ratio > 2 {
		return 2
	}
	return ratio
}

// DayKey returns the canonical YYYY-MM-DD key of the record's date.
func (r DailyRecord) DayKey() string {
	return timeutil.DayKey(r.LocalDate)
}
