// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UserID represents a unique user identifier (the Telegram user ID for the
// Hydro Mini App, but the engine treats it as an opaque positive number).
type UserID int64

// IsValid checks if the user ID is valid (positive number).
func (u UserID) IsValid() bool {
	return u > 0
}

// Int64 returns the underlying int64 value.
func (u UserID) Int64() int64 {
	return int64(u)
}

// String returns the string representation.
func (u UserID) String() string {
	return fmt.Sprintf("%d", u)
}

// NewUserID creates a new UserID with validation.
func NewUserID(id int64) (UserID, error) {
	if id <= 0 {
		return 0, NewDomainError("shared", "NewUserID", ErrInvalidID, "user ID must be positive")
	}
	return UserID(id), nil
}

// EntryID identifies a single intake event within one user's ledger.
// IDs are assigned by the ledger, monotonically increasing per user.
type EntryID int64

// IsValid checks if the entry ID is valid.
func (e EntryID) IsValid() bool {
	return e > 0
}

// Int64 returns the underlying int64 value.
func (e EntryID) Int64() int64 {
	return int64(e)
}

// ═══════════════════════════════════════════════════════════════════════════
// Milliliters Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Milliliters represents a volume of liquid in whole milliliters.
type Milliliters int

const (
	// MinIntakeMl is the smallest volume a single intake event may carry.
	MinIntakeMl Milliliters = 1

	// MaxIntakeMl caps a single intake event (nobody drinks five liters in one go).
	MaxIntakeMl Milliliters = 5000
)

// IsValidIntake checks if the volume is acceptable for a single intake event.
func (m Milliliters) IsValidIntake() bool {
	return m >= MinIntakeMl && m <= MaxIntakeMl
}

// Int returns the underlying int value.
func (m Milliliters) Int() int {
	return int(m)
}

// Add returns the sum of two volumes.
func (m Milliliters) Add(other Milliliters) Milliliters {
	return m + other
}

// String returns a human-readable representation, e.g. "740 ml".
func (m Milliliters) String() string {
	return fmt.Sprintf("%d ml", int(m))
}

// NewIntakeVolume validates a raw volume for a single intake event.
func NewIntakeVolume(ml int) (Milliliters, error) {
	v := Milliliters(ml)
	if !v.IsValidIntake() {
		return 0, ErrInvalidVolume
	}
	return v, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Timezone Offset Value Object
// ═══════════════════════════════════════════════════════════════════════════

// TZOffsetMinutes is a client-supplied timezone offset in minutes east of UTC.
// Local-date bucketing must match the user's wall clock, not the server's.
type TZOffsetMinutes int

const (
	// MinTZOffset and MaxTZOffset bound real-world UTC offsets (-12:00..+14:00).
	MinTZOffset TZOffsetMinutes = -12 * 60
	MaxTZOffset TZOffsetMinutes = 14 * 60
)

// IsValid checks if the offset is within real-world bounds.
func (o TZOffsetMinutes) IsValid() bool {
	return o >= MinTZOffset && o <= MaxTZOffset
}

// Int returns the underlying minute count.
func (o TZOffsetMinutes) Int() int {
	return int(o)
}

// NewTZOffset creates a validated timezone offset.
func NewTZOffset(minutes int) (TZOffsetMinutes, error) {
	o := TZOffsetMinutes(minutes)
	if !o.IsValid() {
		return 0, NewDomainError("shared", "NewTZOffset", ErrValueOutOfRange, "timezone offset outside -12:00..+14:00")
	}
	return o, nil
}
