// Package intake contains the intake ledger: weighted drink events, daily
// aggregation, and the time-boxed undo window. This is the write side of the
// hydration engine; everything derived (streaks, stats, calendar) lives in the
// progress package and is computed from this ledger.
package intake

import (
	"math"
	"strings"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

// DrinkType identifies what was drunk. Only part of a drink counts toward the
// hydration goal; the weight table below defines how much.
type DrinkType string

const (
	DrinkWater  DrinkType = "water"
	DrinkTea    DrinkType = "tea"
	DrinkCoffee DrinkType = "coffee"
)

// drinkWeights maps each drink type to its hydration weight. Adding a drink
// type is one entry here; nothing else changes.
var drinkWeights = map[DrinkType]float64{
	DrinkWater:  1.0,
	DrinkTea:    0.8,
	DrinkCoffee: 0.6,
}

// IsValid checks if the drink type is known.
func (d DrinkType) IsValid() bool {
	_, ok := drinkWeights[d]
	return ok
}

// Weight returns the hydration weight for the drink type.
func (d DrinkType) Weight() float64 {
	return drinkWeights[d]
}

// String returns the string representation.
func (d DrinkType) String() string {
	return string(d)
}

// ParseDrinkType parses a wire value into a DrinkType.
func ParseDrinkType(s string) (DrinkType, error) {
	d := DrinkType(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", shared.ErrUnknownDrink
	}
	return d, nil
}

// DrinkTypes returns all known drink types in a stable order.
func DrinkTypes() []DrinkType {
	return []DrinkType{DrinkWater, DrinkTea, DrinkCoffee}
}

// EffectiveVolume converts a raw volume into the volume counted toward the
// goal: round(raw * weight). Pure; fails before any ledger mutation.
func EffectiveVolume(rawMl int, drink DrinkType) (shared.Milliliters, error) {
	raw, err := shared.NewIntakeVolume(rawMl)
	if err != nil {
		return 0, err
	}
	if !drink.IsValid() {
		return 0, shared.ErrUnknownDrink
	}
	return shared.Milliliters(math.Round(float64(raw.Int()) * drink.Weight())), nil
}
