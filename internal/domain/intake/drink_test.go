package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

func TestEffectiveVolume_Weights(t *testing.T) {
	tests := []struct {
		name   string
		drink  DrinkType
		rawMl  int
		wantMl int
	}{
		{"water counts in full", DrinkWater, 250, 250},
		{"tea counts at 80%", DrinkTea, 250, 200},
		{"coffee counts at 60%", DrinkCoffee, 200, 120},
		{"tea 300", DrinkTea, 300, 240},
		{"coffee rounds up past half", DrinkCoffee, 333, 200}, // 199.8
		{"tea rounds up past half", DrinkTea, 301, 241},       // 240.8
		{"coffee rounds down below half", DrinkCoffee, 202, 121}, // 121.2
		{"minimum volume", DrinkWater, 1, 1},
		{"maximum volume", DrinkWater, 5000, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EffectiveVolume(tt.rawMl, tt.drink)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMl, got.Int())
		})
	}
}

func TestEffectiveVolume_Rejects(t *testing.T) {
	_, err := EffectiveVolume(0, DrinkWater)
	assert.ErrorIs(t, err, shared.ErrInvalidVolume)

	_, err = EffectiveVolume(-250, DrinkTea)
	assert.ErrorIs(t, err, shared.ErrInvalidVolume)

	_, err = EffectiveVolume(5001, DrinkWater)
	assert.ErrorIs(t, err, shared.ErrInvalidVolume)

	_, err = EffectiveVolume(250, DrinkType("juice"))
	assert.ErrorIs(t, err, shared.ErrUnknownDrink)
}

func TestParseDrinkType(t *testing.T) {
	d, err := ParseDrinkType("Water")
	require.NoError(t, err)
	assert.Equal(t, DrinkWater, d)

	d, err = ParseDrinkType("  COFFEE ")
	require.NoError(t, err)
	assert.Equal(t, DrinkCoffee, d)

	_, err = ParseDrinkType("juice")
	assert.ErrorIs(t, err, shared.ErrUnknownDrink)

	_, err = ParseDrinkType("")
	assert.ErrorIs(t, err, shared.ErrUnknownDrink)
}

func TestDrinkWeights(t *testing.T) {
	assert.Equal(t, 1.0, DrinkWater.Weight())
	assert.Equal(t, 0.8, DrinkTea.Weight())
	assert.Equal(t, 0.6, DrinkCoffee.Weight())

	for _, d := range DrinkTypes() {
		assert.True(t, d.IsValid())
	}
	assert.False(t, DrinkType("soda").IsValid())
}
