package reward

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var rules = []HourRule{
	{MinHours: d("8"), MaxHours: d("24"), Multiplier: d("2.0")},
	{MinHours: d("3"), MaxHours: d("10"), Multiplier: d("1.5")},
	{MinHours: d("0"), MaxHours: d("3"), Multiplier: d("1.0")},
}

func TestSelectHourMultiplier(t *testing.T) {
	tests := []struct {
		hours string
		want  string
	}{
		{"1.5", "1"},
		{"3", "1.5"}, // both 1.5 and 1.0 brackets match, highest listed first wins
		{"9", "2"},
		{"24", "2"},
		{"30", "1"},
	}
	for _, tt := range tests {
		got := SelectHourMultiplier(rules, d(tt.hours))
		assert.True(t, d(tt.want).Equal(got), "hours=%s got %s", tt.hours, got)
	}
}

func TestComputeFormula(t *testing.T) {
	res := Compute(Input{
		AircraftMultiplier: d("1.2"),
		BaseMultiplier:     d("1.1"),
		HourRules:          rules,
		Hours:              d("4.5"),
		LandingRate:        -150,
	})

	assert.True(t, d("1.5").Equal(res.HourMultiplier))
	assert.True(t, d("1.98").Equal(res.TotalMultiplier), res.TotalMultiplier.String())
	assert.Equal(t, int64(450+50), res.XP)
	assert.Equal(t, int64(44550), res.Money) // 4.5 * 5000 * 1.98
}

func TestComputeHardLandingNoBonus(t *testing.T) {
	res := Compute(Input{Hours: d("1.234"), LandingRate: -200})

	assert.Equal(t, int64(123), res.XP)
	assert.Equal(t, int64(6170), res.Money)
	assert.True(t, d("1").Equal(res.TotalMultiplier))
}

func TestComputePositiveLandingRateStillCountsAbsolute(t *testing.T) {
	res := Compute(Input{Hours: d("1"), LandingRate: 199})
	assert.Equal(t, int64(150), res.XP)
}

func TestComputeMissingMultipliersDefaultToOne(t *testing.T) {
	res := Compute(Input{
		AircraftMultiplier: decimal.Zero,
		BaseMultiplier:     d("-3"),
		Hours:              d("2"),
		LandingRate:        -500,
	})
	assert.True(t, d("1").Equal(res.TotalMultiplier))
	assert.Equal(t, int64(10000), res.Money)
}

func TestComputeMonotonicInEachFactor(t *testing.T) {
	base := Input{AircraftMultiplier: d("1.0"), BaseMultiplier: d("1.0"), HourRules: rules, Hours: d("2"), LandingRate: -300}
	ref := Compute(base).Money

	up := base
	up.AircraftMultiplier = d("1.3")
	assert.Greater(t, Compute(up).Money, ref)

	up = base
	up.BaseMultiplier = d("1.3")
	assert.Greater(t, Compute(up).Money, ref)

	up = base
	up.HourRules = []HourRule{{MinHours: d("0"), MaxHours: d("5"), Multiplier: d("1.3")}}
	assert.Greater(t, Compute(up).Money, ref)
}

func TestComputeReproducible(t *testing.T) {
	in := Input{AircraftMultiplier: d("1.15"), BaseMultiplier: d("0.9"), HourRules: rules, Hours: d("7.75"), LandingRate: -95}
	assert.Equal(t, Compute(in), Compute(in))
}
