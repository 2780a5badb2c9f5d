// Package reward computes the XP and money credited when a PIREP is approved.
package reward

import (
	"github.com/shopspring/decimal"
)

const (
	XPPerHour          = 100
	SmoothLandingBonus = 50
	// SmoothLandingLimit is the vertical speed (fpm, absolute) below which the bonus applies.
	SmoothLandingLimit = 200
	MoneyPerHour       = 5000
)

// HourRule is a flight-duration bracket with its multiplier. Bounds are inclusive.
type HourRule struct {
	MinHours   decimal.Decimal
	MaxHours   decimal.Decimal
	Multiplier decimal.Decimal
}

// Input carries everything needed to price one flight.
type Input struct {
	AircraftMultiplier decimal.Decimal
	BaseMultiplier     decimal.Decimal
	// HourRules must already be ordered by multiplier, highest first.
	HourRules   []HourRule
	Hours       decimal.Decimal
	LandingRate int
}

// Result is the priced flight.
type Result struct {
	HourMultiplier  decimal.Decimal
	TotalMultiplier decimal.Decimal
	XP              int64
	Money           int64
}

var one = decimal.NewFromInt(1)

// SelectHourMultiplier returns the multiplier of the first rule whose bracket contains hours.
func SelectHourMultiplier(rules []HourRule, hours decimal.Decimal) decimal.Decimal {
	for _, r := range rules {
		if hours.GreaterThanOrEqual(r.MinHours) && hours.LessThanOrEqual(r.MaxHours) {
			return orOne(r.Multiplier)
		}
	}
	return one
}

// Compute prices a flight: total = aircraft x base x hour bracket.
func Compute(in Input) Result {
	hourMult := SelectHourMultiplier(in.HourRules, in.Hours)
	total := orOne(in.AircraftMultiplier).Mul(orOne(in.BaseMultiplier)).Mul(hourMult)

	xp := in.Hours.Mul(decimal.NewFromInt(XPPerHour)).Round(0).IntPart()
	if abs(in.LandingRate) < SmoothLandingLimit {
		xp += SmoothLandingBonus
	}

	money := in.Hours.Mul(decimal.NewFromInt(MoneyPerHour)).Mul(total).Round(0).IntPart()

	return Result{
		HourMultiplier:  hourMult,
		TotalMultiplier: total,
		XP:              xp,
		Money:           money,
	}
}

func orOne(d decimal.Decimal) decimal.Decimal {
	if !d.IsPositive() {
		return one
	}
	return d
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
