// Package career builds the cyclic multi-leg assignments handed to pilots.
//
// A chain starts at the pilot's home base, hops between catalog routes where the
// arrival of one leg is the departure of the next, and always returns to the base.
// When the catalog cannot close the loop a synthetic leg is generated instead of failing.
package career

import (
	"math"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

const (
	MinLegs = 2
	MaxLegs = 5

	// SyntheticDurationMinutes is the placeholder block time of a generated closing leg.
	SyntheticDurationMinutes = 120

	CruiseSpeedKts = 450
	MinDistanceNM  = 50
)

// CatalogRoute is one entry of the route pool a chain is drawn from.
type CatalogRoute struct {
	ID              uuid.UUID
	FlightNumber    string
	Departure       string
	Arrival         string
	DurationMinutes int
}

// Leg is one segment of a built chain, numbered from 1.
type Leg struct {
	Number          int
	FlightNumber    string
	Departure       string
	Arrival         string
	DurationMinutes int
	DistanceNM      int
	CatalogID       *uuid.UUID
	Synthetic       bool
}

// RandomLegCount picks a target chain length in [MinLegs, MaxLegs].
func RandomLegCount(rng *rand.Rand) int {
	return MinLegs + rng.Intn(MaxLegs-MinLegs+1)
}

// EstimateDistanceNM converts block time to a great-circle-ish distance at cruise speed.
func EstimateDistanceNM(minutes int) int {
	d := int(math.Round(float64(minutes) / 60 * CruiseSpeedKts))
	if d < MinDistanceNM {
		return MinDistanceNM
	}
	return d
}

// BuildChain greedily assembles a chain of at most legs legs that departs and returns to base.
// The pool is not modified.
func BuildChain(rng *rand.Rand, base string, legs int, pool []CatalogRoute) []Leg {
	base = normalizeICAO(base)
	if legs < 1 {
		legs = 1
	}

	remaining := make([]CatalogRoute, len(pool))
	copy(remaining, pool)

	chain := make([]Leg, 0, legs)
	current := base

	for i := 0; i < legs-1; i++ {
		idx := pickOutbound(rng, remaining, current, base)
		if idx < 0 {
			break
		}

		r := remaining[idx]
		remaining = append(remaining[:idx], remaining[idx+1:]...)
		chain = append(chain, legFromCatalog(len(chain)+1, r))
		current = normalizeICAO(r.Arrival)

		if current == base {
			// loop closed early
			return chain
		}
	}

	if idx := findRoute(remaining, current, base); idx >= 0 {
		return append(chain, legFromCatalog(len(chain)+1, remaining[idx]))
	}

	return append(chain, syntheticLeg(len(chain)+1, current, base))
}

// pickOutbound returns the index of a random route departing from, preferring ones that
// do not arrive back at base. It returns -1 when nothing departs from.
func pickOutbound(rng *rand.Rand, pool []CatalogRoute, from, base string) int {
	var onward, closing []int
	for i, r := range pool {
		if normalizeICAO(r.Departure) != from {
			continue
		}
		if normalizeICAO(r.Arrival) == base {
			closing = append(closing, i)
		} else {
			onward = append(onward, i)
		}
	}

	switch {
	case len(onward) > 0:
		return onward[rng.Intn(len(onward))]
	case len(closing) > 0:
		return closing[rng.Intn(len(closing))]
	default:
		return -1
	}
}

func findRoute(pool []CatalogRoute, from, to string) int {
	for i, r := range pool {
		if normalizeICAO(r.Departure) == from && normalizeICAO(r.Arrival) == to {
			return i
		}
	}
	return -1
}

func legFromCatalog(n int, r CatalogRoute) Leg {
	id := r.ID
	return Leg{
		Number:          n,
		FlightNumber:    r.FlightNumber,
		Departure:       normalizeICAO(r.Departure),
		Arrival:         normalizeICAO(r.Arrival),
		DurationMinutes: r.DurationMinutes,
		DistanceNM:      EstimateDistanceNM(r.DurationMinutes),
		CatalogID:       &id,
	}
}

func syntheticLeg(n int, from, to string) Leg {
	return Leg{
		Number:          n,
		FlightNumber:    to + "-RTN",
		Departure:       from,
		Arrival:         to,
		DurationMinutes: SyntheticDurationMinutes,
		DistanceNM:      EstimateDistanceNM(SyntheticDurationMinutes),
		Synthetic:       true,
	}
}

func normalizeICAO(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
