package career

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func route(num, dep, arr string, minutes int) CatalogRoute {
	return CatalogRoute{ID: uuid.New(), FlightNumber: num, Departure: dep, Arrival: arr, DurationMinutes: minutes}
}

func assertClosedChain(t *testing.T, base string, legs []Leg) {
	t.Helper()
	require.NotEmpty(t, legs)
	assert.Equal(t, base, legs[0].Departure, "first leg must depart base")
	assert.Equal(t, base, legs[len(legs)-1].Arrival, "last leg must return to base")
	for i := 1; i < len(legs); i++ {
		assert.Equal(t, legs[i-1].Arrival, legs[i].Departure, "leg %d does not chain", i+1)
	}
	for i, l := range legs {
		assert.Equal(t, i+1, l.Number)
		assert.GreaterOrEqual(t, l.DistanceNM, MinDistanceNM)
	}
}

func TestBuildChainEmptyCatalog(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	legs := BuildChain(rng, "EGLL", 4, nil)

	require.Len(t, legs, 1)
	assert.True(t, legs[0].Synthetic)
	assert.Equal(t, SyntheticDurationMinutes, legs[0].DurationMinutes)
	assertClosedChain(t, "EGLL", legs)
}

func TestBuildChainUsesReturnRoute(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := []CatalogRoute{
		route("BA1", "EGLL", "LFPG", 70),
		route("BA2", "LFPG", "EGLL", 75),
	}

	legs := BuildChain(rng, "EGLL", 2, pool)

	require.Len(t, legs, 2)
	assert.Equal(t, "BA1", legs[0].FlightNumber)
	assert.Equal(t, "BA2", legs[1].FlightNumber)
	assert.False(t, legs[1].Synthetic)
	assert.NotNil(t, legs[1].CatalogID)
	assertClosedChain(t, "EGLL", legs)
}

func TestBuildChainSyntheticClosingLeg(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pool := []CatalogRoute{
		route("BA1", "EGLL", "LFPG", 70),
		route("AF9", "LFPG", "LIRF", 120),
	}

	legs := BuildChain(rng, "EGLL", 3, pool)

	require.Len(t, legs, 3)
	assert.Equal(t, "LIRF", legs[2].Departure)
	assert.True(t, legs[2].Synthetic)
	assert.Nil(t, legs[2].CatalogID)
	assert.Equal(t, "EGLL-RTN", legs[2].FlightNumber)
	assertClosedChain(t, "EGLL", legs)
}

func TestBuildChainStopsWhenNoOutbound(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	pool := []CatalogRoute{route("BA1", "EGLL", "LFPG", 70)}

	legs := BuildChain(rng, "EGLL", 5, pool)

	require.Len(t, legs, 2)
	assert.True(t, legs[1].Synthetic)
	assertClosedChain(t, "EGLL", legs)
}

func TestBuildChainDoesNotReuseEntries(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	pool := []CatalogRoute{
		route("X1", "KJFK", "KBOS", 60),
		route("X2", "KBOS", "KJFK", 60),
	}

	// Closing back at base after the first hop ends the chain early.
	legs := BuildChain(rng, "KJFK", 5, pool)
	require.Len(t, legs, 2)

	seen := map[uuid.UUID]bool{}
	for _, l := range legs {
		if l.CatalogID == nil {
			continue
		}
		assert.False(t, seen[*l.CatalogID], "catalog entry reused")
		seen[*l.CatalogID] = true
	}
	assertClosedChain(t, "KJFK", legs)
}

func TestBuildChainNormalizesCodes(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	pool := []CatalogRoute{route("L1", " egll", "lfpg ", 60), route("L2", "LFPG", "EGLL", 60)}

	legs := BuildChain(rng, "egll", 2, pool)

	assertClosedChain(t, "EGLL", legs)
	assert.False(t, legs[1].Synthetic)
}

func TestBuildChainAlwaysClosesForRandomCatalogs(t *testing.T) {
	airports := []string{"EGLL", "LFPG", "EDDF", "EHAM", "LEMD", "LIRF", "KJFK"}

	for seed := int64(0); seed < 200; seed++ {
		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			pool := make([]CatalogRoute, 0, 20)
			for i := 0; i < rng.Intn(20); i++ {
				dep := airports[rng.Intn(len(airports))]
				arr := airports[rng.Intn(len(airports))]
				pool = append(pool, route(fmt.Sprintf("R%d", i), dep, arr, 30+rng.Intn(400)))
			}
			base := airports[rng.Intn(len(airports))]
			n := RandomLegCount(rng)

			legs := BuildChain(rng, base, n, pool)

			assert.LessOrEqual(t, len(legs), n)
			assertClosedChain(t, base, legs)
		})
	}
}

func TestRandomLegCountRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		n := RandomLegCount(rng)
		assert.GreaterOrEqual(t, n, MinLegs)
		assert.LessOrEqual(t, n, MaxLegs)
		seen[n] = true
	}
	assert.Len(t, seen, MaxLegs-MinLegs+1)
}

func TestEstimateDistanceNM(t *testing.T) {
	assert.Equal(t, MinDistanceNM, EstimateDistanceNM(0))
	assert.Equal(t, MinDistanceNM, EstimateDistanceNM(5))
	assert.Equal(t, 450, EstimateDistanceNM(60))
	assert.Equal(t, 900, EstimateDistanceNM(SyntheticDurationMinutes))
	assert.Equal(t, 225, EstimateDistanceNM(30))
}
