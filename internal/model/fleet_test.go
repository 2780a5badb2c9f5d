package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteFlightMaintenanceEveryThirdFlight(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := &FleetAircraft{Status: FleetInFlight}

	for i := 1; i <= 9; i++ {
		a.Status = FleetInFlight
		started := a.CompleteFlight(decimal.NewFromFloat(1.5), now, true)

		if i%3 == 0 {
			assert.True(t, started, "flight %d should trigger maintenance", i)
			assert.Equal(t, FleetMaintenance, a.Status)
			require.NotNil(t, a.MaintenanceUntil)
			assert.Equal(t, now.Add(2*time.Hour), *a.MaintenanceUntil)
			a.ReleaseIfDue(now.Add(3 * time.Hour))
		} else {
			assert.False(t, started, "flight %d must not trigger maintenance", i)
			assert.Equal(t, FleetIdle, a.Status)
		}
	}

	assert.Equal(t, 9, a.TotalFlights)
	assert.True(t, decimal.NewFromFloat(13.5).Equal(a.TotalHours))
}

func TestCompleteFlightKeepsChainReservation(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := &FleetAircraft{Status: FleetInFlight}

	assert.False(t, a.CompleteFlight(decimal.NewFromInt(1), now, false))
	assert.Equal(t, FleetInFlight, a.Status, "more legs to fly")

	assert.False(t, a.CompleteFlight(decimal.NewFromInt(1), now, true))
	assert.Equal(t, FleetIdle, a.Status)

	assert.True(t, a.CompleteFlight(decimal.NewFromInt(1), now, false), "maintenance wins over the reservation")
	assert.Equal(t, FleetMaintenance, a.Status)
}

func TestReleaseIfDue(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(time.Hour)
	a := &FleetAircraft{Status: FleetMaintenance, MaintenanceUntil: &until}

	assert.False(t, a.ReleaseIfDue(now))
	assert.Equal(t, FleetMaintenance, a.Status)

	assert.True(t, a.ReleaseIfDue(until))
	assert.Equal(t, FleetIdle, a.Status)
	assert.Nil(t, a.MaintenanceUntil)

	assert.False(t, a.ReleaseIfDue(until), "idle aircraft is not released again")
}

func TestReleaseIfDueWithoutDeadline(t *testing.T) {
	a := &FleetAircraft{Status: FleetMaintenance}
	assert.True(t, a.ReleaseIfDue(time.Now()))
}
