package service

import (
	"context"
	"testing"
	"time"

	"vaops/internal/events"
	"vaops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dispatchedLeg assigns a chain to the pilot and dispatches its first leg.
func dispatchedLeg(t *testing.T, h *harness, pilotID, aircraftID uuid.UUID) (*CareerAssignment, DispatchLegResponse) {
	t.Helper()
	out, err := h.careers.AutoAssign(context.Background(), pilotID, AutoAssignRequest{AircraftID: &aircraftID})
	require.NoError(t, err)
	leg, err := h.dispatch.DispatchLeg(context.Background(), pilotID, out.Legs[0].ID, DispatchLegRequest{})
	require.NoError(t, err)
	return out, *leg
}

func filed(t *testing.T, h *harness, pilotID, legID uuid.UUID) *PirepResponse {
	t.Helper()
	p, err := h.pireps.File(context.Background(), pilotID, FilePirepRequest{
		DispatchLegID: &legID,
		FlightHours:   decimal.RequireFromString("1.5"),
		LandingRate:   -150,
		FuelUsed:      2400,
	})
	require.NoError(t, err)
	return p
}

func TestFilePirepFromLegDefaultsFields(t *testing.T) {
	h := newHarness(t)
	pilot, ac, _ := seedEGLL(h)
	_, leg := dispatchedLeg(t, h, pilot.ID, ac.ID)

	p := filed(t, h, pilot.ID, leg.ID)

	assert.Equal(t, model.StatusPending, p.Status)
	assert.Equal(t, leg.FlightNumber, p.FlightNumber)
	assert.Equal(t, "EGLL", p.DepartureICAO)
	assert.Equal(t, leg.Arrival, p.ArrivalICAO)
	assert.Equal(t, ac.ID, p.AircraftID)
	assert.Equal(t, "A320", p.AircraftType)
	assert.NotNil(t, p.FleetAircraftID)
	assert.Equal(t, model.LegAwaitingApproval, h.db.leg(leg.ID).Status)
	assert.Contains(t, h.notifier.types(), events.PirepFiled)
}

func TestFilePirepValidation(t *testing.T) {
	h := newHarness(t)
	pilot, ac, _ := seedEGLL(h)
	ctx := context.Background()

	for _, hours := range []string{"0", "-1", "24.5"} {
		_, err := h.pireps.File(ctx, pilot.ID, FilePirepRequest{
			FlightNumber: "BAW1", DepartureICAO: "EGLL", ArrivalICAO: "LFPG", AircraftID: &ac.ID,
			FlightHours: decimal.RequireFromString(hours),
		})
		assert.ErrorIs(t, err, ErrValidation, "hours=%s", hours)
	}

	_, err := h.pireps.File(ctx, pilot.ID, FilePirepRequest{FlightHours: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrValidation, "manual report needs route and aircraft")

	p, err := h.pireps.File(ctx, pilot.ID, FilePirepRequest{
		FlightNumber: "baw1", DepartureICAO: "egll", ArrivalICAO: "lfpg", AircraftID: &ac.ID,
		FlightHours: decimal.RequireFromString("1.256"),
	})
	require.NoError(t, err)
	assert.Equal(t, "BAW1", p.FlightNumber)
	assert.True(t, decimal.RequireFromString("1.26").Equal(p.FlightHours))
	assert.Nil(t, p.DispatchLegID)
}

func TestFilePirepRejectsLegsNotReadyOrForeign(t *testing.T) {
	h := newHarness(t)
	pilot, ac, _ := seedEGLL(h)
	other := h.db.addPilot("goose", "EGLL", true)
	ctx := context.Background()

	out, err := h.careers.AutoAssign(ctx, pilot.ID, AutoAssignRequest{AircraftID: &ac.ID})
	require.NoError(t, err)
	legID := out.Legs[0].ID

	_, err = h.pireps.File(ctx, pilot.ID, FilePirepRequest{DispatchLegID: &legID, FlightHours: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrInvalidState, "leg is only assigned")

	_, err = h.dispatch.DispatchLeg(ctx, pilot.ID, legID, DispatchLegRequest{})
	require.NoError(t, err)

	_, err = h.pireps.File(ctx, other.ID, FilePirepRequest{DispatchLegID: &legID, FlightHours: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrNotFound)

	filed(t, h, pilot.ID, legID)
	_, err = h.pireps.File(ctx, pilot.ID, FilePirepRequest{DispatchLegID: &legID, FlightHours: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrInvalidState, "leg already awaiting approval")
}

func TestApprovePirepCreditsPilotOnce(t *testing.T) {
	h := newHarness(t)
	pilot, ac, frame := seedEGLL(h)
	admin := h.db.addPilot("ops", "EGLL", true)
	require.NoError(t, fakeHourRules{h.db}.Create(context.Background(), &model.FlightHourMultiplier{
		Name: "short", MinHours: decimal.Zero, MaxHours: decimal.NewFromInt(3), Multiplier: decimal.RequireFromString("1.5"), IsActive: true,
	}))
	_, leg := dispatchedLeg(t, h, pilot.ID, ac.ID)
	p := filed(t, h, pilot.ID, leg.ID)

	approved, err := h.pireps.Approve(context.Background(), p.ID, admin.ID)
	require.NoError(t, err)

	// 1.2 aircraft x 1.1 base x 1.5 hour bracket
	require.NotNil(t, approved.Multiplier)
	assert.True(t, decimal.RequireFromString("1.98").Equal(*approved.Multiplier), approved.Multiplier.String())
	assert.Equal(t, int64(150+50), approved.XPEarned)
	assert.Equal(t, int64(14850), approved.MoneyEarned)
	assert.Equal(t, model.StatusApproved, approved.Status)
	assert.Equal(t, &admin.ID, approved.ReviewedBy)

	assert.Equal(t, model.LegCompleted, h.db.leg(leg.ID).Status)
	assert.NotNil(t, h.db.leg(leg.ID).CompletedAt)

	credited := h.db.profile(pilot.ID)
	assert.Equal(t, int64(200), credited.XP)
	assert.Equal(t, int64(14850), credited.Money)
	assert.Equal(t, 1, credited.TotalFlights)
	assert.True(t, decimal.RequireFromString("1.5").Equal(credited.TotalHours))

	airframe := h.db.airframe(frame.ID)
	assert.Equal(t, 1, airframe.TotalFlights)
	assert.Equal(t, model.FleetInFlight, airframe.Status, "the return leg is still to be flown")
	assert.Equal(t, leg.Arrival, airframe.LocationICAO)

	_, err = h.pireps.Approve(context.Background(), p.ID, admin.ID)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Equal(t, int64(14850), h.db.profile(pilot.ID).Money, "second approval must not pay again")

	assert.Contains(t, h.db.auditActions(), model.ActionApprovePirep)
	assert.Contains(t, h.notifier.types(), events.PirepApproved)
}

func TestApproveKeepsAirframeUntilChainIsFlown(t *testing.T) {
	h := newHarness(t)
	pilot, ac, frame := seedEGLL(h)
	admin := h.db.addPilot("ops", "EGLL", true)
	ctx := context.Background()

	out, first := dispatchedLeg(t, h, pilot.ID, ac.ID)
	require.Len(t, out.Legs, 2)
	assert.Equal(t, "G-EUUB", out.FleetRegistration)

	_, err := h.pireps.Approve(ctx, filed(t, h, pilot.ID, first.ID).ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FleetInFlight, h.db.airframe(frame.ID).Status)

	// another pilot at the same base must not be handed the airframe mid-chain
	other := h.db.addPilot("iceman", "EGLL", true)
	theirs, err := h.careers.AutoAssign(ctx, other.ID, AutoAssignRequest{AircraftID: &ac.ID})
	require.NoError(t, err)
	assert.Equal(t, "G-EUUA", theirs.FleetRegistration)

	last, err := h.dispatch.DispatchLeg(ctx, pilot.ID, out.Legs[1].ID, DispatchLegRequest{})
	require.NoError(t, err)
	_, err = h.pireps.Approve(ctx, filed(t, h, pilot.ID, last.ID).ID, admin.ID)
	require.NoError(t, err)

	airframe := h.db.airframe(frame.ID)
	assert.Equal(t, 2, airframe.TotalFlights)
	assert.Equal(t, model.FleetIdle, airframe.Status)
	assert.Equal(t, "EGLL", airframe.LocationICAO)
}

func TestApproveStartsMaintenanceEveryThirdFlight(t *testing.T) {
	h := newHarness(t)
	pilot := h.db.addPilot("maverick", "EGLL", true)
	admin := h.db.addPilot("ops", "EGLL", true)
	ac := h.db.addAircraft("B738", "B737", "1", 0)
	h.db.addRoute("RYR1", "EGLL", "EIDW", 60, "")
	h.db.addRoute("RYR2", "EIDW", "EGLL", 60, "")
	frame := h.db.addAirframe("EI-ABC", ac.ID, "EGLL", 2)

	_, leg := dispatchedLeg(t, h, pilot.ID, ac.ID)
	p := filed(t, h, pilot.ID, leg.ID)

	_, err := h.pireps.Approve(context.Background(), p.ID, admin.ID)
	require.NoError(t, err)

	airframe := h.db.airframe(frame.ID)
	assert.Equal(t, 3, airframe.TotalFlights)
	assert.Equal(t, model.FleetMaintenance, airframe.Status)
	require.NotNil(t, airframe.MaintenanceUntil)
	assert.Equal(t, fixedNow.Add(model.MaintenanceDuration), *airframe.MaintenanceUntil)
	assert.Contains(t, h.notifier.types(), events.FleetMaintenance)

	h.fleet.(*fleetService).now = func() time.Time { return fixedNow.Add(time.Hour) }
	res, err := h.fleet.ReleaseDueMaintenance(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Released)

	h.fleet.(*fleetService).now = func() time.Time { return fixedNow.Add(3 * time.Hour) }
	res, err = h.fleet.ReleaseDueMaintenance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"EI-ABC"}, res.Released)
	assert.Equal(t, model.FleetIdle, h.db.airframe(frame.ID).Status)
}

func TestRejectPirepReopensLegForRefile(t *testing.T) {
	h := newHarness(t)
	pilot, ac, _ := seedEGLL(h)
	admin := h.db.addPilot("ops", "EGLL", true)
	_, leg := dispatchedLeg(t, h, pilot.ID, ac.ID)
	p := filed(t, h, pilot.ID, leg.ID)

	rejected, err := h.pireps.Reject(context.Background(), p.ID, admin.ID, "wrong aircraft")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, rejected.Status)
	assert.Equal(t, "wrong aircraft", rejected.RejectionReason)
	assert.Equal(t, model.LegDispatched, h.db.leg(leg.ID).Status)
	assert.Equal(t, int64(0), h.db.profile(pilot.ID).XP)

	_, err = h.pireps.Approve(context.Background(), p.ID, admin.ID)
	assert.ErrorIs(t, err, ErrNotPending)

	again := filed(t, h, pilot.ID, leg.ID)
	assert.NotEqual(t, p.ID, again.ID)
	assert.Equal(t, model.LegAwaitingApproval, h.db.leg(leg.ID).Status)
}

func TestGetPirepHidesOtherPilotsReports(t *testing.T) {
	h := newHarness(t)
	pilot, ac, _ := seedEGLL(h)
	other := h.db.addPilot("iceman", "EGLL", true)
	_, leg := dispatchedLeg(t, h, pilot.ID, ac.ID)
	p := filed(t, h, pilot.ID, leg.ID)

	_, err := h.pireps.Get(context.Background(), p.ID, other.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := h.pireps.Get(context.Background(), p.ID, other.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "maverick", got.Pilot)

	mine, total, err := h.pireps.ListMine(context.Background(), pilot.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, mine, 1)
}
