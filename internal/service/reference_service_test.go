package service

import (
	"context"
	"testing"

	"vaops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceAircraftCRUD(t *testing.T) {
	h := newHarness(t)
	admin := uuid.New()
	ctx := context.Background()

	a, err := h.reference.CreateAircraft(ctx, admin, AircraftRequest{ICAOType: " a20n ", Name: "A320neo", Family: "A320", TypeRatingPrice: 1000})
	require.NoError(t, err)
	assert.Equal(t, "A20N", a.ICAOType)
	assert.True(t, decimal.NewFromInt(1).Equal(a.Multiplier), "omitted multiplier is neutral")
	assert.True(t, a.IsActive)

	_, err = h.reference.CreateAircraft(ctx, admin, AircraftRequest{ICAOType: "A20N", Name: "dup"})
	assert.ErrorIs(t, err, ErrConflict)

	inactive := false
	a, err = h.reference.UpdateAircraft(ctx, admin, a.ID, AircraftRequest{ICAOType: "A20N", Name: "A320neo", Multiplier: decimal.RequireFromString("1.25"), IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, a.IsActive)

	active, err := h.reference.ListAircraft(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, h.reference.DeleteAircraft(ctx, admin, a.ID))
	assert.ErrorIs(t, h.reference.DeleteAircraft(ctx, admin, a.ID), ErrNotFound)

	actions := h.db.auditActions()
	assert.Contains(t, actions, model.ActionUpsertReference)
	assert.Contains(t, actions, model.ActionDeleteReference)
}

func TestReferenceRejectsNegativeMultiplier(t *testing.T) {
	h := newHarness(t)

	_, err := h.reference.CreateBase(context.Background(), uuid.New(), BaseRequest{ICAO: "EGLL", Name: "Heathrow", Multiplier: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReferenceBases(t *testing.T) {
	h := newHarness(t)
	admin := uuid.New()

	b, err := h.reference.CreateBase(context.Background(), admin, BaseRequest{ICAO: "egll", Name: "Heathrow", Multiplier: decimal.RequireFromString("1.1")})
	require.NoError(t, err)
	assert.Equal(t, "EGLL", b.ICAO)

	b, err = h.reference.UpdateBase(context.Background(), admin, b.ID, BaseRequest{ICAO: "EGLL", Name: "London Heathrow", Multiplier: decimal.RequireFromString("1.2")})
	require.NoError(t, err)
	assert.Equal(t, "London Heathrow", b.Name)

	_, err = h.reference.UpdateBase(context.Background(), admin, uuid.New(), BaseRequest{ICAO: "EGKK", Name: "Gatwick"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReferenceHourRuleBounds(t *testing.T) {
	h := newHarness(t)
	admin := uuid.New()

	_, err := h.reference.CreateHourRule(context.Background(), admin, HourRuleRequest{Name: "bad", MinHours: decimal.NewFromInt(5), MaxHours: decimal.NewFromInt(2)})
	assert.ErrorIs(t, err, ErrValidation)

	m, err := h.reference.CreateHourRule(context.Background(), admin, HourRuleRequest{
		Name: "long haul", MinHours: decimal.NewFromInt(6), MaxHours: decimal.NewFromInt(24), Multiplier: decimal.RequireFromString("1.8"),
	})
	require.NoError(t, err)
	assert.True(t, m.IsActive)

	rules, err := h.reference.ListHourRules(context.Background())
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}
