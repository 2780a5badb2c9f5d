package service

import (
	"context"
	"testing"

	"vaops/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMoney(t *testing.T, h *harness, p model.Profile, money int64) {
	t.Helper()
	p.Money = money
	require.NoError(t, fakeProfiles{h.db}.Update(context.Background(), &p))
}

func TestPurchaseTypeRating(t *testing.T) {
	h := newHarness(t)
	pilot := h.db.addPilot("maverick", "EGLL", true)
	withMoney(t, h, pilot, 120000)
	a320 := h.db.addAircraft("A320", "A320", "1.2", 100000)
	h.db.addAircraft("B738", "B737", "1.1", 80000)
	ctx := context.Background()

	res, err := h.shop.PurchaseTypeRating(ctx, pilot.ID, PurchaseTypeRatingRequest{AircraftID: a320.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), res.PricePaid)
	assert.Equal(t, int64(20000), res.Balance)
	assert.Equal(t, int64(20000), h.db.profile(pilot.ID).Money)
	assert.Contains(t, h.db.auditActions(), model.ActionPurchaseTypeRating)

	_, err = h.shop.PurchaseTypeRating(ctx, pilot.ID, PurchaseTypeRatingRequest{AircraftID: a320.ID})
	assert.ErrorIs(t, err, ErrConflict)

	catalog, err := h.shop.Catalog(ctx, pilot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), catalog.Balance)
	require.Len(t, catalog.Items, 2)
	owned := map[string]bool{}
	for _, item := range catalog.Items {
		owned[item.ICAOType] = item.Owned
	}
	assert.Equal(t, map[string]bool{"A320": true, "B738": false}, owned)
}

func TestPurchaseTypeRatingInsufficientFunds(t *testing.T) {
	h := newHarness(t)
	pilot := h.db.addPilot("maverick", "EGLL", true)
	withMoney(t, h, pilot, 79999)
	b738 := h.db.addAircraft("B738", "B737", "1.1", 80000)

	_, err := h.shop.PurchaseTypeRating(context.Background(), pilot.ID, PurchaseTypeRatingRequest{AircraftID: b738.ID})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(79999), h.db.profile(pilot.ID).Money)
}

func TestPurchaseTypeRatingExactBalance(t *testing.T) {
	h := newHarness(t)
	pilot := h.db.addPilot("maverick", "EGLL", true)
	withMoney(t, h, pilot, 80000)
	b738 := h.db.addAircraft("B738", "B737", "1.1", 80000)

	res, err := h.shop.PurchaseTypeRating(context.Background(), pilot.ID, PurchaseTypeRatingRequest{AircraftID: b738.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Balance)
}

func TestPurchaseUnknownAircraft(t *testing.T) {
	h := newHarness(t)
	pilot := h.db.addPilot("maverick", "EGLL", true)

	_, err := h.shop.PurchaseTypeRating(context.Background(), pilot.ID, PurchaseTypeRatingRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}
