package service

import (
	"context"
	"testing"

	"vaops/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRecordsPirepReward(t *testing.T) {
	h := newHarness(t)
	pilot, ac, _ := seedEGLL(h)
	admin := h.db.addPilot("ops", "EGLL", true)
	_, leg := dispatchedLeg(t, h, pilot.ID, ac.ID)
	p := filed(t, h, pilot.ID, leg.ID)
	_, err := h.pireps.Approve(context.Background(), p.ID, admin.ID)
	require.NoError(t, err)

	wallet, err := h.wallet.History(context.Background(), pilot.ID, 1, 20)
	require.NoError(t, err)
	balance := h.db.profile(pilot.ID).Money
	require.Positive(t, balance)
	assert.Equal(t, balance, wallet.Balance)
	require.Len(t, wallet.Items, 1)

	entry := wallet.Items[0]
	assert.Equal(t, model.LedgerCredit, entry.Type)
	assert.Equal(t, model.LedgerPirepReward, entry.Reason)
	assert.Equal(t, balance, entry.Amount)
	assert.Equal(t, balance, entry.BalanceAfter)
	assert.Equal(t, p.ID, *entry.ReferenceID)
}

func TestWalletRecordsPurchase(t *testing.T) {
	h := newHarness(t)
	pilot := h.db.addPilot("maverick", "EGLL", true)
	withMoney(t, h, pilot, 120000)
	a320 := h.db.addAircraft("A320", "A320", "1.2", 100000)

	_, err := h.shop.PurchaseTypeRating(context.Background(), pilot.ID, PurchaseTypeRatingRequest{AircraftID: a320.ID})
	require.NoError(t, err)

	wallet, err := h.wallet.History(context.Background(), pilot.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, wallet.Items, 1)
	entry := wallet.Items[0]
	assert.Equal(t, model.LedgerDebit, entry.Type)
	assert.Equal(t, model.LedgerTypeRating, entry.Reason)
	assert.Equal(t, int64(100000), entry.Amount)
	assert.Equal(t, int64(20000), entry.BalanceAfter)
	assert.Equal(t, int64(20000), wallet.Balance)

	// a refused purchase leaves no trace
	_, err = h.shop.PurchaseTypeRating(context.Background(), pilot.ID, PurchaseTypeRatingRequest{AircraftID: a320.ID})
	require.Error(t, err)
	wallet, err = h.wallet.History(context.Background(), pilot.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), wallet.Total)
}

func TestWalletUnknownPilot(t *testing.T) {
	h := newHarness(t)
	_, err := h.wallet.History(context.Background(), uuid.New(), 1, 20)
	assert.ErrorIs(t, err, ErrNotFound)
}
