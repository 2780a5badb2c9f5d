package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"vaops/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogbookAndExport(t *testing.T) {
	h := newHarness(t)
	pilot, ac, _ := seedEGLL(h)
	admin := h.db.addPilot("ops", "EGLL", true)
	_, leg := dispatchedLeg(t, h, pilot.ID, ac.ID)
	p := filed(t, h, pilot.ID, leg.ID)
	_, err := h.pireps.Approve(context.Background(), p.ID, admin.ID)
	require.NoError(t, err)

	book, err := h.logbook.Logbook(context.Background(), pilot.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), book.Total)
	assert.Equal(t, 1, book.Page)
	assert.Equal(t, int64(1), book.Totals.Flights)
	assert.Equal(t, p.ID, book.Entries[0].ID)

	var buf bytes.Buffer
	require.NoError(t, h.logbook.ExportCSV(context.Background(), pilot.ID, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, logbookHeader, records[0])
	assert.Equal(t, leg.FlightNumber, records[1][1])
	assert.Equal(t, "A320", records[1][4])
	assert.Equal(t, "1.50", records[1][5])
	assert.Equal(t, "approved", records[1][8])
}

func TestLeaderboard(t *testing.T) {
	h := newHarness(t)
	a := h.db.addPilot("alpha", "EGLL", true)
	b := h.db.addPilot("bravo", "EGLL", true)
	h.db.addPilot("pending", "EGLL", false)
	pa := h.db.profile(a.ID)
	pa.XP, pa.TotalFlights = 100, 9
	require.NoError(t, fakeProfiles{h.db}.Update(context.Background(), &pa))
	pb := h.db.profile(b.ID)
	pb.XP, pb.TotalFlights = 300, 2
	require.NoError(t, fakeProfiles{h.db}.Update(context.Background(), &pb))

	rows, err := h.leaderboard.Leaderboard(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2, "unapproved pilots are hidden")
	assert.Equal(t, "bravo", rows[0].Username)
	assert.Equal(t, 1, rows[0].Rank)

	rows, err = h.leaderboard.Leaderboard(context.Background(), repository.MetricFlights, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alpha", rows[0].Username)

	_, err = h.leaderboard.Leaderboard(context.Background(), "money", 10)
	assert.ErrorIs(t, err, ErrValidation)
}
