package service

import (
	"context"
	"testing"

	"vaops/internal/events"
	"vaops/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingRegistration(t *testing.T, h *harness) (model.Profile, uuid.UUID) {
	t.Helper()
	pilot := h.db.addPilot("rookie", "EGLL", false)
	reg := &model.RegistrationApproval{UserID: pilot.ID, Status: model.StatusPending}
	require.NoError(t, fakeRegistrations{h.db}.Create(context.Background(), reg))
	return pilot, reg.ID
}

func TestApproveRegistration(t *testing.T) {
	h := newHarness(t)
	admin := h.db.addPilot("ops", "EGLL", true)
	pilot, id := pendingRegistration(t, h)

	res, err := h.registrations.Approve(context.Background(), id, admin.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusApproved, res.Status)
	assert.Equal(t, "ops", res.ReviewerName)
	assert.True(t, h.db.profile(pilot.ID).IsApproved)
	assert.Contains(t, h.db.auditActions(), model.ActionApproveRegistration)
	assert.Contains(t, h.notifier.types(), events.PilotApproved)
	require.Len(t, h.mailer.sent, 1)
	assert.Equal(t, []string{"rookie@example.com"}, h.mailer.sent[0].To)

	_, err = h.registrations.Reject(context.Background(), id, admin.ID, "too late")
	assert.ErrorIs(t, err, ErrNotPending)
	assert.True(t, h.db.profile(pilot.ID).IsApproved)
}

func TestRejectRegistration(t *testing.T) {
	h := newHarness(t)
	admin := h.db.addPilot("ops", "EGLL", true)
	pilot, id := pendingRegistration(t, h)

	res, err := h.registrations.Reject(context.Background(), id, admin.ID, "duplicate account")
	require.NoError(t, err)

	assert.Equal(t, model.StatusRejected, res.Status)
	assert.Equal(t, "duplicate account", res.Reason)
	assert.False(t, h.db.profile(pilot.ID).IsApproved)
	assert.NotContains(t, h.notifier.types(), events.PilotApproved)
	require.Len(t, h.mailer.sent, 1)
	assert.Contains(t, h.mailer.sent[0].HTML, "duplicate account")
}

func TestListRegistrations(t *testing.T) {
	h := newHarness(t)
	pendingRegistration(t, h)

	rows, total, err := h.registrations.List(context.Background(), RegistrationFilter{Status: model.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, model.StatusPending, rows[0].Status)
}
