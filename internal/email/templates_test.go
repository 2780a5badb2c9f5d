package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistrationRejectedEscapesInput(t *testing.T) {
	msg := RegistrationRejected("p@example.com", "<b>Bob</b>", "callsign & base missing")

	assert.Equal(t, []string{"p@example.com"}, msg.To)
	assert.Contains(t, msg.HTML, "&lt;b&gt;Bob&lt;/b&gt;")
	assert.Contains(t, msg.HTML, "callsign &amp; base missing")
}

func TestRegistrationRejectedWithoutReason(t *testing.T) {
	msg := RegistrationRejected("p@example.com", "Bob", "")
	assert.NotContains(t, msg.HTML, "Reason")
}

func TestNoopSender(t *testing.T) {
	res, err := NewNoopSender(zap.NewNop()).Send(context.Background(), RegistrationApproved("p@example.com", "Bob"))
	require.NoError(t, err)
	assert.Contains(t, res.MessageID, "noop-")
	assert.False(t, res.SentAt.IsZero())
}
