package email

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// NoopSender logs instead of delivering. Used when no Resend key is configured.
type NoopSender struct {
	log *zap.Logger
}

func NewNoopSender(log *zap.Logger) *NoopSender {
	return &NoopSender{log: log}
}

func (s *NoopSender) Send(_ context.Context, msg Message) (Result, error) {
	s.log.Info("email not sent (noop sender)", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return Result{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
