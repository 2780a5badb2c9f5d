package email

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

type ResendSender struct {
	client *resend.Client
	from   string
	log    *zap.Logger
}

func NewResendSender(apiKey, from string, log *zap.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		log:    log,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (Result, error) {
	from := msg.From
	if from == "" {
		from = s.from
	}

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		s.log.Error("resend send failed", zap.Error(err), zap.Strings("to", msg.To))
		return Result{}, fmt.Errorf("resend send failed: %w", err)
	}

	s.log.Info("email sent", zap.String("message_id", sent.Id), zap.String("subject", msg.Subject))
	return Result{MessageID: sent.Id, SentAt: time.Now()}, nil
}
