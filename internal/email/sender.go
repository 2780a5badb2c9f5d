// Package email delivers account notifications.
package email

import (
	"context"
	"time"
)

type Message struct {
	To      []string
	From    string // defaults to the sender's configured address
	Subject string
	HTML    string
}

type Result struct {
	MessageID string
	SentAt    time.Time
}

// Sender is implemented by the Resend client and the no-op sender.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}
