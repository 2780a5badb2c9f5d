// Package notify fans domain events out to the websocket hub, NATS and Discord.
package notify

import (
	"context"
	"fmt"
	"time"

	"vaops/internal/events"
	"vaops/internal/integration/discord"

	"go.uber.org/zap"
)

// Notifier is what services depend on. Delivery is best effort and never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, ev events.Event)
}

type WebhookSender interface {
	Send(ctx context.Context, msg discord.WebhookMessage) error
}

type Fanout struct {
	publishers []events.Publisher
	webhook    WebhookSender
	log        *zap.Logger
	timeout    time.Duration
}

// NewFanout builds a notifier. webhook may be nil.
func NewFanout(log *zap.Logger, webhook WebhookSender, publishers ...events.Publisher) *Fanout {
	return &Fanout{publishers: publishers, webhook: webhook, log: log, timeout: 5 * time.Second}
}

func (f *Fanout) Notify(ctx context.Context, ev events.Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	for _, p := range f.publishers {
		if err := p.Publish(ctx, ev); err != nil {
			f.log.Warn("event publish failed", zap.String("type", ev.Type), zap.Error(err))
		}
	}

	if f.webhook == nil {
		return
	}
	msg, ok := DiscordMessage(ev)
	if !ok {
		return
	}
	// the webhook must not hold up the request that raised the event
	go func() {
		wctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()
		if err := f.webhook.Send(wctx, msg); err != nil {
			f.log.Warn("discord webhook failed", zap.String("type", ev.Type), zap.Error(err))
		}
	}()
}

// DiscordMessage renders the events that are announced on Discord.
func DiscordMessage(ev events.Event) (discord.WebhookMessage, bool) {
	p, ok := ev.Payload.(events.PirepPayload)
	if !ok {
		return discord.WebhookMessage{}, false
	}

	fields := []discord.EmbedField{
		{Name: "Pilot", Value: p.Pilot, Inline: true},
		{Name: "Flight", Value: p.FlightNumber, Inline: true},
		{Name: "Route", Value: p.Departure + " → " + p.Arrival, Inline: true},
		{Name: "Aircraft", Value: orDash(p.Aircraft), Inline: true},
		{Name: "Block time", Value: p.FlightHours + " h", Inline: true},
		{Name: "Landing rate", Value: fmt.Sprintf("%d fpm", p.LandingRate), Inline: true},
	}

	embed := discord.Embed{Fields: fields, Timestamp: ev.Timestamp.Format(time.RFC3339)}
	switch ev.Type {
	case events.PirepFiled:
		embed.Title = "New PIREP filed"
		embed.Color = discord.ColorInfo
	case events.PirepApproved:
		embed.Title = "PIREP approved"
		embed.Color = discord.ColorSuccess
		embed.Fields = append(embed.Fields,
			discord.EmbedField{Name: "XP", Value: fmt.Sprintf("+%d", p.XP), Inline: true},
			discord.EmbedField{Name: "Earnings", Value: fmt.Sprintf("$%d", p.Money), Inline: true},
		)
	case events.PirepRejected:
		embed.Title = "PIREP rejected"
		embed.Color = discord.ColorDanger
		if p.Reason != "" {
			embed.Description = p.Reason
		}
	default:
		return discord.WebhookMessage{}, false
	}
	return discord.WebhookMessage{Embeds: []discord.Embed{embed}}, true
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
