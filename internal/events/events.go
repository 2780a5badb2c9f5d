// Package events publishes domain events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const SubjectPrefix = "vaops."

// Event types. The NATS subject is SubjectPrefix + Type.
const (
	PirepFiled       = "pirep.filed"
	PirepApproved    = "pirep.approved"
	PirepRejected    = "pirep.rejected"
	CareerAssigned   = "career.assigned"
	CareerRequested  = "career.requested"
	LegDispatched    = "career.leg_dispatched"
	FleetStatus      = "fleet.status"
	FleetMaintenance = "fleet.maintenance"
	PilotApproved    = "pilot.approved"
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	// Audience is the pilot the event concerns. Empty means everyone; admins see all events.
	Audience  string    `json:"audience,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type NATSPublisher struct {
	conn *nats.Conn
	log  *zap.Logger
}

// Connect dials NATS with reconnects enabled. Connection events are logged.
func Connect(url string, log *zap.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("vaops-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{conn: conn, log: log}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(SubjectPrefix+ev.Type, payload); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	p.log.Debug("event published", zap.String("type", ev.Type))
	return nil
}

// Close flushes pending messages.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.log.Warn("nats drain", zap.Error(err))
	}
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// PirepPayload is carried by the pirep.* events.
type PirepPayload struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Pilot        string `json:"pilot"`
	FlightNumber string `json:"flight_number"`
	Departure    string `json:"departure"`
	Arrival      string `json:"arrival"`
	Aircraft     string `json:"aircraft"`
	FlightHours  string `json:"flight_hours"`
	LandingRate  int    `json:"landing_rate"`
	Status       string `json:"status"`
	XP           int64  `json:"xp,omitempty"`
	Money        int64  `json:"money,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// CareerPayload is carried by career.assigned.
type CareerPayload struct {
	UserID          string `json:"user_id"`
	DispatchGroupID string `json:"dispatch_group_id"`
	Base            string `json:"base"`
	Legs            int    `json:"legs"`
	Source          string `json:"source"`
}

// FleetPayload is carried by the fleet.* events.
type FleetPayload struct {
	ID               string     `json:"id"`
	Registration     string     `json:"registration"`
	Status           string     `json:"status"`
	MaintenanceUntil *time.Time `json:"maintenance_until,omitempty"`
}
