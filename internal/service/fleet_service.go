package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vaops/internal/events"
	"vaops/internal/metrics"
	"vaops/internal/model"
	"vaops/internal/notify"
	"vaops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateFleetAircraftRequest struct {
	Registration string    `json:"registration" binding:"required,max=20"`
	AircraftID   uuid.UUID `json:"aircraft_id" binding:"required"`
	LocationICAO string    `json:"location_icao" binding:"omitempty,len=4"`
}

type UpdateFleetAircraftRequest struct {
	Registration *string `json:"registration" binding:"omitempty,max=20"`
	LocationICAO *string `json:"location_icao" binding:"omitempty,len=4"`
}

type SetFleetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=idle in_flight maintenance"`
	// Until ends a maintenance window; defaults to now + the standard duration.
	Until *time.Time `json:"until"`
}

type FleetAircraftResponse struct {
	ID               uuid.UUID       `json:"id"`
	Registration     string          `json:"registration"`
	AircraftID       uuid.UUID       `json:"aircraft_id"`
	AircraftType     string          `json:"aircraft_type,omitempty"`
	AircraftName     string          `json:"aircraft_name,omitempty"`
	LocationICAO     string          `json:"location_icao"`
	Status           string          `json:"status"`
	TotalFlights     int             `json:"total_flights"`
	TotalHours       decimal.Decimal `json:"total_hours"`
	MaintenanceUntil *time.Time      `json:"maintenance_until"`
}

type ReleaseResult struct {
	Released []string `json:"released"`
}

type FleetService interface {
	List(ctx context.Context, status string) ([]FleetAircraftResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*FleetAircraftResponse, error)
	Create(ctx context.Context, adminID uuid.UUID, req CreateFleetAircraftRequest) (*FleetAircraftResponse, error)
	Update(ctx context.Context, adminID, id uuid.UUID, req UpdateFleetAircraftRequest) (*FleetAircraftResponse, error)
	SetStatus(ctx context.Context, adminID, id uuid.UUID, req SetFleetStatusRequest) (*FleetAircraftResponse, error)
	// RecordFlightCompletion books a flight on the airframe and reports whether it went to maintenance.
	// The airframe stays reserved unless release is set. It joins the caller's transaction
	// when there is one and does not notify.
	RecordFlightCompletion(ctx context.Context, id uuid.UUID, hours decimal.Decimal, arrival string, release bool) (*FleetAircraftResponse, bool, error)
	ReleaseDueMaintenance(ctx context.Context) (*ReleaseResult, error)
}

type fleetService struct {
	repo     repository.FleetRepository
	aircraft repository.AircraftRepository
	tx       repository.TransactionManager
	audit    auditor
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewFleetService(
	repo repository.FleetRepository,
	aircraft repository.AircraftRepository,
	audits repository.AuditRepository,
	tx repository.TransactionManager,
	notifier notify.Notifier,
	log *zap.Logger,
) FleetService {
	return &fleetService{
		repo:     repo,
		aircraft: aircraft,
		tx:       tx,
		audit:    auditor{repo: audits, log: log},
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func toFleetResponse(a *model.FleetAircraft) *FleetAircraftResponse {
	res := &FleetAircraftResponse{
		ID:               a.ID,
		Registration:     a.Registration,
		AircraftID:       a.AircraftID,
		LocationICAO:     a.LocationICAO,
		Status:           a.Status,
		TotalFlights:     a.TotalFlights,
		TotalHours:       a.TotalHours,
		MaintenanceUntil: a.MaintenanceUntil,
	}
	if a.Aircraft != nil {
		res.AircraftType = a.Aircraft.ICAOType
		res.AircraftName = a.Aircraft.Name
	}
	return res
}

func fleetEvent(eventType string, a *FleetAircraftResponse) events.Event {
	return events.Event{Type: eventType, Payload: events.FleetPayload{
		ID:               a.ID.String(),
		Registration:     a.Registration,
		Status:           a.Status,
		MaintenanceUntil: a.MaintenanceUntil,
	}}
}

func (s *fleetService) List(ctx context.Context, status string) ([]FleetAircraftResponse, error) {
	rows, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	res := make([]FleetAircraftResponse, 0, len(rows))
	for i := range rows {
		res = append(res, *toFleetResponse(&rows[i]))
	}
	return res, nil
}

func (s *fleetService) Get(ctx context.Context, id uuid.UUID) (*FleetAircraftResponse, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("fleet aircraft", err)
	}
	return toFleetResponse(a), nil
}

func (s *fleetService) Create(ctx context.Context, adminID uuid.UUID, req CreateFleetAircraftRequest) (*FleetAircraftResponse, error) {
	if _, err := s.aircraft.FindByID(ctx, req.AircraftID); err != nil {
		return nil, notFound("aircraft", err)
	}

	a := &model.FleetAircraft{
		Registration: strings.ToUpper(strings.TrimSpace(req.Registration)),
		AircraftID:   req.AircraftID,
		LocationICAO: strings.ToUpper(req.LocationICAO),
		Status:       model.FleetIdle,
		TotalHours:   decimal.Zero,
	}
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, a); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: registration %s already exists", ErrConflict, a.Registration)
			}
			return fmt.Errorf("failed to create fleet aircraft: %w", err)
		}
		return s.audit.record(txCtx, &adminID, model.ActionCreateFleetAircraft, a.ID.String(), a.Registration, map[string]interface{}{
			"aircraft_id": req.AircraftID.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, a.ID)
}

func (s *fleetService) Update(ctx context.Context, adminID, id uuid.UUID, req UpdateFleetAircraftRequest) (*FleetAircraftResponse, error) {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return notFound("fleet aircraft", err)
		}
		if req.Registration != nil {
			a.Registration = strings.ToUpper(strings.TrimSpace(*req.Registration))
		}
		if req.LocationICAO != nil {
			a.LocationICAO = strings.ToUpper(*req.LocationICAO)
		}
		if err := s.repo.Update(txCtx, a); err != nil {
			return fmt.Errorf("failed to update fleet aircraft: %w", err)
		}
		return s.audit.record(txCtx, &adminID, model.ActionUpdateFleetAircraft, a.ID.String(), a.Registration, map[string]interface{}{
			"location": a.LocationICAO,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *fleetService) SetStatus(ctx context.Context, adminID, id uuid.UUID, req SetFleetStatusRequest) (*FleetAircraftResponse, error) {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return notFound("fleet aircraft", err)
		}

		previous := a.Status
		a.Status = req.Status
		a.MaintenanceUntil = nil
		if req.Status == model.FleetMaintenance {
			until := s.now().Add(model.MaintenanceDuration)
			if req.Until != nil {
				until = *req.Until
			}
			a.MaintenanceUntil = &until
		}
		if err := s.repo.Update(txCtx, a); err != nil {
			return fmt.Errorf("failed to update fleet status: %w", err)
		}
		return s.audit.record(txCtx, &adminID, model.ActionSetFleetStatus, a.ID.String(), a.Registration, map[string]interface{}{
			"from": previous,
			"to":   req.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	res, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, fleetEvent(events.FleetStatus, res))
	return res, nil
}

func (s *fleetService) RecordFlightCompletion(ctx context.Context, id uuid.UUID, hours decimal.Decimal, arrival string, release bool) (*FleetAircraftResponse, bool, error) {
	var (
		res         *FleetAircraftResponse
		maintenance bool
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return notFound("fleet aircraft", err)
		}
		maintenance = a.CompleteFlight(hours, s.now(), release)
		if arrival != "" {
			a.LocationICAO = strings.ToUpper(arrival)
		}
		if err := s.repo.Update(txCtx, a); err != nil {
			return fmt.Errorf("failed to update fleet aircraft: %w", err)
		}
		res = toFleetResponse(a)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if maintenance {
		metrics.FleetMaintenance.Inc()
	}
	return res, maintenance, nil
}

// ReleaseDueMaintenance returns every airframe whose maintenance window has passed to idle.
func (s *fleetService) ReleaseDueMaintenance(ctx context.Context) (*ReleaseResult, error) {
	var released []*FleetAircraftResponse
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := s.now()
		due, err := s.repo.ListDueMaintenance(txCtx, now)
		if err != nil {
			return err
		}
		for i := range due {
			a := &due[i]
			if !a.ReleaseIfDue(now) {
				continue
			}
			if err := s.repo.Update(txCtx, a); err != nil {
				return fmt.Errorf("failed to release %s: %w", a.Registration, err)
			}
			released = append(released, toFleetResponse(a))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := &ReleaseResult{Released: make([]string, 0, len(released))}
	for _, a := range released {
		out.Released = append(out.Released, a.Registration)
		s.notifier.Notify(ctx, fleetEvent(events.FleetStatus, a))
	}
	if len(released) > 0 {
		s.log.Info("maintenance released", zap.Strings("registrations", out.Released))
	}
	return out, nil
}
