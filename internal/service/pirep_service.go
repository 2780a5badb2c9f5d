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
	"vaops/internal/reward"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var maxFlightHours = decimal.NewFromInt(24)

type FilePirepRequest struct {
	DispatchLegID *uuid.UUID      `json:"dispatch_leg_id"`
	FlightNumber  string          `json:"flight_number" binding:"max=20"`
	DepartureICAO string          `json:"departure_icao" binding:"omitempty,len=4"`
	ArrivalICAO   string          `json:"arrival_icao" binding:"omitempty,len=4"`
	AircraftID    *uuid.UUID      `json:"aircraft_id"`
	FlightHours   decimal.Decimal `json:"flight_hours" binding:"required"`
	LandingRate   int             `json:"landing_rate"`
	FuelUsed      int             `json:"fuel_used" binding:"min=0"`
	Remarks       string          `json:"remarks" binding:"max=2000"`
}

type PirepFilter struct {
	Status string
	Page   int
	Limit  int
}

type PirepResponse struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	Pilot           string           `json:"pilot,omitempty"`
	DispatchLegID   *uuid.UUID       `json:"dispatch_leg_id"`
	FlightNumber    string           `json:"flight_number"`
	DepartureICAO   string           `json:"departure_icao"`
	ArrivalICAO     string           `json:"arrival_icao"`
	AircraftID      uuid.UUID        `json:"aircraft_id"`
	AircraftType    string           `json:"aircraft_type,omitempty"`
	FleetAircraftID *uuid.UUID       `json:"fleet_aircraft_id"`
	FlightHours     decimal.Decimal  `json:"flight_hours"`
	LandingRate     int              `json:"landing_rate"`
	FuelUsed        int              `json:"fuel_used"`
	Remarks         string           `json:"remarks"`
	Status          string           `json:"status"`
	Multiplier      *decimal.Decimal `json:"multiplier"`
	XPEarned        int64            `json:"xp_earned"`
	MoneyEarned     int64            `json:"money_earned"`
	ReviewedBy      *uuid.UUID       `json:"reviewed_by"`
	ReviewedAt      *time.Time       `json:"reviewed_at"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

type PirepService interface {
	File(ctx context.Context, userID uuid.UUID, req FilePirepRequest) (*PirepResponse, error)
	Get(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*PirepResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID, page, limit int) ([]PirepResponse, int64, error)
	List(ctx context.Context, filter PirepFilter) ([]PirepResponse, int64, error)
	Approve(ctx context.Context, id, adminID uuid.UUID) (*PirepResponse, error)
	Reject(ctx context.Context, id, adminID uuid.UUID, reason string) (*PirepResponse, error)
}

type pirepService struct {
	repo      repository.PirepRepository
	dispatch  repository.DispatchRepository
	profiles  repository.ProfileRepository
	aircraft  repository.AircraftRepository
	bases     repository.BaseRepository
	hourRules repository.HourRuleRepository
	fleet     FleetService
	tx        repository.TransactionManager
	audit     auditor
	ledger    ledger
	notifier  notify.Notifier
	log       *zap.Logger
	now       func() time.Time
}

func NewPirepService(
	repo repository.PirepRepository,
	dispatch repository.DispatchRepository,
	profiles repository.ProfileRepository,
	aircraft repository.AircraftRepository,
	bases repository.BaseRepository,
	hourRules repository.HourRuleRepository,
	fleet FleetService,
	audits repository.AuditRepository,
	wallet repository.WalletRepository,
	tx repository.TransactionManager,
	notifier notify.Notifier,
	log *zap.Logger,
) PirepService {
	return &pirepService{
		repo:      repo,
		dispatch:  dispatch,
		profiles:  profiles,
		aircraft:  aircraft,
		bases:     bases,
		hourRules: hourRules,
		fleet:     fleet,
		tx:        tx,
		audit:     auditor{repo: audits, log: log},
		ledger:    ledger{repo: wallet},
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

func toPirepResponse(p *model.Pirep) *PirepResponse {
	res := &PirepResponse{
		ID:              p.ID,
		UserID:          p.UserID,
		DispatchLegID:   p.DispatchLegID,
		FlightNumber:    p.FlightNumber,
		DepartureICAO:   p.DepartureICAO,
		ArrivalICAO:     p.ArrivalICAO,
		AircraftID:      p.AircraftID,
		FleetAircraftID: p.FleetAircraftID,
		FlightHours:     p.FlightHours,
		LandingRate:     p.LandingRate,
		FuelUsed:        p.FuelUsed,
		Remarks:         p.Remarks,
		Status:          p.Status,
		Multiplier:      p.Multiplier,
		XPEarned:        p.XPEarned,
		MoneyEarned:     p.MoneyEarned,
		ReviewedBy:      p.ReviewedBy,
		ReviewedAt:      p.ReviewedAt,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
	}
	if p.User != nil {
		res.Pilot = p.User.Username
	}
	if p.Aircraft != nil {
		res.AircraftType = p.Aircraft.ICAOType
	}
	return res
}

func pirepEvent(eventType string, p *PirepResponse) events.Event {
	return events.Event{Type: eventType, Audience: p.UserID.String(), Payload: events.PirepPayload{
		ID:           p.ID.String(),
		UserID:       p.UserID.String(),
		Pilot:        p.Pilot,
		FlightNumber: p.FlightNumber,
		Departure:    p.DepartureICAO,
		Arrival:      p.ArrivalICAO,
		Aircraft:     p.AircraftType,
		FlightHours:  p.FlightHours.StringFixed(2),
		LandingRate:  p.LandingRate,
		Status:       p.Status,
		XP:           p.XPEarned,
		Money:        p.MoneyEarned,
		Reason:       p.RejectionReason,
	}}
}

func (s *pirepService) File(ctx context.Context, userID uuid.UUID, req FilePirepRequest) (*PirepResponse, error) {
	if !req.FlightHours.IsPositive() || req.FlightHours.GreaterThan(maxFlightHours) {
		return nil, validation("flight_hours must be between 0 and 24")
	}

	p := &model.Pirep{
		UserID:        userID,
		DispatchLegID: req.DispatchLegID,
		FlightNumber:  strings.ToUpper(strings.TrimSpace(req.FlightNumber)),
		DepartureICAO: strings.ToUpper(req.DepartureICAO),
		ArrivalICAO:   strings.ToUpper(req.ArrivalICAO),
		FlightHours:   req.FlightHours.Round(2),
		LandingRate:   req.LandingRate,
		FuelUsed:      req.FuelUsed,
		Remarks:       req.Remarks,
		Status:        model.StatusPending,
	}
	if req.AircraftID != nil {
		p.AircraftID = *req.AircraftID
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if req.DispatchLegID != nil {
			if err := s.attachLeg(txCtx, userID, *req.DispatchLegID, p); err != nil {
				return err
			}
		}

		if p.FlightNumber == "" || p.DepartureICAO == "" || p.ArrivalICAO == "" || p.AircraftID == uuid.Nil {
			return validation("flight_number, departure_icao, arrival_icao and aircraft_id are required without a dispatch leg")
		}
		if _, err := s.aircraft.FindByID(txCtx, p.AircraftID); err != nil {
			return notFound("aircraft", err)
		}

		if err := s.repo.Create(txCtx, p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: a report for this leg already exists", ErrConflict)
			}
			return fmt.Errorf("failed to file pirep: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, p.ID)
	if err != nil {
		return nil, notFound("pirep", err)
	}
	res := toPirepResponse(created)
	s.log.Info("pirep filed", zap.String("pirep_id", res.ID.String()), zap.String("user_id", userID.String()))
	s.notifier.Notify(ctx, pirepEvent(events.PirepFiled, res))
	return res, nil
}

// attachLeg moves the pilot's dispatched leg to awaiting_approval and fills the report
// fields the pilot left blank from it.
func (s *pirepService) attachLeg(ctx context.Context, userID, legID uuid.UUID, p *model.Pirep) error {
	leg, err := s.dispatch.FindLegByIDForUpdate(ctx, legID)
	if err != nil {
		return notFound("dispatch leg", err)
	}
	if leg.UserID != userID {
		return fmt.Errorf("dispatch leg %w", ErrNotFound)
	}
	if leg.Status != model.LegDispatched {
		return invalidState("leg is %s, only dispatched legs can be reported", leg.Status)
	}
	if _, err := s.repo.FindByLeg(ctx, legID); err == nil {
		return fmt.Errorf("%w: a report for this leg already exists", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	full, err := s.dispatch.FindLegByID(ctx, legID)
	if err != nil {
		return notFound("dispatch leg", err)
	}
	if full.Route != nil {
		if p.FlightNumber == "" {
			p.FlightNumber = full.Route.FlightNumber
		}
		if p.DepartureICAO == "" {
			p.DepartureICAO = full.Route.DepartureICAO
		}
		if p.ArrivalICAO == "" {
			p.ArrivalICAO = full.Route.ArrivalICAO
		}
	}
	if p.AircraftID == uuid.Nil && leg.AircraftID != nil {
		p.AircraftID = *leg.AircraftID
	}
	p.FleetAircraftID = leg.FleetAircraftID

	leg.Status = model.LegAwaitingApproval
	return s.dispatch.UpdateLeg(ctx, leg)
}

func (s *pirepService) Get(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*PirepResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("pirep", err)
	}
	if !isAdmin && p.UserID != userID {
		return nil, fmt.Errorf("pirep %w", ErrNotFound)
	}
	return toPirepResponse(p), nil
}

func (s *pirepService) ListMine(ctx context.Context, userID uuid.UUID, page, limit int) ([]PirepResponse, int64, error) {
	return s.list(ctx, repository.PirepFilter{UserID: &userID}, page, limit)
}

func (s *pirepService) List(ctx context.Context, filter PirepFilter) ([]PirepResponse, int64, error) {
	return s.list(ctx, repository.PirepFilter{Status: filter.Status}, filter.Page, filter.Limit)
}

func (s *pirepService) list(ctx context.Context, filter repository.PirepFilter, page, limit int) ([]PirepResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	rows, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]PirepResponse, 0, len(rows))
	for i := range rows {
		res = append(res, *toPirepResponse(&rows[i]))
	}
	return res, total, nil
}

// Approve prices the flight and credits the pilot. The report row is locked and must
// still be pending, so concurrent approvals credit the pilot once.
func (s *pirepService) Approve(ctx context.Context, id, adminID uuid.UUID) (*PirepResponse, error) {
	var (
		airframe    *FleetAircraftResponse
		maintenance bool
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return notFound("pirep", err)
		}
		if p.Status != model.StatusPending {
			return fmt.Errorf("%w: pirep is already %s", ErrNotPending, p.Status)
		}

		profile, err := s.profiles.GetByIDForUpdate(txCtx, p.UserID)
		if err != nil {
			return notFound("profile", err)
		}

		in, err := s.rewardInput(txCtx, p, profile)
		if err != nil {
			return err
		}
		result := reward.Compute(in)

		now := s.now()
		p.Status = model.StatusApproved
		p.Multiplier = &result.TotalMultiplier
		p.XPEarned = result.XP
		p.MoneyEarned = result.Money
		p.ReviewedBy = &adminID
		p.ReviewedAt = &now
		if err := s.repo.Update(txCtx, p); err != nil {
			return fmt.Errorf("failed to update pirep: %w", err)
		}

		release := true
		if p.DispatchLegID != nil {
			leg, err := s.dispatch.FindLegByIDForUpdate(txCtx, *p.DispatchLegID)
			if err != nil {
				return notFound("dispatch leg", err)
			}
			leg.Status = model.LegCompleted
			leg.CompletedAt = &now
			if err := s.dispatch.UpdateLeg(txCtx, leg); err != nil {
				return fmt.Errorf("failed to complete leg: %w", err)
			}
			// the airframe belongs to the chain until its last leg is done
			chain, err := s.dispatch.ListByGroup(txCtx, leg.DispatchGroupID)
			if err != nil {
				return fmt.Errorf("failed to load dispatch chain: %w", err)
			}
			for i := range chain {
				if chain[i].ID != leg.ID && chain[i].IsOpen() {
					release = false
					break
				}
			}
		}

		if err := s.profiles.CreditFlight(txCtx, p.UserID, result.XP, result.Money, p.FlightHours); err != nil {
			return fmt.Errorf("failed to credit pilot: %w", err)
		}
		if err := s.ledger.record(txCtx, p.UserID, profile.Money, result.Money, model.LedgerPirepReward, p.ID); err != nil {
			return err
		}

		if p.FleetAircraftID != nil {
			airframe, maintenance, err = s.fleet.RecordFlightCompletion(txCtx, *p.FleetAircraftID, p.FlightHours, p.ArrivalICAO, release)
			if err != nil {
				return err
			}
		}

		return s.audit.record(txCtx, &adminID, model.ActionApprovePirep, p.ID.String(), p.FlightNumber, map[string]interface{}{
			"user_id":         p.UserID.String(),
			"hours":           p.FlightHours.String(),
			"hour_multiplier": result.HourMultiplier.String(),
			"multiplier":      result.TotalMultiplier.String(),
			"xp":              result.XP,
			"money":           result.Money,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.PirepsReviewed.WithLabelValues(model.StatusApproved).Inc()
	if airframe != nil {
		eventType := events.FleetStatus
		if maintenance {
			eventType = events.FleetMaintenance
		}
		s.notifier.Notify(ctx, fleetEvent(eventType, airframe))
	}
	return s.reloadAndNotify(ctx, id, events.PirepApproved)
}

func (s *pirepService) Reject(ctx context.Context, id, adminID uuid.UUID, reason string) (*PirepResponse, error) {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return notFound("pirep", err)
		}
		if p.Status != model.StatusPending {
			return fmt.Errorf("%w: pirep is already %s", ErrNotPending, p.Status)
		}

		now := s.now()
		p.Status = model.StatusRejected
		p.RejectionReason = reason
		p.ReviewedBy = &adminID
		p.ReviewedAt = &now
		if err := s.repo.Update(txCtx, p); err != nil {
			return fmt.Errorf("failed to update pirep: %w", err)
		}

		// the pilot refiles against the same leg
		if p.DispatchLegID != nil {
			leg, err := s.dispatch.FindLegByIDForUpdate(txCtx, *p.DispatchLegID)
			if err != nil {
				return notFound("dispatch leg", err)
			}
			if leg.Status == model.LegAwaitingApproval {
				leg.Status = model.LegDispatched
				if err := s.dispatch.UpdateLeg(txCtx, leg); err != nil {
					return fmt.Errorf("failed to reopen leg: %w", err)
				}
			}
		}

		return s.audit.record(txCtx, &adminID, model.ActionRejectPirep, p.ID.String(), p.FlightNumber, map[string]interface{}{
			"user_id": p.UserID.String(),
			"reason":  reason,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.PirepsReviewed.WithLabelValues(model.StatusRejected).Inc()
	return s.reloadAndNotify(ctx, id, events.PirepRejected)
}

func (s *pirepService) reloadAndNotify(ctx context.Context, id uuid.UUID, eventType string) (*PirepResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("pirep", err)
	}
	res := toPirepResponse(p)
	s.notifier.Notify(ctx, pirepEvent(eventType, res))
	return res, nil
}

// rewardInput gathers the three multipliers: aircraft type, the pilot's home base and
// the active hour brackets.
func (s *pirepService) rewardInput(ctx context.Context, p *model.Pirep, profile *model.Profile) (reward.Input, error) {
	in := reward.Input{
		AircraftMultiplier: decimal.NewFromInt(1),
		BaseMultiplier:     decimal.NewFromInt(1),
		Hours:              p.FlightHours,
		LandingRate:        p.LandingRate,
	}

	ac, err := s.aircraft.FindByID(ctx, p.AircraftID)
	switch {
	case err == nil:
		in.AircraftMultiplier = ac.Multiplier
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return in, err
	}

	if profile.BaseAirport != "" {
		base, err := s.bases.FindByICAO(ctx, profile.BaseAirport)
		switch {
		case err == nil:
			in.BaseMultiplier = base.Multiplier
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return in, err
		}
	}

	rules, err := s.hourRules.ListActive(ctx)
	if err != nil {
		return in, err
	}
	for _, r := range rules {
		in.HourRules = append(in.HourRules, reward.HourRule{MinHours: r.MinHours, MaxHours: r.MaxHours, Multiplier: r.Multiplier})
	}
	return in, nil
}
