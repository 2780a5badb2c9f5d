package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vaops/internal/events"
	"vaops/internal/integration/simbrief"
	"vaops/internal/model"
	"vaops/internal/notify"
	"vaops/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type DispatchLegResponse struct {
	ID              uuid.UUID       `json:"id"`
	DispatchGroupID uuid.UUID       `json:"dispatch_group_id"`
	LegNumber       int             `json:"leg_number"`
	Status          string          `json:"status"`
	FlightNumber    string          `json:"flight_number"`
	Departure       string          `json:"departure_icao"`
	Arrival         string          `json:"arrival_icao"`
	DurationMinutes int             `json:"duration_minutes"`
	DistanceNM      int             `json:"distance_nm"`
	IsSynthetic     bool            `json:"is_synthetic"`
	AircraftID      *uuid.UUID      `json:"aircraft_id"`
	AircraftType    string          `json:"aircraft_type,omitempty"`
	FleetAircraftID *uuid.UUID      `json:"fleet_aircraft_id"`
	OFP             json.RawMessage `json:"ofp,omitempty"`
	DispatchedAt    *time.Time      `json:"dispatched_at"`
	CompletedAt     *time.Time      `json:"completed_at"`
}

type DispatchLegRequest struct {
	AttachOFP bool `json:"attach_ofp"`
}

type SimbriefLinkResponse struct {
	URL string `json:"url"`
}

// OFPSource is implemented by the SimBrief client
type OFPSource interface {
	LatestOFP(ctx context.Context, username string) (*simbrief.OFP, error)
	DispatchURL(req simbrief.DispatchRequest) string
}

type DispatchService interface {
	ListLegs(ctx context.Context, userID uuid.UUID, status string) ([]DispatchLegResponse, error)
	GetGroup(ctx context.Context, userID, groupID uuid.UUID, isAdmin bool) ([]DispatchLegResponse, error)
	DispatchLeg(ctx context.Context, userID, legID uuid.UUID, req DispatchLegRequest) (*DispatchLegResponse, error)
	SimbriefLink(ctx context.Context, userID, legID uuid.UUID) (*SimbriefLinkResponse, error)
}

type dispatchService struct {
	repo     repository.DispatchRepository
	profiles repository.ProfileRepository
	tx       repository.TransactionManager
	ofp      OFPSource
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewDispatchService(
	repo repository.DispatchRepository,
	profiles repository.ProfileRepository,
	tx repository.TransactionManager,
	ofp OFPSource,
	notifier notify.Notifier,
	log *zap.Logger,
) DispatchService {
	return &dispatchService{repo: repo, profiles: profiles, tx: tx, ofp: ofp, notifier: notifier, log: log, now: time.Now}
}

func toLegResponse(l *model.DispatchLeg) DispatchLegResponse {
	res := DispatchLegResponse{
		ID:              l.ID,
		DispatchGroupID: l.DispatchGroupID,
		LegNumber:       l.LegNumber,
		Status:          l.Status,
		AircraftID:      l.AircraftID,
		FleetAircraftID: l.FleetAircraftID,
		DispatchedAt:    l.DispatchedAt,
		CompletedAt:     l.CompletedAt,
	}
	if len(l.OFP) > 0 {
		res.OFP = json.RawMessage(l.OFP)
	}
	if l.Route != nil {
		res.FlightNumber = l.Route.FlightNumber
		res.Departure = l.Route.DepartureICAO
		res.Arrival = l.Route.ArrivalICAO
		res.DurationMinutes = l.Route.DurationMinutes
		res.DistanceNM = l.Route.DistanceNM
		res.IsSynthetic = l.Route.IsSynthetic
	}
	if l.Aircraft != nil {
		res.AircraftType = l.Aircraft.ICAOType
	}
	return res
}

func toLegResponses(legs []model.DispatchLeg) []DispatchLegResponse {
	res := make([]DispatchLegResponse, 0, len(legs))
	for i := range legs {
		res = append(res, toLegResponse(&legs[i]))
	}
	return res
}

func (s *dispatchService) ListLegs(ctx context.Context, userID uuid.UUID, status string) ([]DispatchLegResponse, error) {
	legs, err := s.repo.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	return toLegResponses(legs), nil
}

func (s *dispatchService) GetGroup(ctx context.Context, userID, groupID uuid.UUID, isAdmin bool) ([]DispatchLegResponse, error) {
	legs, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return nil, fmt.Errorf("dispatch group %w", ErrNotFound)
	}
	if !isAdmin && legs[0].UserID != userID {
		return nil, fmt.Errorf("dispatch group %w", ErrNotFound)
	}
	return toLegResponses(legs), nil
}

// DispatchLeg releases the next leg of a chain. Legs are flown in order: every earlier
// leg must already be filed or completed.
func (s *dispatchService) DispatchLeg(ctx context.Context, userID, legID uuid.UUID, req DispatchLegRequest) (*DispatchLegResponse, error) {
	var snapshot datatypes.JSON
	if req.AttachOFP {
		snapshot = s.fetchSnapshot(ctx, userID)
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		leg, err := s.repo.FindLegByIDForUpdate(txCtx, legID)
		if err != nil {
			return notFound("dispatch leg", err)
		}
		if leg.UserID != userID {
			return fmt.Errorf("dispatch leg %w", ErrNotFound)
		}
		if leg.Status != model.LegAssigned {
			return invalidState("leg is %s, only assigned legs can be dispatched", leg.Status)
		}

		group, err := s.repo.ListByGroup(txCtx, leg.DispatchGroupID)
		if err != nil {
			return err
		}
		for _, other := range group {
			if other.LegNumber >= leg.LegNumber {
				continue
			}
			if other.Status != model.LegAwaitingApproval && other.Status != model.LegCompleted {
				return invalidState("leg %d must be flown first", other.LegNumber)
			}
		}

		now := s.now()
		leg.Status = model.LegDispatched
		leg.DispatchedAt = &now
		if len(snapshot) > 0 {
			leg.OFP = snapshot
		}
		return s.repo.UpdateLeg(txCtx, leg)
	})
	if err != nil {
		return nil, err
	}

	leg, err := s.repo.FindLegByID(ctx, legID)
	if err != nil {
		return nil, notFound("dispatch leg", err)
	}
	res := toLegResponse(leg)
	s.notifier.Notify(ctx, events.Event{Type: events.LegDispatched, Audience: leg.UserID.String(), Payload: res})
	return &res, nil
}

func (s *dispatchService) SimbriefLink(ctx context.Context, userID, legID uuid.UUID) (*SimbriefLinkResponse, error) {
	leg, err := s.repo.FindLegByID(ctx, legID)
	if err != nil {
		return nil, notFound("dispatch leg", err)
	}
	if leg.UserID != userID || leg.Route == nil {
		return nil, fmt.Errorf("dispatch leg %w", ErrNotFound)
	}

	req := simbrief.DispatchRequest{
		Origin:       leg.Route.DepartureICAO,
		Destination:  leg.Route.ArrivalICAO,
		FlightNumber: leg.Route.FlightNumber,
	}
	if leg.Aircraft != nil {
		req.AircraftType = leg.Aircraft.ICAOType
	}
	return &SimbriefLinkResponse{URL: s.ofp.DispatchURL(req)}, nil
}

// fetchSnapshot returns the pilot's latest OFP summary, or nil when unavailable.
func (s *dispatchService) fetchSnapshot(ctx context.Context, userID uuid.UUID) datatypes.JSON {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil || profile.SimbriefUsername == "" {
		return nil
	}
	ofp, err := s.ofp.LatestOFP(ctx, profile.SimbriefUsername)
	if err != nil {
		s.log.Warn("simbrief fetch failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil
	}
	raw, err := json.Marshal(ofp)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
