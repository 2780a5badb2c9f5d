package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"vaops/internal/career"
	"vaops/internal/events"
	"vaops/internal/metrics"
	"vaops/internal/model"
	"vaops/internal/notify"
	"vaops/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Assignment sources, used as metric label and audit detail
const (
	SourcePilot   = "pilot"
	SourceAdmin   = "admin"
	SourceDiscord = "discord"
)

type AutoAssignRequest struct {
	AircraftID *uuid.UUID `json:"aircraft_id"`
}

type CareerRequestDTO struct {
	AircraftID *uuid.UUID `json:"aircraft_id"`
	BaseICAO   string     `json:"base_icao" binding:"omitempty,len=4"`
	Notes      string     `json:"notes" binding:"max=1000"`
}

type CareerFilter struct {
	Status string
	Page   int
	Limit  int
}

type CareerRequestResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Username        string     `json:"username,omitempty"`
	AircraftID      *uuid.UUID `json:"aircraft_id"`
	AircraftType    string     `json:"aircraft_type,omitempty"`
	BaseICAO        string     `json:"base_icao"`
	Status          string     `json:"status"`
	DispatchGroupID *uuid.UUID `json:"dispatch_group_id"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by"`
	ReviewedAt      *string    `json:"reviewed_at"`
	Notes           string     `json:"notes"`
	CreatedAt       string     `json:"created_at"`
}

// CareerAssignment is the chain handed to a pilot
type CareerAssignment struct {
	DispatchGroupID   uuid.UUID             `json:"dispatch_group_id"`
	Base              string                `json:"base"`
	AircraftID        uuid.UUID             `json:"aircraft_id"`
	AircraftType      string                `json:"aircraft_type"`
	FleetAircraftID   *uuid.UUID            `json:"fleet_aircraft_id"`
	FleetRegistration string                `json:"fleet_registration,omitempty"`
	Legs              []DispatchLegResponse `json:"legs"`
}

type CareerService interface {
	AutoAssign(ctx context.Context, userID uuid.UUID, req AutoAssignRequest) (*CareerAssignment, error)
	AutoAssignForDiscord(ctx context.Context, discordID string) (*CareerAssignment, error)
	SubmitRequest(ctx context.Context, userID uuid.UUID, req CareerRequestDTO) (*CareerRequestResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]CareerRequestResponse, error)
	List(ctx context.Context, filter CareerFilter) ([]CareerRequestResponse, int64, error)
	AssignRequest(ctx context.Context, requestID, adminID uuid.UUID) (*CareerAssignment, error)
	RejectRequest(ctx context.Context, requestID, adminID uuid.UUID, notes string) (*CareerRequestResponse, error)
}

type careerService struct {
	requests repository.CareerRepository
	profiles repository.ProfileRepository
	aircraft repository.AircraftRepository
	catalog  repository.RouteCatalogRepository
	dispatch repository.DispatchRepository
	fleet    repository.FleetRepository
	tx       repository.TransactionManager
	audit    auditor
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewCareerService(
	requests repository.CareerRepository,
	profiles repository.ProfileRepository,
	aircraft repository.AircraftRepository,
	catalog repository.RouteCatalogRepository,
	dispatch repository.DispatchRepository,
	fleet repository.FleetRepository,
	audits repository.AuditRepository,
	tx repository.TransactionManager,
	notifier notify.Notifier,
	log *zap.Logger,
) CareerService {
	return &careerService{
		requests: requests,
		profiles: profiles,
		aircraft: aircraft,
		catalog:  catalog,
		dispatch: dispatch,
		fleet:    fleet,
		tx:       tx,
		audit:    auditor{repo: audits, log: log},
		notifier: notifier,
		log:      log,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func toCareerRequestResponse(r *model.CareerRequest) CareerRequestResponse {
	res := CareerRequestResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		AircraftID:      r.AircraftID,
		BaseICAO:        r.BaseICAO,
		Status:          r.Status,
		DispatchGroupID: r.DispatchGroupID,
		ReviewedBy:      r.ReviewedBy,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if r.User != nil {
		res.Username = r.User.Username
	}
	if r.Aircraft != nil {
		res.AircraftType = r.Aircraft.ICAOType
	}
	if r.ReviewedAt != nil {
		t := r.ReviewedAt.Format(time.RFC3339)
		res.ReviewedAt = &t
	}
	return res
}

func (s *careerService) AutoAssign(ctx context.Context, userID uuid.UUID, req AutoAssignRequest) (*CareerAssignment, error) {
	var out *CareerAssignment
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		profile, err := s.profiles.GetByIDForUpdate(txCtx, userID)
		if err != nil {
			return notFound("profile", err)
		}

		out, err = s.assign(txCtx, profile, req.AircraftID, "", SourcePilot)
		if err != nil {
			return err
		}

		return s.recordSelfAssignment(txCtx, userID, out, "auto-assigned")
	})
	if err != nil {
		return nil, err
	}

	s.afterAssign(ctx, userID, out, SourcePilot)
	return out, nil
}

func (s *careerService) AutoAssignForDiscord(ctx context.Context, discordID string) (*CareerAssignment, error) {
	profile, err := s.profiles.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, notFound("pilot linked to this discord account", err)
	}

	var out *CareerAssignment
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		locked, err := s.profiles.GetByIDForUpdate(txCtx, profile.ID)
		if err != nil {
			return notFound("profile", err)
		}
		out, err = s.assign(txCtx, locked, nil, "", SourceDiscord)
		if err != nil {
			return err
		}
		return s.recordSelfAssignment(txCtx, locked.ID, out, "assigned from discord")
	})
	if err != nil {
		return nil, err
	}

	s.afterAssign(ctx, profile.ID, out, SourceDiscord)
	return out, nil
}

// recordSelfAssignment books a chain the pilot picked up without review. A request
// still waiting for an admin is fulfilled by it rather than left pending.
func (s *careerService) recordSelfAssignment(ctx context.Context, userID uuid.UUID, out *CareerAssignment, notes string) error {
	now := s.now()
	pending, err := s.requests.FindPendingByUser(ctx, userID)
	switch {
	case err == nil:
		pending.Status = model.StatusApproved
		pending.AircraftID = &out.AircraftID
		pending.BaseICAO = out.Base
		pending.DispatchGroupID = &out.DispatchGroupID
		pending.ReviewedAt = &now
		pending.Notes = strings.TrimSpace(pending.Notes + " (" + notes + ")")
		if err := s.requests.Update(ctx, pending); err != nil {
			return fmt.Errorf("failed to update career request: %w", err)
		}
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	return s.requests.Create(ctx, &model.CareerRequest{
		UserID:          userID,
		AircraftID:      &out.AircraftID,
		BaseICAO:        out.Base,
		Status:          model.StatusApproved,
		DispatchGroupID: &out.DispatchGroupID,
		ReviewedAt:      &now,
		Notes:           notes,
	})
}

func (s *careerService) SubmitRequest(ctx context.Context, userID uuid.UUID, req CareerRequestDTO) (*CareerRequestResponse, error) {
	var created *model.CareerRequest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		profile, err := s.profiles.GetByIDForUpdate(txCtx, userID)
		if err != nil {
			return notFound("profile", err)
		}
		if !profile.IsApproved {
			return fmt.Errorf("%w: account pending approval", ErrForbidden)
		}

		if _, err := s.requests.FindPendingByUser(txCtx, userID); err == nil {
			return fmt.Errorf("%w: a career request is already pending", ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if req.AircraftID != nil {
			ac, err := s.aircraft.FindByID(txCtx, *req.AircraftID)
			if err != nil {
				return notFound("aircraft", err)
			}
			if !ac.IsActive {
				return validation("aircraft %s is not active", ac.ICAOType)
			}
		}

		created = &model.CareerRequest{
			UserID:     userID,
			AircraftID: req.AircraftID,
			BaseICAO:   strings.ToUpper(strings.TrimSpace(req.BaseICAO)),
			Status:     model.StatusPending,
			Notes:      req.Notes,
		}
		if err := s.requests.Create(txCtx, created); err != nil {
			return fmt.Errorf("failed to create career request: %w", err)
		}
		return s.audit.record(txCtx, &userID, model.ActionCreateCareerRequest, created.ID.String(), profile.Username, map[string]interface{}{
			"aircraft_id": req.AircraftID,
			"base":        created.BaseICAO,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, events.Event{Type: events.CareerRequested, Audience: userID.String(), Payload: map[string]string{
		"request_id": created.ID.String(),
		"user_id":    userID.String(),
	}})
	res := toCareerRequestResponse(created)
	return &res, nil
}

func (s *careerService) ListMine(ctx context.Context, userID uuid.UUID) ([]CareerRequestResponse, error) {
	rows, err := s.requests.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := make([]CareerRequestResponse, 0, len(rows))
	for i := range rows {
		res = append(res, toCareerRequestResponse(&rows[i]))
	}
	return res, nil
}

func (s *careerService) List(ctx context.Context, filter CareerFilter) ([]CareerRequestResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	rows, total, err := s.requests.List(ctx, filter.Status, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]CareerRequestResponse, 0, len(rows))
	for i := range rows {
		res = append(res, toCareerRequestResponse(&rows[i]))
	}
	return res, total, nil
}

// AssignRequest builds a chain for a pending request and approves it.
func (s *careerService) AssignRequest(ctx context.Context, requestID, adminID uuid.UUID) (*CareerAssignment, error) {
	var (
		out    *CareerAssignment
		userID uuid.UUID
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.requests.FindByIDForUpdate(txCtx, requestID)
		if err != nil {
			return notFound("career request", err)
		}
		if req.Status != model.StatusPending {
			return fmt.Errorf("%w: career request is already %s", ErrNotPending, req.Status)
		}
		userID = req.UserID

		profile, err := s.profiles.GetByIDForUpdate(txCtx, req.UserID)
		if err != nil {
			return notFound("profile", err)
		}

		out, err = s.assign(txCtx, profile, req.AircraftID, req.BaseICAO, SourceAdmin)
		if err != nil {
			return err
		}

		now := s.now()
		req.Status = model.StatusApproved
		req.DispatchGroupID = &out.DispatchGroupID
		req.AircraftID = &out.AircraftID
		req.BaseICAO = out.Base
		req.ReviewedBy = &adminID
		req.ReviewedAt = &now
		if err := s.requests.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update career request: %w", err)
		}
		return s.audit.record(txCtx, &adminID, model.ActionAssignCareer, req.ID.String(), profile.Username, map[string]interface{}{
			"dispatch_group_id": out.DispatchGroupID.String(),
			"legs":              len(out.Legs),
			"source":            SourceAdmin,
		})
	})
	if err != nil {
		return nil, err
	}

	s.afterAssign(ctx, userID, out, SourceAdmin)
	return out, nil
}

func (s *careerService) RejectRequest(ctx context.Context, requestID, adminID uuid.UUID, notes string) (*CareerRequestResponse, error) {
	var req *model.CareerRequest
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.requests.FindByIDForUpdate(txCtx, requestID)
		if err != nil {
			return notFound("career request", err)
		}
		if req.Status != model.StatusPending {
			return fmt.Errorf("%w: career request is already %s", ErrNotPending, req.Status)
		}

		now := s.now()
		req.Status = model.StatusRejected
		req.ReviewedBy = &adminID
		req.ReviewedAt = &now
		if notes != "" {
			req.Notes = notes
		}
		if err := s.requests.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update career request: %w", err)
		}
		return s.audit.record(txCtx, &adminID, model.ActionRejectCareer, req.ID.String(), req.UserID.String(), map[string]interface{}{
			"notes": notes,
		})
	})
	if err != nil {
		return nil, err
	}
	res := toCareerRequestResponse(req)
	return &res, nil
}

// assign builds and persists a chain for a locked profile. baseOverride replaces the
// profile's home base when set.
func (s *careerService) assign(ctx context.Context, profile *model.Profile, aircraftID *uuid.UUID, baseOverride, source string) (*CareerAssignment, error) {
	if !profile.IsApproved {
		return nil, fmt.Errorf("%w: account pending approval", ErrForbidden)
	}

	base := strings.ToUpper(strings.TrimSpace(baseOverride))
	if base == "" {
		base = strings.ToUpper(strings.TrimSpace(profile.BaseAirport))
	}
	if base == "" {
		return nil, validation("pilot has no base airport")
	}

	open, err := s.dispatch.CountOpenByUser(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, fmt.Errorf("%w: pilot still has %d unfinished legs", ErrConflict, open)
	}

	ac, err := s.pickAircraft(ctx, aircraftID)
	if err != nil {
		return nil, err
	}

	entries, err := s.catalog.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load route catalog: %w", err)
	}
	pool := routePool(entries, ac.Family, base)

	s.rngMu.Lock()
	legs := career.BuildChain(s.rng, base, career.RandomLegCount(s.rng), pool)
	s.rngMu.Unlock()

	out := &CareerAssignment{
		DispatchGroupID: uuid.New(),
		Base:            base,
		AircraftID:      ac.ID,
		AircraftType:    ac.ICAOType,
	}

	airframe, err := s.fleet.FindIdleForUpdate(ctx, ac.ID, base)
	switch {
	case err == nil:
		airframe.Status = model.FleetInFlight
		if err := s.fleet.Update(ctx, airframe); err != nil {
			return nil, fmt.Errorf("failed to reserve airframe: %w", err)
		}
		out.FleetAircraftID = &airframe.ID
		out.FleetRegistration = airframe.Registration
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.log.Info("no idle airframe for assignment", zap.String("aircraft", ac.ICAOType), zap.String("base", base))
	default:
		return nil, fmt.Errorf("failed to reserve airframe: %w", err)
	}

	rows := make([]model.DispatchLeg, 0, len(legs))
	for _, l := range legs {
		route := &model.Route{
			FlightNumber:    l.FlightNumber,
			DepartureICAO:   l.Departure,
			ArrivalICAO:     l.Arrival,
			AircraftID:      &ac.ID,
			DurationMinutes: l.DurationMinutes,
			DistanceNM:      l.DistanceNM,
			CatalogID:       l.CatalogID,
			IsSynthetic:     l.Synthetic,
		}
		if err := s.dispatch.CreateRoute(ctx, route); err != nil {
			return nil, fmt.Errorf("failed to create route: %w", err)
		}
		rows = append(rows, model.DispatchLeg{
			DispatchGroupID: out.DispatchGroupID,
			LegNumber:       l.Number,
			UserID:          profile.ID,
			RouteID:         route.ID,
			Route:           route,
			AircraftID:      &ac.ID,
			Aircraft:        ac,
			FleetAircraftID: out.FleetAircraftID,
			Status:          model.LegAssigned,
		})
	}
	if err := s.dispatch.CreateLegs(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to create dispatch legs: %w", err)
	}

	for i := range rows {
		out.Legs = append(out.Legs, toLegResponse(&rows[i]))
	}

	if source != SourceAdmin {
		err = s.audit.record(ctx, &profile.ID, model.ActionAssignCareer, out.DispatchGroupID.String(), profile.Username, map[string]interface{}{
			"legs":   len(legs),
			"base":   base,
			"source": source,
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *careerService) pickAircraft(ctx context.Context, id *uuid.UUID) (*model.Aircraft, error) {
	if id != nil {
		ac, err := s.aircraft.FindByID(ctx, *id)
		if err != nil {
			return nil, notFound("aircraft", err)
		}
		if !ac.IsActive {
			return nil, validation("aircraft %s is not active", ac.ICAOType)
		}
		return ac, nil
	}

	all, err := s.aircraft.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, validation("no active aircraft configured")
	}
	s.rngMu.Lock()
	ac := all[s.rng.Intn(len(all))]
	s.rngMu.Unlock()
	return &ac, nil
}

func (s *careerService) afterAssign(ctx context.Context, userID uuid.UUID, out *CareerAssignment, source string) {
	metrics.CareersAssigned.WithLabelValues(source).Inc()
	for _, l := range out.Legs {
		if l.IsSynthetic {
			metrics.SyntheticLegs.Inc()
		}
	}
	s.log.Info("career assigned",
		zap.String("user_id", userID.String()),
		zap.String("group", out.DispatchGroupID.String()),
		zap.Int("legs", len(out.Legs)),
		zap.String("source", source),
	)
	s.notifier.Notify(ctx, events.Event{Type: events.CareerAssigned, Audience: userID.String(), Payload: events.CareerPayload{
		UserID:          userID.String(),
		DispatchGroupID: out.DispatchGroupID.String(),
		Base:            out.Base,
		Legs:            len(out.Legs),
		Source:          source,
	}})
}

// routePool converts the catalog, keeping only routes flyable by family when that
// still leaves a departure from base.
func routePool(entries []model.RouteCatalog, family, base string) []career.CatalogRoute {
	all := make([]career.CatalogRoute, 0, len(entries))
	var matching []career.CatalogRoute
	matchingFromBase := false

	for _, e := range entries {
		r := career.CatalogRoute{
			ID:              e.ID,
			FlightNumber:    e.FlightNumber,
			Departure:       e.DepartureICAO,
			Arrival:         e.ArrivalICAO,
			DurationMinutes: e.DurationMinutes,
		}
		all = append(all, r)

		if family == "" || e.AircraftFamily == "" || strings.EqualFold(e.AircraftFamily, family) {
			matching = append(matching, r)
			if strings.EqualFold(strings.TrimSpace(e.DepartureICAO), base) {
				matchingFromBase = true
			}
		}
	}

	if family != "" && matchingFromBase {
		return matching
	}
	return all
}
