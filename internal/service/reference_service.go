package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vaops/internal/model"
	"vaops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AircraftRequest struct {
	ICAOType        string          `json:"icao_type" binding:"required,max=8"`
	Name            string          `json:"name" binding:"required"`
	Family          string          `json:"family"`
	Multiplier      decimal.Decimal `json:"multiplier"`
	TypeRatingPrice int64           `json:"type_rating_price" binding:"gte=0"`
	IsActive        *bool           `json:"is_active"`
}

type BaseRequest struct {
	ICAO       string          `json:"icao" binding:"required,len=4"`
	Name       string          `json:"name" binding:"required"`
	Multiplier decimal.Decimal `json:"multiplier"`
	IsActive   *bool           `json:"is_active"`
}

type HourRuleRequest struct {
	Name       string          `json:"name" binding:"required"`
	MinHours   decimal.Decimal `json:"min_hours"`
	MaxHours   decimal.Decimal `json:"max_hours"`
	Multiplier decimal.Decimal `json:"multiplier"`
	IsActive   *bool           `json:"is_active"`
}

// ReferenceService manages the admin-maintained lookup tables.
type ReferenceService interface {
	ListAircraft(ctx context.Context, activeOnly bool) ([]model.Aircraft, error)
	CreateAircraft(ctx context.Context, adminID uuid.UUID, req AircraftRequest) (*model.Aircraft, error)
	UpdateAircraft(ctx context.Context, adminID, id uuid.UUID, req AircraftRequest) (*model.Aircraft, error)
	DeleteAircraft(ctx context.Context, adminID, id uuid.UUID) error

	ListBases(ctx context.Context, activeOnly bool) ([]model.Base, error)
	CreateBase(ctx context.Context, adminID uuid.UUID, req BaseRequest) (*model.Base, error)
	UpdateBase(ctx context.Context, adminID, id uuid.UUID, req BaseRequest) (*model.Base, error)
	DeleteBase(ctx context.Context, adminID, id uuid.UUID) error

	ListHourRules(ctx context.Context) ([]model.FlightHourMultiplier, error)
	CreateHourRule(ctx context.Context, adminID uuid.UUID, req HourRuleRequest) (*model.FlightHourMultiplier, error)
	UpdateHourRule(ctx context.Context, adminID, id uuid.UUID, req HourRuleRequest) (*model.FlightHourMultiplier, error)
	DeleteHourRule(ctx context.Context, adminID, id uuid.UUID) error
}

type referenceService struct {
	aircraft  repository.AircraftRepository
	bases     repository.BaseRepository
	hourRules repository.HourRuleRepository
	audit     auditor
}

func NewReferenceService(
	aircraft repository.AircraftRepository,
	bases repository.BaseRepository,
	hourRules repository.HourRuleRepository,
	audits repository.AuditRepository,
	log *zap.Logger,
) ReferenceService {
	return &referenceService{
		aircraft:  aircraft,
		bases:     bases,
		hourRules: hourRules,
		audit:     auditor{repo: audits, log: log},
	}
}

// multiplierOrOne treats an omitted multiplier as neutral.
func multiplierOrOne(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsZero() {
		return decimal.NewFromInt(1), nil
	}
	if d.IsNegative() {
		return d, validation("multiplier must be positive")
	}
	return d, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func duplicate(entity string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s already exists", ErrConflict, entity)
	}
	return err
}

// removed maps delete failures: a missing row or a row still referenced elsewhere.
func removed(entity string, err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %s is still in use", ErrConflict, entity)
	}
	return notFound(entity, err)
}

func (s *referenceService) ListAircraft(ctx context.Context, activeOnly bool) ([]model.Aircraft, error) {
	return s.aircraft.List(ctx, activeOnly)
}

func (s *referenceService) CreateAircraft(ctx context.Context, adminID uuid.UUID, req AircraftRequest) (*model.Aircraft, error) {
	mult, err := multiplierOrOne(req.Multiplier)
	if err != nil {
		return nil, err
	}
	a := &model.Aircraft{
		ICAOType:        strings.ToUpper(strings.TrimSpace(req.ICAOType)),
		Name:            req.Name,
		Family:          req.Family,
		Multiplier:      mult,
		TypeRatingPrice: req.TypeRatingPrice,
		IsActive:        boolOr(req.IsActive, true),
	}
	if err := s.aircraft.Create(ctx, a); err != nil {
		return nil, duplicate("aircraft "+a.ICAOType, err)
	}
	if err := s.audit.record(ctx, &adminID, model.ActionUpsertReference, a.ID.String(), a.ICAOType, map[string]interface{}{"table": "aircraft"}); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *referenceService) UpdateAircraft(ctx context.Context, adminID, id uuid.UUID, req AircraftRequest) (*model.Aircraft, error) {
	a, err := s.aircraft.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("aircraft", err)
	}
	mult, err := multiplierOrOne(req.Multiplier)
	if err != nil {
		return nil, err
	}
	a.ICAOType = strings.ToUpper(strings.TrimSpace(req.ICAOType))
	a.Name = req.Name
	a.Family = req.Family
	a.Multiplier = mult
	a.TypeRatingPrice = req.TypeRatingPrice
	a.IsActive = boolOr(req.IsActive, a.IsActive)
	if err := s.aircraft.Update(ctx, a); err != nil {
		return nil, duplicate("aircraft "+a.ICAOType, err)
	}
	if err := s.audit.record(ctx, &adminID, model.ActionUpsertReference, a.ID.String(), a.ICAOType, map[string]interface{}{"table": "aircraft"}); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *referenceService) DeleteAircraft(ctx context.Context, adminID, id uuid.UUID) error {
	if err := s.aircraft.Delete(ctx, id); err != nil {
		return removed("aircraft", err)
	}
	return s.audit.record(ctx, &adminID, model.ActionDeleteReference, id.String(), "", map[string]interface{}{"table": "aircraft"})
}

func (s *referenceService) ListBases(ctx context.Context, activeOnly bool) ([]model.Base, error) {
	return s.bases.List(ctx, activeOnly)
}

func (s *referenceService) CreateBase(ctx context.Context, adminID uuid.UUID, req BaseRequest) (*model.Base, error) {
	mult, err := multiplierOrOne(req.Multiplier)
	if err != nil {
		return nil, err
	}
	b := &model.Base{
		ICAO:       strings.ToUpper(strings.TrimSpace(req.ICAO)),
		Name:       req.Name,
		Multiplier: mult,
		IsActive:   boolOr(req.IsActive, true),
	}
	if err := s.bases.Create(ctx, b); err != nil {
		return nil, duplicate("base "+b.ICAO, err)
	}
	if err := s.audit.record(ctx, &adminID, model.ActionUpsertReference, b.ID.String(), b.ICAO, map[string]interface{}{"table": "bases"}); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *referenceService) UpdateBase(ctx context.Context, adminID, id uuid.UUID, req BaseRequest) (*model.Base, error) {
	b, err := s.bases.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("base", err)
	}
	mult, err := multiplierOrOne(req.Multiplier)
	if err != nil {
		return nil, err
	}
	b.ICAO = strings.ToUpper(strings.TrimSpace(req.ICAO))
	b.Name = req.Name
	b.Multiplier = mult
	b.IsActive = boolOr(req.IsActive, b.IsActive)
	if err := s.bases.Update(ctx, b); err != nil {
		return nil, duplicate("base "+b.ICAO, err)
	}
	if err := s.audit.record(ctx, &adminID, model.ActionUpsertReference, b.ID.String(), b.ICAO, map[string]interface{}{"table": "bases"}); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *referenceService) DeleteBase(ctx context.Context, adminID, id uuid.UUID) error {
	if err := s.bases.Delete(ctx, id); err != nil {
		return removed("base", err)
	}
	return s.audit.record(ctx, &adminID, model.ActionDeleteReference, id.String(), "", map[string]interface{}{"table": "bases"})
}

func (s *referenceService) ListHourRules(ctx context.Context) ([]model.FlightHourMultiplier, error) {
	return s.hourRules.List(ctx)
}

func validateHourRule(req HourRuleRequest) (decimal.Decimal, error) {
	if req.MinHours.IsNegative() {
		return decimal.Zero, validation("min_hours must not be negative")
	}
	if req.MaxHours.LessThan(req.MinHours) {
		return decimal.Zero, validation("max_hours must be at least min_hours")
	}
	return multiplierOrOne(req.Multiplier)
}

func (s *referenceService) CreateHourRule(ctx context.Context, adminID uuid.UUID, req HourRuleRequest) (*model.FlightHourMultiplier, error) {
	mult, err := validateHourRule(req)
	if err != nil {
		return nil, err
	}
	m := &model.FlightHourMultiplier{
		Name:       req.Name,
		MinHours:   req.MinHours,
		MaxHours:   req.MaxHours,
		Multiplier: mult,
		IsActive:   boolOr(req.IsActive, true),
	}
	if err := s.hourRules.Create(ctx, m); err != nil {
		return nil, err
	}
	if err := s.audit.record(ctx, &adminID, model.ActionUpsertReference, m.ID.String(), m.Name, map[string]interface{}{"table": "flight_hour_multipliers"}); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *referenceService) UpdateHourRule(ctx context.Context, adminID, id uuid.UUID, req HourRuleRequest) (*model.FlightHourMultiplier, error) {
	m, err := s.hourRules.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("hour multiplier", err)
	}
	mult, err := validateHourRule(req)
	if err != nil {
		return nil, err
	}
	m.Name = req.Name
	m.MinHours = req.MinHours
	m.MaxHours = req.MaxHours
	m.Multiplier = mult
	m.IsActive = boolOr(req.IsActive, m.IsActive)
	if err := s.hourRules.Update(ctx, m); err != nil {
		return nil, err
	}
	if err := s.audit.record(ctx, &adminID, model.ActionUpsertReference, m.ID.String(), m.Name, map[string]interface{}{"table": "flight_hour_multipliers"}); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *referenceService) DeleteHourRule(ctx context.Context, adminID, id uuid.UUID) error {
	if err := s.hourRules.Delete(ctx, id); err != nil {
		return removed("hour multiplier", err)
	}
	return s.audit.record(ctx, &adminID, model.ActionDeleteReference, id.String(), "", map[string]interface{}{"table": "flight_hour_multipliers"})
}
