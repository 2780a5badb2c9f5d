package repository

import (
	"context"
	"time"

	"vaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FleetRepository interface {
	Create(ctx context.Context, a *model.FleetAircraft) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FleetAircraft, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FleetAircraft, error)
	// FindIdleForUpdate locks one idle airframe of the type, preferring one parked at location.
	FindIdleForUpdate(ctx context.Context, aircraftID uuid.UUID, location string) (*model.FleetAircraft, error)
	List(ctx context.Context, status string) ([]model.FleetAircraft, error)
	ListDueMaintenance(ctx context.Context, now time.Time) ([]model.FleetAircraft, error)
	Update(ctx context.Context, a *model.FleetAircraft) error
}

type fleetRepository struct {
	db *gorm.DB
}

func NewFleetRepository(db *gorm.DB) FleetRepository {
	return &fleetRepository{db: db}
}

func (r *fleetRepository) Create(ctx context.Context, a *model.FleetAircraft) error {
	return GetDB(ctx, r.db).Omit("Aircraft").Create(a).Error
}

func (r *fleetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FleetAircraft, error) {
	var a model.FleetAircraft
	if err := GetDB(ctx, r.db).Preload("Aircraft").First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *fleetRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FleetAircraft, error) {
	var a model.FleetAircraft
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *fleetRepository) FindIdleForUpdate(ctx context.Context, aircraftID uuid.UUID, location string) (*model.FleetAircraft, error) {
	var a model.FleetAircraft
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("aircraft_id = ? AND status = ?", aircraftID, model.FleetIdle).
		Order(clause.OrderBy{Expression: clause.Expr{SQL: "CASE WHEN location_icao = ? THEN 0 ELSE 1 END", Vars: []interface{}{location}}}).
		Order("total_flights ASC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *fleetRepository) List(ctx context.Context, status string) ([]model.FleetAircraft, error) {
	var fleet []model.FleetAircraft
	query := GetDB(ctx, r.db).Preload("Aircraft")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("registration").Find(&fleet).Error; err != nil {
		return nil, err
	}
	return fleet, nil
}

func (r *fleetRepository) ListDueMaintenance(ctx context.Context, now time.Time) ([]model.FleetAircraft, error) {
	var fleet []model.FleetAircraft
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND (maintenance_until IS NULL OR maintenance_until <= ?)", model.FleetMaintenance, now).
		Find(&fleet).Error
	if err != nil {
		return nil, err
	}
	return fleet, nil
}

func (r *fleetRepository) Update(ctx context.Context, a *model.FleetAircraft) error {
	return GetDB(ctx, r.db).Omit("Aircraft").Save(a).Error
}
