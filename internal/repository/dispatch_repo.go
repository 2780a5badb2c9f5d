package repository

import (
	"context"

	"vaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DispatchRepository persists materialized routes and the legs flown on them
type DispatchRepository interface {
	CreateRoute(ctx context.Context, route *model.Route) error
	CreateLegs(ctx context.Context, legs []model.DispatchLeg) error
	FindLegByID(ctx context.Context, id uuid.UUID) (*model.DispatchLeg, error)
	FindLegByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.DispatchLeg, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]model.DispatchLeg, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]model.DispatchLeg, error)
	CountOpenByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	UpdateLeg(ctx context.Context, leg *model.DispatchLeg) error
}

type dispatchRepository struct {
	db *gorm.DB
}

func NewDispatchRepository(db *gorm.DB) DispatchRepository {
	return &dispatchRepository{db: db}
}

func (r *dispatchRepository) CreateRoute(ctx context.Context, route *model.Route) error {
	return GetDB(ctx, r.db).Create(route).Error
}

func (r *dispatchRepository) CreateLegs(ctx context.Context, legs []model.DispatchLeg) error {
	if len(legs) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Omit("Route", "Aircraft").Create(&legs).Error
}

func (r *dispatchRepository) FindLegByID(ctx context.Context, id uuid.UUID) (*model.DispatchLeg, error) {
	var leg model.DispatchLeg
	if err := GetDB(ctx, r.db).Preload("Route").Preload("Aircraft").First(&leg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &leg, nil
}

func (r *dispatchRepository) FindLegByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.DispatchLeg, error) {
	var leg model.DispatchLeg
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&leg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &leg, nil
}

func (r *dispatchRepository) ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]model.DispatchLeg, error) {
	var legs []model.DispatchLeg
	query := GetDB(ctx, r.db).Preload("Route").Preload("Aircraft").Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Order("dispatch_group_id").Order("leg_number ASC").Find(&legs).Error; err != nil {
		return nil, err
	}
	return legs, nil
}

func (r *dispatchRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]model.DispatchLeg, error) {
	var legs []model.DispatchLeg
	if err := GetDB(ctx, r.db).Preload("Route").Preload("Aircraft").
		Where("dispatch_group_id = ?", groupID).
		Order("leg_number ASC").
		Find(&legs).Error; err != nil {
		return nil, err
	}
	return legs, nil
}

func (r *dispatchRepository) CountOpenByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.DispatchLeg{}).
		Where("user_id = ? AND status <> ?", userID, model.LegCompleted).
		Count(&count).Error
	return count, err
}

func (r *dispatchRepository) UpdateLeg(ctx context.Context, leg *model.DispatchLeg) error {
	return GetDB(ctx, r.db).Omit("Route", "Aircraft").Save(leg).Error
}
