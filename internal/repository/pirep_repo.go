package repository

import (
	"context"

	"vaops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PirepSummary aggregates a pilot's logbook
type PirepSummary struct {
	Flights int64           `json:"flights"`
	Hours   decimal.Decimal `json:"hours"`
	XP      int64           `json:"xp"`
	Money   int64           `json:"money"`
}

type PirepFilter struct {
	UserID *uuid.UUID
	Status string
	// Statuses restricts to any of the given values when Status is empty.
	Statuses []string
}

type PirepRepository interface {
	Create(ctx context.Context, p *model.Pirep) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pirep, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Pirep, error)
	// FindByLeg returns the open (pending or approved) report of a leg.
	FindByLeg(ctx context.Context, legID uuid.UUID) (*model.Pirep, error)
	List(ctx context.Context, filter PirepFilter, page, limit int) ([]model.Pirep, int64, error)
	Summary(ctx context.Context, userID uuid.UUID) (*PirepSummary, error)
	Update(ctx context.Context, p *model.Pirep) error
}

type pirepRepository struct {
	db *gorm.DB
}

func NewPirepRepository(db *gorm.DB) PirepRepository {
	return &pirepRepository{db: db}
}

func (r *pirepRepository) Create(ctx context.Context, p *model.Pirep) error {
	return GetDB(ctx, r.db).Omit("User", "Aircraft").Create(p).Error
}

func (r *pirepRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Pirep, error) {
	var p model.Pirep
	if err := GetDB(ctx, r.db).Preload("User").Preload("Aircraft").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pirepRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Pirep, error) {
	var p model.Pirep
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pirepRepository) FindByLeg(ctx context.Context, legID uuid.UUID) (*model.Pirep, error) {
	var p model.Pirep
	if err := GetDB(ctx, r.db).First(&p, "dispatch_leg_id = ? AND status <> ?", legID, model.StatusRejected).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pirepRepository) applyFilter(q *gorm.DB, f PirepFilter) *gorm.DB {
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	} else if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	return q
}

func (r *pirepRepository) List(ctx context.Context, filter PirepFilter, page, limit int) ([]model.Pirep, int64, error) {
	var pireps []model.Pirep
	var total int64

	db := GetDB(ctx, r.db)
	if err := r.applyFilter(db.Model(&model.Pirep{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := r.applyFilter(db.Preload("User").Preload("Aircraft"), filter).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&pireps).Error; err != nil {
		return nil, 0, err
	}
	return pireps, total, nil
}

func (r *pirepRepository) Summary(ctx context.Context, userID uuid.UUID) (*PirepSummary, error) {
	var s PirepSummary
	err := GetDB(ctx, r.db).Model(&model.Pirep{}).
		Select("COUNT(*) AS flights, COALESCE(SUM(flight_hours), 0) AS hours, COALESCE(SUM(xp_earned), 0) AS xp, COALESCE(SUM(money_earned), 0) AS money").
		Where("user_id = ? AND status = ?", userID, model.StatusApproved).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *pirepRepository) Update(ctx context.Context, p *model.Pirep) error {
	return GetDB(ctx, r.db).Omit("User", "Aircraft").Save(p).Error
}
