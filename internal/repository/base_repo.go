package repository

import (
	"context"

	"vaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseRepository interface {
	Create(ctx context.Context, b *model.Base) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Base, error)
	FindByICAO(ctx context.Context, icao string) (*model.Base, error)
	List(ctx context.Context, activeOnly bool) ([]model.Base, error)
	Update(ctx context.Context, b *model.Base) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type baseRepository struct {
	db *gorm.DB
}

func NewBaseRepository(db *gorm.DB) BaseRepository {
	return &baseRepository{db: db}
}

func (r *baseRepository) Create(ctx context.Context, b *model.Base) error {
	return GetDB(ctx, r.db).Create(b).Error
}

func (r *baseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Base, error) {
	var b model.Base
	if err := GetDB(ctx, r.db).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *baseRepository) FindByICAO(ctx context.Context, icao string) (*model.Base, error) {
	var b model.Base
	if err := GetDB(ctx, r.db).First(&b, "icao = ?", icao).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *baseRepository) List(ctx context.Context, activeOnly bool) ([]model.Base, error) {
	var bases []model.Base
	query := GetDB(ctx, r.db)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("icao").Find(&bases).Error; err != nil {
		return nil, err
	}
	return bases, nil
}

func (r *baseRepository) Update(ctx context.Context, b *model.Base) error {
	return GetDB(ctx, r.db).Save(b).Error
}

func (r *baseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Delete(&model.Base{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HourRuleRepository manages flight-hour multiplier brackets
type HourRuleRepository interface {
	Create(ctx context.Context, m *model.FlightHourMultiplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FlightHourMultiplier, error)
	// ListActive returns active rules ordered by multiplier, highest first.
	ListActive(ctx context.Context) ([]model.FlightHourMultiplier, error)
	List(ctx context.Context) ([]model.FlightHourMultiplier, error)
	Update(ctx context.Context, m *model.FlightHourMultiplier) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type hourRuleRepository struct {
	db *gorm.DB
}

func NewHourRuleRepository(db *gorm.DB) HourRuleRepository {
	return &hourRuleRepository{db: db}
}

func (r *hourRuleRepository) Create(ctx context.Context, m *model.FlightHourMultiplier) error {
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *hourRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FlightHourMultiplier, error) {
	var m model.FlightHourMultiplier
	if err := GetDB(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *hourRuleRepository) ListActive(ctx context.Context) ([]model.FlightHourMultiplier, error) {
	var rules []model.FlightHourMultiplier
	if err := GetDB(ctx, r.db).Where("is_active = ?", true).Order("multiplier DESC").Order("min_hours ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *hourRuleRepository) List(ctx context.Context) ([]model.FlightHourMultiplier, error) {
	var rules []model.FlightHourMultiplier
	if err := GetDB(ctx, r.db).Order("min_hours ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *hourRuleRepository) Update(ctx context.Context, m *model.FlightHourMultiplier) error {
	return GetDB(ctx, r.db).Save(m).Error
}

func (r *hourRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Delete(&model.FlightHourMultiplier{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
