package repository

import (
	"context"
	"time"

	"vaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotamFilter struct {
	AirportICAO string
	// ActiveAt keeps only notices in force at that instant.
	ActiveAt *time.Time
}

type NotamRepository interface {
	Create(ctx context.Context, n *model.Notam) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Notam, error)
	List(ctx context.Context, filter NotamFilter) ([]model.Notam, error)
	Update(ctx context.Context, n *model.Notam) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type notamRepository struct {
	db *gorm.DB
}

func NewNotamRepository(db *gorm.DB) NotamRepository {
	return &notamRepository{db: db}
}

func (r *notamRepository) Create(ctx context.Context, n *model.Notam) error {
	return GetDB(ctx, r.db).Create(n).Error
}

func (r *notamRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Notam, error) {
	var n model.Notam
	if err := GetDB(ctx, r.db).First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notamRepository) List(ctx context.Context, filter NotamFilter) ([]model.Notam, error) {
	var notams []model.Notam
	query := GetDB(ctx, r.db)
	if filter.AirportICAO != "" {
		query = query.Where("airport_icao = ?", filter.AirportICAO)
	}
	if filter.ActiveAt != nil {
		query = query.Where("is_active = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to > ?)",
			true, *filter.ActiveAt, *filter.ActiveAt)
	}
	priority := "CASE priority WHEN 'high' THEN 0 WHEN 'normal' THEN 1 ELSE 2 END"
	if err := query.Order(priority).Order("effective_from DESC").Find(&notams).Error; err != nil {
		return nil, err
	}
	return notams, nil
}

func (r *notamRepository) Update(ctx context.Context, n *model.Notam) error {
	return GetDB(ctx, r.db).Save(n).Error
}

func (r *notamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Delete(&model.Notam{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type ChartRepository interface {
	Create(ctx context.Context, c *model.AeronauticalChart) error
	ListByAirport(ctx context.Context, icao string) ([]model.AeronauticalChart, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type chartRepository struct {
	db *gorm.DB
}

func NewChartRepository(db *gorm.DB) ChartRepository {
	return &chartRepository{db: db}
}

func (r *chartRepository) Create(ctx context.Context, c *model.AeronauticalChart) error {
	return GetDB(ctx, r.db).Create(c).Error
}

func (r *chartRepository) ListByAirport(ctx context.Context, icao string) ([]model.AeronauticalChart, error) {
	var charts []model.AeronauticalChart
	query := GetDB(ctx, r.db)
	if icao != "" {
		query = query.Where("airport_icao = ?", icao)
	}
	if err := query.Order("airport_icao").Order("chart_type").Order("name").Find(&charts).Error; err != nil {
		return nil, err
	}
	return charts, nil
}

func (r *chartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Delete(&model.AeronauticalChart{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
