package repository

import (
	"context"

	"vaops/internal/model"

	"gorm.io/gorm"
)

const catalogBatchSize = 200

type RouteCatalogRepository interface {
	ListActive(ctx context.Context) ([]model.RouteCatalog, error)
	List(ctx context.Context, departure string, page, limit int) ([]model.RouteCatalog, int64, error)
	CreateBatch(ctx context.Context, entries []model.RouteCatalog) error
	DeactivateAll(ctx context.Context) (int64, error)
}

type routeCatalogRepository struct {
	db *gorm.DB
}

func NewRouteCatalogRepository(db *gorm.DB) RouteCatalogRepository {
	return &routeCatalogRepository{db: db}
}

func (r *routeCatalogRepository) ListActive(ctx context.Context) ([]model.RouteCatalog, error) {
	var entries []model.RouteCatalog
	if err := GetDB(ctx, r.db).Where("is_active = ?", true).Order("flight_number").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *routeCatalogRepository) List(ctx context.Context, departure string, page, limit int) ([]model.RouteCatalog, int64, error) {
	var entries []model.RouteCatalog
	var total int64

	query := GetDB(ctx, r.db).Model(&model.RouteCatalog{}).Where("is_active = ?", true)
	if departure != "" {
		query = query.Where("departure_icao = ?", departure)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("flight_number").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *routeCatalogRepository) CreateBatch(ctx context.Context, entries []model.RouteCatalog) error {
	if len(entries) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).CreateInBatches(entries, catalogBatchSize).Error
}

func (r *routeCatalogRepository) DeactivateAll(ctx context.Context) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.RouteCatalog{}).Where("is_active = ?", true).Update("is_active", false)
	return res.RowsAffected, res.Error
}
