package repository

import (
	"context"

	"vaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CareerRepository interface {
	Create(ctx context.Context, req *model.CareerRequest) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.CareerRequest, error)
	FindPendingByUser(ctx context.Context, userID uuid.UUID) (*model.CareerRequest, error)
	List(ctx context.Context, status string, page, limit int) ([]model.CareerRequest, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CareerRequest, error)
	Update(ctx context.Context, req *model.CareerRequest) error
}

type careerRepository struct {
	db *gorm.DB
}

func NewCareerRepository(db *gorm.DB) CareerRepository {
	return &careerRepository{db: db}
}

func (r *careerRepository) Create(ctx context.Context, req *model.CareerRequest) error {
	return GetDB(ctx, r.db).Omit("User", "Aircraft").Create(req).Error
}

func (r *careerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.CareerRequest, error) {
	var req model.CareerRequest
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *careerRepository) FindPendingByUser(ctx context.Context, userID uuid.UUID) (*model.CareerRequest, error) {
	var req model.CareerRequest
	if err := GetDB(ctx, r.db).First(&req, "user_id = ? AND status = ?", userID, model.StatusPending).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *careerRepository) List(ctx context.Context, status string, page, limit int) ([]model.CareerRequest, int64, error) {
	var requests []model.CareerRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.CareerRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Preload("User").Preload("Aircraft")
	if status != "" {
		fetch = fetch.Where("status = ?", status)
	}
	if err := fetch.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *careerRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CareerRequest, error) {
	var requests []model.CareerRequest
	if err := GetDB(ctx, r.db).Preload("Aircraft").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *careerRepository) Update(ctx context.Context, req *model.CareerRequest) error {
	return GetDB(ctx, r.db).Omit("User", "Aircraft").Save(req).Error
}
