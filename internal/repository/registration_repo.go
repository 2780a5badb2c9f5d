package repository

import (
	"context"

	"vaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegistrationRepository interface {
	Create(ctx context.Context, req *model.RegistrationApproval) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.RegistrationApproval, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.RegistrationApproval, error)
	List(ctx context.Context, status string, page, limit int) ([]model.RegistrationApproval, int64, error)
	Update(ctx context.Context, req *model.RegistrationApproval) error
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) Create(ctx context.Context, req *model.RegistrationApproval) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *registrationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.RegistrationApproval, error) {
	var req model.RegistrationApproval
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *registrationRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.RegistrationApproval, error) {
	var req model.RegistrationApproval
	if err := GetDB(ctx, r.db).Preload("User").Preload("Reviewer").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *registrationRepository) List(ctx context.Context, status string, page, limit int) ([]model.RegistrationApproval, int64, error) {
	var requests []model.RegistrationApproval
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.RegistrationApproval{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("User").Preload("Reviewer")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *registrationRepository) Update(ctx context.Context, req *model.RegistrationApproval) error {
	return GetDB(ctx, r.db).Omit("User", "Reviewer").Save(req).Error
}
