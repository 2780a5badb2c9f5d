package repository

import (
	"context"

	"vaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AircraftRepository interface {
	Create(ctx context.Context, a *model.Aircraft) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Aircraft, error)
	FindByICAOType(ctx context.Context, icaoType string) (*model.Aircraft, error)
	List(ctx context.Context, activeOnly bool) ([]model.Aircraft, error)
	Update(ctx context.Context, a *model.Aircraft) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type aircraftRepository struct {
	db *gorm.DB
}

func NewAircraftRepository(db *gorm.DB) AircraftRepository {
	return &aircraftRepository{db: db}
}

func (r *aircraftRepository) Create(ctx context.Context, a *model.Aircraft) error {
	return GetDB(ctx, r.db).Create(a).Error
}

func (r *aircraftRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Aircraft, error) {
	var a model.Aircraft
	if err := GetDB(ctx, r.db).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *aircraftRepository) FindByICAOType(ctx context.Context, icaoType string) (*model.Aircraft, error) {
	var a model.Aircraft
	if err := GetDB(ctx, r.db).First(&a, "icao_type = ?", icaoType).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *aircraftRepository) List(ctx context.Context, activeOnly bool) ([]model.Aircraft, error) {
	var aircraft []model.Aircraft
	query := GetDB(ctx, r.db)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("icao_type").Find(&aircraft).Error; err != nil {
		return nil, err
	}
	return aircraft, nil
}

func (r *aircraftRepository) Update(ctx context.Context, a *model.Aircraft) error {
	return GetDB(ctx, r.db).Save(a).Error
}

func (r *aircraftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Delete(&model.Aircraft{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TypeRatingRepository tracks shop purchases
type TypeRatingRepository interface {
	Create(ctx context.Context, t *model.TypeRating) error
	Exists(ctx context.Context, userID, aircraftID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.TypeRating, error)
}

type typeRatingRepository struct {
	db *gorm.DB
}

func NewTypeRatingRepository(db *gorm.DB) TypeRatingRepository {
	return &typeRatingRepository{db: db}
}

func (r *typeRatingRepository) Create(ctx context.Context, t *model.TypeRating) error {
	return GetDB(ctx, r.db).Omit("Aircraft").Create(t).Error
}

func (r *typeRatingRepository) Exists(ctx context.Context, userID, aircraftID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.TypeRating{}).
		Where("user_id = ? AND aircraft_id = ?", userID, aircraftID).
		Count(&count).Error
	return count > 0, err
}

func (r *typeRatingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.TypeRating, error) {
	var ratings []model.TypeRating
	if err := GetDB(ctx, r.db).Preload("Aircraft").Where("user_id = ?", userID).Order("purchased_at").Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}
