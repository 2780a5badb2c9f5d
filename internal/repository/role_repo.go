package repository

import (
	"context"

	"vaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoleRepository manages role grants in user_roles
type RoleRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.UserRole, error)
	// Grant is idempotent.
	Grant(ctx context.Context, userID uuid.UUID, role string) error
	// Revoke reports whether a grant was removed.
	Revoke(ctx context.Context, userID uuid.UUID, role string) (bool, error)
	// CountHoldersForUpdate locks the grants of role and counts them.
	CountHoldersForUpdate(ctx context.Context, role string) (int64, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.UserRole, error) {
	var roles []model.UserRole
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("role ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) Grant(ctx context.Context, userID uuid.UUID, role string) error {
	return GetDB(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserRole{UserID: userID, Role: role}).Error
}

func (r *roleRepository) Revoke(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	res := GetDB(ctx, r.db).Where("user_id = ? AND role = ?", userID, role).Delete(&model.UserRole{})
	return res.RowsAffected > 0, res.Error
}

func (r *roleRepository) CountHoldersForUpdate(ctx context.Context, role string) (int64, error) {
	var ids []uuid.UUID
	if err := GetDB(ctx, r.db).Model(&model.UserRole{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("role = ?", role).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}
