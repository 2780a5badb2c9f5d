package repository

import (
	"context"

	"vaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WalletRepository interface {
	Create(ctx context.Context, entry *model.WalletTransaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.WalletTransaction, int64, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) Create(ctx context.Context, entry *model.WalletTransaction) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *walletRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.WalletTransaction, int64, error) {
	var entries []model.WalletTransaction
	var total int64

	q := GetDB(ctx, r.db).Model(&model.WalletTransaction{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
