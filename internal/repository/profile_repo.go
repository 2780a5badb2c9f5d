package repository

import (
	"context"

	"vaops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Leaderboard metrics
const (
	MetricXP      = "xp"
	MetricHours   = "hours"
	MetricFlights = "flights"
)

// ProfileRepository defines the data access of pilot profiles and their roles
type ProfileRepository interface {
	Create(ctx context.Context, p *model.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)
	GetByDiscordID(ctx context.Context, discordID string) (*model.Profile, error)
	Update(ctx context.Context, p *model.Profile) error
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
	AddRole(ctx context.Context, id uuid.UUID, role string) error
	CreditFlight(ctx context.Context, id uuid.UUID, xp, money int64, hours decimal.Decimal) error
	AdjustMoney(ctx context.Context, id uuid.UUID, delta int64) error
	Leaderboard(ctx context.Context, metric string, limit int) ([]model.Profile, error)
	List(ctx context.Context, page, limit int) ([]model.Profile, int64, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new instance of ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, p *model.Profile) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var p model.Profile
	if err := GetDB(ctx, r.db).Preload("Roles").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var p model.Profile
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var p model.Profile
	if err := GetDB(ctx, r.db).Preload("Roles").First(&p, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	var p model.Profile
	if err := GetDB(ctx, r.db).First(&p, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) GetByDiscordID(ctx context.Context, discordID string) (*model.Profile, error) {
	var p model.Profile
	if err := GetDB(ctx, r.db).First(&p, "discord_id = ?", discordID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Update(ctx context.Context, p *model.Profile) error {
	return GetDB(ctx, r.db).Omit("Roles").Save(p).Error
}

func (r *profileRepository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	return GetDB(ctx, r.db).Model(&model.Profile{}).Where("id = ?", id).Update("is_approved", approved).Error
}

func (r *profileRepository) AddRole(ctx context.Context, id uuid.UUID, role string) error {
	return GetDB(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserRole{UserID: id, Role: role}).Error
}

// CreditFlight increments the career counters in a single statement.
func (r *profileRepository) CreditFlight(ctx context.Context, id uuid.UUID, xp, money int64, hours decimal.Decimal) error {
	return GetDB(ctx, r.db).Model(&model.Profile{}).Where("id = ?", id).Updates(map[string]interface{}{
		"xp":            gorm.Expr("xp + ?", xp),
		"money":         gorm.Expr("money + ?", money),
		"total_hours":   gorm.Expr("total_hours + ?", hours),
		"total_flights": gorm.Expr("total_flights + 1"),
	}).Error
}

func (r *profileRepository) AdjustMoney(ctx context.Context, id uuid.UUID, delta int64) error {
	return GetDB(ctx, r.db).Model(&model.Profile{}).Where("id = ?", id).
		Update("money", gorm.Expr("money + ?", delta)).Error
}

func (r *profileRepository) Leaderboard(ctx context.Context, metric string, limit int) ([]model.Profile, error) {
	order := "xp DESC"
	switch metric {
	case MetricHours:
		order = "total_hours DESC"
	case MetricFlights:
		order = "total_flights DESC"
	}

	var profiles []model.Profile
	if err := GetDB(ctx, r.db).
		Where("is_approved = ?", true).
		Order(order).Order("created_at ASC").
		Limit(limit).
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) List(ctx context.Context, page, limit int) ([]model.Profile, int64, error) {
	var profiles []model.Profile
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Profile{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Roles").Order("created_at desc").Offset(offset).Limit(limit).Find(&profiles).Error; err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}
