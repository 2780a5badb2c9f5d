package database

import (
	"context"
	"time"

	"vaops/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		// unique and foreign key violations surface as gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("connected to postgres")
	return db, nil
}

// Migrate creates or updates every table, including the partial unique indexes declared on the models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Profile{},
		&model.UserRole{},
		&model.RefreshToken{},
		&model.RegistrationApproval{},
		&model.CareerRequest{},
		&model.Aircraft{},
		&model.TypeRating{},
		&model.Base{},
		&model.FlightHourMultiplier{},
		&model.RouteCatalog{},
		&model.Route{},
		&model.DispatchLeg{},
		&model.Pirep{},
		&model.FleetAircraft{},
		&model.Notam{},
		&model.AeronauticalChart{},
		&model.WalletTransaction{},
		&model.AuditLog{},
	)
}

// DefaultHourRules are seeded on an empty database so rewards price sensibly before an admin tunes them.
var DefaultHourRules = []model.FlightHourMultiplier{
	{Name: "Short haul", MinHours: decimal.NewFromInt(0), MaxHours: decimal.NewFromInt(3), Multiplier: decimal.NewFromInt(1)},
	{Name: "Medium haul", MinHours: decimal.NewFromInt(3), MaxHours: decimal.NewFromInt(8), Multiplier: decimal.RequireFromString("1.2")},
	{Name: "Long haul", MinHours: decimal.NewFromInt(8), MaxHours: decimal.NewFromInt(24), Multiplier: decimal.RequireFromString("1.5")},
}

// SeedDefaults inserts the default hour rules when none exist. It is safe to call on every start.
func SeedDefaults(ctx context.Context, db *gorm.DB) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&model.FlightHourMultiplier{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	rules := make([]model.FlightHourMultiplier, len(DefaultHourRules))
	copy(rules, DefaultHourRules)
	for i := range rules {
		rules[i].IsActive = true
	}
	if err := db.WithContext(ctx).Create(&rules).Error; err != nil {
		return 0, err
	}
	return len(rules), nil
}
