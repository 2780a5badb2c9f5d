package repository

import (
	"context"
	"fmt"
	"time"

	"vaops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatisticsRepository interface {
	FlightTotals(ctx context.Context, start, end time.Time) (model.FlightTotals, error)
	TopAircraft(ctx context.Context, start, end time.Time, limit int) ([]model.AircraftRanking, error)
	TopRoutes(ctx context.Context, start, end time.Time, limit int) ([]model.RouteRanking, error)
	Backlog(ctx context.Context) (model.Backlog, error)
	FleetByStatus(ctx context.Context) (map[string]int64, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

// approved scopes to PIREPs approved inside [start, end]
func (r *statisticsRepository) approved(ctx context.Context, start, end time.Time) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Pirep{}).
		Where("status = ? AND reviewed_at >= ? AND reviewed_at <= ?", model.StatusApproved, start, end)
}

func (r *statisticsRepository) FlightTotals(ctx context.Context, start, end time.Time) (model.FlightTotals, error) {
	var t model.FlightTotals
	err := r.approved(ctx, start, end).
		Select("COUNT(*) AS flights, COUNT(DISTINCT user_id) AS pilots, " +
			"COALESCE(SUM(flight_hours), 0) AS hours, COALESCE(SUM(xp_earned), 0) AS xp, " +
			"COALESCE(SUM(money_earned), 0) AS money, COALESCE(AVG(landing_rate), 0) AS landing_rate").
		Scan(&t).Error
	if err != nil {
		return t, fmt.Errorf("failed to query flight totals: %w", err)
	}
	return t, nil
}

func (r *statisticsRepository) TopAircraft(ctx context.Context, start, end time.Time, limit int) ([]model.AircraftRanking, error) {
	var rows []struct {
		AircraftID uuid.UUID
		Flights    int64
		Hours      decimal.Decimal
	}
	if err := r.approved(ctx, start, end).
		Select("aircraft_id, COUNT(*) AS flights, COALESCE(SUM(flight_hours), 0) AS hours").
		Group("aircraft_id").
		Order("flights DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query top aircraft: %w", err)
	}
	if len(rows) == 0 {
		return []model.AircraftRanking{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.AircraftID
	}
	var types []model.Aircraft
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to load aircraft: %w", err)
	}
	byID := make(map[uuid.UUID]model.Aircraft, len(types))
	for _, a := range types {
		byID[a.ID] = a
	}

	rankings := make([]model.AircraftRanking, len(rows))
	for i, row := range rows {
		a := byID[row.AircraftID]
		rankings[i] = model.AircraftRanking{
			AircraftID: row.AircraftID,
			ICAOType:   a.ICAOType,
			Name:       a.Name,
			Flights:    row.Flights,
			Hours:      row.Hours,
		}
	}
	return rankings, nil
}

func (r *statisticsRepository) TopRoutes(ctx context.Context, start, end time.Time, limit int) ([]model.RouteRanking, error) {
	rankings := []model.RouteRanking{}
	if err := r.approved(ctx, start, end).
		Select("departure_icao, arrival_icao, COUNT(*) AS flights").
		Group("departure_icao, arrival_icao").
		Order("flights DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top routes: %w", err)
	}
	return rankings, nil
}

func (r *statisticsRepository) Backlog(ctx context.Context) (model.Backlog, error) {
	var b model.Backlog
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Pirep{}).Where("status = ?", model.StatusPending).Count(&b.PendingPireps).Error; err != nil {
		return b, err
	}
	if err := db.Model(&model.RegistrationApproval{}).Where("status = ?", model.StatusPending).Count(&b.PendingRegistrations).Error; err != nil {
		return b, err
	}
	if err := db.Model(&model.CareerRequest{}).Where("status = ?", model.StatusPending).Count(&b.PendingCareers).Error; err != nil {
		return b, err
	}
	return b, nil
}

func (r *statisticsRepository) FleetByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&model.FleetAircraft{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query fleet status: %w", err)
	}
	out := map[string]int64{model.FleetIdle: 0, model.FleetInFlight: 0, model.FleetMaintenance: 0}
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
