package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"vaops/internal/model"
	"vaops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultLeaderboardLimit = 20
	MaxLeaderboardLimit     = 100
	exportPageSize          = 500
)

type LeaderboardEntry struct {
	Rank         int             `json:"rank"`
	UserID       uuid.UUID       `json:"user_id"`
	Username     string          `json:"username"`
	DisplayName  string          `json:"display_name"`
	Callsign     string          `json:"callsign"`
	BaseAirport  string          `json:"base_airport"`
	XP           int64           `json:"xp"`
	TotalHours   decimal.Decimal `json:"total_hours"`
	TotalFlights int             `json:"total_flights"`
}

type LogbookResponse struct {
	Entries []PirepResponse          `json:"entries"`
	Totals  *repository.PirepSummary `json:"totals"`
	Total   int64                    `json:"total"`
	Page    int                      `json:"page"`
	Limit   int                      `json:"limit"`
}

type LeaderboardService interface {
	Leaderboard(ctx context.Context, metric string, limit int) ([]LeaderboardEntry, error)
}

type LogbookService interface {
	Logbook(ctx context.Context, userID uuid.UUID, page, limit int) (*LogbookResponse, error)
	ExportCSV(ctx context.Context, userID uuid.UUID, w io.Writer) error
}

type leaderboardService struct {
	profiles repository.ProfileRepository
}

func NewLeaderboardService(profiles repository.ProfileRepository) LeaderboardService {
	return &leaderboardService{profiles: profiles}
}

func (s *leaderboardService) Leaderboard(ctx context.Context, metric string, limit int) ([]LeaderboardEntry, error) {
	switch metric {
	case "":
		metric = repository.MetricXP
	case repository.MetricXP, repository.MetricHours, repository.MetricFlights:
	default:
		return nil, validation("metric must be one of xp, hours, flights")
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	rows, err := s.profiles.Leaderboard(ctx, metric, limit)
	if err != nil {
		return nil, err
	}
	res := make([]LeaderboardEntry, 0, len(rows))
	for i, p := range rows {
		res = append(res, LeaderboardEntry{
			Rank:         i + 1,
			UserID:       p.ID,
			Username:     p.Username,
			DisplayName:  p.DisplayName,
			Callsign:     p.Callsign,
			BaseAirport:  p.BaseAirport,
			XP:           p.XP,
			TotalHours:   p.TotalHours,
			TotalFlights: p.TotalFlights,
		})
	}
	return res, nil
}

type logbookService struct {
	pireps repository.PirepRepository
}

func NewLogbookService(pireps repository.PirepRepository) LogbookService {
	return &logbookService{pireps: pireps}
}

var logbookStatuses = []string{model.StatusApproved, model.StatusPending}

func (s *logbookService) Logbook(ctx context.Context, userID uuid.UUID, page, limit int) (*LogbookResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	rows, total, err := s.pireps.List(ctx, repository.PirepFilter{UserID: &userID, Statuses: logbookStatuses}, page, limit)
	if err != nil {
		return nil, err
	}
	totals, err := s.pireps.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]PirepResponse, 0, len(rows))
	for i := range rows {
		entries = append(entries, *toPirepResponse(&rows[i]))
	}
	return &LogbookResponse{Entries: entries, Totals: totals, Total: total, Page: page, Limit: limit}, nil
}

var logbookHeader = []string{
	"date", "flight_number", "departure", "arrival", "aircraft", "block_hours",
	"landing_rate_fpm", "fuel_used", "status", "multiplier", "xp", "money",
}

// ExportCSV streams every approved and pending report of the pilot, newest first.
func (s *logbookService) ExportCSV(ctx context.Context, userID uuid.UUID, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(logbookHeader); err != nil {
		return err
	}

	filter := repository.PirepFilter{UserID: &userID, Statuses: logbookStatuses}
	for page := 1; ; page++ {
		rows, total, err := s.pireps.List(ctx, filter, page, exportPageSize)
		if err != nil {
			return fmt.Errorf("failed to read logbook: %w", err)
		}
		for _, p := range rows {
			aircraft := ""
			if p.Aircraft != nil {
				aircraft = p.Aircraft.ICAOType
			}
			multiplier := ""
			if p.Multiplier != nil {
				multiplier = p.Multiplier.String()
			}
			record := []string{
				p.CreatedAt.UTC().Format(time.DateOnly),
				p.FlightNumber,
				p.DepartureICAO,
				p.ArrivalICAO,
				aircraft,
				p.FlightHours.StringFixed(2),
				strconv.Itoa(p.LandingRate),
				strconv.Itoa(p.FuelUsed),
				p.Status,
				multiplier,
				strconv.FormatInt(p.XPEarned, 10),
				strconv.FormatInt(p.MoneyEarned, 10),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		if int64(page*exportPageSize) >= total || len(rows) == 0 {
			break
		}
	}

	cw.Flush()
	return cw.Error()
}
