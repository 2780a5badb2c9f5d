package service

import (
	"context"
	"time"

	"vaops/internal/model"
	"vaops/internal/repository"

	"golang.org/x/sync/errgroup"
)

const statisticsTopN = 5

type StatisticsService interface {
	// GetStatistics defaults start to the first day of the current month and end to now.
	GetStatistics(ctx context.Context, start, end *time.Time) (*model.StatisticsResponse, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
	now  func() time.Time
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo, now: time.Now}
}

// GetStatistics aggregates approved flights inside the time bracket plus the live backlog
func (s *statisticsService) GetStatistics(ctx context.Context, start, end *time.Time) (*model.StatisticsResponse, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now
	if start != nil {
		from = *start
	}
	if end != nil {
		to = *end
	}
	if to.Before(from) {
		return nil, validation("end_date is before start_date")
	}

	resp := &model.StatisticsResponse{TimeRangeStartDate: from, TimeRangeEndDate: to}
	var totals model.FlightTotals

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.repo.FlightTotals(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		resp.TopAircraft, err = s.repo.TopAircraft(gctx, from, to, statisticsTopN)
		return err
	})
	g.Go(func() (err error) {
		resp.TopRoutes, err = s.repo.TopRoutes(gctx, from, to, statisticsTopN)
		return err
	})
	g.Go(func() (err error) {
		resp.Backlog, err = s.repo.Backlog(gctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Fleet, err = s.repo.FleetByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.ApprovedFlights = totals.Flights
	resp.ActivePilots = totals.Pilots
	resp.TotalHours = totals.Hours
	resp.TotalXP = totals.XP
	resp.TotalMoney = totals.Money
	resp.AverageLandingRate = int64(totals.LandingRate)
	return resp, nil
}
