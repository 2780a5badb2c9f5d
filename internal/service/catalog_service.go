package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"vaops/internal/catalog"
	"vaops/internal/model"
	"vaops/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogFilter struct {
	Departure string
	Page      int
	Limit     int
}

type ImportResult struct {
	Imported    int                 `json:"imported"`
	Skipped     int                 `json:"skipped"`
	Deactivated int64               `json:"deactivated"`
	Errors      []catalog.LineError `json:"errors"`
}

type CatalogService interface {
	List(ctx context.Context, filter CatalogFilter) ([]model.RouteCatalog, int64, error)
	// Import loads a CSV file. actor is nil when run from the CLI.
	Import(ctx context.Context, actor *uuid.UUID, r io.Reader, replace bool) (*ImportResult, error)
}

type catalogService struct {
	repo  repository.RouteCatalogRepository
	tx    repository.TransactionManager
	audit auditor
	log   *zap.Logger
}

func NewCatalogService(repo repository.RouteCatalogRepository, audits repository.AuditRepository, tx repository.TransactionManager, log *zap.Logger) CatalogService {
	return &catalogService{
		repo:  repo,
		tx:    tx,
		audit: auditor{repo: audits, log: log},
		log:   log,
	}
}

func (s *catalogService) List(ctx context.Context, filter CatalogFilter) ([]model.RouteCatalog, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, strings.ToUpper(strings.TrimSpace(filter.Departure)), filter.Page, filter.Limit)
}

// Import stores every valid line. Invalid lines are reported, never fatal; a file with no
// valid line leaves the existing catalog untouched even when replace is set.
func (s *catalogService) Import(ctx context.Context, actor *uuid.UUID, r io.Reader, replace bool) (*ImportResult, error) {
	parsed, err := catalog.Parse(r)
	if err != nil {
		if errors.Is(err, catalog.ErrBadHeader) {
			return nil, validation("%s", err.Error())
		}
		return nil, validation("unreadable csv: %v", err)
	}

	res := &ImportResult{Skipped: parsed.Skipped, Errors: parsed.Errors}
	if res.Errors == nil {
		res.Errors = []catalog.LineError{}
	}
	if len(parsed.Entries) == 0 {
		return res, nil
	}

	rows := make([]model.RouteCatalog, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		rows = append(rows, model.RouteCatalog{
			FlightNumber:    e.FlightNumber,
			DepartureICAO:   e.Departure,
			ArrivalICAO:     e.Arrival,
			DurationMinutes: e.DurationMinutes,
			AircraftFamily:  e.AircraftFamily,
			IsActive:        true,
		})
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if replace {
			n, err := s.repo.DeactivateAll(txCtx)
			if err != nil {
				return fmt.Errorf("failed to deactivate catalog: %w", err)
			}
			res.Deactivated = n
		}
		if err := s.repo.CreateBatch(txCtx, rows); err != nil {
			return fmt.Errorf("failed to store catalog: %w", err)
		}
		res.Imported = len(rows)
		return s.audit.record(txCtx, actor, model.ActionImportRoutes, "", "route_catalog", map[string]interface{}{
			"imported":    res.Imported,
			"skipped":     res.Skipped,
			"errors":      len(res.Errors),
			"replace":     replace,
			"deactivated": res.Deactivated,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("route catalog imported",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)),
		zap.Bool("replace", replace),
	)
	return res, nil
}
