// Package scheduler runs the periodic fleet jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"vaops/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 30 * time.Second

// MaintenanceReleaser is satisfied by service.FleetService.
type MaintenanceReleaser interface {
	ReleaseDueMaintenance(ctx context.Context) (*service.ReleaseResult, error)
}

type Scheduler struct {
	cron  *cron.Cron
	fleet MaintenanceReleaser
	log   *zap.Logger
}

// New registers the maintenance-release job on a cron schedule (standard or @every syntax).
func New(schedule string, fleet MaintenanceReleaser, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		// a slow run is skipped rather than stacked
		cron:  cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		fleet: fleet,
		log:   log,
	}
	if _, err := s.cron.AddFunc(schedule, s.releaseMaintenance); err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) releaseMaintenance() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	res, err := s.fleet.ReleaseDueMaintenance(ctx)
	if err != nil {
		s.log.Error("maintenance release failed", zap.Error(err))
		return
	}
	if len(res.Released) > 0 {
		s.log.Info("airframes released from maintenance", zap.Strings("registrations", res.Released))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
