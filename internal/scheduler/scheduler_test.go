package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"vaops/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingFleet struct {
	calls atomic.Int32
	err   error
}

func (f *countingFleet) ReleaseDueMaintenance(context.Context) (*service.ReleaseResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &service.ReleaseResult{Released: []string{"G-EUUA"}}, nil
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New("every minute please", &countingFleet{}, zap.NewNop())
	assert.Error(t, err)
}

func TestJobRunsOnSchedule(t *testing.T) {
	fleet := &countingFleet{}
	s, err := New("@every 1s", fleet, zap.NewNop())
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return fleet.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestJobSurvivesErrors(t *testing.T) {
	fleet := &countingFleet{err: errors.New("db down")}
	s, err := New("@every 1h", fleet, zap.NewNop())
	require.NoError(t, err)

	s.releaseMaintenance()
	s.releaseMaintenance()

	assert.Equal(t, int32(2), fleet.calls.Load())
}
