package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/competitor-price-matcher/internal/metrics"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// TriggerSchedule labels runs started by the scheduler.
const TriggerSchedule = "schedule"

// ErrBatchRunning is returned by Trigger while another batch is in flight.
var ErrBatchRunning = errors.New("batch already running")

// Scheduler runs batches on an interval and prunes old results daily.
type Scheduler struct {
	cron    *cron.Cron
	engine  *Engine
	log     *slog.Logger
	batchID cron.EntryID

	// running guards against overlapping batches, whether scheduled or
	// triggered by hand.
	running sync.Mutex
}

// NewScheduler creates a Scheduler that runs a batch every interval and
// prunes results on pruneSpec (a cron spec such as "@daily").
func NewScheduler(
	eng *Engine,
	interval time.Duration,
	pruneSpec string,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		engine: eng,
		log:    log,
	}

	id, err := c.AddFunc("@every "+interval.String(), s.runBatch)
	if err != nil {
		return nil, err
	}
	s.batchID = id

	if pruneSpec != "" {
		if _, err := c.AddFunc(pruneSpec, s.runPrune); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
	s.recordNextRun()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// Trigger runs a batch immediately unless one is already running, in which
// case it returns ErrBatchRunning without touching the store.
func (s *Scheduler) Trigger(ctx context.Context, trigger string) (*domain.Run, error) {
	if !s.running.TryLock() {
		return nil, ErrBatchRunning
	}
	defer s.running.Unlock()

	return s.engine.RunBatch(ctx, trigger)
}

func (s *Scheduler) runBatch() {
	defer s.recordNextRun()

	s.log.Info("scheduled batch starting")
	_, err := s.Trigger(context.Background(), TriggerSchedule)
	switch {
	case errors.Is(err, ErrBatchRunning):
		s.log.Warn("previous batch still running, skipping")
	case err != nil:
		s.log.Error("scheduled batch failed", "error", err)
	}
}

func (s *Scheduler) runPrune() {
	s.log.Info("scheduled prune starting")
	if _, err := s.engine.Prune(context.Background()); err != nil {
		s.log.Error("scheduled prune failed", "error", err)
	}
}

func (s *Scheduler) recordNextRun() {
	if next := s.cron.Entry(s.batchID).Next; !next.IsZero() {
		metrics.SchedulerNextRunTimestamp.Set(float64(next.Unix()))
	}
}
