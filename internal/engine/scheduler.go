package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// dlqCleanupAge is how long resolved dead-letter entries are kept before the
// daily cleanup removes them.
const dlqCleanupAge = 30 * 24 * time.Hour

// Scheduler runs the background jobs that are independent of the check loop:
// the dead-letter retry pass and the daily cleanup of resolved entries.
type Scheduler struct {
	cron  *cron.Cron
	retry *RetryManager
	log   *slog.Logger
}

// NewScheduler creates a Scheduler running the DLQ retry pass at the given
// interval.
func NewScheduler(retry *RetryManager, retryInterval time.Duration, log *slog.Logger) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:  c,
		retry: retry,
		log:   log,
	}

	if _, err := c.AddFunc("@every "+retryInterval.String(), s.runRetryPass); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc("@daily", s.runDLQCleanup); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
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

func (s *Scheduler) runRetryPass() {
	ctx := context.Background()
	if _, _, err := s.retry.ProcessRetries(ctx); err != nil {
		s.log.Error("dlq retry pass failed", "error", err)
	}
}

func (s *Scheduler) runDLQCleanup() {
	ctx := context.Background()
	deleted, err := s.retry.store.DeleteResolvedBefore(ctx, time.Now().Add(-dlqCleanupAge))
	if err != nil {
		s.log.Error("dlq cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		s.log.Info("dlq cleanup complete", "deleted", deleted)
	}
}
