// Package scheduler drives the periodic ingestion cycles.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/stationhub/stationhub/internal/ingest"
)

// Scheduler runs the ingestion runner on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    *ingest.Runner
	interval  time.Duration
	log       *zap.Logger
}

// New creates a new Scheduler.
func New(runner *ingest.Runner, interval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		runner:    runner,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first cycle runs immediately so a fresh deployment has data before the
// first full interval elapses.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	_, err := s.scheduler.Every(interval).StartImmediately().Do(func() {
		s.log.Info("ingestion cycle starting")
		s.runner.RunCycle(context.Background())
		s.log.Info("ingestion cycle complete")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
