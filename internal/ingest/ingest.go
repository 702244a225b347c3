// Package ingest runs the collection cycle: every provider is polled
// concurrently, each batch is persisted independently, and one provider
// failing never blocks the others.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stationhub/stationhub/internal/metrics"
	"github.com/stationhub/stationhub/internal/providers"
	"github.com/stationhub/stationhub/internal/store"
)

// Runner drives ingestion cycles against a set of providers and a store.
type Runner struct {
	store     store.Store
	providers []providers.Provider
	timeout   time.Duration
	log       *zap.Logger
}

func NewRunner(st store.Store, provs []providers.Provider, timeout time.Duration, log *zap.Logger) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{
		store:     st,
		providers: provs,
		timeout:   timeout,
		log:       log,
	}
}

// RunCycle polls all providers concurrently and persists whatever each of
// them produced. Records are upserted on the live-snapshot key, so a failed
// provider simply leaves its previous values in place.
func (r *Runner) RunCycle(ctx context.Context) {
	cycleID := uuid.NewString()
	now := time.Now().UTC()
	log := r.log.With(zap.String("cycle_id", cycleID))

	if len(r.providers) == 0 {
		log.Warn("no providers configured, skipping cycle")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, p := range r.providers {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.runProvider(ctx, log, p, now)
		}()
	}
	wg.Wait()
}

func (r *Runner) runProvider(ctx context.Context, log *zap.Logger, p providers.Provider, now time.Time) {
	start := time.Now()
	batch, err := p.Collect(ctx, now)
	if err != nil {
		metrics.RecordIngestionCycle(p.Name(), err)
		log.Error("provider collection failed",
			zap.String("provider", p.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return
	}

	err = r.persist(ctx, batch)
	metrics.RecordIngestionCycle(p.Name(), err)
	if err != nil {
		log.Error("batch persistence failed",
			zap.String("provider", p.Name()),
			zap.Int("records", len(batch.Records)),
			zap.Error(err))
		return
	}

	metrics.RecordsUpsertedTotal.WithLabelValues(p.Name()).Add(float64(len(batch.Records)))
	log.Info("provider cycle complete",
		zap.String("provider", p.Name()),
		zap.Int("records", len(batch.Records)),
		zap.Int("stations", len(batch.Stations)),
		zap.Duration("elapsed", time.Since(start)))
}

func (r *Runner) persist(ctx context.Context, batch providers.Batch) error {
	// Station rows first so records are never orphaned from discovery.
	for _, info := range batch.Stations {
		if err := r.store.EnsureStation(ctx, info); err != nil {
			return err
		}
	}
	return r.store.UpsertBatch(ctx, batch.Records)
}
