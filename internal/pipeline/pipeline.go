package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
	"github.com/kokorev/ghcndaily/internal/domain"
	"github.com/kokorev/ghcndaily/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// ObservationSource yields the expanded daily series of one station.
type ObservationSource interface {
	Observations(ctx context.Context, stationID string) ([]domain.DailyObservation, error)
}

// BatchLoader writes multiple observations to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, obs []domain.DailyObservation) error
}

// Pipeline exports the daily series of a list of stations to a sink.
type Pipeline struct {
	source    ObservationSource
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	ready     atomic.Bool
	batchSize int
}

// New creates a Pipeline with the given source, sink and observability.
func New(src ObservationSource, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Pipeline{
		source:    src,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
		batchSize: batchSize,
	}
}

// WithClock replaces the clock used for timing and backoff.
func (p *Pipeline) WithClock(c clockwork.Clock) *Pipeline {
	p.clock = c
	return p
}

// CheckReadiness returns nil once at least one batch has been loaded,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any observations yet")
	}
	return nil
}

// Run exports each station in order. A station whose series cannot be read
// is logged and skipped. Sink failures are retried with exponential backoff
// until they succeed or ctx ends; in the latter case ctx.Err() is returned.
func (p *Pipeline) Run(ctx context.Context, stationIDs []string) error {
	p.logger.Info("pipeline started", "stations", len(stationIDs), "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	var loaded, failed int
	for _, id := range stationIDs {
		if err := ctx.Err(); err != nil {
			p.logger.Info("pipeline stopping", "reason", err)
			return err
		}

		n, err := p.processStation(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return ctx.Err()
			}
			p.logger.Warn("station failed, skipping", "station_id", id, "error", err)
			p.metrics.StationErrors.Inc()
			failed++
			continue
		}
		loaded += n
	}

	p.logger.Info("pipeline finished",
		"stations", len(stationIDs),
		"failed", failed,
		"observations", loaded,
	)
	return nil
}

// processStation reads one station and loads it batch by batch. A returned
// error is either a source error or the context ending during a retry.
func (p *Pipeline) processStation(ctx context.Context, id string) (int, error) {
	start := p.clock.Now()

	obs, err := p.source.Observations(ctx, id)
	if err != nil {
		return 0, err
	}

	for i := 0; i < len(obs); i += p.batchSize {
		batch := obs[i:min(i+p.batchSize, len(obs))]
		if err := p.loadWithRetry(ctx, batch); err != nil {
			return 0, err
		}
	}

	p.metrics.StationsProcessed.Inc()
	p.metrics.StationLoadDuration.Observe(p.clock.Since(start).Seconds())
	p.logger.Debug("station loaded", "station_id", id, "observations", len(obs))
	return len(obs), nil
}

// loadWithRetry writes one batch, backing off between failed attempts.
func (p *Pipeline) loadWithRetry(ctx context.Context, batch []domain.DailyObservation) error {
	backoff := initialBackoff
	for {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			p.metrics.ObservationsLoaded.Add(float64(len(batch)))
			p.metrics.BatchSize.Observe(float64(len(batch)))
			p.ready.Store(true)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		p.metrics.LoadErrors.Inc()
		p.logger.Error("load batch failed", "error", err, "batch_size", len(batch), "retry_in", backoff)
		if !p.sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = sharedretry.NextBackoff(backoff, maxBackoff)
	}
}

// sleepWithContext waits on the pipeline clock, returning false if ctx ends first.
func (p *Pipeline) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
