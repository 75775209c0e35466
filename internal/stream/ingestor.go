// Package stream routes live kline updates into the candle series,
// serializing all mutations on one goroutine.
package stream

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"kline-chart/internal/models"
	"kline-chart/internal/series"
)

// IngestorConfig holds configuration for the ingestor.
type IngestorConfig struct {
	// BufferSize is the size of the internal update channel buffer.
	BufferSize int
}

// DefaultIngestorConfig returns the default ingestor configuration.
func DefaultIngestorConfig() IngestorConfig {
	return IngestorConfig{BufferSize: 256}
}

// Ingestor merges live updates into a series.Store. All writes happen
// on the processing goroutine, so readers only contend with one writer.
type Ingestor struct {
	data     *series.Store
	symbol   string
	interval models.Interval
	logger   zerolog.Logger

	updates chan models.KlineUpdate

	mu       sync.Mutex
	onApply  []func(update models.KlineUpdate)
	onClosed []func(update models.KlineUpdate)
	started  bool

	applied uint64
	dropped uint64
}

// NewIngestor creates an ingestor bound to one symbol and interval.
func NewIngestor(data *series.Store, symbol string, interval models.Interval, cfg IngestorConfig, logger zerolog.Logger) *Ingestor {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultIngestorConfig().BufferSize
	}
	return &Ingestor{
		data:     data,
		symbol:   symbol,
		interval: interval,
		updates:  make(chan models.KlineUpdate, bufferSize),
		logger: logger.With().
			Str("component", "ingestor").
			Str("symbol", symbol).
			Str("interval", string(interval)).
			Logger(),
	}
}

// OnApply registers a callback fired after every applied update. Used
// to trigger chart refreshes.
func (in *Ingestor) OnApply(fn func(models.KlineUpdate)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.onApply = append(in.onApply, fn)
}

// OnCandleClosed registers a callback fired when a period closes. Used
// to recompute indicators.
func (in *Ingestor) OnCandleClosed(fn func(models.KlineUpdate)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.onClosed = append(in.onClosed, fn)
}

// Submit queues one update for processing. Updates for other symbols or
// intervals are dropped here, before they reach the series.
func (in *Ingestor) Submit(update models.KlineUpdate) {
	if update.Symbol != in.symbol || update.Interval != in.interval {
		in.mu.Lock()
		in.dropped++
		in.mu.Unlock()
		in.logger.Debug().
			Str("got_symbol", update.Symbol).
			Str("got_interval", string(update.Interval)).
			Msg("dropped mismatched update")
		return
	}
	in.updates <- update
}

// Start runs the processing loop until the context is cancelled. Only
// one loop may run per ingestor.
func (in *Ingestor) Start(ctx context.Context) error {
	in.mu.Lock()
	if in.started {
		in.mu.Unlock()
		return nil
	}
	in.started = true
	in.mu.Unlock()

	go in.loop(ctx)
	return nil
}

func (in *Ingestor) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-in.updates:
			in.Apply(update)
		}
	}
}

// Apply merges one update into the series synchronously. In-progress
// and closed updates both upsert; price bounds only widen on close, so
// intermediate ticks never distort the auto-fit range.
func (in *Ingestor) Apply(update models.KlineUpdate) {
	replaced := in.data.Upsert(update.Candle(), update.Volume)

	in.mu.Lock()
	in.applied++
	applyFns := append([]func(models.KlineUpdate){}, in.onApply...)
	closedFns := append([]func(models.KlineUpdate){}, in.onClosed...)
	in.mu.Unlock()

	if update.IsClosed {
		in.data.RecomputePriceBounds()
		in.logger.Debug().
			Int64("time", update.Time).
			Float64("close", update.Close).
			Bool("replaced", replaced).
			Msg("candle closed")
		for _, fn := range closedFns {
			fn(update)
		}
	}
	for _, fn := range applyFns {
		fn(update)
	}
}

// Stats reports applied and dropped update counts.
func (in *Ingestor) Stats() (applied, dropped uint64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.applied, in.dropped
}
