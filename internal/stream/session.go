package stream

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"kline-chart/internal/config"
	"kline-chart/internal/feed"
	"kline-chart/internal/models"
	"kline-chart/internal/series"
	"kline-chart/internal/viewport"
)

// Session ties one chart's data path together: historical load over
// REST, live kline ingestion and the viewport over the series. A
// symbol or interval switch tears down the live feed, reloads history
// into the same store and resets the view, so the viewport and any
// registered callbacks survive the switch.
type Session struct {
	rest    *feed.RESTClient
	feedCfg config.FeedConfig
	ingCfg  IngestorConfig
	logger  zerolog.Logger

	data *series.Store
	view *viewport.Viewport

	mu       sync.Mutex
	symbol   string
	interval models.Interval
	streamer *feed.Streamer
	ingestor *Ingestor
	cancel   context.CancelFunc

	onApply  []func(models.KlineUpdate)
	onClosed []func(models.KlineUpdate)
	onState  []func(feed.State)
	onError  []func(error)
}

// NewSession creates a session with an empty series and a viewport over
// it. Nothing is loaded or connected until Start.
func NewSession(rest *feed.RESTClient, feedCfg config.FeedConfig, ingCfg IngestorConfig, vpOpts viewport.Options, logger zerolog.Logger) *Session {
	data := series.NewStore()
	return &Session{
		rest:    rest,
		feedCfg: feedCfg,
		ingCfg:  ingCfg,
		logger:  logger.With().Str("component", "session").Logger(),
		data:    data,
		view:    viewport.New(data, vpOpts),
	}
}

// Data returns the candle store backing the session.
func (s *Session) Data() *series.Store { return s.data }

// View returns the viewport over the session's series.
func (s *Session) View() *viewport.Viewport { return s.view }

// Symbol returns the active symbol.
func (s *Session) Symbol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.symbol
}

// Interval returns the active interval.
func (s *Session) Interval() models.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// OnApply registers a callback fired after each applied update.
// Registrations survive symbol and interval switches.
func (s *Session) OnApply(fn func(models.KlineUpdate)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onApply = append(s.onApply, fn)
}

// OnCandleClosed registers a callback fired when a period closes.
func (s *Session) OnCandleClosed(fn func(models.KlineUpdate)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClosed = append(s.onClosed, fn)
}

// OnStateChange registers a callback for feed state transitions.
func (s *Session) OnStateChange(fn func(feed.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = append(s.onState, fn)
}

// OnError registers a callback for feed errors.
func (s *Session) OnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = append(s.onError, fn)
}

// Start loads history for the symbol, resets the view to the default
// window and connects the live stream. Starting an already running
// session switches it.
func (s *Session) Start(ctx context.Context, symbol string, interval models.Interval) error {
	return s.Switch(ctx, symbol, interval)
}

// Switch changes the active symbol or interval: the live feed is torn
// down first, history is reloaded into the same store and the view is
// reset before the new stream connects. On a load failure the previous
// series data stays intact but the feed remains down.
func (s *Session) Switch(ctx context.Context, symbol string, interval models.Interval) error {
	s.teardown()

	batch, err := s.rest.FetchKlines(ctx, symbol, interval)
	if err != nil {
		return err
	}
	if err := s.data.LoadHistorical(batch.Candles, batch.Volumes); err != nil {
		return err
	}
	if err := s.view.Reset(interval); err != nil {
		return err
	}

	s.mu.Lock()
	s.symbol = symbol
	s.interval = interval

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	ingestor := NewIngestor(s.data, symbol, interval, s.ingCfg, s.logger)
	for _, fn := range s.onApply {
		ingestor.OnApply(fn)
	}
	for _, fn := range s.onClosed {
		ingestor.OnCandleClosed(fn)
	}
	s.ingestor = ingestor

	streamer := feed.NewStreamer(s.feedCfg, symbol, interval, s.logger)
	streamer.OnUpdate(ingestor.Submit)
	stateFns := append([]func(feed.State){}, s.onState...)
	streamer.OnStateChange(func(state feed.State) {
		for _, fn := range stateFns {
			fn(state)
		}
	})
	errorFns := append([]func(error){}, s.onError...)
	streamer.OnError(func(err error) {
		for _, fn := range errorFns {
			fn(err)
		}
	})
	s.streamer = streamer
	s.mu.Unlock()

	if err := ingestor.Start(runCtx); err != nil {
		return err
	}
	if err := streamer.Start(runCtx); err != nil {
		return err
	}
	s.logger.Info().Str("symbol", symbol).Str("interval", interval.String()).
		Int("candles", s.data.Len()).Msg("Session started")
	return nil
}

// Stats returns the applied and dropped update counts of the current
// ingestor, zero when no stream is running.
func (s *Session) Stats() (applied, dropped uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ingestor == nil {
		return 0, 0
	}
	return s.ingestor.Stats()
}

// Close tears down the live feed. The series data and viewport remain
// readable. Idempotent.
func (s *Session) Close() {
	s.teardown()
}

func (s *Session) teardown() {
	s.mu.Lock()
	streamer := s.streamer
	cancel := s.cancel
	s.streamer = nil
	s.ingestor = nil
	s.cancel = nil
	s.mu.Unlock()

	if streamer != nil {
		streamer.Close()
	}
	if cancel != nil {
		cancel()
	}
}
