package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"kline-chart/internal/config"
	chrterrors "kline-chart/internal/errors"
	"kline-chart/internal/models"
)

// klineEnvelope mirrors the exchange kline stream payload. Prices on
// the wire are decimal strings. The wire keys are case-sensitive pairs
// ("e"/"E", "t"/"T") but encoding/json matches tags case-insensitively,
// so both of each pair need an exact-tag field or the numeric upper-case
// key binds to the string lower-case field and the decode fails.
type klineEnvelope struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Kline     struct {
		OpenTime  int64  `json:"t"`
		CloseTime int64  `json:"T"`
		Symbol    string `json:"s"`
		Interval  string `json:"i"`
		Open      string `json:"o"`
		Close     string `json:"c"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Volume    string `json:"v"`
		IsClosed  bool   `json:"x"`
	} `json:"k"`
}

// Streamer maintains one live kline WebSocket subscription with
// exponential backoff reconnection. Updates are delivered on a single
// goroutine in arrival order.
type Streamer struct {
	baseURL    string
	symbol     string
	interval   models.Interval
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     zerolog.Logger

	onUpdate func(models.KlineUpdate)
	onState  func(State)
	onError  func(error)

	mu      sync.Mutex
	conn    *websocket.Conn
	state   State
	cancel  context.CancelFunc
	started bool
	closed  bool
}

// NewStreamer creates a streamer for one symbol and interval.
func NewStreamer(cfg config.FeedConfig, symbol string, interval models.Interval, logger zerolog.Logger) *Streamer {
	maxRetries := cfg.MaxReconnectRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}
	baseDelay := cfg.ReconnectBaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	maxDelay := cfg.ReconnectMaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	return &Streamer{
		baseURL:    cfg.WSBaseURL,
		symbol:     symbol,
		interval:   interval,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		state:      StateIdle,
		logger: logger.With().
			Str("component", "streamer").
			Str("symbol", symbol).
			Str("interval", string(interval)).
			Logger(),
	}
}

// OnUpdate sets the kline update handler. Must be set before Start.
func (s *Streamer) OnUpdate(handler func(models.KlineUpdate)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = handler
}

// OnStateChange sets the connection state handler.
func (s *Streamer) OnStateChange(handler func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = handler
}

// OnError sets the error handler.
func (s *Streamer) OnError(handler func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = handler
}

// State returns the current connection state.
func (s *Streamer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start connects and begins the read loop. It returns once the first
// connection attempt succeeds or fails terminally.
func (s *Streamer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.closed {
		s.mu.Unlock()
		return chrterrors.ErrFeedClosed
	}
	s.started = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	conn, err := s.dial(runCtx)
	if err != nil {
		s.setState(StateUnavailable)
		return chrterrors.NewFeedError(s.symbol, string(s.interval), "connect", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.setState(StateConnected)

	go s.run(runCtx)
	return nil
}

// Close shuts the streamer down. Safe to call more than once.
func (s *Streamer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancel
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	s.setState(StateClosed)
	return nil
}

func (s *Streamer) streamURL() string {
	stream := fmt.Sprintf("%s@kline_%s", strings.ToLower(s.symbol), s.interval)
	return fmt.Sprintf("%s/ws/%s", s.baseURL, stream)
}

func (s *Streamer) dial(ctx context.Context) (*websocket.Conn, error) {
	s.setState(StateConnecting)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.streamURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chrterrors.ErrConnectionFailed, err)
	}
	return conn, nil
}

// run reads messages until the connection drops, then reconnects with
// exponential backoff. A single goroutine owns the whole lifecycle, so
// at most one reconnect timer is ever pending.
func (s *Streamer) run(ctx context.Context) {
	for {
		s.readLoop(ctx)

		if ctx.Err() != nil || s.isClosed() {
			return
		}

		if !s.reconnect(ctx) {
			return
		}
	}
}

func (s *Streamer) readLoop(ctx context.Context) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !s.isClosed() {
				s.logger.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}
		s.handleMessage(raw)
	}
}

func (s *Streamer) handleMessage(raw []byte) {
	var env klineEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.reportError(fmt.Errorf("%w: %v", chrterrors.ErrMalformedMessage, err))
		return
	}
	if env.EventType != "kline" {
		return
	}

	update, err := decodeKline(env)
	if err != nil {
		s.reportError(fmt.Errorf("%w: %v", chrterrors.ErrMalformedMessage, err))
		return
	}

	s.mu.Lock()
	handler := s.onUpdate
	s.mu.Unlock()
	if handler != nil {
		handler(update)
	}
}

func decodeKline(env klineEnvelope) (models.KlineUpdate, error) {
	k := env.Kline
	fields := [5]string{k.Open, k.High, k.Low, k.Close, k.Volume}
	var vals [5]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return models.KlineUpdate{}, fmt.Errorf("parse kline price: %w", err)
		}
		vals[i] = v
	}
	return models.KlineUpdate{
		Symbol:   env.Symbol,
		Interval: models.Interval(k.Interval),
		Time:     k.OpenTime,
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		Volume:   vals[4],
		IsClosed: k.IsClosed,
	}, nil
}

// reconnect retries the connection with exponential backoff. Returns
// false when retries are exhausted or the streamer is shutting down.
func (s *Streamer) reconnect(ctx context.Context) bool {
	s.setState(StateReconnecting)

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		delay := time.Duration(float64(s.baseDelay) * math.Pow(2, float64(attempt)))
		if delay > s.maxDelay {
			delay = s.maxDelay
		}
		s.logger.Info().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("reconnecting")

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		if s.isClosed() {
			return false
		}

		conn, err := s.dial(ctx)
		if err != nil {
			s.setState(StateReconnecting)
			continue
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		s.setState(StateConnected)
		return true
	}

	s.setState(StateUnavailable)
	s.reportError(chrterrors.NewFeedError(s.symbol, string(s.interval), "reconnect", chrterrors.ErrFeedUnavailable))
	return false
}

func (s *Streamer) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Streamer) setState(state State) {
	s.mu.Lock()
	if s.state == state || (s.closed && state != StateClosed) {
		s.mu.Unlock()
		return
	}
	s.state = state
	handler := s.onState
	s.mu.Unlock()

	s.logger.Debug().Str("state", state.String()).Msg("feed state changed")
	if handler != nil {
		handler(state)
	}
}

func (s *Streamer) reportError(err error) {
	s.mu.Lock()
	handler := s.onError
	s.mu.Unlock()
	if handler != nil {
		handler(err)
	} else {
		s.logger.Error().Err(err).Msg("feed error")
	}
}
