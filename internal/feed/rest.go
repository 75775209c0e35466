package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"kline-chart/internal/config"
	chrterrors "kline-chart/internal/errors"
	"kline-chart/internal/models"
	"kline-chart/pkg/utils"
)

// HistoryBatch is one REST fetch result with volumes aligned to candles.
type HistoryBatch struct {
	Candles []models.Candle
	Volumes []float64
}

// RESTClient fetches historical klines from the exchange REST API.
type RESTClient struct {
	baseURL string
	limit   int
	client  *http.Client
	retry   utils.RetryConfig
	logger  zerolog.Logger
}

// NewRESTClient creates a REST client from feed config.
func NewRESTClient(cfg config.FeedConfig, logger zerolog.Logger) *RESTClient {
	limit := cfg.FetchLimit
	if limit <= 0 {
		limit = 500
	}
	retry := utils.DefaultRetryConfig()
	retry.InitialDelay = cfg.ReconnectBaseDelay
	retry.MaxDelay = cfg.ReconnectMaxDelay
	return &RESTClient{
		baseURL: cfg.RESTBaseURL,
		limit:   limit,
		client:  &http.Client{Timeout: cfg.FetchTimeout},
		retry:   retry,
		logger:  logger.With().Str("component", "rest").Logger(),
	}
}

// FetchKlines loads up to the configured limit of recent candles for the
// symbol and interval, retrying transient failures with backoff.
func (c *RESTClient) FetchKlines(ctx context.Context, symbol string, interval models.Interval) (HistoryBatch, error) {
	if !interval.Valid() {
		return HistoryBatch{}, chrterrors.NewValidationError("interval", string(interval), "unknown interval")
	}

	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", c.baseURL, url.Values{
		"symbol":   {symbol},
		"interval": {string(interval)},
		"limit":    {strconv.Itoa(c.limit)},
	}.Encode())

	batch, err := utils.RetryWithResult(ctx, c.retry, func() (HistoryBatch, error) {
		return c.fetchOnce(ctx, endpoint)
	})
	if err != nil {
		return HistoryBatch{}, chrterrors.NewFeedError(symbol, string(interval), "fetch", err)
	}

	c.logger.Debug().
		Str("symbol", symbol).
		Str("interval", string(interval)).
		Int("candles", len(batch.Candles)).
		Msg("fetched historical klines")
	return batch, nil
}

func (c *RESTClient) fetchOnce(ctx context.Context, endpoint string) (HistoryBatch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return HistoryBatch{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return HistoryBatch{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return HistoryBatch{}, fmt.Errorf("klines request returned %d: %s", resp.StatusCode, string(body))
	}

	// Each kline row is a mixed array: open time, then OHLCV as strings.
	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return HistoryBatch{}, fmt.Errorf("decode klines: %w", err)
	}

	batch := HistoryBatch{
		Candles: make([]models.Candle, 0, len(rows)),
		Volumes: make([]float64, 0, len(rows)),
	}
	for _, row := range rows {
		if len(row) < 6 {
			return HistoryBatch{}, fmt.Errorf("kline row has %d fields", len(row))
		}
		var openTime int64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			return HistoryBatch{}, fmt.Errorf("decode open time: %w", err)
		}
		vals := make([]float64, 5)
		for i := 0; i < 5; i++ {
			var s string
			if err := json.Unmarshal(row[i+1], &s); err != nil {
				return HistoryBatch{}, fmt.Errorf("decode kline field %d: %w", i+1, err)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return HistoryBatch{}, fmt.Errorf("parse kline field %d: %w", i+1, err)
			}
			vals[i] = v
		}
		batch.Candles = append(batch.Candles, models.Candle{
			Time:  openTime,
			Open:  vals[0],
			High:  vals[1],
			Low:   vals[2],
			Close: vals[3],
		})
		batch.Volumes = append(batch.Volumes, vals[4])
	}
	return batch, nil
}
