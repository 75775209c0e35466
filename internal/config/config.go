// Package config provides configuration management for the chart engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"kline-chart/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Feed  FeedConfig  `mapstructure:"feed"`
	Chart ChartConfig `mapstructure:"chart"`
	Cache CacheConfig `mapstructure:"cache"`
}

// FeedConfig holds market data feed configuration.
type FeedConfig struct {
	RESTBaseURL string `mapstructure:"rest_base_url"`
	WSBaseURL   string `mapstructure:"ws_base_url"`
	// Reconnect policy. Delay for attempt n is min(BaseDelay * 2^n, MaxDelay).
	ReconnectBaseDelay  time.Duration `mapstructure:"reconnect_base_delay"`
	ReconnectMaxDelay   time.Duration `mapstructure:"reconnect_max_delay"`
	MaxReconnectRetries int           `mapstructure:"max_reconnect_retries"`
	FetchLimit          int           `mapstructure:"fetch_limit"`
	FetchTimeout        time.Duration `mapstructure:"fetch_timeout"`
}

// ChartConfig holds viewport and interaction configuration.
type ChartConfig struct {
	Symbol   string `mapstructure:"symbol"`
	Interval string `mapstructure:"interval"`
	// ZoomStep is the multiplicative factor applied per wheel step.
	ZoomStep float64 `mapstructure:"zoom_step"`
	// MinRangeFraction is the zoom floor as a fraction of the full data range.
	MinRangeFraction float64 `mapstructure:"min_range_fraction"`
	// HitRadius is the annotation hit-test radius in pixels.
	HitRadius float64 `mapstructure:"hit_radius"`
	// EndPositionRatio places the latest candle at this fraction of the
	// plot width in the default view.
	EndPositionRatio float64 `mapstructure:"end_position_ratio"`
}

// CacheConfig holds the local candle cache configuration.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			RESTBaseURL:         "https://api.binance.com",
			WSBaseURL:           "wss://stream.binance.com:9443",
			ReconnectBaseDelay:  time.Second,
			ReconnectMaxDelay:   30 * time.Second,
			MaxReconnectRetries: 5,
			FetchLimit:          500,
			FetchTimeout:        15 * time.Second,
		},
		Chart: ChartConfig{
			Symbol:           "BTCUSDT",
			Interval:         "1h",
			ZoomStep:         1.1,
			MinRangeFraction: 0.005,
			HitRadius:        10,
			EndPositionRatio: 2.0 / 3.0,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(DefaultConfigDir(), "candles.db"),
		},
	}
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/kline-chart"
	}
	return filepath.Join(home, ".config", "kline-chart")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config file yields the defaults.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("feed.rest_base_url", cfg.Feed.RESTBaseURL)
	v.SetDefault("feed.ws_base_url", cfg.Feed.WSBaseURL)
	v.SetDefault("feed.reconnect_base_delay", cfg.Feed.ReconnectBaseDelay)
	v.SetDefault("feed.reconnect_max_delay", cfg.Feed.ReconnectMaxDelay)
	v.SetDefault("feed.max_reconnect_retries", cfg.Feed.MaxReconnectRetries)
	v.SetDefault("feed.fetch_limit", cfg.Feed.FetchLimit)
	v.SetDefault("feed.fetch_timeout", cfg.Feed.FetchTimeout)
	v.SetDefault("chart.symbol", cfg.Chart.Symbol)
	v.SetDefault("chart.interval", cfg.Chart.Interval)
	v.SetDefault("chart.zoom_step", cfg.Chart.ZoomStep)
	v.SetDefault("chart.min_range_fraction", cfg.Chart.MinRangeFraction)
	v.SetDefault("chart.hit_radius", cfg.Chart.HitRadius)
	v.SetDefault("chart.end_position_ratio", cfg.Chart.EndPositionRatio)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.path", cfg.Cache.Path)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Feed.ReconnectBaseDelay <= 0 {
		return errors.NewValidationError("feed.reconnect_base_delay", c.Feed.ReconnectBaseDelay, "must be positive")
	}
	if c.Feed.ReconnectMaxDelay < c.Feed.ReconnectBaseDelay {
		return errors.NewValidationError("feed.reconnect_max_delay", c.Feed.ReconnectMaxDelay, "must be >= base delay")
	}
	if c.Feed.MaxReconnectRetries < 0 {
		return errors.NewValidationError("feed.max_reconnect_retries", c.Feed.MaxReconnectRetries, "must be >= 0")
	}
	if c.Chart.ZoomStep <= 1 {
		return errors.NewValidationError("chart.zoom_step", c.Chart.ZoomStep, "must be > 1")
	}
	if c.Chart.MinRangeFraction <= 0 || c.Chart.MinRangeFraction >= 1 {
		return errors.NewValidationError("chart.min_range_fraction", c.Chart.MinRangeFraction, "must be in (0, 1)")
	}
	if c.Chart.HitRadius <= 0 {
		return errors.NewValidationError("chart.hit_radius", c.Chart.HitRadius, "must be positive")
	}
	if c.Chart.EndPositionRatio <= 0 || c.Chart.EndPositionRatio > 1 {
		return errors.NewValidationError("chart.end_position_ratio", c.Chart.EndPositionRatio, "must be in (0, 1]")
	}
	return nil
}
