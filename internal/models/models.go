// Package models provides domain models for the chart engine.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Candle represents one OHLC price bar for a fixed time interval.
// Time is the period open time in milliseconds since the Unix epoch.
type Candle struct {
	Time  int64
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// TypicalPrice returns (High+Low+Close)/3.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}

// IsBullish reports whether the candle closed at or above its open.
func (c Candle) IsBullish() bool {
	return c.Close >= c.Open
}

// KlineUpdate is a streaming message describing the current state of one
// (possibly still-forming) candle.
type KlineUpdate struct {
	Symbol   string
	Interval Interval
	Time     int64
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	IsClosed bool
}

// Candle returns the OHLC part of the update.
func (u KlineUpdate) Candle() Candle {
	return Candle{
		Time:  u.Time,
		Open:  u.Open,
		High:  u.High,
		Low:   u.Low,
		Close: u.Close,
	}
}

// SeriesBounds holds the extremes of a loaded candle series. Price bounds
// carry a 5% padding on each side.
type SeriesBounds struct {
	MinPrice  float64
	MaxPrice  float64
	StartTime int64
	EndTime   int64
}

// TimeRange returns EndTime - StartTime in milliseconds.
func (b SeriesBounds) TimeRange() int64 {
	return b.EndTime - b.StartTime
}

// PriceRange returns MaxPrice - MinPrice.
func (b SeriesBounds) PriceRange() float64 {
	return b.MaxPrice - b.MinPrice
}

// Interval is a bar interval such as "1m", "4h" or "1d".
type Interval string

// Common bar intervals.
const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval2h  Interval = "2h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
	Interval1w  Interval = "1w"
)

// Ms returns the interval length in milliseconds. Unparseable intervals
// fall back to one day.
func (iv Interval) Ms() int64 {
	const dayMs = 24 * 60 * 60 * 1000
	n, unit, ok := iv.parse()
	if !ok {
		return dayMs
	}
	switch unit {
	case 'm':
		return int64(n) * 60 * 1000
	case 'h':
		return int64(n) * 60 * 60 * 1000
	case 'd':
		return int64(n) * dayMs
	default: // 'w'
		return int64(n) * 7 * dayMs
	}
}

// Duration returns the interval length as a time.Duration.
func (iv Interval) Duration() time.Duration {
	return time.Duration(iv.Ms()) * time.Millisecond
}

// DefaultVisibleCandles returns how many candles the default view shows
// for this interval. Shorter timeframes show fewer candles.
func (iv Interval) DefaultVisibleCandles() int {
	switch Interval(strings.ToLower(strings.TrimSpace(string(iv)))) {
	case Interval1m, Interval3m:
		return 45
	case Interval5m:
		return 55
	case Interval15m, Interval30m:
		return 70
	case Interval1h, Interval2h:
		return 85
	case Interval4h:
		return 100
	default:
		return 120
	}
}

// Valid reports whether the interval parses as <n><m|h|d|w> with n > 0.
func (iv Interval) Valid() bool {
	_, _, ok := iv.parse()
	return ok
}

func (iv Interval) parse() (n int, unit byte, ok bool) {
	s := strings.ToLower(strings.TrimSpace(string(iv)))
	if len(s) < 2 {
		return 0, 0, false
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, 0, false
	}
	unit = s[len(s)-1]
	switch unit {
	case 'm', 'h', 'd', 'w':
		return n, unit, true
	}
	return 0, 0, false
}

func (iv Interval) String() string {
	return string(iv)
}

// FormatTime renders a millisecond timestamp for display.
func FormatTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04")
}

// FormatPrice renders a price with precision adapted to its magnitude.
func FormatPrice(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("%.2f", p)
	case p >= 1:
		return fmt.Sprintf("%.4f", p)
	default:
		return fmt.Sprintf("%.6f", p)
	}
}
