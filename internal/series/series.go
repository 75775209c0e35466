// Package series owns the ordered candle and volume arrays backing a chart.
package series

import (
	"math"
	"sync"

	"kline-chart/internal/errors"
	"kline-chart/internal/models"
)

// pricePadFraction is the margin applied to each side of the price bounds.
const pricePadFraction = 0.05

// Store holds an ordered candle series and its index-aligned volume
// samples. Candles are kept strictly ascending and unique by open time;
// an upsert with an existing time replaces in place, never duplicates.
//
// All mutation is expected to come from a single owning goroutine (the
// event loop feeding the chart); the lock guards concurrent readers.
type Store struct {
	mu      sync.RWMutex
	candles []models.Candle
	volumes []float64
	bounds  models.SeriesBounds
	loaded  bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// LoadHistorical replaces the whole series. Used on symbol or interval
// change. Candles must be sorted ascending by time and volumes must be
// index-aligned with them.
func (s *Store) LoadHistorical(candles []models.Candle, volumes []float64) error {
	if len(candles) == 0 {
		return errors.ErrNoData
	}
	if len(volumes) != len(candles) {
		return errors.NewValidationError("volumes", len(volumes), "must align with candles")
	}
	for i := 1; i < len(candles); i++ {
		if candles[i].Time <= candles[i-1].Time {
			return errors.NewValidationError("candles", candles[i].Time, "times must be strictly ascending")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.candles = append([]models.Candle(nil), candles...)
	s.volumes = append([]float64(nil), volumes...)
	s.recomputeBoundsLocked()
	s.loaded = true
	return nil
}

// Upsert merges one candle and its volume into the series. A candle with
// a matching time is replaced in place; otherwise the pair is inserted at
// the position preserving ascending order. Returns true when an existing
// candle was replaced.
//
// Price bounds are deliberately not recomputed here; callers trigger
// RecomputePriceBounds on closed periods only, so intra-period ticks do
// not thrash the visible scale.
func (s *Store) Upsert(candle models.Candle, volume float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.candles {
		if c.Time == candle.Time {
			s.candles[i] = candle
			s.volumes[i] = volume
			return true
		}
	}

	idx := len(s.candles)
	for i, c := range s.candles {
		if c.Time > candle.Time {
			idx = i
			break
		}
	}
	s.candles = append(s.candles, models.Candle{})
	copy(s.candles[idx+1:], s.candles[idx:])
	s.candles[idx] = candle
	s.volumes = append(s.volumes, 0)
	copy(s.volumes[idx+1:], s.volumes[idx:])
	s.volumes[idx] = volume

	// The first candle seeds the time window; widening a zero-valued
	// window would leave StartTime pinned at 0.
	if len(s.candles) == 1 {
		s.bounds.StartTime = candle.Time
		s.bounds.EndTime = candle.Time
		return false
	}
	if candle.Time < s.bounds.StartTime {
		s.bounds.StartTime = candle.Time
	}
	if candle.Time > s.bounds.EndTime {
		s.bounds.EndTime = candle.Time
	}
	return false
}

// RecomputePriceBounds rescans the series extremes and reapplies the 5%
// price padding. Called after closed-period updates.
func (s *Store) RecomputePriceBounds() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputeBoundsLocked()
}

func (s *Store) recomputeBoundsLocked() {
	if len(s.candles) == 0 {
		return
	}
	minP := math.Inf(1)
	maxP := math.Inf(-1)
	for _, c := range s.candles {
		if c.Low < minP {
			minP = c.Low
		}
		if c.High > maxP {
			maxP = c.High
		}
	}
	pad := (maxP - minP) * pricePadFraction
	if pad == 0 {
		// Flat series: keep MaxPrice > MinPrice.
		pad = math.Max(math.Abs(maxP)*pricePadFraction, 1e-9)
	}
	s.bounds = models.SeriesBounds{
		MinPrice:  minP - pad,
		MaxPrice:  maxP + pad,
		StartTime: s.candles[0].Time,
		EndTime:   s.candles[len(s.candles)-1].Time,
	}
}

// Bounds returns the current series bounds.
func (s *Store) Bounds() (models.SeriesBounds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.candles) == 0 {
		return models.SeriesBounds{}, errors.ErrEmptySeries
	}
	return s.bounds, nil
}

// Len returns the number of candles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candles)
}

// Loaded reports whether historical data has been loaded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Candles returns a copy of the candle series.
func (s *Store) Candles() []models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Candle(nil), s.candles...)
}

// Volumes returns a copy of the volume series.
func (s *Store) Volumes() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.volumes...)
}

// Snapshot returns aligned copies of the candle and volume series.
func (s *Store) Snapshot() ([]models.Candle, []float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Candle(nil), s.candles...),
		append([]float64(nil), s.volumes...)
}

// Last returns the most recent candle.
func (s *Store) Last() (models.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.candles) == 0 {
		return models.Candle{}, errors.ErrEmptySeries
	}
	return s.candles[len(s.candles)-1], nil
}

// Range returns the candles whose time falls within [startTime, endTime],
// inclusive on both ends.
func (s *Store) Range(startTime, endTime int64) []models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Candle
	for _, c := range s.candles {
		if c.Time >= startTime && c.Time <= endTime {
			out = append(out, c)
		}
	}
	return out
}

// RangeWithVolumes returns candles within [startTime, endTime] together
// with their aligned volume samples.
func (s *Store) RangeWithVolumes(startTime, endTime int64) ([]models.Candle, []float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candles []models.Candle
	var vols []float64
	for i, c := range s.candles {
		if c.Time >= startTime && c.Time <= endTime {
			candles = append(candles, c)
			vols = append(vols, s.volumes[i])
		}
	}
	return candles, vols
}

// PriceExtremes returns the lowest low and highest high among candles in
// [startTime, endTime]. ok is false when no candle falls in the window.
func (s *Store) PriceExtremes(startTime, endTime int64) (low, high float64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	low = math.Inf(1)
	high = math.Inf(-1)
	for _, c := range s.candles {
		if c.Time < startTime || c.Time > endTime {
			continue
		}
		ok = true
		if c.Low < low {
			low = c.Low
		}
		if c.High > high {
			high = c.High
		}
	}
	return low, high, ok
}
