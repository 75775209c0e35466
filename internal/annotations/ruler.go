package annotations

import (
	"fmt"
	"math"
)

// RulerSummary is the measurement derived from a ruler selection.
type RulerSummary struct {
	CandleCount   int
	PercentChange string
	Elapsed       string
}

const (
	msPerHour = int64(60 * 60 * 1000)
	msPerWeek = 7 * 24 * msPerHour
)

// Summarize measures the candles intersecting the given time and price
// window. A candle counts when its open time lies inside the time range
// and its low/high band overlaps the price range. Percent change runs
// from the first matching open to the last matching close; elapsed time
// spans the matching open times as whole weeks plus remainder hours.
func (s *Store) Summarize(startTime, endTime int64, minPrice, maxPrice float64) RulerSummary {
	summary := RulerSummary{PercentChange: "+0.00%", Elapsed: "0w 0h"}
	if s.data == nil {
		return summary
	}

	candles := s.data.Candles()
	firstIdx, lastIdx := -1, -1
	for i, c := range candles {
		if c.Time < startTime || c.Time > endTime {
			continue
		}
		if c.High < minPrice || c.Low > maxPrice {
			continue
		}
		if firstIdx < 0 {
			firstIdx = i
		}
		lastIdx = i
		summary.CandleCount++
	}
	if firstIdx < 0 {
		return summary
	}

	first := candles[firstIdx]
	last := candles[lastIdx]
	if first.Open != 0 {
		pct := (last.Close - first.Open) / first.Open * 100
		summary.PercentChange = fmt.Sprintf("%+.2f%%", pct)
	}

	elapsed := last.Time - first.Time
	if elapsed < 0 {
		elapsed = 0
	}
	weeks := elapsed / msPerWeek
	hours := int64(math.Floor(float64(elapsed%msPerWeek) / float64(msPerHour)))
	summary.Elapsed = fmt.Sprintf("%dw %dh", weeks, hours)
	return summary
}
