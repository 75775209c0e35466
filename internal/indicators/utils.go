package indicators

import (
	"math"

	"kline-chart/internal/errors"
	"kline-chart/internal/models"
)

// Indicator values use NaN as the warm-up sentinel: index i carries a
// value only once enough history exists, earlier indices are NaN.

// Sentinel errors re-exported for callers that only import this package.
var (
	ErrInvalidPeriod    = errors.ErrInvalidPeriod
	ErrInsufficientData = errors.ErrInsufficientData
)

// Defined reports whether v is a computed indicator value rather than the
// warm-up sentinel.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// zeroed replaces warm-up sentinels with 0 so a series can feed a second
// smoothing stage.
func zeroed(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = 0
		} else {
			out[i] = v
		}
	}
	return out
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

func highest(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	h := values[0]
	for _, v := range values[1:] {
		if v > h {
			h = v
		}
	}
	return h
}

func lowest(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	l := values[0]
	for _, v := range values[1:] {
		if v < l {
			l = v
		}
	}
	return l
}

func trueRange(current, previous models.Candle) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)
	return math.Max(highLow, math.Max(highClose, lowClose))
}

// PriceSource selects which candle field a price-based indicator reads.
type PriceSource string

// Supported price sources.
const (
	SourceClose PriceSource = "close"
	SourceOpen  PriceSource = "open"
	SourceHigh  PriceSource = "high"
	SourceLow   PriceSource = "low"
	SourceHL2   PriceSource = "hl2"
	SourceHLC3  PriceSource = "hlc3"
)

func priceSeries(candles []models.Candle, source PriceSource) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		switch source {
		case SourceOpen:
			out[i] = c.Open
		case SourceHigh:
			out[i] = c.High
		case SourceLow:
			out[i] = c.Low
		case SourceHL2:
			out[i] = (c.High + c.Low) / 2
		case SourceHLC3:
			out[i] = c.TypicalPrice()
		default:
			out[i] = c.Close
		}
	}
	return out
}

func closePrices(candles []models.Candle) []float64 {
	return priceSeries(candles, SourceClose)
}

func highPrices(candles []models.Candle) []float64 {
	return priceSeries(candles, SourceHigh)
}

func lowPrices(candles []models.Candle) []float64 {
	return priceSeries(candles, SourceLow)
}

func typicalPrices(candles []models.Candle) []float64 {
	return priceSeries(candles, SourceHLC3)
}

// smaSeries is the shared simple-moving-average kernel over a raw value
// slice. Warm-up indices are NaN.
func smaSeries(values []float64, period int) []float64 {
	result := nanSlice(len(values))
	if period < 1 || len(values) == 0 {
		return result
	}
	for i := period - 1; i < len(values); i++ {
		var s float64
		for j := 0; j < period; j++ {
			s += values[i-j]
		}
		result[i] = s / float64(period)
	}
	return result
}

// emaSeries seeds with the SMA at index period-1, then applies the
// recurrence v[i] = x[i]*k + v[i-1]*(1-k) with k = 2/(period+1).
func emaSeries(values []float64, period int) []float64 {
	result := nanSlice(len(values))
	if period < 1 || len(values) == 0 {
		return result
	}
	k := 2.0 / float64(period+1)
	for i := period - 1; i < len(values); i++ {
		if i == period-1 {
			var s float64
			for j := 0; j < period; j++ {
				s += values[j]
			}
			result[i] = s / float64(period)
			continue
		}
		result[i] = values[i]*k + result[i-1]*(1-k)
	}
	return result
}

// wilderSum is Wilder's running smoothing as a sum: seeded with the plain
// sum of the first period values, then s[i] = s[i-1] - s[i-1]/n + x[i].
func wilderSum(values []float64, period int) []float64 {
	result := nanSlice(len(values))
	if period < 1 || len(values) == 0 {
		return result
	}
	for i := period - 1; i < len(values); i++ {
		if i == period-1 {
			var s float64
			for j := 0; j < period; j++ {
				s += values[i-j]
			}
			result[i] = s
			continue
		}
		result[i] = result[i-1] - result[i-1]/float64(period) + values[i]
	}
	return result
}
