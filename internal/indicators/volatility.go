package indicators

import (
	"fmt"
	"math"

	"kline-chart/internal/models"
)

// Bollinger calculates Bollinger Bands: the middle band is an SMA of the
// close, the outer bands sit mult population standard deviations away.
type Bollinger struct {
	period int
	mult   float64
}

// NewBollinger creates a new Bollinger Bands indicator.
func NewBollinger(period int, mult float64) *Bollinger {
	return &Bollinger{period: period, mult: mult}
}

func (b *Bollinger) Name() string {
	return fmt.Sprintf("BOLL_%d_%g", b.period, b.mult)
}

func (b *Bollinger) Period() int {
	return b.period
}

func (b *Bollinger) Calculate(candles []models.Candle) (map[string][]float64, error) {
	if b.period < 2 || b.mult <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	closes := closePrices(candles)
	middle := smaSeries(closes, b.period)
	n := len(closes)
	upper := nanSlice(n)
	lower := nanSlice(n)
	for i := b.period - 1; i < n; i++ {
		if !Defined(middle[i]) {
			continue
		}
		var sumSq float64
		for j := 0; j < b.period; j++ {
			diff := closes[i-j] - middle[i]
			sumSq += diff * diff
		}
		std := math.Sqrt(sumSq / float64(b.period))
		upper[i] = middle[i] + b.mult*std
		lower[i] = middle[i] - b.mult*std
	}

	return map[string][]float64{
		"upper":  upper,
		"middle": middle,
		"lower":  lower,
	}, nil
}
