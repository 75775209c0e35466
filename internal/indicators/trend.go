package indicators

import (
	"fmt"
	"math"

	"kline-chart/internal/models"
)

// SMA calculates the Simple Moving Average.
type SMA struct {
	period int
	source PriceSource
}

// NewSMA creates a new SMA indicator over the close price.
func NewSMA(period int) *SMA {
	return &SMA{period: period, source: SourceClose}
}

func (s *SMA) Name() string {
	return fmt.Sprintf("SMA_%d", s.period)
}

func (s *SMA) Period() int {
	return s.period
}

func (s *SMA) Calculate(candles []models.Candle) ([]float64, error) {
	if s.period < 1 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}
	return smaSeries(priceSeries(candles, s.source), s.period), nil
}

// EMA calculates the Exponential Moving Average, seeded with the SMA of
// the first period values.
type EMA struct {
	period int
	source PriceSource
}

// NewEMA creates a new EMA indicator over the close price.
func NewEMA(period int) *EMA {
	return &EMA{period: period, source: SourceClose}
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA_%d", e.period)
}

func (e *EMA) Period() int {
	return e.period
}

func (e *EMA) Calculate(candles []models.Candle) ([]float64, error) {
	if e.period < 1 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}
	return emaSeries(priceSeries(candles, e.source), e.period), nil
}

// WMA calculates the linearly Weighted Moving Average with weights
// 1..period, heaviest on the most recent value.
type WMA struct {
	period int
	source PriceSource
}

// NewWMA creates a new WMA indicator over the close price.
func NewWMA(period int) *WMA {
	return &WMA{period: period, source: SourceClose}
}

func (w *WMA) Name() string {
	return fmt.Sprintf("WMA_%d", w.period)
}

func (w *WMA) Period() int {
	return w.period
}

func (w *WMA) Calculate(candles []models.Candle) ([]float64, error) {
	if w.period < 1 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}
	prices := priceSeries(candles, w.source)
	result := nanSlice(len(prices))
	weightSum := float64(w.period*(w.period+1)) / 2
	for i := w.period - 1; i < len(prices); i++ {
		var s float64
		for j := 0; j < w.period; j++ {
			s += float64(j+1) * prices[i-j]
		}
		result[i] = s / weightSum
	}
	return result, nil
}

// ParabolicSAR calculates Wilder's stop-and-reverse trend indicator. The
// acceleration factor resets to step on every trend flip, increments by
// step on each new extreme point and is capped at maxStep. The SAR is
// clamped so it never penetrates the prior candle's extreme.
type ParabolicSAR struct {
	step    float64
	maxStep float64
}

// NewParabolicSAR creates a new Parabolic SAR indicator.
func NewParabolicSAR(step, maxStep float64) *ParabolicSAR {
	return &ParabolicSAR{step: step, maxStep: maxStep}
}

func (p *ParabolicSAR) Name() string {
	return fmt.Sprintf("SAR_%g_%g", p.step, p.maxStep)
}

func (p *ParabolicSAR) Period() int {
	return 2
}

func (p *ParabolicSAR) Calculate(candles []models.Candle) ([]float64, error) {
	if p.step <= 0 || p.maxStep < p.step {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	result := make([]float64, 0, len(candles))
	sar := candles[0].Low
	ep := candles[0].High
	af := p.step
	uptrend := true
	result = append(result, sar)

	for i := 1; i < len(candles); i++ {
		high := candles[i].High
		low := candles[i].Low
		if uptrend {
			if low < sar {
				uptrend = false
				sar = ep
				ep = low
				af = p.step
			} else {
				if high > ep {
					ep = high
					af = math.Min(af+p.step, p.maxStep)
				}
				sar += af * (ep - sar)
				if sar > low {
					sar = low
				}
				if sar > candles[i-1].Low {
					sar = candles[i-1].Low
				}
			}
		} else {
			if high > sar {
				uptrend = true
				sar = ep
				ep = high
				af = p.step
			} else {
				if low < ep {
					ep = low
					af = math.Min(af+p.step, p.maxStep)
				}
				sar += af * (ep - sar)
				if sar < high {
					sar = high
				}
				if sar < candles[i-1].High {
					sar = candles[i-1].High
				}
			}
		}
		result = append(result, sar)
	}
	return result, nil
}

// TRIX calculates the triple-smoothed EMA of the close price.
type TRIX struct {
	period int
}

// NewTRIX creates a new TRIX indicator.
func NewTRIX(period int) *TRIX {
	return &TRIX{period: period}
}

func (t *TRIX) Name() string {
	return fmt.Sprintf("TRIX_%d", t.period)
}

func (t *TRIX) Period() int {
	return 3*t.period - 2
}

func (t *TRIX) Calculate(candles []models.Candle) ([]float64, error) {
	if t.period < 1 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}
	ema1 := emaSeries(closePrices(candles), t.period)
	ema2 := emaSeries(zeroed(ema1), t.period)
	ema3 := emaSeries(zeroed(ema2), t.period)
	return ema3, nil
}

// SuperTrend calculates the ATR band-flip trend indicator. Within a trend
// leg the active band only tightens, never loosens.
type SuperTrend struct {
	period     int
	multiplier float64
}

// NewSuperTrend creates a new SuperTrend indicator.
func NewSuperTrend(period int, multiplier float64) *SuperTrend {
	return &SuperTrend{period: period, multiplier: multiplier}
}

func (s *SuperTrend) Name() string {
	return fmt.Sprintf("SuperTrend_%d_%g", s.period, s.multiplier)
}

func (s *SuperTrend) Period() int {
	return s.period + 1
}

func (s *SuperTrend) Calculate(candles []models.Candle) ([]float64, error) {
	if s.period < 1 || s.multiplier <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	tr := make([]float64, n)
	for i := range candles {
		if i == 0 {
			tr[i] = candles[i].High - candles[i].Low
			continue
		}
		tr[i] = trueRange(candles[i], candles[i-1])
	}

	// ATR: SMA seed, then Wilder smoothing.
	atr := nanSlice(n)
	for i := s.period - 1; i < n; i++ {
		if i == s.period-1 {
			var sumTR float64
			for j := 0; j < s.period; j++ {
				sumTR += tr[j]
			}
			atr[i] = sumTR / float64(s.period)
			continue
		}
		atr[i] = (atr[i-1]*float64(s.period-1) + tr[i]) / float64(s.period)
	}

	result := nanSlice(n)
	var upperBand, lowerBand float64
	uptrend := true
	for i := s.period; i < n; i++ {
		hl2 := (candles[i].High + candles[i].Low) / 2
		upBand := hl2 - s.multiplier*atr[i]
		dnBand := hl2 + s.multiplier*atr[i]
		if i == s.period {
			upperBand = dnBand
			lowerBand = upBand
			result[i] = upBand
			uptrend = true
			continue
		}
		if upBand > lowerBand {
			lowerBand = upBand
		}
		if dnBand < upperBand {
			upperBand = dnBand
		}
		if uptrend {
			if candles[i].Close < lowerBand {
				uptrend = false
				result[i] = upperBand
				upperBand = dnBand
				lowerBand = upBand
			} else {
				result[i] = lowerBand
				if upBand > lowerBand {
					lowerBand = upBand
				}
			}
		} else {
			if candles[i].Close > upperBand {
				uptrend = true
				result[i] = lowerBand
				lowerBand = upBand
				upperBand = dnBand
			} else {
				result[i] = upperBand
				if dnBand < upperBand {
					upperBand = dnBand
				}
			}
		}
	}
	return result, nil
}
