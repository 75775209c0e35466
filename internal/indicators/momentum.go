package indicators

import (
	"fmt"
	"math"

	"kline-chart/internal/models"
)

// RSI calculates the Relative Strength Index with Wilder smoothing of the
// average gain and loss. A zero average loss maps to RSI = 100.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI_%d", r.period)
}

func (r *RSI) Period() int {
	return r.period + 1
}

func (r *RSI) Calculate(candles []models.Candle) ([]float64, error) {
	if r.period < 2 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}
	return rsiSeries(closePrices(candles), r.period), nil
}

// rsiSeries is the shared RSI kernel; index i has a value once i >= period.
func rsiSeries(prices []float64, period int) []float64 {
	result := nanSlice(len(prices))
	var avgGain, avgLoss float64
	for i := period; i < len(prices); i++ {
		if i == period {
			var sumG, sumL float64
			for j := 1; j <= period; j++ {
				d := prices[i-j+1] - prices[i-j]
				if d > 0 {
					sumG += d
				} else {
					sumL -= d
				}
			}
			avgGain = sumG / float64(period)
			avgLoss = sumL / float64(period)
		} else {
			var gain, loss float64
			d := prices[i] - prices[i-1]
			if d > 0 {
				gain = d
			} else {
				loss = -d
			}
			avgGain = (avgGain*float64(period-1) + gain) / float64(period)
			avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		}
		if avgLoss == 0 {
			result[i] = 100
		} else {
			result[i] = 100 - 100/(1+avgGain/avgLoss)
		}
	}
	return result
}

// MACD calculates EMA(fast) - EMA(slow), its signal EMA and the
// histogram (MACD - signal).
type MACD struct {
	fast   int
	slow   int
	signal int
}

// NewMACD creates a new MACD indicator.
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{fast: fast, slow: slow, signal: signal}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD_%d_%d_%d", m.fast, m.slow, m.signal)
}

func (m *MACD) Period() int {
	return m.slow + m.signal
}

func (m *MACD) Calculate(candles []models.Candle) (map[string][]float64, error) {
	if m.fast < 1 || m.slow < m.fast || m.signal < 1 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	closes := closePrices(candles)
	emaFast := emaSeries(closes, m.fast)
	emaSlow := emaSeries(closes, m.slow)

	n := len(closes)
	macd := nanSlice(n)
	for i := 0; i < n; i++ {
		if Defined(emaFast[i]) && Defined(emaSlow[i]) {
			macd[i] = emaFast[i] - emaSlow[i]
		}
	}
	signal := emaSeries(zeroed(macd), m.signal)
	hist := nanSlice(n)
	for i := 0; i < n; i++ {
		if Defined(macd[i]) && Defined(signal[i]) {
			hist[i] = macd[i] - signal[i]
		}
	}

	return map[string][]float64{
		"macd":      macd,
		"signal":    signal,
		"histogram": hist,
	}, nil
}

// CCI calculates the Commodity Channel Index on the typical price. A zero
// mean deviation maps to CCI = 0.
type CCI struct {
	period int
}

// NewCCI creates a new CCI indicator.
func NewCCI(period int) *CCI {
	return &CCI{period: period}
}

func (c *CCI) Name() string {
	return fmt.Sprintf("CCI_%d", c.period)
}

func (c *CCI) Period() int {
	return c.period
}

func (c *CCI) Calculate(candles []models.Candle) ([]float64, error) {
	if c.period < 2 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}
	tp := typicalPrices(candles)
	result := nanSlice(len(candles))
	for i := c.period - 1; i < len(candles); i++ {
		window := tp[i-c.period+1 : i+1]
		sma := mean(window)
		var meanDev float64
		for _, v := range window {
			meanDev += math.Abs(v - sma)
		}
		meanDev /= float64(c.period)
		if meanDev == 0 {
			result[i] = 0
		} else {
			result[i] = (tp[i] - sma) / (0.015 * meanDev)
		}
	}
	return result, nil
}

// WilliamsR calculates Williams %R. A zero high-low range maps to -50.
type WilliamsR struct {
	period int
}

// NewWilliamsR creates a new Williams %R indicator.
func NewWilliamsR(period int) *WilliamsR {
	return &WilliamsR{period: period}
}

func (w *WilliamsR) Name() string {
	return fmt.Sprintf("WR_%d", w.period)
}

func (w *WilliamsR) Period() int {
	return w.period
}

func (w *WilliamsR) Calculate(candles []models.Candle) ([]float64, error) {
	if w.period < 2 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}
	highs := highPrices(candles)
	lows := lowPrices(candles)
	result := nanSlice(len(candles))
	for i := w.period - 1; i < len(candles); i++ {
		hh := highest(highs[i-w.period+1 : i+1])
		ll := lowest(lows[i-w.period+1 : i+1])
		rng := hh - ll
		if rng == 0 {
			result[i] = -50
		} else {
			result[i] = (hh - candles[i].Close) / rng * -100
		}
	}
	return result, nil
}

// KDJ calculates the stochastic %K with 2/3-1/3 smoothing, a Wilder-style
// %D smoothing of %K, and J = 3K - 2D. A flat high-low window maps the
// raw stochastic value to 50.
type KDJ struct {
	kPeriod int
	dPeriod int
}

// NewKDJ creates a new KDJ indicator.
func NewKDJ(kPeriod, dPeriod int) *KDJ {
	return &KDJ{kPeriod: kPeriod, dPeriod: dPeriod}
}

func (k *KDJ) Name() string {
	return fmt.Sprintf("KDJ_%d_%d", k.kPeriod, k.dPeriod)
}

func (k *KDJ) Period() int {
	return k.kPeriod
}

func (k *KDJ) Calculate(candles []models.Candle) (map[string][]float64, error) {
	if k.kPeriod < 2 || k.dPeriod < 1 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	highs := highPrices(candles)
	lows := lowPrices(candles)
	kArr := nanSlice(n)
	dArr := nanSlice(n)
	jArr := nanSlice(n)

	for i := k.kPeriod - 1; i < n; i++ {
		hh := highest(highs[i-k.kPeriod+1 : i+1])
		ll := lowest(lows[i-k.kPeriod+1 : i+1])
		var rsv float64
		if hh == ll {
			rsv = 50
		} else {
			rsv = (candles[i].Close - ll) / (hh - ll) * 100
		}
		var kv float64
		if i == k.kPeriod-1 || !Defined(kArr[i-1]) {
			kv = rsv
		} else {
			kv = kArr[i-1]*2/3 + rsv/3
		}
		var dv float64
		if !Defined(dArr[i-1]) {
			dv = kv
		} else {
			dv = dArr[i-1]*float64(k.dPeriod-1)/float64(k.dPeriod) + kv/float64(k.dPeriod)
		}
		kArr[i] = kv
		dArr[i] = dv
		jArr[i] = 3*kv - 2*dv
	}

	return map[string][]float64{
		"k": kArr,
		"d": dArr,
		"j": jArr,
	}, nil
}

// StochRSI applies a stochastic oscillator to RSI values, then smooths
// %K and %D with simple averages. A flat RSI window maps to 50.
type StochRSI struct {
	rsiPeriod   int
	stochPeriod int
	smoothK     int
	smoothD     int
}

// NewStochRSI creates a new StochRSI indicator.
func NewStochRSI(rsiPeriod, stochPeriod, smoothK, smoothD int) *StochRSI {
	return &StochRSI{
		rsiPeriod:   rsiPeriod,
		stochPeriod: stochPeriod,
		smoothK:     smoothK,
		smoothD:     smoothD,
	}
}

func (s *StochRSI) Name() string {
	return fmt.Sprintf("StochRSI_%d_%d_%d_%d", s.rsiPeriod, s.stochPeriod, s.smoothK, s.smoothD)
}

func (s *StochRSI) Period() int {
	return s.rsiPeriod + s.stochPeriod + s.smoothK + s.smoothD
}

func (s *StochRSI) Calculate(candles []models.Candle) (map[string][]float64, error) {
	if s.rsiPeriod < 2 || s.stochPeriod < 2 || s.smoothK < 1 || s.smoothD < 1 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	rsi := rsiSeries(closePrices(candles), s.rsiPeriod)
	rawK := stochOfSeries(rsi, s.stochPeriod)
	kArr := smoothDefined(rawK, s.smoothK)
	dArr := smoothDefined(kArr, s.smoothD)

	return map[string][]float64{
		"k": kArr,
		"d": dArr,
	}, nil
}

// stochOfSeries computes a stochastic oscillator over a series that may
// contain warm-up sentinels; windows with undefined values stay undefined.
func stochOfSeries(values []float64, period int) []float64 {
	result := nanSlice(len(values))
	for i := period - 1; i < len(values); i++ {
		if !Defined(values[i]) {
			continue
		}
		window := values[i-period+1 : i+1]
		defined := true
		for _, v := range window {
			if !Defined(v) {
				defined = false
				break
			}
		}
		if !defined {
			continue
		}
		lo := lowest(window)
		rng := highest(window) - lo
		if rng == 0 {
			result[i] = 50
		} else {
			result[i] = (values[i] - lo) / rng * 100
		}
	}
	return result
}

// smoothDefined is an SMA that yields a value only when the whole window
// is defined.
func smoothDefined(values []float64, period int) []float64 {
	result := nanSlice(len(values))
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		defined := true
		var s float64
		for _, v := range window {
			if !Defined(v) {
				defined = false
				break
			}
			s += v
		}
		if defined {
			result[i] = s / float64(period)
		}
	}
	return result
}

// DMI calculates Wilder's directional movement indicators +DI, -DI and
// ADX. A zero smoothed true range leaves the DI values undefined; a zero
// DI sum maps DX to 0.
type DMI struct {
	period int
}

// NewDMI creates a new DMI/ADX indicator.
func NewDMI(period int) *DMI {
	return &DMI{period: period}
}

func (d *DMI) Name() string {
	return fmt.Sprintf("DMI_%d", d.period)
}

func (d *DMI) Period() int {
	return 2 * d.period
}

func (d *DMI) Calculate(candles []models.Candle) (map[string][]float64, error) {
	if d.period < 2 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	dmPlus := make([]float64, n)
	dmMinus := make([]float64, n)
	tr := make([]float64, n)
	for i := range candles {
		if i == 0 {
			dmMinus[i] = candles[i].High - candles[i].Low
			tr[i] = candles[i].High - candles[i].Low
			continue
		}
		up := candles[i].High - candles[i-1].High
		down := candles[i-1].Low - candles[i].Low
		if up > down && up > 0 {
			dmPlus[i] = up
		}
		if down > up && down > 0 {
			dmMinus[i] = down
		}
		tr[i] = trueRange(candles[i], candles[i-1])
	}

	smoothPlus := wilderSum(dmPlus, d.period)
	smoothMinus := wilderSum(dmMinus, d.period)
	smoothTR := wilderSum(tr, d.period)

	plus := nanSlice(n)
	minus := nanSlice(n)
	for i := 0; i < n; i++ {
		if !Defined(smoothTR[i]) || smoothTR[i] == 0 {
			continue
		}
		plus[i] = smoothPlus[i] / smoothTR[i] * 100
		minus[i] = smoothMinus[i] / smoothTR[i] * 100
	}

	dx := nanSlice(n)
	for i := 0; i < n; i++ {
		if !Defined(plus[i]) || !Defined(minus[i]) {
			continue
		}
		s := plus[i] + minus[i]
		if s == 0 {
			dx[i] = 0
		} else {
			dx[i] = 100 * math.Abs(plus[i]-minus[i]) / s
		}
	}

	adx := nanSlice(n)
	var smoothDX float64
	seeded := false
	for i := d.period - 1; i < n; i++ {
		if !Defined(dx[i]) {
			continue
		}
		if !seeded {
			var s float64
			count := 0
			for j := 0; j < d.period && i-j >= 0; j++ {
				if Defined(dx[i-j]) {
					s += dx[i-j]
					count++
				}
			}
			if count >= d.period {
				smoothDX = s / float64(d.period)
			} else {
				smoothDX = dx[i]
			}
			seeded = true
		} else {
			smoothDX = smoothDX - smoothDX/float64(d.period) + dx[i]
		}
		adx[i] = smoothDX
	}

	return map[string][]float64{
		"plus_di":  plus,
		"minus_di": minus,
		"adx":      adx,
	}, nil
}

// Momentum calculates price[i] - price[i-period] over a selectable source.
type Momentum struct {
	period int
	source PriceSource
}

// NewMomentum creates a new momentum (MTM) indicator.
func NewMomentum(period int, source PriceSource) *Momentum {
	if source == "" {
		source = SourceClose
	}
	return &Momentum{period: period, source: source}
}

func (m *Momentum) Name() string {
	return fmt.Sprintf("MTM_%d_%s", m.period, m.source)
}

func (m *Momentum) Period() int {
	return m.period + 1
}

func (m *Momentum) Calculate(candles []models.Candle) ([]float64, error) {
	if m.period < 1 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}
	prices := priceSeries(candles, m.source)
	result := nanSlice(len(prices))
	for i := m.period; i < len(prices); i++ {
		result[i] = prices[i] - prices[i-m.period]
	}
	return result, nil
}
