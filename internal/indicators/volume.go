package indicators

import (
	"fmt"

	"kline-chart/internal/models"
)

// VWAP calculates the cumulative volume-weighted average of the typical
// price from the start of the series. While no volume has accumulated the
// value falls back to the bar's typical price.
type VWAP struct{}

// NewVWAP creates a new VWAP indicator.
func NewVWAP() *VWAP {
	return &VWAP{}
}

func (v *VWAP) Name() string {
	return "VWAP"
}

func (v *VWAP) Period() int {
	return 1
}

func (v *VWAP) Calculate(candles []models.Candle, volumes []float64) ([]float64, error) {
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}
	result := make([]float64, len(candles))
	var cumTPV, cumVol float64
	for i, c := range candles {
		var vol float64
		if i < len(volumes) {
			vol = volumes[i]
		}
		tp := c.TypicalPrice()
		cumTPV += tp * vol
		cumVol += vol
		if cumVol > 0 {
			result[i] = cumTPV / cumVol
		} else {
			result[i] = tp
		}
	}
	return result, nil
}

// OBV calculates On-Balance Volume: seeded with the first bar's volume,
// volume is added on an up-close and subtracted on a down-close.
type OBV struct{}

// NewOBV creates a new OBV indicator.
func NewOBV() *OBV {
	return &OBV{}
}

func (o *OBV) Name() string {
	return "OBV"
}

func (o *OBV) Period() int {
	return 1
}

func (o *OBV) Calculate(candles []models.Candle, volumes []float64) ([]float64, error) {
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}
	result := make([]float64, len(candles))
	var obv float64
	for i, c := range candles {
		var vol float64
		if i < len(volumes) {
			vol = volumes[i]
		}
		if i == 0 {
			obv = vol
		} else if c.Close > candles[i-1].Close {
			obv += vol
		} else if c.Close < candles[i-1].Close {
			obv -= vol
		}
		result[i] = obv
	}
	return result, nil
}

// MFI calculates the Money Flow Index, a volume-weighted RSI analogue on
// typical-price money flows.
type MFI struct {
	period int
}

// NewMFI creates a new MFI indicator.
func NewMFI(period int) *MFI {
	return &MFI{period: period}
}

func (m *MFI) Name() string {
	return fmt.Sprintf("MFI_%d", m.period)
}

func (m *MFI) Period() int {
	return m.period + 1
}

func (m *MFI) Calculate(candles []models.Candle, volumes []float64) ([]float64, error) {
	if m.period < 2 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}
	tp := typicalPrices(candles)
	result := nanSlice(len(candles))
	for i := m.period; i < len(candles); i++ {
		var pos, neg float64
		for j := i - m.period + 1; j <= i; j++ {
			var vol float64
			if j < len(volumes) {
				vol = volumes[j]
			}
			raw := tp[j] * vol
			prev := tp[j]
			if j > 0 {
				prev = tp[j-1]
			}
			if tp[j] > prev {
				pos += raw
			} else if tp[j] < prev {
				neg += raw
			}
		}
		ratio := 100.0
		if neg != 0 {
			ratio = pos / neg
		}
		result[i] = 100 - 100/(1+ratio)
	}
	return result, nil
}

// EMV calculates the Ease of Movement oscillator: distance moved divided
// by the box ratio (volume/range scaled by a divisor), simple-averaged
// over the period. Zero-volume bars contribute a zero oscillator value.
type EMV struct {
	period  int
	divisor float64
}

// NewEMV creates a new EMV indicator. A non-positive divisor falls back
// to 10000.
func NewEMV(period int, divisor float64) *EMV {
	if divisor <= 0 {
		divisor = 10000
	}
	return &EMV{period: period, divisor: divisor}
}

func (e *EMV) Name() string {
	return fmt.Sprintf("EMV_%d_%g", e.period, e.divisor)
}

func (e *EMV) Period() int {
	return e.period
}

func (e *EMV) Calculate(candles []models.Candle, volumes []float64) ([]float64, error) {
	if e.period < 2 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	raw := nanSlice(n)
	for i := 1; i < n; i++ {
		mid := (candles[i].High + candles[i].Low) / 2
		prevMid := (candles[i-1].High + candles[i-1].Low) / 2
		dm := mid - prevMid
		var br float64
		if i < len(volumes) && volumes[i] > 0 {
			br = (candles[i].High - candles[i].Low) * e.divisor / volumes[i]
		}
		if br != 0 {
			raw[i] = dm / br
		} else {
			raw[i] = 0
		}
	}

	result := nanSlice(n)
	for i := e.period - 1; i < n; i++ {
		var s float64
		count := 0
		for j := i - e.period + 1; j <= i; j++ {
			if Defined(raw[j]) {
				s += raw[j]
				count++
			}
		}
		if count > 0 {
			result[i] = s / float64(count)
		}
	}
	return result, nil
}

// VolumeSMA calculates a simple moving average over the raw volume
// series, used for the MAVOL overlay on the volume pane.
type VolumeSMA struct {
	period int
}

// NewVolumeSMA creates a new volume moving average.
func NewVolumeSMA(period int) *VolumeSMA {
	return &VolumeSMA{period: period}
}

func (v *VolumeSMA) Name() string {
	return fmt.Sprintf("MAVOL_%d", v.period)
}

func (v *VolumeSMA) Period() int {
	return v.period
}

func (v *VolumeSMA) Calculate(candles []models.Candle, volumes []float64) ([]float64, error) {
	if v.period < 1 {
		return nil, ErrInvalidPeriod
	}
	if len(volumes) == 0 {
		return nil, ErrInsufficientData
	}
	return smaSeries(volumes, v.period), nil
}
