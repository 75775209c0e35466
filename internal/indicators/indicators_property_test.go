package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: every defined SMA value equals the arithmetic mean of its
// trailing window, and exactly the first period-1 values are undefined.
func TestProperty_SMAWindowMean(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("SMA equals the trailing window mean", prop.ForAll(
		func(closes []float64, period int) bool {
			if len(closes) < period {
				return true
			}
			candles := candlesFromCloses(closes...)
			values, err := NewSMA(period).Calculate(candles)
			if err != nil {
				t.Logf("Calculate failed: %v", err)
				return false
			}

			for i := 0; i < period-1; i++ {
				if !math.IsNaN(values[i]) {
					t.Logf("values[%d] defined during warm-up", i)
					return false
				}
			}
			for i := period - 1; i < len(closes); i++ {
				var sum float64
				for j := i - period + 1; j <= i; j++ {
					sum += closes[j]
				}
				if math.Abs(values[i]-sum/float64(period)) > 1e-6 {
					t.Logf("values[%d] = %v, want %v", i, values[i], sum/float64(period))
					return false
				}
			}
			return true
		},
		gen.SliceOfN(40, gen.Float64Range(1, 10000)),
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}

// Property: RSI stays within [0, 100] wherever it is defined.
func TestProperty_RSIBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("RSI is bounded by 0 and 100", prop.ForAll(
		func(closes []float64) bool {
			candles := candlesFromCloses(closes...)
			values, err := NewRSI(14).Calculate(candles)
			if err != nil {
				t.Logf("Calculate failed: %v", err)
				return false
			}
			for i, v := range values {
				if math.IsNaN(v) {
					continue
				}
				if v < 0 || v > 100 {
					t.Logf("values[%d] = %v out of range", i, v)
					return false
				}
			}
			return true
		},
		gen.SliceOfN(60, gen.Float64Range(1, 1000)),
	))

	properties.TestingRun(t)
}

// Property: Bollinger bands bracket the middle line symmetrically.
func TestProperty_BollingerBandsOrdered(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("upper >= middle >= lower with symmetric offsets", prop.ForAll(
		func(closes []float64) bool {
			candles := candlesFromCloses(closes...)
			values, err := NewBollinger(20, 2).Calculate(candles)
			if err != nil {
				t.Logf("Calculate failed: %v", err)
				return false
			}
			upper, middle, lower := values["upper"], values["middle"], values["lower"]
			for i := range closes {
				if math.IsNaN(middle[i]) {
					continue
				}
				if upper[i] < middle[i] || middle[i] < lower[i] {
					t.Logf("bands out of order at %d: %v %v %v", i, upper[i], middle[i], lower[i])
					return false
				}
				if math.Abs((upper[i]-middle[i])-(middle[i]-lower[i])) > 1e-6 {
					t.Logf("bands asymmetric at %d", i)
					return false
				}
			}
			return true
		},
		gen.SliceOfN(40, gen.Float64Range(1, 1000)),
	))

	properties.TestingRun(t)
}
