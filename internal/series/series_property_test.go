package series

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"kline-chart/internal/models"
)

// Property: after any sequence of upserts the series stays strictly
// ascending by time, with volumes index-aligned, and each distinct time
// appears exactly once.
func TestProperty_UpsertKeepsOrderAndAlignment(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	timesGen := gen.SliceOfN(30, gen.Int64Range(0, 50))
	priceGen := gen.Float64Range(1, 1000)

	properties.Property("upsert preserves ascending order and volume alignment", prop.ForAll(
		func(times []int64, basePrice float64) bool {
			s := NewStore()
			if err := s.LoadHistorical(
				[]models.Candle{{Time: -10, Open: basePrice, High: basePrice, Low: basePrice, Close: basePrice}},
				[]float64{1},
			); err != nil {
				t.Logf("seed load failed: %v", err)
				return false
			}

			seen := map[int64]bool{-10: true}
			for i, tm := range times {
				p := basePrice + float64(i)
				s.Upsert(models.Candle{Time: tm, Open: p, High: p + 1, Low: p - 1, Close: p}, float64(i))
				seen[tm] = true
			}

			candles := s.Candles()
			volumes := s.Volumes()
			if len(candles) != len(volumes) {
				t.Logf("length mismatch: %d candles, %d volumes", len(candles), len(volumes))
				return false
			}
			if len(candles) != len(seen) {
				t.Logf("duplicate times: %d candles for %d distinct times", len(candles), len(seen))
				return false
			}
			for i := 1; i < len(candles); i++ {
				if candles[i].Time <= candles[i-1].Time {
					t.Logf("order broken at %d: %d <= %d", i, candles[i].Time, candles[i-1].Time)
					return false
				}
			}
			return true
		},
		timesGen,
		priceGen,
	))

	properties.TestingRun(t)
}

// Property: applying the same update twice leaves the series exactly as
// applying it once.
func TestProperty_UpsertIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("repeated upsert of the same candle is a no-op", prop.ForAll(
		func(tm int64, price, volume float64) bool {
			s := NewStore()
			if err := s.LoadHistorical(
				[]models.Candle{
					{Time: 0, Open: 10, High: 11, Low: 9, Close: 10},
					{Time: 100, Open: 10, High: 11, Low: 9, Close: 10},
				},
				[]float64{1, 1},
			); err != nil {
				return false
			}

			candle := models.Candle{Time: tm, Open: price, High: price + 1, Low: price - 1, Close: price}
			s.Upsert(candle, volume)
			once, onceVols := s.Snapshot()

			s.Upsert(candle, volume)
			twice, twiceVols := s.Snapshot()

			if len(once) != len(twice) {
				t.Logf("length changed: %d then %d", len(once), len(twice))
				return false
			}
			for i := range once {
				if once[i] != twice[i] || onceVols[i] != twiceVols[i] {
					t.Logf("state changed at %d", i)
					return false
				}
			}
			return true
		},
		gen.Int64Range(1, 200),
		gen.Float64Range(1, 1000),
		gen.Float64Range(0, 1e6),
	))

	properties.TestingRun(t)
}
