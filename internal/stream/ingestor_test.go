package stream

import (
	"testing"

	"github.com/rs/zerolog"

	"kline-chart/internal/models"
	"kline-chart/internal/series"
)

func seededStore(t *testing.T) *series.Store {
	t.Helper()
	s := series.NewStore()
	err := s.LoadHistorical(
		[]models.Candle{
			{Time: 0, Open: 100, High: 102, Low: 98, Close: 101},
			{Time: 60000, Open: 101, High: 103, Low: 100, Close: 102},
		},
		[]float64{10, 20},
	)
	if err != nil {
		t.Fatalf("LoadHistorical failed: %v", err)
	}
	return s
}

func newTestIngestor(t *testing.T, data *series.Store) *Ingestor {
	t.Helper()
	return NewIngestor(data, "BTCUSDT", "1m", DefaultIngestorConfig(), zerolog.Nop())
}

func TestApplyUpsertsAndNotifies(t *testing.T) {
	data := seededStore(t)
	in := newTestIngestor(t, data)

	var applied, closed int
	in.OnApply(func(models.KlineUpdate) { applied++ })
	in.OnCandleClosed(func(models.KlineUpdate) { closed++ })

	// In-progress update replaces the forming candle without a close
	// notification.
	in.Apply(models.KlineUpdate{
		Symbol: "BTCUSDT", Interval: "1m", Time: 60000,
		Open: 101, High: 104, Low: 100, Close: 103, Volume: 25,
	})
	if applied != 1 || closed != 0 {
		t.Errorf("applied=%d closed=%d after open update", applied, closed)
	}
	if got := data.Candles()[1].High; got != 104 {
		t.Errorf("candle not replaced: high=%v", got)
	}

	// The closing update widens the padded price bounds.
	in.Apply(models.KlineUpdate{
		Symbol: "BTCUSDT", Interval: "1m", Time: 60000,
		Open: 101, High: 110, Low: 100, Close: 109, Volume: 30, IsClosed: true,
	})
	if applied != 2 || closed != 1 {
		t.Errorf("applied=%d closed=%d after close", applied, closed)
	}
	bounds, err := data.Bounds()
	if err != nil {
		t.Fatalf("Bounds failed: %v", err)
	}
	if bounds.MaxPrice <= 110 {
		t.Errorf("bounds not recomputed on close: %+v", bounds)
	}
}

func TestSubmitFiltersMismatchedUpdates(t *testing.T) {
	data := seededStore(t)
	in := newTestIngestor(t, data)

	in.Submit(models.KlineUpdate{Symbol: "ETHUSDT", Interval: "1m", Time: 120000, Close: 50})
	in.Submit(models.KlineUpdate{Symbol: "BTCUSDT", Interval: "5m", Time: 120000, Close: 50})

	if data.Len() != 2 {
		t.Errorf("mismatched updates reached the series: len=%d", data.Len())
	}
	if _, dropped := in.Stats(); dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
}

func TestApplyInsertsNewPeriod(t *testing.T) {
	data := seededStore(t)
	in := newTestIngestor(t, data)

	in.Apply(models.KlineUpdate{
		Symbol: "BTCUSDT", Interval: "1m", Time: 120000,
		Open: 102, High: 105, Low: 101, Close: 104, Volume: 40,
	})

	if data.Len() != 3 {
		t.Fatalf("len = %d, want 3", data.Len())
	}
	last, err := data.Last()
	if err != nil {
		t.Fatalf("Last failed: %v", err)
	}
	if last.Time != 120000 || last.Close != 104 {
		t.Errorf("unexpected last candle: %+v", last)
	}
	bounds, _ := data.Bounds()
	if bounds.EndTime != 120000 {
		t.Errorf("end time not extended: %d", bounds.EndTime)
	}
}
