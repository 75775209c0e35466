package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	chrterrors "kline-chart/internal/errors"
	"kline-chart/internal/feed"
	"kline-chart/internal/models"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "candles.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
		os.Remove(dbPath)
	})
	return s
}

func testBatch() feed.HistoryBatch {
	return feed.HistoryBatch{
		Candles: []models.Candle{
			{Time: 1000, Open: 10, High: 12, Low: 9, Close: 11},
			{Time: 2000, Open: 11, High: 13, Low: 10, Close: 12},
			{Time: 3000, Open: 12, High: 14, Low: 11, Close: 13},
		},
		Volumes: []float64{100, 200, 300},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveCandles(ctx, "BTCUSDT", "1h", testBatch()); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}

	loaded, err := s.LoadCandles(ctx, "BTCUSDT", "1h")
	if err != nil {
		t.Fatalf("LoadCandles failed: %v", err)
	}
	want := testBatch()
	if len(loaded.Candles) != len(want.Candles) {
		t.Fatalf("loaded %d candles, want %d", len(loaded.Candles), len(want.Candles))
	}
	for i := range want.Candles {
		if loaded.Candles[i] != want.Candles[i] {
			t.Errorf("candle %d mismatch: %+v vs %+v", i, loaded.Candles[i], want.Candles[i])
		}
		if loaded.Volumes[i] != want.Volumes[i] {
			t.Errorf("volume %d mismatch: %v vs %v", i, loaded.Volumes[i], want.Volumes[i])
		}
	}
}

func TestSaveCandlesUpserts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveCandles(ctx, "BTCUSDT", "1h", testBatch()); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}

	// Rewriting the same open time replaces the row instead of adding one.
	updated := feed.HistoryBatch{
		Candles: []models.Candle{{Time: 2000, Open: 11, High: 20, Low: 10, Close: 18}},
		Volumes: []float64{500},
	}
	if err := s.SaveCandles(ctx, "BTCUSDT", "1h", updated); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}

	loaded, err := s.LoadCandles(ctx, "BTCUSDT", "1h")
	if err != nil {
		t.Fatalf("LoadCandles failed: %v", err)
	}
	if len(loaded.Candles) != 3 {
		t.Fatalf("loaded %d candles, want 3", len(loaded.Candles))
	}
	if loaded.Candles[1].High != 20 || loaded.Volumes[1] != 500 {
		t.Errorf("row not replaced: %+v vol %v", loaded.Candles[1], loaded.Volumes[1])
	}
}

func TestLoadCandlesKeyedBySymbolAndInterval(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveCandles(ctx, "BTCUSDT", "1h", testBatch()); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}

	if _, err := s.LoadCandles(ctx, "ETHUSDT", "1h"); !errors.Is(err, chrterrors.ErrNoData) {
		t.Errorf("expected ErrNoData for other symbol, got %v", err)
	}
	if _, err := s.LoadCandles(ctx, "BTCUSDT", "5m"); !errors.Is(err, chrterrors.ErrNoData) {
		t.Errorf("expected ErrNoData for other interval, got %v", err)
	}
}

func TestFreshness(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.Freshness(ctx, "BTCUSDT", "1h"); !errors.Is(err, chrterrors.ErrNoData) {
		t.Errorf("expected ErrNoData before any save, got %v", err)
	}

	if err := s.SaveCandles(ctx, "BTCUSDT", "1h", testBatch()); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}
	fetchedAt, err := s.Freshness(ctx, "BTCUSDT", "1h")
	if err != nil {
		t.Fatalf("Freshness failed: %v", err)
	}
	if fetchedAt.IsZero() {
		t.Error("expected a recorded fetch time")
	}
}

func TestPrune(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveCandles(ctx, "BTCUSDT", "1h", testBatch()); err != nil {
		t.Fatalf("SaveCandles failed: %v", err)
	}

	n, err := s.Prune(ctx, "BTCUSDT", "1h", 2500)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 2 {
		t.Errorf("pruned %d rows, want 2", n)
	}

	loaded, err := s.LoadCandles(ctx, "BTCUSDT", "1h")
	if err != nil {
		t.Fatalf("LoadCandles failed: %v", err)
	}
	if len(loaded.Candles) != 1 || loaded.Candles[0].Time != 3000 {
		t.Errorf("unexpected remaining candles: %+v", loaded.Candles)
	}
}

func TestSaveCandlesRejectsMisalignedBatch(t *testing.T) {
	s := testStore(t)
	bad := feed.HistoryBatch{
		Candles: testBatch().Candles,
		Volumes: []float64{1},
	}
	if err := s.SaveCandles(context.Background(), "BTCUSDT", "1h", bad); err == nil {
		t.Error("expected error for misaligned batch")
	}
}
