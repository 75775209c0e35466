package annotations

import (
	"testing"

	"kline-chart/internal/models"
	"kline-chart/internal/series"
)

// identityMapper maps time milliseconds straight to X pixels and price
// to Y with a fixed offset, over a 1000x1000 plot.
type identityMapper struct{}

func (identityMapper) TimeToX(t int64) float64      { return float64(t) }
func (identityMapper) PriceToY(price float64) float64 { return 1000 - price }
func (identityMapper) PlotRect() (float64, float64, float64, float64) {
	return 0, 0, 1000, 1000
}

func emptyStore() *Store {
	return NewStore(series.NewStore())
}

func TestHitTestLineThreshold(t *testing.T) {
	s := emptyStore()
	s.BeginAnchor(100, 500)
	if _, ok := s.CompleteLine(300, 500); !ok {
		t.Fatal("line placement failed")
	}

	m := identityMapper{}
	// The line runs horizontally at y=500 from x=100 to x=300.
	if _, ok := s.HitTest(m, 200, 509); !ok {
		t.Error("expected hit at 9px from the line")
	}
	if _, ok := s.HitTest(m, 200, 511); ok {
		t.Error("expected miss at 11px from the line")
	}
	// Beyond the endpoint the distance is measured to the endpoint.
	if _, ok := s.HitTest(m, 320, 500); ok {
		t.Error("expected miss 20px past the endpoint")
	}
}

func TestHitTestOrderRectBeforeLine(t *testing.T) {
	s := emptyStore()
	s.BeginAnchor(100, 400)
	s.CompleteLine(300, 400)
	s.BeginAnchor(150, 350)
	s.CompleteRect(250, 450)

	// The point sits on the line and inside the rect's expanded box.
	hit, ok := s.HitTest(identityMapper{}, 200, 600)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Kind != KindRect {
		t.Errorf("expected rect to win, got %v", hit.Kind)
	}
}

func TestHitTestLastAddedWins(t *testing.T) {
	s := emptyStore()
	s.BeginAnchor(100, 500)
	s.CompleteLine(300, 500)
	s.BeginAnchor(100, 502)
	s.CompleteLine(300, 502)

	hit, ok := s.HitTest(identityMapper{}, 200, 501)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Kind != KindLine || hit.Index != 1 {
		t.Errorf("expected the newer line, got %+v", hit)
	}
}

func TestHitTestRay(t *testing.T) {
	s := emptyStore()
	s.PlaceRay(400, 300, false)

	m := identityMapper{}
	// Rays extend to the right plot edge only.
	if _, ok := s.HitTest(m, 800, 700); !ok {
		t.Error("expected hit to the right of the anchor")
	}
	if _, ok := s.HitTest(m, 350, 700); ok {
		t.Error("expected miss well left of the anchor")
	}
	if _, ok := s.HitTest(m, 395, 700); !ok {
		t.Error("expected hit within the radius left of the anchor")
	}
}

func TestDelete(t *testing.T) {
	s := emptyStore()
	s.BeginAnchor(100, 500)
	s.CompleteLine(300, 500)
	s.PlaceRay(400, 300, true)

	if !s.Delete(Hit{Kind: KindRay, Index: 0}) {
		t.Error("delete failed")
	}
	if s.Delete(Hit{Kind: KindRay, Index: 0}) {
		t.Error("delete of a missing annotation succeeded")
	}
	if s.Count() != 1 {
		t.Errorf("count = %d, want 1", s.Count())
	}

	s.ClearAll()
	if s.Count() != 0 {
		t.Errorf("count after clear = %d", s.Count())
	}
}

func TestPlacementCancel(t *testing.T) {
	s := emptyStore()
	s.BeginAnchor(100, 500)
	s.CancelPending()

	if _, ok := s.CompleteLine(300, 500); ok {
		t.Error("completion succeeded after cancel")
	}
	if s.Count() != 0 {
		t.Errorf("count = %d, want 0", s.Count())
	}
}

func TestRulerSummary(t *testing.T) {
	const hourMs = int64(60 * 60 * 1000)
	candles := []models.Candle{
		{Time: 0, Open: 100, High: 105, Low: 95, Close: 102},
		{Time: hourMs, Open: 102, High: 108, Low: 100, Close: 104},
		{Time: 2 * hourMs, Open: 104, High: 112, Low: 103, Close: 110},
	}
	data := series.NewStore()
	if err := data.LoadHistorical(candles, []float64{1, 1, 1}); err != nil {
		t.Fatalf("LoadHistorical failed: %v", err)
	}
	s := NewStore(data)

	summary := s.Summarize(0, 2*hourMs, 90, 120)
	if summary.CandleCount != 3 {
		t.Errorf("count = %d, want 3", summary.CandleCount)
	}
	// First open 100 to last close 110.
	if summary.PercentChange != "+10.00%" {
		t.Errorf("percent change = %q, want +10.00%%", summary.PercentChange)
	}
	if summary.Elapsed != "0w 2h" {
		t.Errorf("elapsed = %q, want 0w 2h", summary.Elapsed)
	}
}

func TestRulerSummaryPriceFilter(t *testing.T) {
	const hourMs = int64(60 * 60 * 1000)
	candles := []models.Candle{
		{Time: 0, Open: 100, High: 105, Low: 95, Close: 102},
		{Time: hourMs, Open: 200, High: 210, Low: 195, Close: 205},
	}
	data := series.NewStore()
	if err := data.LoadHistorical(candles, []float64{1, 1}); err != nil {
		t.Fatalf("LoadHistorical failed: %v", err)
	}
	s := NewStore(data)

	// Price window only intersects the first candle.
	summary := s.Summarize(0, hourMs, 90, 110)
	if summary.CandleCount != 1 {
		t.Errorf("count = %d, want 1", summary.CandleCount)
	}
	if summary.PercentChange != "+2.00%" {
		t.Errorf("percent change = %q, want +2.00%%", summary.PercentChange)
	}
}

func TestRulerSummaryEmptySelection(t *testing.T) {
	s := emptyStore()
	summary := s.Summarize(0, 1000, 0, 1)
	if summary.CandleCount != 0 || summary.PercentChange != "+0.00%" || summary.Elapsed != "0w 0h" {
		t.Errorf("unexpected empty summary: %+v", summary)
	}
}

func TestRulerSummaryWeeks(t *testing.T) {
	const hourMs = int64(60 * 60 * 1000)
	const dayMs = 24 * hourMs
	candles := []models.Candle{
		{Time: 0, Open: 100, High: 105, Low: 95, Close: 102},
		{Time: 9*dayMs + 5*hourMs, Open: 102, High: 108, Low: 100, Close: 104},
	}
	data := series.NewStore()
	if err := data.LoadHistorical(candles, []float64{1, 1}); err != nil {
		t.Fatalf("LoadHistorical failed: %v", err)
	}
	s := NewStore(data)

	summary := s.Summarize(0, 10*dayMs, 90, 120)
	if summary.Elapsed != "1w 53h" {
		t.Errorf("elapsed = %q, want 1w 53h", summary.Elapsed)
	}
}

func TestCompleteRulerComputesSummary(t *testing.T) {
	const hourMs = int64(60 * 60 * 1000)
	candles := []models.Candle{
		{Time: 0, Open: 100, High: 105, Low: 95, Close: 102},
		{Time: hourMs, Open: 102, High: 108, Low: 100, Close: 110},
	}
	data := series.NewStore()
	if err := data.LoadHistorical(candles, []float64{1, 1}); err != nil {
		t.Fatalf("LoadHistorical failed: %v", err)
	}
	s := NewStore(data)

	// Corners may arrive in any order.
	s.BeginAnchor(hourMs, 90)
	sel, ok := s.CompleteRuler(0, 120)
	if !ok {
		t.Fatal("ruler placement failed")
	}
	if sel.Summary.CandleCount != 2 {
		t.Errorf("count = %d, want 2", sel.Summary.CandleCount)
	}
	if sel.Summary.PercentChange != "+10.00%" {
		t.Errorf("percent change = %q", sel.Summary.PercentChange)
	}
}
