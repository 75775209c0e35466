package viewport

import (
	"math"
	"testing"

	"kline-chart/internal/models"
	"kline-chart/internal/series"
)

func TestCandleGeometryLaysOutVisibleCandles(t *testing.T) {
	v := newTestViewport(t, 200)
	layouts := v.CandleGeometry("1h")

	// The default 1h view spans candles 114..199.
	if len(layouts) != 86 {
		t.Fatalf("layout count = %d, want 86", len(layouts))
	}

	// Width is 70% of one interval's pixel span: the reset time range is
	// 127.5 hours across 900 pixels.
	wantWidth := 900.0 / 127.5 * 0.7
	first := layouts[0]
	if math.Abs(first.Width-wantWidth) > 1e-9 {
		t.Errorf("width = %v, want %v", first.Width, wantWidth)
	}
	if first.Time != 114*hourMs {
		t.Errorf("first time = %d, want %d", first.Time, 114*hourMs)
	}

	for _, l := range layouts {
		if l.X < 0 || l.X+l.Width > 900+1e-9 {
			t.Errorf("candle at %d overflows the plot: x=%v w=%v", l.Time, l.X, l.Width)
		}
		if l.WickTop > l.WickBottom {
			t.Errorf("candle at %d has inverted wick: %v > %v", l.Time, l.WickTop, l.WickBottom)
		}
		if l.BodyHeight < 1 {
			t.Errorf("candle at %d has body height %v, want >= 1", l.Time, l.BodyHeight)
		}
		if math.Abs(l.WickX-(l.X+l.Width/2)) > 1e-9 {
			t.Errorf("candle at %d wick not centered", l.Time)
		}
		if !l.Bullish {
			t.Errorf("candle at %d should be bullish", l.Time)
		}
	}
}

func TestCandleGeometryClampsToPlot(t *testing.T) {
	v := newTestViewport(t, 200)

	// Narrow the price window so highs and lows land outside the plot.
	v.state.VisibleMinPrice = 99
	v.state.VisibleMaxPrice = 101

	for _, l := range v.CandleGeometry("1h") {
		if l.WickTop < 0 || l.WickBottom > 600 {
			t.Errorf("wick escapes plot: [%v, %v]", l.WickTop, l.WickBottom)
		}
		if l.BodyTop < 0 || l.BodyTop+l.BodyHeight > 601 {
			t.Errorf("body escapes plot: top=%v h=%v", l.BodyTop, l.BodyHeight)
		}
	}
}

func TestCandleGeometryEmptyWindow(t *testing.T) {
	v := newTestViewport(t, 200)
	v.state.VisibleStartTime = -1e12
	v.state.VisibleEndTime = -1e11

	if layouts := v.CandleGeometry("1h"); layouts != nil {
		t.Errorf("expected no layouts outside the data, got %d", len(layouts))
	}
}

func TestMaxVisibleVolume(t *testing.T) {
	v := newTestViewport(t, 200)
	max, ok := v.MaxVisibleVolume()
	if !ok || max != 1000 {
		t.Errorf("max visible volume = %v/%v, want 1000/true", max, ok)
	}
}

func TestMaxVisibleVolumeAllZero(t *testing.T) {
	candles := []models.Candle{
		{Time: 0, Open: 100, High: 101, Low: 99, Close: 100},
		{Time: hourMs, Open: 100, High: 101, Low: 99, Close: 100},
	}
	s := series.NewStore()
	if err := s.LoadHistorical(candles, []float64{0, 0}); err != nil {
		t.Fatalf("LoadHistorical failed: %v", err)
	}
	v := New(s, DefaultOptions())
	v.SetPlotArea(PlotArea{Left: 0, Top: 0, Width: 900, Height: 600})
	if err := v.Reset("1h"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if _, ok := v.MaxVisibleVolume(); ok {
		t.Error("expected ok=false for all-zero volumes")
	}
	if bars := v.VolumeBars("1h", PlotArea{Left: 0, Top: 600, Width: 900, Height: 100}); bars != nil {
		t.Errorf("expected no volume bars, got %d", len(bars))
	}
}

func TestVolumeBarsScaleToPane(t *testing.T) {
	v := newTestViewport(t, 200)
	pane := PlotArea{Left: 0, Top: 600, Width: 900, Height: 100}
	bars := v.VolumeBars("1h", pane)

	if len(bars) != 86 {
		t.Fatalf("bar count = %d, want 86", len(bars))
	}
	for _, b := range bars {
		// Every volume equals the maximum, so every bar fills the pane.
		if math.Abs(b.Height-100) > 1e-9 || math.Abs(b.Y-600) > 1e-9 {
			t.Errorf("bar at %d = y %v h %v, want full pane", b.Time, b.Y, b.Height)
		}
		if b.X < pane.Left || b.X+b.Width > pane.Right()+1e-9 {
			t.Errorf("bar at %d overflows the pane: x=%v w=%v", b.Time, b.X, b.Width)
		}
	}
}

func TestPriceAxisLevels(t *testing.T) {
	v := newTestViewport(t, 200)
	levels := v.PriceAxisLevels()

	if len(levels) != 5 {
		t.Fatalf("level count = %d, want 5", len(levels))
	}
	state := v.State()
	if levels[0].Price != state.VisibleMinPrice || levels[4].Price != state.VisibleMaxPrice {
		t.Errorf("levels [%v, %v] do not span the visible range [%v, %v]",
			levels[0].Price, levels[4].Price, state.VisibleMinPrice, state.VisibleMaxPrice)
	}
	if math.Abs(levels[0].Y-600) > 1e-9 || math.Abs(levels[4].Y) > 1e-9 {
		t.Errorf("edge levels at y %v and %v, want 600 and 0", levels[0].Y, levels[4].Y)
	}
	for i := 1; i < len(levels); i++ {
		if levels[i].Y >= levels[i-1].Y {
			t.Errorf("level %d not above level %d", i, i-1)
		}
		if levels[i].Label == "" {
			t.Errorf("level %d has an empty label", i)
		}
	}
}

func TestTimeAxisTicks(t *testing.T) {
	v := newTestViewport(t, 200)
	ticks := v.TimeAxisTicks()

	if len(ticks) != 11 {
		t.Fatalf("tick count = %d, want 11", len(ticks))
	}
	for i, tick := range ticks {
		want := float64(i) * 90
		if math.Abs(tick.X-want) > 0.01 {
			t.Errorf("tick %d at x %v, want %v", i, tick.X, want)
		}
		if tick.Label == "" {
			t.Errorf("tick %d has an empty label", i)
		}
	}
}
