package viewport

import (
	"math"

	"kline-chart/internal/models"
)

// candleWidthRatio is the body width as a fraction of one interval's
// pixel span; the remainder is the gap between neighboring candles.
const candleWidthRatio = 0.7

// CandleLayout is the pixel geometry of one visible candle, ready for a
// renderer. Y coordinates are clamped to the plot so partially visible
// candles draw flush against the plot edge.
type CandleLayout struct {
	Time       int64
	X          float64
	Width      float64
	BodyTop    float64
	BodyHeight float64
	WickX      float64
	WickTop    float64
	WickBottom float64
	Bullish    bool
}

// VolumeBar is the pixel geometry of one visible volume bar within a
// volume pane, scaled against the maximum visible volume.
type VolumeBar struct {
	Time    int64
	X       float64
	Width   float64
	Y       float64
	Height  float64
	Bullish bool
}

// AxisLevel is one price axis label position.
type AxisLevel struct {
	Price float64
	Y     float64
	Label string
}

// TimeTick is one time axis label position.
type TimeTick struct {
	Time  int64
	X     float64
	Label string
}

// candleWidth returns the pixel width of one candle body for the
// interval at the current zoom, floored at one pixel.
func (v *Viewport) candleWidth(interval models.Interval, visible int) float64 {
	r := v.state.TimeRange()
	if r > 0 {
		return math.Max(1, v.plot.Width*float64(interval.Ms())/r*candleWidthRatio)
	}
	if visible > 0 {
		return math.Max(1, v.plot.Width/float64(visible)*candleWidthRatio)
	}
	return 1
}

// CandleGeometry lays out the candles inside the visible time window.
// Candles entirely outside the plot horizontally are dropped; the rest
// are clipped to the plot rectangle on both axes.
func (v *Viewport) CandleGeometry(interval models.Interval) []CandleLayout {
	visible := v.data.Range(int64(v.state.VisibleStartTime), int64(math.Ceil(v.state.VisibleEndTime)))
	if len(visible) == 0 {
		return nil
	}

	width := v.candleWidth(interval, len(visible))
	minX, minY, maxX, maxY := v.PlotRect()

	out := make([]CandleLayout, 0, len(visible))
	for _, c := range visible {
		x := v.TimeToX(c.Time) - width/2
		if x+width < minX || x > maxX {
			continue
		}
		openY := clamp(v.PriceToY(c.Open), minY, maxY)
		closeY := clamp(v.PriceToY(c.Close), minY, maxY)
		highY := clamp(v.PriceToY(c.High), minY, maxY)
		lowY := clamp(v.PriceToY(c.Low), minY, maxY)

		clippedX := clamp(x, minX, maxX-width)
		clippedWidth := math.Min(width, maxX-clippedX)

		out = append(out, CandleLayout{
			Time:       c.Time,
			X:          clippedX,
			Width:      clippedWidth,
			BodyTop:    math.Min(openY, closeY),
			BodyHeight: math.Max(1, math.Abs(closeY-openY)),
			WickX:      clippedX + clippedWidth/2,
			WickTop:    highY,
			WickBottom: lowY,
			Bullish:    c.IsBullish(),
		})
	}
	return out
}

// MaxVisibleVolume returns the largest volume among the visible
// candles; ok is false when nothing is visible or every volume is zero.
func (v *Viewport) MaxVisibleVolume() (max float64, ok bool) {
	_, volumes := v.data.RangeWithVolumes(int64(v.state.VisibleStartTime), int64(math.Ceil(v.state.VisibleEndTime)))
	for _, vol := range volumes {
		if vol > max {
			max = vol
		}
	}
	return max, max > 0
}

// VolumeBars lays out the visible volume bars inside the pane, each bar
// scaled against the maximum visible volume so the tallest bar fills
// the pane height. Returns nil when the visible volumes are all zero.
func (v *Viewport) VolumeBars(interval models.Interval, pane PlotArea) []VolumeBar {
	candles, volumes := v.data.RangeWithVolumes(int64(v.state.VisibleStartTime), int64(math.Ceil(v.state.VisibleEndTime)))
	if len(candles) == 0 {
		return nil
	}
	maxVolume := 0.0
	for _, vol := range volumes {
		if vol > maxVolume {
			maxVolume = vol
		}
	}
	if maxVolume == 0 {
		return nil
	}

	fullWidth := v.candleWidth(interval, len(candles)) / candleWidthRatio
	barWidth := fullWidth * candleWidthRatio
	minX, maxX := pane.Left, pane.Right()

	out := make([]VolumeBar, 0, len(candles))
	for i, c := range candles {
		height := volumes[i] / maxVolume * pane.Height
		if height <= 0 {
			continue
		}
		x := v.TimeToX(c.Time) - fullWidth/2
		clippedX := clamp(x, minX, maxX-barWidth)
		clippedWidth := math.Min(barWidth, maxX-clippedX)
		clippedHeight := math.Min(height, pane.Height)
		if clippedWidth <= 0 {
			continue
		}
		out = append(out, VolumeBar{
			Time:    c.Time,
			X:       clippedX,
			Width:   clippedWidth,
			Y:       pane.Bottom() - clippedHeight,
			Height:  clippedHeight,
			Bullish: c.IsBullish(),
		})
	}
	return out
}

// priceAxisLevelCount and timeAxisTickCount size the axis label grids.
const (
	priceAxisLevelCount = 5
	timeAxisTickCount   = 10
)

// PriceAxisLevels returns evenly spaced price labels across the visible
// price range, lowest first.
func (v *Viewport) PriceAxisLevels() []AxisLevel {
	step := v.state.PriceRange() / float64(priceAxisLevelCount-1)
	levels := make([]AxisLevel, 0, priceAxisLevelCount)
	for i := 0; i < priceAxisLevelCount; i++ {
		price := v.state.VisibleMinPrice + float64(i)*step
		levels = append(levels, AxisLevel{
			Price: price,
			Y:     v.PriceToY(price),
			Label: models.FormatPrice(price),
		})
	}
	return levels
}

// TimeAxisTicks returns evenly spaced time labels across the visible
// time range, both edges included.
func (v *Viewport) TimeAxisTicks() []TimeTick {
	step := v.state.TimeRange() / timeAxisTickCount
	ticks := make([]TimeTick, 0, timeAxisTickCount+1)
	for i := 0; i <= timeAxisTickCount; i++ {
		t := int64(math.Round(v.state.VisibleStartTime + float64(i)*step))
		ticks = append(ticks, TimeTick{
			Time:  t,
			X:     v.timeToX(float64(t)),
			Label: models.FormatTime(t),
		})
	}
	return ticks
}
