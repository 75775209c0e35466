// Package viewport holds the visible time/price window of a chart, its
// pixel coordinate mapping and the zoom/pan/drag-zoom interaction state
// machine.
package viewport

import (
	"math"

	"kline-chart/internal/errors"
	"kline-chart/internal/models"
	"kline-chart/internal/series"
)

// PlotArea is the pixel rectangle of the price plot, excluding axis
// gutters and the volume pane.
type PlotArea struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Right returns the right plot edge in pixels.
func (p PlotArea) Right() float64 { return p.Left + p.Width }

// Bottom returns the bottom plot edge in pixels.
func (p PlotArea) Bottom() float64 { return p.Top + p.Height }

// Contains reports whether the pixel point lies inside the plot.
func (p PlotArea) Contains(x, y float64) bool {
	return x >= p.Left && x <= p.Right() && y >= p.Top && y <= p.Bottom()
}

// State is the visible time/price window. Times are milliseconds; they
// are continuous because zooming lands between bar boundaries.
type State struct {
	VisibleStartTime float64
	VisibleEndTime   float64
	VisibleMinPrice  float64
	VisibleMaxPrice  float64
	ZoomLevel        float64
}

// TimeRange returns the visible time span in milliseconds.
func (s State) TimeRange() float64 { return s.VisibleEndTime - s.VisibleStartTime }

// PriceRange returns the visible price span.
func (s State) PriceRange() float64 { return s.VisibleMaxPrice - s.VisibleMinPrice }

// Options configures zoom behavior.
type Options struct {
	// ZoomInFactor and ZoomOutFactor are applied per discrete wheel step.
	ZoomInFactor  float64
	ZoomOutFactor float64
	// MinRangeFraction floors the visible range at this fraction of the
	// full data range, per axis.
	MinRangeFraction float64
	// EndPositionRatio places the latest candle at this fraction of the
	// plot width in the default view.
	EndPositionRatio float64
	// GutterRight and GutterBottom are the axis label band sizes in
	// pixels; a press starting there begins an axis drag-zoom.
	GutterRight  float64
	GutterBottom float64
}

// DefaultOptions returns the standard interaction parameters.
func DefaultOptions() Options {
	return Options{
		ZoomInFactor:     1.1,
		ZoomOutFactor:    0.9,
		MinRangeFraction: 0.005,
		EndPositionRatio: 2.0 / 3.0,
		GutterRight:      60,
		GutterBottom:     30,
	}
}

// dragStart snapshots the state at the moment a press-drag begins; both
// pan and axis drag-zoom are computed from the snapshot, not
// incrementally, so they stay exact under jittery input.
type dragStart struct {
	x, y  float64
	state State
}

// Viewport owns the visible window over a candle series and the
// interaction mode state machine. It is mutated only from the event
// processing goroutine; there is no concurrent writer.
type Viewport struct {
	data *series.Store
	opts Options
	plot PlotArea

	state State
	mode  Mode
	drag  dragStart

	// onModeChange fires on every mode transition, letting the
	// annotation layer cancel an in-progress placement.
	onModeChange func(old, new Mode)
}

// New creates a viewport over the given series.
func New(data *series.Store, opts Options) *Viewport {
	if opts.ZoomInFactor <= 1 {
		opts.ZoomInFactor = 1.1
	}
	if opts.ZoomOutFactor <= 0 || opts.ZoomOutFactor >= 1 {
		opts.ZoomOutFactor = 0.9
	}
	if opts.MinRangeFraction <= 0 {
		opts.MinRangeFraction = 0.005
	}
	if opts.EndPositionRatio <= 0 || opts.EndPositionRatio > 1 {
		opts.EndPositionRatio = 2.0 / 3.0
	}
	return &Viewport{
		data:  data,
		opts:  opts,
		state: State{ZoomLevel: 1},
	}
}

// SetPlotArea sets the pixel rectangle of the price plot.
func (v *Viewport) SetPlotArea(plot PlotArea) {
	v.plot = plot
}

// PlotArea returns the current plot rectangle.
func (v *Viewport) PlotArea() PlotArea {
	return v.plot
}

// State returns the current visible window.
func (v *Viewport) State() State {
	return v.state
}

// Mode returns the current interaction mode.
func (v *Viewport) Mode() Mode {
	return v.mode
}

// OnModeChange registers a hook fired on each mode transition.
func (v *Viewport) OnModeChange(fn func(old, new Mode)) {
	v.onModeChange = fn
}

func (v *Viewport) setMode(m Mode) {
	if v.mode == m {
		return
	}
	old := v.mode
	v.mode = m
	if v.onModeChange != nil {
		v.onModeChange(old, m)
	}
}

// Reset restores the default view: the last N candles for the interval
// end at the latest candle, with the latest candle's column at the
// configured fraction of the plot width and the price range fitted to
// the visible candles with 10% padding. Fails when no data is loaded.
func (v *Viewport) Reset(interval models.Interval) error {
	bounds, err := v.data.Bounds()
	if err != nil {
		return errors.Wrap(err, "viewport reset")
	}

	intervalMs := interval.Ms()
	target := int64(interval.DefaultVisibleCandles()) * intervalMs
	dataRange := bounds.TimeRange()
	span := dataRange
	if target < span {
		span = target
	}
	if span <= 0 {
		span = target
	}

	end := float64(bounds.EndTime)
	v.state.VisibleStartTime = end - float64(span)
	v.state.VisibleEndTime = end + float64(span)*(1/v.opts.EndPositionRatio-1)

	low, high, ok := v.data.PriceExtremes(int64(v.state.VisibleStartTime), bounds.EndTime)
	if ok {
		vRange := high - low
		if vRange == 0 {
			vRange = bounds.PriceRange() * 0.1
		}
		pad := vRange * 0.1
		v.state.VisibleMinPrice = low - pad
		v.state.VisibleMaxPrice = high + pad
	} else {
		v.state.VisibleMinPrice = bounds.MinPrice
		v.state.VisibleMaxPrice = bounds.MaxPrice
	}

	v.state.ZoomLevel = 1
	return nil
}

// --- coordinate mapping ---

// TimeToX maps a millisecond timestamp to a pixel X coordinate.
func (v *Viewport) TimeToX(t int64) float64 {
	return v.timeToX(float64(t))
}

func (v *Viewport) timeToX(t float64) float64 {
	r := v.state.TimeRange()
	if r <= 0 {
		return v.plot.Left
	}
	return v.plot.Left + (t-v.state.VisibleStartTime)/r*v.plot.Width
}

// PriceToY maps a price to a pixel Y coordinate. The axis is inverted:
// higher price, smaller Y.
func (v *Viewport) PriceToY(price float64) float64 {
	r := v.state.PriceRange()
	if r <= 0 {
		return v.plot.Bottom()
	}
	return v.plot.Top + v.plot.Height - (price-v.state.VisibleMinPrice)/r*v.plot.Height
}

// XToTime maps a pixel X coordinate back to a timestamp. The normalized
// position is clamped to [0,1] first, so out-of-bounds pointers map to
// the nearest edge time rather than extrapolating.
func (v *Viewport) XToTime(x float64) int64 {
	return int64(math.Round(v.xToTimeF(x)))
}

func (v *Viewport) xToTimeF(x float64) float64 {
	if v.plot.Width <= 0 {
		return v.state.VisibleStartTime
	}
	normalized := (x - v.plot.Left) / v.plot.Width
	normalized = math.Max(0, math.Min(1, normalized))
	return v.state.VisibleStartTime + normalized*v.state.TimeRange()
}

// YToPrice maps a pixel Y coordinate back to a price.
func (v *Viewport) YToPrice(y float64) float64 {
	if v.plot.Height <= 0 {
		return v.state.VisibleMinPrice
	}
	normalized := (v.plot.Top + v.plot.Height - y) / v.plot.Height
	return v.state.VisibleMinPrice + normalized*v.state.PriceRange()
}

// PlotRect returns the plot rectangle as min/max pixel coordinates, the
// shape annotation clipping consumes.
func (v *Viewport) PlotRect() (minX, minY, maxX, maxY float64) {
	return v.plot.Left, v.plot.Top, v.plot.Right(), v.plot.Bottom()
}

// --- wheel zoom ---

// WheelZoom applies one discrete zoom step pivoted at the pointer: the
// domain point under (x, y) stays fixed in pixel space. Pointers outside
// the plot are ignored.
func (v *Viewport) WheelZoom(x, y float64, zoomIn bool) {
	if v.plot.Width <= 0 || v.plot.Height <= 0 || !v.plot.Contains(x, y) {
		return
	}
	bounds, err := v.data.Bounds()
	if err != nil {
		return
	}

	factor := v.opts.ZoomOutFactor
	if zoomIn {
		factor = v.opts.ZoomInFactor
	}

	curTime := v.state.TimeRange()
	curPrice := v.state.PriceRange()
	pivotTime := v.xToTimeF(x)
	pivotPrice := v.YToPrice(y)
	normX := 0.5
	if v.plot.Width > 0 {
		normX = (x - v.plot.Left) / v.plot.Width
	}
	normY := (v.plot.Top + v.plot.Height - y) / v.plot.Height

	newTime := math.Max(float64(bounds.TimeRange())*v.opts.MinRangeFraction, curTime/factor)
	newPrice := math.Max(bounds.PriceRange()*v.opts.MinRangeFraction, curPrice/factor)

	v.state.VisibleStartTime = pivotTime - normX*newTime
	v.state.VisibleEndTime = v.state.VisibleStartTime + newTime
	v.state.VisibleMinPrice = pivotPrice - normY*newPrice
	v.state.VisibleMaxPrice = v.state.VisibleMinPrice + newPrice
	v.state.ZoomLevel *= factor
}

// --- press-drag interactions ---

// InPriceGutter reports whether the pixel point lies in the right axis
// label band.
func (v *Viewport) InPriceGutter(x, y float64) bool {
	return x > v.plot.Right() && x <= v.plot.Right()+v.opts.GutterRight &&
		y >= v.plot.Top && y <= v.plot.Bottom()
}

// InTimeGutter reports whether the pixel point lies in the bottom axis
// label band.
func (v *Viewport) InTimeGutter(x, y float64) bool {
	return y > v.plot.Bottom() && y <= v.plot.Bottom()+v.opts.GutterBottom &&
		x >= v.plot.Left && x <= v.plot.Right()
}

// BeginDrag starts a press-drag interaction. A press in an axis gutter
// begins an axis drag-zoom, a press in the plot begins a pan; anything
// else leaves the mode untouched. Drags only start from Idle so an
// in-progress drawing keeps its clicks.
func (v *Viewport) BeginDrag(x, y float64) Mode {
	if v.mode.Kind != ModeIdle {
		return v.mode
	}
	switch {
	case v.InPriceGutter(x, y) || v.InTimeGutter(x, y):
		v.drag = dragStart{x: x, y: y, state: v.state}
		v.setMode(Mode{Kind: ModeAxisZoomDragging})
	case v.plot.Contains(x, y):
		v.drag = dragStart{x: x, y: y, state: v.state}
		v.setMode(Mode{Kind: ModePanning})
	}
	return v.mode
}

// DragTo advances the active press-drag to the pointer position. During
// a pan, lockTime freezes the time axis and lockPrice freezes the price
// axis (modifier-restricted panning).
func (v *Viewport) DragTo(x, y float64, lockTime, lockPrice bool) {
	switch v.mode.Kind {
	case ModePanning:
		v.panTo(x, y, lockTime, lockPrice)
	case ModeAxisZoomDragging:
		v.axisZoomTo(x, y)
	}
}

// EndDrag finishes a pan or axis drag-zoom.
func (v *Viewport) EndDrag() {
	if v.mode.Kind == ModePanning || v.mode.Kind == ModeAxisZoomDragging {
		v.setMode(Mode{Kind: ModeIdle})
	}
}

func (v *Viewport) panTo(x, y float64, lockTime, lockPrice bool) {
	bounds, err := v.data.Bounds()
	if err != nil {
		return
	}
	start := v.drag.state
	timeRange := start.TimeRange()
	priceRange := start.PriceRange()

	var timeDelta, priceDelta float64
	if v.plot.Width > 0 {
		timeDelta = -(x - v.drag.x) / v.plot.Width * timeRange
	}
	if v.plot.Height > 0 {
		priceDelta = (y - v.drag.y) / v.plot.Height * priceRange
	}

	newStart := start.VisibleStartTime
	newEnd := start.VisibleEndTime
	if !lockTime {
		newStart += timeDelta
		newEnd += timeDelta
	}
	newMin := start.VisibleMinPrice
	newMax := start.VisibleMaxPrice
	if !lockPrice {
		newMin += priceDelta
		newMax += priceDelta
	}

	// Overscroll is bounded by one full range width per axis; hitting
	// the limit snaps the boundary while preserving the range width.
	newStart, newEnd = clampWindow(newStart, newEnd, float64(bounds.StartTime), float64(bounds.EndTime), timeRange)
	newMin, newMax = clampWindow(newMin, newMax, bounds.MinPrice, bounds.MaxPrice, priceRange)

	v.state.VisibleStartTime = newStart
	v.state.VisibleEndTime = newEnd
	v.state.VisibleMinPrice = newMin
	v.state.VisibleMaxPrice = newMax
}

func (v *Viewport) axisZoomTo(x, y float64) {
	bounds, err := v.data.Bounds()
	if err != nil {
		return
	}
	start := v.drag.state
	dx := x - v.drag.x
	dy := y - v.drag.y

	timeMult := clamp(1-dx/400, 0.05, 3)
	priceMult := clamp(1+dy/400, 0.05, 3)

	// A multiplier of exactly 1 keeps that axis bit-identical; recomputing
	// it from the pivot would drift the window by an ulp per event.
	newStart := start.VisibleStartTime
	newEnd := start.VisibleEndTime
	if timeMult != 1 {
		fullTime := float64(bounds.TimeRange())
		newTimeRange := math.Max(fullTime*v.opts.MinRangeFraction, start.TimeRange()*timeMult)

		normX := 0.5
		if v.plot.Width > 0 {
			normX = (v.drag.x - v.plot.Left) / v.plot.Width
		}
		pivotTime := start.VisibleStartTime + normX*start.TimeRange()

		newStart = pivotTime - newTimeRange*normX
		newEnd = newStart + newTimeRange

		// Half-view overscroll beyond the data edges.
		halfView := fullTime * 0.5
		if newStart < float64(bounds.StartTime)-halfView {
			newStart = float64(bounds.StartTime) - halfView
			newEnd = newStart + newTimeRange
		}
		if newEnd > float64(bounds.EndTime)+halfView {
			newEnd = float64(bounds.EndTime) + halfView
			newStart = newEnd - newTimeRange
		}
	}

	newMin := start.VisibleMinPrice
	newMax := start.VisibleMaxPrice
	if priceMult != 1 {
		newPriceRange := math.Max(bounds.PriceRange()*v.opts.MinRangeFraction, start.PriceRange()*priceMult)
		pivotPrice := (start.VisibleMinPrice + start.VisibleMaxPrice) / 2
		newMin = pivotPrice - newPriceRange/2
		newMax = pivotPrice + newPriceRange/2
	}

	v.state.VisibleStartTime = newStart
	v.state.VisibleEndTime = newEnd
	v.state.VisibleMinPrice = newMin
	v.state.VisibleMaxPrice = newMax
}

// --- drawing / placement modes ---

// BeginDraw enters a drawing mode, cancelling any other in-progress
// placement.
func (v *Viewport) BeginDraw(kind DrawKind) {
	if kind == DrawNone {
		v.CancelInteraction()
		return
	}
	v.setMode(Mode{Kind: ModeDrawing, Draw: kind})
}

// BeginRayPlacement enters the single-click ray placement mode.
func (v *Viewport) BeginRayPlacement() {
	v.setMode(Mode{Kind: ModePlacingRay})
}

// FinishPlacement returns to Idle after a drawing or ray placement
// completes.
func (v *Viewport) FinishPlacement() {
	if v.mode.Kind == ModeDrawing || v.mode.Kind == ModePlacingRay {
		v.setMode(Mode{Kind: ModeIdle})
	}
}

// CancelInteraction aborts whatever interaction is active.
func (v *Viewport) CancelInteraction() {
	v.setMode(Mode{Kind: ModeIdle})
}

// clampWindow bounds [lo, hi] so it exceeds [dataLo, dataHi] by at most
// one range width on either side, snapping while preserving width.
func clampWindow(lo, hi, dataLo, dataHi, width float64) (float64, float64) {
	if lo < dataLo-width {
		lo = dataLo - width
		hi = lo + width
	}
	if hi > dataHi+width {
		hi = dataHi + width
		lo = hi - width
	}
	return lo, hi
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
