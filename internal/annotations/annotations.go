// Package annotations owns user-drawn shapes in domain (time/price)
// coordinates and provides viewport-consistent hit-testing and clipping.
package annotations

import (
	"math"

	"kline-chart/internal/series"
)

// DefaultHitRadius is the pixel radius for proximity hit tests and the
// bounding-box expansion for rectangles and rulers.
const DefaultHitRadius = 10.0

// Mapper converts domain coordinates to the current pixel space. The
// viewport implements it; shapes never store pixels, so they stay valid
// under any viewport transform.
type Mapper interface {
	TimeToX(t int64) float64
	PriceToY(price float64) float64
	PlotRect() (minX, minY, maxX, maxY float64)
}

// FreehandLine is a two-point segment.
type FreehandLine struct {
	Time1  int64
	Price1 float64
	Time2  int64
	Price2 float64
}

// Ray is a horizontal line anchored at one point, extending to the right
// edge of the visible plot. IsAlert marks alert rays, drawn dashed.
type Ray struct {
	Time    int64
	Price   float64
	IsAlert bool
}

// Rectangle is a two-corner box.
type Rectangle struct {
	Time1  int64
	Price1 float64
	Time2  int64
	Price2 float64
}

// RulerSelection is a rectangular measurement region with a derived
// summary.
type RulerSelection struct {
	Time1   int64
	Price1  float64
	Time2   int64
	Price2  float64
	Summary RulerSummary
}

// Kind tags the annotation variants.
type Kind int

// Annotation kinds.
const (
	KindLine Kind = iota
	KindRay
	KindRect
	KindRuler
)

func (k Kind) String() string {
	switch k {
	case KindRay:
		return "ray"
	case KindRect:
		return "rect"
	case KindRuler:
		return "ruler"
	default:
		return "line"
	}
}

// Hit identifies the annotation found by a hit test.
type Hit struct {
	Kind  Kind
	Index int
}

// pending tracks a two-step placement's first anchor.
type pending struct {
	active bool
	time   int64
	price  float64
}

// Store owns the drawn shapes for one chart. Mutations happen on the
// event-processing goroutine only.
type Store struct {
	data      *series.Store
	hitRadius float64

	lines  []FreehandLine
	rays   []Ray
	rects  []Rectangle
	rulers []RulerSelection

	pendingAnchor pending
}

// NewStore creates an annotation store backed by the candle series (the
// series feeds ruler summaries).
func NewStore(data *series.Store) *Store {
	return &Store{data: data, hitRadius: DefaultHitRadius}
}

// SetHitRadius overrides the pixel hit radius.
func (s *Store) SetHitRadius(r float64) {
	if r > 0 {
		s.hitRadius = r
	}
}

// Lines returns the stored freehand lines.
func (s *Store) Lines() []FreehandLine { return append([]FreehandLine(nil), s.lines...) }

// Rays returns the stored rays.
func (s *Store) Rays() []Ray { return append([]Ray(nil), s.rays...) }

// Rectangles returns the stored rectangles.
func (s *Store) Rectangles() []Rectangle { return append([]Rectangle(nil), s.rects...) }

// Rulers returns the stored ruler selections.
func (s *Store) Rulers() []RulerSelection { return append([]RulerSelection(nil), s.rulers...) }

// Count returns the total number of stored shapes.
func (s *Store) Count() int {
	return len(s.lines) + len(s.rays) + len(s.rects) + len(s.rulers)
}

// --- placement ---

// BeginAnchor records the first point of a two-step placement (line,
// rectangle or ruler).
func (s *Store) BeginAnchor(t int64, price float64) {
	s.pendingAnchor = pending{active: true, time: t, price: price}
}

// PendingAnchor returns the in-progress first point, if any.
func (s *Store) PendingAnchor() (t int64, price float64, ok bool) {
	return s.pendingAnchor.time, s.pendingAnchor.price, s.pendingAnchor.active
}

// CancelPending aborts an in-progress placement.
func (s *Store) CancelPending() {
	s.pendingAnchor = pending{}
}

// CompleteLine finishes a line placement with the second point.
func (s *Store) CompleteLine(t int64, price float64) (FreehandLine, bool) {
	if !s.pendingAnchor.active {
		return FreehandLine{}, false
	}
	line := FreehandLine{
		Time1:  s.pendingAnchor.time,
		Price1: s.pendingAnchor.price,
		Time2:  t,
		Price2: price,
	}
	s.lines = append(s.lines, line)
	s.pendingAnchor = pending{}
	return line, true
}

// CompleteRect finishes a rectangle placement with the opposite corner.
func (s *Store) CompleteRect(t int64, price float64) (Rectangle, bool) {
	if !s.pendingAnchor.active {
		return Rectangle{}, false
	}
	rect := Rectangle{
		Time1:  s.pendingAnchor.time,
		Price1: s.pendingAnchor.price,
		Time2:  t,
		Price2: price,
	}
	s.rects = append(s.rects, rect)
	s.pendingAnchor = pending{}
	return rect, true
}

// CompleteRuler finishes a ruler placement and computes its summary from
// the candles intersecting the selection.
func (s *Store) CompleteRuler(t int64, price float64) (RulerSelection, bool) {
	if !s.pendingAnchor.active {
		return RulerSelection{}, false
	}
	sel := RulerSelection{
		Time1:  s.pendingAnchor.time,
		Price1: s.pendingAnchor.price,
		Time2:  t,
		Price2: price,
	}
	startTime := min64(sel.Time1, sel.Time2)
	endTime := max64(sel.Time1, sel.Time2)
	minPrice := math.Min(sel.Price1, sel.Price2)
	maxPrice := math.Max(sel.Price1, sel.Price2)
	sel.Summary = s.Summarize(startTime, endTime, minPrice, maxPrice)
	s.rulers = append(s.rulers, sel)
	s.pendingAnchor = pending{}
	return sel, true
}

// PlaceRay adds a ray in one step.
func (s *Store) PlaceRay(t int64, price float64, isAlert bool) Ray {
	ray := Ray{Time: t, Price: price, IsAlert: isAlert}
	s.rays = append(s.rays, ray)
	return ray
}

// --- deletion ---

// Delete removes one annotation by kind and index.
func (s *Store) Delete(hit Hit) bool {
	switch hit.Kind {
	case KindLine:
		if hit.Index < 0 || hit.Index >= len(s.lines) {
			return false
		}
		s.lines = append(s.lines[:hit.Index], s.lines[hit.Index+1:]...)
	case KindRay:
		if hit.Index < 0 || hit.Index >= len(s.rays) {
			return false
		}
		s.rays = append(s.rays[:hit.Index], s.rays[hit.Index+1:]...)
	case KindRect:
		if hit.Index < 0 || hit.Index >= len(s.rects) {
			return false
		}
		s.rects = append(s.rects[:hit.Index], s.rects[hit.Index+1:]...)
	case KindRuler:
		if hit.Index < 0 || hit.Index >= len(s.rulers) {
			return false
		}
		s.rulers = append(s.rulers[:hit.Index], s.rulers[hit.Index+1:]...)
	default:
		return false
	}
	return true
}

// ClearAll removes every annotation and any pending placement.
func (s *Store) ClearAll() {
	s.lines = nil
	s.rays = nil
	s.rects = nil
	s.rulers = nil
	s.pendingAnchor = pending{}
}

// --- hit testing ---

// HitTest finds the topmost annotation within the hit radius of the
// pixel point, converting stored domain coordinates through the mapper
// first. Rectangles are tested before rays, rays before lines, lines
// before rulers; within a kind the most recently added wins.
func (s *Store) HitTest(m Mapper, px, py float64) (Hit, bool) {
	_, _, maxX, _ := m.PlotRect()
	r := s.hitRadius

	for i := len(s.rects) - 1; i >= 0; i-- {
		x1 := m.TimeToX(s.rects[i].Time1)
		y1 := m.PriceToY(s.rects[i].Price1)
		x2 := m.TimeToX(s.rects[i].Time2)
		y2 := m.PriceToY(s.rects[i].Price2)
		if inExpandedBox(px, py, x1, y1, x2, y2, r) {
			return Hit{Kind: KindRect, Index: i}, true
		}
	}
	for i := len(s.rays) - 1; i >= 0; i-- {
		x1 := m.TimeToX(s.rays[i].Time)
		y1 := m.PriceToY(s.rays[i].Price)
		if distanceToSegment(px, py, x1, y1, maxX, y1) <= r && px >= math.Min(x1, maxX)-r {
			return Hit{Kind: KindRay, Index: i}, true
		}
	}
	for i := len(s.lines) - 1; i >= 0; i-- {
		x1 := m.TimeToX(s.lines[i].Time1)
		y1 := m.PriceToY(s.lines[i].Price1)
		x2 := m.TimeToX(s.lines[i].Time2)
		y2 := m.PriceToY(s.lines[i].Price2)
		if distanceToSegment(px, py, x1, y1, x2, y2) <= r {
			return Hit{Kind: KindLine, Index: i}, true
		}
	}
	for i := len(s.rulers) - 1; i >= 0; i-- {
		x1 := m.TimeToX(s.rulers[i].Time1)
		y1 := m.PriceToY(s.rulers[i].Price1)
		x2 := m.TimeToX(s.rulers[i].Time2)
		y2 := m.PriceToY(s.rulers[i].Price2)
		if inExpandedBox(px, py, x1, y1, x2, y2, r) {
			return Hit{Kind: KindRuler, Index: i}, true
		}
	}
	return Hit{}, false
}

// distanceToSegment is the perpendicular distance from (px, py) to the
// closest point on the finite segment, with the projection parameter
// clamped to [0, 1].
func distanceToSegment(px, py, x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length < 1e-6 {
		length = 1e-6
	}
	t := ((px-x1)*dx + (py-y1)*dy) / (length * length)
	t = math.Max(0, math.Min(1, t))
	nx := x1 + t*dx
	ny := y1 + t*dy
	return math.Hypot(px-nx, py-ny)
}

// inExpandedBox tests a point against the shape's pixel bounding box
// grown by the hit radius on every side.
func inExpandedBox(px, py, x1, y1, x2, y2, r float64) bool {
	minX := math.Min(x1, x2) - r
	minY := math.Min(y1, y2) - r
	w := math.Abs(x2-x1) + 2*r
	h := math.Abs(y2-y1) + 2*r
	return px >= minX && px <= minX+w && py >= minY && py <= minY+h
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
