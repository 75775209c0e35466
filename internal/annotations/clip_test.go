package annotations

import (
	"math"
	"testing"
)

func TestClipSegmentFullyInside(t *testing.T) {
	x1, y1, x2, y2, ok := ClipSegment(10, 10, 90, 90, 0, 0, 100, 100)
	if !ok {
		t.Fatal("expected visible segment")
	}
	if x1 != 10 || y1 != 10 || x2 != 90 || y2 != 90 {
		t.Errorf("inside segment was modified: (%v,%v)-(%v,%v)", x1, y1, x2, y2)
	}
}

func TestClipSegmentFullyOutside(t *testing.T) {
	if _, _, _, _, ok := ClipSegment(-50, -50, -10, -10, 0, 0, 100, 100); ok {
		t.Error("expected no visible segment")
	}
	// Both endpoints right of the clip rect.
	if _, _, _, _, ok := ClipSegment(110, 10, 150, 90, 0, 0, 100, 100); ok {
		t.Error("expected no visible segment")
	}
}

func TestClipSegmentCrossing(t *testing.T) {
	x1, y1, x2, y2, ok := ClipSegment(-50, 50, 150, 50, 0, 0, 100, 100)
	if !ok {
		t.Fatal("expected visible segment")
	}
	if x1 != 0 || x2 != 100 || y1 != 50 || y2 != 50 {
		t.Errorf("unexpected clip result: (%v,%v)-(%v,%v)", x1, y1, x2, y2)
	}
}

func TestClipSegmentDiagonal(t *testing.T) {
	x1, y1, x2, y2, ok := ClipSegment(-100, -100, 200, 200, 0, 0, 100, 100)
	if !ok {
		t.Fatal("expected visible segment")
	}
	// The diagonal clips exactly onto the rect corners.
	if math.Abs(x1) > 1e-9 || math.Abs(y1) > 1e-9 || math.Abs(x2-100) > 1e-9 || math.Abs(y2-100) > 1e-9 {
		t.Errorf("unexpected clip result: (%v,%v)-(%v,%v)", x1, y1, x2, y2)
	}
}

func TestClipSegmentVertical(t *testing.T) {
	x1, y1, x2, y2, ok := ClipSegment(50, -200, 50, 300, 0, 0, 100, 100)
	if !ok {
		t.Fatal("expected visible segment")
	}
	if x1 != 50 || x2 != 50 || y1 != 0 || y2 != 100 {
		t.Errorf("unexpected clip result: (%v,%v)-(%v,%v)", x1, y1, x2, y2)
	}

	// A vertical segment outside the horizontal range is invisible.
	if _, _, _, _, ok := ClipSegment(150, 10, 150, 90, 0, 0, 100, 100); ok {
		t.Error("expected no visible segment")
	}
	// A vertical segment entirely above the rect collapses and is
	// rejected.
	if _, _, _, _, ok := ClipSegment(50, -300, 50, -200, 0, 0, 100, 100); ok {
		t.Error("expected no visible segment")
	}
}

func TestClipSegmentHorizontal(t *testing.T) {
	x1, y1, x2, y2, ok := ClipSegment(-200, 40, 300, 40, 0, 0, 100, 100)
	if !ok {
		t.Fatal("expected visible segment")
	}
	if y1 != 40 || y2 != 40 || x1 != 0 || x2 != 100 {
		t.Errorf("unexpected clip result: (%v,%v)-(%v,%v)", x1, y1, x2, y2)
	}

	if _, _, _, _, ok := ClipSegment(10, 150, 90, 150, 0, 0, 100, 100); ok {
		t.Error("expected no visible segment")
	}
}

func TestClipSegmentEndpointsOnOppositeSides(t *testing.T) {
	// Segment entering through the top edge and leaving through the
	// right edge.
	x1, y1, x2, y2, ok := ClipSegment(40, -40, 160, 80, 0, 0, 100, 100)
	if !ok {
		t.Fatal("expected visible segment")
	}
	if math.Abs(x1-80) > 1e-9 || math.Abs(y1) > 1e-9 {
		t.Errorf("unexpected entry point: (%v,%v)", x1, y1)
	}
	if math.Abs(x2-100) > 1e-9 || math.Abs(y2-20) > 1e-9 {
		t.Errorf("unexpected exit point: (%v,%v)", x2, y2)
	}
}

func TestClipSegmentCornerGrazeRejected(t *testing.T) {
	// A segment that only touches the rect at a single corner point
	// leaves nothing worth drawing.
	if _, _, _, _, ok := ClipSegment(60, -40, 160, 60, 0, 0, 100, 100); ok {
		t.Error("expected corner graze to be rejected")
	}
}
