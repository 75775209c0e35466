package annotations

import "math"

// Cohen-Sutherland outcodes.
const (
	codeInside = 0
	codeLeft   = 1
	codeRight  = 2
	codeBottom = 4
	codeTop    = 8
)

func outcode(x, y, minX, minY, maxX, maxY float64) int {
	code := codeInside
	if x < minX {
		code |= codeLeft
	} else if x > maxX {
		code |= codeRight
	}
	if y < minY {
		code |= codeTop
	} else if y > maxY {
		code |= codeBottom
	}
	return code
}

// ClipSegment clips a pixel segment to the rectangle and reports
// whether any visible portion remains. Near-vertical and
// near-horizontal segments are clamped directly on the degenerate axis
// to avoid dividing by a vanishing delta.
func ClipSegment(x1, y1, x2, y2, minX, minY, maxX, maxY float64) (cx1, cy1, cx2, cy2 float64, ok bool) {
	dx := x2 - x1
	dy := y2 - y1

	if math.Abs(dx) < 0.001 {
		if x1 < minX || x1 > maxX {
			return 0, 0, 0, 0, false
		}
		ny1 := math.Max(minY, math.Min(maxY, y1))
		ny2 := math.Max(minY, math.Min(maxY, y2))
		if ny1 == ny2 {
			return 0, 0, 0, 0, false
		}
		return x1, ny1, x2, ny2, true
	}
	if math.Abs(dy) < 0.001 {
		if y1 < minY || y1 > maxY {
			return 0, 0, 0, 0, false
		}
		nx1 := math.Max(minX, math.Min(maxX, x1))
		nx2 := math.Max(minX, math.Min(maxX, x2))
		if nx1 == nx2 {
			return 0, 0, 0, 0, false
		}
		return nx1, y1, nx2, y2, true
	}

	code1 := outcode(x1, y1, minX, minY, maxX, maxY)
	code2 := outcode(x2, y2, minX, minY, maxX, maxY)

	for {
		if code1|code2 == 0 {
			if x1 == x2 && y1 == y2 {
				return 0, 0, 0, 0, false
			}
			return x1, y1, x2, y2, true
		}
		if code1&code2 != 0 {
			return 0, 0, 0, 0, false
		}

		codeOut := code1
		if codeOut == 0 {
			codeOut = code2
		}

		var x, y float64
		switch {
		case codeOut&codeTop != 0:
			x = x1 + (x2-x1)*(minY-y1)/(y2-y1)
			y = minY
		case codeOut&codeBottom != 0:
			x = x1 + (x2-x1)*(maxY-y1)/(y2-y1)
			y = maxY
		case codeOut&codeRight != 0:
			y = y1 + (y2-y1)*(maxX-x1)/(x2-x1)
			x = maxX
		default:
			y = y1 + (y2-y1)*(minX-x1)/(x2-x1)
			x = minX
		}

		if codeOut == code1 {
			x1, y1 = x, y
			code1 = outcode(x1, y1, minX, minY, maxX, maxY)
		} else {
			x2, y2 = x, y
			code2 = outcode(x2, y2, minX, minY, maxX, maxY)
		}
	}
}
