package viewport

// DrawKind selects which annotation a drawing interaction places.
type DrawKind int

// Drawing kinds.
const (
	DrawNone DrawKind = iota
	DrawLine
	DrawRect
	DrawRuler
)

func (k DrawKind) String() string {
	switch k {
	case DrawLine:
		return "line"
	case DrawRect:
		return "rect"
	case DrawRuler:
		return "ruler"
	default:
		return "none"
	}
}

// ModeKind enumerates the mutually exclusive interaction states.
type ModeKind int

// Interaction states. Exactly one is active at a time; entering a new
// one cancels any other in-progress placement.
const (
	ModeIdle ModeKind = iota
	ModePanning
	ModeAxisZoomDragging
	ModeDrawing
	ModePlacingRay
)

func (k ModeKind) String() string {
	switch k {
	case ModePanning:
		return "panning"
	case ModeAxisZoomDragging:
		return "axis_zoom"
	case ModeDrawing:
		return "drawing"
	case ModePlacingRay:
		return "placing_ray"
	default:
		return "idle"
	}
}

// Mode is the tagged interaction state: Draw is meaningful only when
// Kind is ModeDrawing.
type Mode struct {
	Kind ModeKind
	Draw DrawKind
}

// Idle reports whether no interaction is in progress.
func (m Mode) Idle() bool {
	return m.Kind == ModeIdle
}
