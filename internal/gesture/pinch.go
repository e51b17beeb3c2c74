package gesture

import (
	"github.com/ayusman/mudra/internal/tracking"
)

const (
	// pinchThreshold is the maximum thumb-to-index tip distance for a pinch,
	// in normalized coordinates.
	pinchThreshold = 0.05
	// pinchMiddleGuard rejects poses where the middle finger also crowds the
	// pinch point, which usually means a closing fist rather than a pinch.
	pinchMiddleGuard = 0.045
	// pinchDragMinTravel is the minimum pinch-point displacement across the
	// context window before a held pinch counts as a drag.
	pinchDragMinTravel = 0.05
	// vMoveMinTravel is the minimum hand center displacement across the
	// context window before a held V sign counts as V_MOVE.
	vMoveMinTravel = 0.1
)

// pinchPoint reports whether the frame holds a pinch pose and, if so, the
// midpoint of the touching tips and their separation.
func pinchPoint(f *tracking.Frame) (x, y, dist float64, ok bool) {
	thumb := f.Landmarks[tracking.ThumbTip]
	index := f.Landmarks[tracking.IndexTip]
	dist = tracking.Distance(thumb, index)
	if dist >= pinchThreshold {
		return 0, 0, dist, false
	}
	middle := f.Landmarks[tracking.MiddleTip]
	if tracking.Distance(thumb, middle) <= pinchMiddleGuard {
		return 0, 0, dist, false
	}
	return (thumb.X + index.X) / 2, (thumb.Y + index.Y) / 2, dist, true
}

// pinchConfidence maps tip separation to confidence: touching tips score 1.0,
// the threshold boundary scores 0.7.
func pinchConfidence(dist float64) float64 {
	return clamp(1.0 - (dist/pinchThreshold)*0.3)
}

// PinchGesture matches thumb and index tips held together.
type PinchGesture struct{}

func (PinchGesture) Name() string  { return Pinch }
func (PinchGesture) Priority() int { return 0 }

func (PinchGesture) Detect(f *tracking.Frame, _ *Context) *Result {
	x, y, dist, ok := pinchPoint(f)
	if !ok {
		return nil
	}
	return NewResult(Pinch, pinchConfidence(dist), map[string]any{
		"x": x,
		"y": y,
	})
}

// PinchDragGesture matches a pinch held while the pinch point travels across
// the frame. Its higher priority lets it win over the static pinch whenever
// both match, so a moving pinch reports as a drag.
type PinchDragGesture struct{}

func (PinchDragGesture) Name() string  { return PinchDrag }
func (PinchDragGesture) Priority() int { return 10 }

func (PinchDragGesture) Detect(f *tracking.Frame, ctx *Context) *Result {
	x, y, dist, ok := pinchPoint(f)
	if !ok {
		return nil
	}
	if ctx == nil || ctx.Len() < 2 {
		return nil
	}
	// The pinch must have been held at the start of the window too, otherwise
	// the apparent travel is just the fingers closing.
	frames := ctx.Frames()
	sx, sy, _, held := pinchPoint(frames[0])
	if !held {
		return nil
	}
	dx := x - sx
	dy := y - sy
	if dx*dx+dy*dy < pinchDragMinTravel*pinchDragMinTravel {
		return nil
	}
	return NewResult(PinchDrag, pinchConfidence(dist), map[string]any{
		"x":  x,
		"y":  y,
		"dx": dx,
		"dy": dy,
	})
}

// VMoveGesture matches a V sign traveling across the frame, used for cursor
// style control. Outranks the static peace sign when the hand is moving.
type VMoveGesture struct{}

func (VMoveGesture) Name() string  { return VMove }
func (VMoveGesture) Priority() int { return 10 }

func (VMoveGesture) Detect(f *tracking.Frame, ctx *Context) *Result {
	pose := PeaceSignGesture{}.Detect(f, nil)
	if pose == nil {
		return nil
	}
	if ctx == nil || ctx.Len() < 2 {
		return nil
	}
	dx, dy := ctx.Displacement()
	if dx*dx+dy*dy < vMoveMinTravel*vMoveMinTravel {
		return nil
	}
	center := f.Center()
	return NewResult(VMove, pose.Confidence, map[string]any{
		"x":  center.X,
		"y":  center.Y,
		"dx": dx,
		"dy": dy,
	})
}
