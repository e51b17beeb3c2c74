package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/tracking"
)

// Static gestures classify a single frame from finger pose alone. Each one is
// a stateless struct so the catalog can hold them by value semantics and the
// detector can call them from any goroutine.

// fingerStates reports extended/curled for the four non-thumb fingers, index
// first.
func fingerStates(f *tracking.Frame) (extended [4]bool, curled [4]bool) {
	pips := [4]int{tracking.IndexPIP, tracking.MiddlePIP, tracking.RingPIP, tracking.PinkyPIP}
	tips := [4]int{tracking.IndexTip, tracking.MiddleTip, tracking.RingTip, tracking.PinkyTip}
	for i := 0; i < 4; i++ {
		extended[i] = f.FingerExtended(tips[i], pips[i])
		curled[i] = f.FingerCurled(tips[i], pips[i])
	}
	return extended, curled
}

// OpenPalmGesture matches a flat hand with all five fingers extended.
type OpenPalmGesture struct{}

func (OpenPalmGesture) Name() string  { return OpenPalm }
func (OpenPalmGesture) Priority() int { return 0 }

func (OpenPalmGesture) Detect(f *tracking.Frame, _ *Context) *Result {
	extended, _ := fingerStates(f)
	for _, e := range extended {
		if !e {
			return nil
		}
	}
	if !f.ThumbExtended() {
		return nil
	}
	spread := f.FingerSpread()
	conf := 0.7
	switch {
	case spread > 0.4:
		conf = 1.0
	case spread > 0.25:
		conf = 0.85
	}
	return NewResult(OpenPalm, conf, map[string]any{"spread": spread})
}

// ClosedFistGesture matches a hand with all four fingers curled into the palm
// and the thumb folded across or beside them.
type ClosedFistGesture struct{}

func (ClosedFistGesture) Name() string  { return ClosedFist }
func (ClosedFistGesture) Priority() int { return 0 }

func (ClosedFistGesture) Detect(f *tracking.Frame, _ *Context) *Result {
	_, curled := fingerStates(f)
	for _, c := range curled {
		if !c {
			return nil
		}
	}
	// Thumb pointing clear of the fist means thumbs-up, not a fist.
	if thumbVertical(f) {
		return nil
	}
	wrist := f.Landmarks[tracking.Wrist]
	tips := [4]int{tracking.IndexTip, tracking.MiddleTip, tracking.RingTip, tracking.PinkyTip}
	var sum float64
	for _, tip := range tips {
		sum += tracking.DistanceSquared(f.Landmarks[tip], wrist)
	}
	tightness := sum / 4
	conf := 0.7
	switch {
	case tightness < 0.03:
		conf = 1.0
	case tightness < 0.05:
		conf = 0.85
	}
	return NewResult(ClosedFist, conf, map[string]any{"tightness": tightness})
}

// PointingGesture matches an extended index finger with every other finger
// curled.
type PointingGesture struct{}

func (PointingGesture) Name() string  { return Pointing }
func (PointingGesture) Priority() int { return 0 }

func (PointingGesture) Detect(f *tracking.Frame, _ *Context) *Result {
	extended, curled := fingerStates(f)
	if !extended[0] || !curled[1] || !curled[2] || !curled[3] {
		return nil
	}
	if thumbVertical(f) {
		return nil
	}
	straightness := fingerStraightness(f, tracking.IndexTip, tracking.IndexPIP, tracking.IndexMCP)
	if straightness == 0 {
		return nil
	}
	conf := 0.75
	switch {
	case straightness >= 1.9:
		conf = 1.0
	case straightness >= 1.6:
		conf = 0.9
	}
	tip := f.Landmarks[tracking.IndexTip]
	return NewResult(Pointing, conf, map[string]any{
		"x": tip.X,
		"y": tip.Y,
	})
}

// PeaceSignGesture matches extended index and middle fingers forming a V with
// the ring and pinky curled.
type PeaceSignGesture struct{}

func (PeaceSignGesture) Name() string  { return PeaceSign }
func (PeaceSignGesture) Priority() int { return 0 }

func (PeaceSignGesture) Detect(f *tracking.Frame, _ *Context) *Result {
	extended, curled := fingerStates(f)
	if !extended[0] || !extended[1] || !curled[2] || !curled[3] {
		return nil
	}
	if thumbVertical(f) {
		return nil
	}
	gap := tracking.Distance2D(f.Landmarks[tracking.IndexTip], f.Landmarks[tracking.MiddleTip])
	if gap < 0.03 || gap > 0.18 {
		return nil
	}
	conf := 0.75
	switch {
	case gap >= 0.05 && gap <= 0.14:
		conf = 1.0
	case gap >= 0.04:
		conf = 0.9
	}
	return NewResult(PeaceSign, conf, map[string]any{"gap": gap})
}

// ThumbsUpGesture matches a fist with the thumb extended upward.
type ThumbsUpGesture struct{}

func (ThumbsUpGesture) Name() string  { return ThumbsUp }
func (ThumbsUpGesture) Priority() int { return 0 }

func (ThumbsUpGesture) Detect(f *tracking.Frame, _ *Context) *Result {
	_, curled := fingerStates(f)
	for _, c := range curled {
		if !c {
			return nil
		}
	}
	if !f.ThumbExtended() || !thumbVertical(f) {
		return nil
	}
	tip := f.Landmarks[tracking.ThumbTip]
	mcp := f.Landmarks[tracking.ThumbMCP]
	rise := mcp.Y - tip.Y
	conf := 0.75
	switch {
	case rise > 0.15:
		conf = 1.0
	case rise > 0.1:
		conf = 0.9
	}
	return NewResult(ThumbsUp, conf, map[string]any{"rise": rise})
}

// RockOnGesture matches extended index and pinky with middle and ring curled.
type RockOnGesture struct{}

func (RockOnGesture) Name() string  { return RockOn }
func (RockOnGesture) Priority() int { return 0 }

func (RockOnGesture) Detect(f *tracking.Frame, _ *Context) *Result {
	extended, curled := fingerStates(f)
	if !extended[0] || !curled[1] || !curled[2] || !extended[3] {
		return nil
	}
	// Confidence follows the straighter-is-better rule: score both horns and
	// take the weaker one.
	straightness := math.Min(
		fingerStraightness(f, tracking.IndexTip, tracking.IndexPIP, tracking.IndexMCP),
		fingerStraightness(f, tracking.PinkyTip, tracking.PinkyPIP, tracking.PinkyMCP),
	)
	conf := 0.75
	switch {
	case straightness >= 1.9:
		conf = 1.0
	case straightness >= 1.6:
		conf = 0.9
	}
	return NewResult(RockOn, conf, map[string]any{"straightness": straightness})
}

// fingerStraightness measures how straight a finger is: a bent finger scores
// near 1, a straight one near 2 (tip roughly twice as far from the MCP as the
// PIP is). Returns 0 for degenerate landmarks.
func fingerStraightness(f *tracking.Frame, tip, pip, mcp int) float64 {
	base := f.Landmarks[mcp]
	pipDist := tracking.Distance(f.Landmarks[pip], base)
	if pipDist == 0 {
		return 0
	}
	return tracking.Distance(f.Landmarks[tip], base) / pipDist
}

// thumbVertical reports whether the thumb points clearly upward in image
// coordinates (y grows downward), with the vertical travel dominating the
// horizontal.
func thumbVertical(f *tracking.Frame) bool {
	tip := f.Landmarks[tracking.ThumbTip]
	mcp := f.Landmarks[tracking.ThumbMCP]
	dy := mcp.Y - tip.Y
	dx := math.Abs(tip.X - mcp.X)
	return dy > 0.08 && dy > dx*1.5
}
