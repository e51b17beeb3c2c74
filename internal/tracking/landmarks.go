// Package tracking provides hand tracking interfaces and landmark types for
// the gesture pipeline.
package tracking

import "math"

// Hand landmark indices following the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// FingerTips lists the tip index of each finger, thumb first.
var FingerTips = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Landmark is a single tracked hand point in normalized camera coordinates
// plus a visibility score in [0,1]. Immutable once produced.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Frame is one full set of landmarks captured at one instant.
type Frame struct {
	Landmarks  [NumLandmarks]Landmark `json:"landmarks"`
	Handedness string                 `json:"handedness"` // "Left" or "Right"
	Score      float64                `json:"score"`
	Timestamp  int64                  `json:"timestamp"` // milliseconds, monotonically increasing
}

// Distance calculates the Euclidean distance between two landmarks.
func Distance(a, b Landmark) float64 {
	return math.Sqrt(DistanceSquared(a, b))
}

// DistanceSquared calculates the squared Euclidean distance between two
// landmarks. Cheaper than Distance when only comparing magnitudes.
func DistanceSquared(a, b Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return dx*dx + dy*dy + dz*dz
}

// Distance2D calculates the planar distance between two landmarks, ignoring
// depth. Useful when z is too noisy to trust.
func Distance2D(a, b Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// FingerExtended reports whether the finger with the given tip and PIP indices
// is extended: the tip must sit farther from the wrist than the PIP joint.
func (f *Frame) FingerExtended(tipIdx, pipIdx int) bool {
	wrist := f.Landmarks[Wrist]
	return DistanceSquared(f.Landmarks[tipIdx], wrist) > DistanceSquared(f.Landmarks[pipIdx], wrist)
}

// FingerCurled reports whether the finger with the given tip and PIP indices
// is curled (not extended).
func (f *Frame) FingerCurled(tipIdx, pipIdx int) bool {
	return !f.FingerExtended(tipIdx, pipIdx)
}

// ThumbExtended reports whether the thumb is extended. The thumb's joint axis
// is rotated relative to the other fingers, so the tip-over-PIP test does not
// apply; instead the tip must sit farther from the wrist than the MCP joint.
func (f *Frame) ThumbExtended() bool {
	wrist := f.Landmarks[Wrist]
	return DistanceSquared(f.Landmarks[ThumbTip], wrist) > DistanceSquared(f.Landmarks[ThumbMCP], wrist)
}

// FingerSpread sums the distances between adjacent finger tips. An open,
// spread hand produces a larger value than tightly held fingers.
func (f *Frame) FingerSpread() float64 {
	var total float64
	for i := 0; i < len(FingerTips)-1; i++ {
		total += Distance(f.Landmarks[FingerTips[i]], f.Landmarks[FingerTips[i+1]])
	}
	return total
}

// Center returns the midpoint between the wrist and the middle finger MCP,
// a stable anchor for whole-hand motion tracking.
func (f *Frame) Center() Landmark {
	wrist := f.Landmarks[Wrist]
	mcp := f.Landmarks[MiddleMCP]
	return Landmark{
		X: (wrist.X + mcp.X) / 2,
		Y: (wrist.Y + mcp.Y) / 2,
		Z: (wrist.Z + mcp.Z) / 2,
	}
}

// Quality reports whether the frame's landmarks look trustworthy enough to
// feed the detection pipeline. Extreme depth values or coordinates far outside
// the normalized range indicate poor tracking; such frames are treated as
// "no detection" rather than passed downstream.
func (f *Frame) Quality() bool {
	for i := range f.Landmarks {
		lm := &f.Landmarks[i]
		if math.Abs(lm.Z) > 0.5 {
			return false
		}
		if lm.X < -0.5 || lm.X > 1.5 || lm.Y < -0.5 || lm.Y > 1.5 {
			return false
		}
	}
	return true
}

// Normalize returns a copy of the frame translated so the wrist sits at the
// origin and scaled so the wrist to middle MCP distance is 1.0. Template
// matching compares normalized frames so hand size and screen position do not
// matter.
func (f *Frame) Normalize() *Frame {
	if f == nil {
		return nil
	}

	normalized := &Frame{
		Handedness: f.Handedness,
		Score:      f.Score,
		Timestamp:  f.Timestamp,
	}

	wrist := f.Landmarks[Wrist]
	for i := range f.Landmarks {
		normalized.Landmarks[i] = Landmark{
			X:          f.Landmarks[i].X - wrist.X,
			Y:          f.Landmarks[i].Y - wrist.Y,
			Z:          f.Landmarks[i].Z - wrist.Z,
			Visibility: f.Landmarks[i].Visibility,
		}
	}

	scale := Distance(Landmark{}, normalized.Landmarks[MiddleMCP])
	if scale < 1e-10 {
		return normalized
	}

	for i := range normalized.Landmarks {
		normalized.Landmarks[i].X /= scale
		normalized.Landmarks[i].Y /= scale
		normalized.Landmarks[i].Z /= scale
	}

	return normalized
}
