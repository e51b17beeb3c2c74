package tracking

import (
	"gocv.io/x/gocv"
)

// MockTracker is a test implementation of the Tracker interface.
// It allows tests to control the tracking results.
type MockTracker struct {
	frames []Frame
	err    error
}

// NewMockTracker creates a new MockTracker instance.
func NewMockTracker() *MockTracker {
	return &MockTracker{}
}

// SetFrames sets the frames that will be returned by Track.
func (m *MockTracker) SetFrames(frames []Frame) {
	m.frames = frames
}

// SetError sets the error that will be returned by Track.
func (m *MockTracker) SetError(err error) {
	m.err = err
}

// Track returns the pre-configured frames or error.
func (m *MockTracker) Track(frame *gocv.Mat) ([]Frame, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.frames, nil
}

// Close is a no-op for the mock tracker.
func (m *MockTracker) Close() error {
	return nil
}

// Fixture hands below share one geometric scheme: wrist at (0.5, 0.8), finger
// columns at x = 0.56 (index), 0.50 (middle), 0.44 (ring), 0.38 (pinky).
// An extended finger reaches up to y ≈ 0.30; a curled finger folds its tip
// back toward the palm at y ≈ 0.68, behind its own PIP joint.

func baseFrame() Frame {
	f := Frame{
		Handedness: "Right",
		Score:      0.95,
	}
	f.Landmarks[Wrist] = Landmark{X: 0.5, Y: 0.8, Visibility: 1}
	for i := range f.Landmarks {
		f.Landmarks[i].Visibility = 1
	}
	return f
}

func setExtendedFinger(f *Frame, mcp int, x float64) {
	f.Landmarks[mcp] = Landmark{X: x, Y: 0.60, Visibility: 1}
	f.Landmarks[mcp+1] = Landmark{X: x, Y: 0.45, Visibility: 1} // PIP
	f.Landmarks[mcp+2] = Landmark{X: x, Y: 0.37, Visibility: 1} // DIP
	f.Landmarks[mcp+3] = Landmark{X: x, Y: 0.30, Visibility: 1} // TIP
}

func setCurledFinger(f *Frame, mcp int, x float64) {
	f.Landmarks[mcp] = Landmark{X: x, Y: 0.60, Visibility: 1}
	f.Landmarks[mcp+1] = Landmark{X: x, Y: 0.52, Z: -0.03, Visibility: 1}        // PIP
	f.Landmarks[mcp+2] = Landmark{X: x, Y: 0.60, Z: -0.05, Visibility: 1}        // DIP
	f.Landmarks[mcp+3] = Landmark{X: x + 0.01, Y: 0.68, Z: -0.03, Visibility: 1} // TIP folded back
}

func setThumbSide(f *Frame) {
	f.Landmarks[ThumbCMC] = Landmark{X: 0.56, Y: 0.74, Visibility: 1}
	f.Landmarks[ThumbMCP] = Landmark{X: 0.62, Y: 0.68, Visibility: 1}
	f.Landmarks[ThumbIP] = Landmark{X: 0.66, Y: 0.62, Visibility: 1}
	f.Landmarks[ThumbTip] = Landmark{X: 0.70, Y: 0.57, Visibility: 1}
}

func setThumbUp(f *Frame) {
	f.Landmarks[ThumbCMC] = Landmark{X: 0.55, Y: 0.74, Visibility: 1}
	f.Landmarks[ThumbMCP] = Landmark{X: 0.57, Y: 0.62, Visibility: 1}
	f.Landmarks[ThumbIP] = Landmark{X: 0.57, Y: 0.50, Visibility: 1}
	f.Landmarks[ThumbTip] = Landmark{X: 0.57, Y: 0.38, Visibility: 1}
}

func setThumbFolded(f *Frame) {
	f.Landmarks[ThumbCMC] = Landmark{X: 0.56, Y: 0.74, Visibility: 1}
	f.Landmarks[ThumbMCP] = Landmark{X: 0.58, Y: 0.68, Visibility: 1}
	f.Landmarks[ThumbIP] = Landmark{X: 0.55, Y: 0.67, Visibility: 1}
	f.Landmarks[ThumbTip] = Landmark{X: 0.52, Y: 0.66, Visibility: 1}
}

func setThumbTucked(f *Frame) {
	f.Landmarks[ThumbCMC] = Landmark{X: 0.56, Y: 0.74, Visibility: 1}
	f.Landmarks[ThumbMCP] = Landmark{X: 0.60, Y: 0.70, Visibility: 1}
	f.Landmarks[ThumbIP] = Landmark{X: 0.57, Y: 0.65, Z: -0.02, Visibility: 1}
	f.Landmarks[ThumbTip] = Landmark{X: 0.54, Y: 0.62, Z: -0.02, Visibility: 1}
}

// OpenPalmFrame returns a hand with all five fingers extended and spread.
func OpenPalmFrame() Frame {
	f := baseFrame()
	setThumbSide(&f)
	setExtendedFinger(&f, IndexMCP, 0.58)
	setExtendedFinger(&f, MiddleMCP, 0.50)
	setExtendedFinger(&f, RingMCP, 0.42)
	setExtendedFinger(&f, PinkyMCP, 0.36)
	// Nudge outer tips outward for a spread pose.
	f.Landmarks[MiddleTip].Y = 0.28
	f.Landmarks[PinkyTip].Y = 0.36
	return f
}

// ClosedFistFrame returns a hand with all fingers curled and the thumb tucked
// against the palm.
func ClosedFistFrame() Frame {
	f := baseFrame()
	setThumbTucked(&f)
	setCurledFinger(&f, IndexMCP, 0.56)
	setCurledFinger(&f, MiddleMCP, 0.50)
	setCurledFinger(&f, RingMCP, 0.44)
	setCurledFinger(&f, PinkyMCP, 0.38)
	return f
}

// ThumbsUpFrame returns a fist with the thumb extended vertically upward.
func ThumbsUpFrame() Frame {
	f := ClosedFistFrame()
	setThumbUp(&f)
	return f
}

// PointingFrame returns a hand with only the index finger extended.
func PointingFrame() Frame {
	f := baseFrame()
	setThumbFolded(&f)
	setExtendedFinger(&f, IndexMCP, 0.56)
	setCurledFinger(&f, MiddleMCP, 0.50)
	setCurledFinger(&f, RingMCP, 0.44)
	setCurledFinger(&f, PinkyMCP, 0.38)
	return f
}

// PeaceSignFrame returns a hand with index and middle fingers extended in a V.
func PeaceSignFrame() Frame {
	f := baseFrame()
	setThumbFolded(&f)
	setExtendedFinger(&f, IndexMCP, 0.56)
	setExtendedFinger(&f, MiddleMCP, 0.50)
	setCurledFinger(&f, RingMCP, 0.44)
	setCurledFinger(&f, PinkyMCP, 0.38)
	f.Landmarks[MiddleTip].Y = 0.28
	return f
}

// RockOnFrame returns a hand with index and pinky extended, middle and ring
// curled.
func RockOnFrame() Frame {
	f := baseFrame()
	setThumbFolded(&f)
	setExtendedFinger(&f, IndexMCP, 0.56)
	setCurledFinger(&f, MiddleMCP, 0.50)
	setCurledFinger(&f, RingMCP, 0.44)
	setExtendedFinger(&f, PinkyMCP, 0.38)
	return f
}

// PinchFrame returns a hand with the thumb and index tips touching at the
// given position; the remaining fingers stay extended and clear of the pinch.
func PinchFrame(x, y float64) Frame {
	f := baseFrame()
	f.Landmarks[ThumbCMC] = Landmark{X: 0.56, Y: 0.74, Visibility: 1}
	f.Landmarks[ThumbMCP] = Landmark{X: 0.58, Y: 0.66, Visibility: 1}
	f.Landmarks[ThumbIP] = Landmark{X: x + 0.02, Y: y + 0.05, Visibility: 1}
	f.Landmarks[ThumbTip] = Landmark{X: x, Y: y, Visibility: 1}
	setExtendedFinger(&f, IndexMCP, 0.56)
	f.Landmarks[IndexDIP] = Landmark{X: x - 0.02, Y: y + 0.05, Visibility: 1}
	f.Landmarks[IndexTip] = Landmark{X: x, Y: y, Visibility: 1}
	setExtendedFinger(&f, MiddleMCP, 0.50)
	setExtendedFinger(&f, RingMCP, 0.44)
	setExtendedFinger(&f, PinkyMCP, 0.38)
	return f
}

// ShiftFrame returns a copy of the frame with every landmark translated by
// (dx, dy) and the given timestamp. Used to synthesize motion sequences.
func ShiftFrame(f Frame, dx, dy float64, timestamp int64) Frame {
	shifted := f
	for i := range shifted.Landmarks {
		shifted.Landmarks[i].X += dx
		shifted.Landmarks[i].Y += dy
	}
	shifted.Timestamp = timestamp
	return shifted
}
