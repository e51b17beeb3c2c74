// Package gesture provides the pattern catalog and detection engine that turn
// filtered landmark frames into confidence-scored gesture matches.
package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/tracking"
)

// Catalogued gesture names.
const (
	OpenPalm   = "OPEN_PALM"
	ClosedFist = "CLOSED_FIST"
	Pointing   = "POINTING"
	PeaceSign  = "PEACE_SIGN"
	ThumbsUp   = "THUMBS_UP"
	RockOn     = "ROCK_ON"
	Pinch      = "PINCH"
	PinchDrag  = "PINCH_DRAG"
	VMove      = "V_MOVE"
	SwipeLeft  = "SWIPE_LEFT"
	SwipeRight = "SWIPE_RIGHT"
	SwipeUp    = "SWIPE_UP"
	SwipeDown  = "SWIPE_DOWN"
	Wave       = "WAVE"
	RotateCW   = "ROTATE_CW"
)

// Result is the outcome of one gesture's detect call. Never mutated after
// creation.
type Result struct {
	Name       string
	Confidence float64 // in (0,1]
	Data       map[string]any
	Timestamp  int64 // milliseconds
}

// NewResult builds a Result stamped with the current time.
func NewResult(name string, confidence float64, data map[string]any) *Result {
	return &Result{
		Name:       name,
		Confidence: confidence,
		Data:       data,
		Timestamp:  time.Now().UnixMilli(),
	}
}

// Gesture is the capability contract every catalogued pattern implements.
//
// Detect must be a pure function of its inputs: it reads the frame and the
// context but never mutates either, and holds no cross-call state of its own.
// Motion gestures derive velocity from the context's frame history. Detect
// returns nil when the pattern does not match.
type Gesture interface {
	Name() string
	Priority() int
	Detect(frame *tracking.Frame, ctx *Context) *Result
}

// clamp limits a confidence value to (0,1].
func clamp(confidence float64) float64 {
	if confidence > 1 {
		return 1
	}
	return confidence
}
