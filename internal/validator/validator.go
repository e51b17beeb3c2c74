// Package validator debounces raw per-frame detections into stable gesture
// emissions. A gesture must win detection for a configurable number of
// consecutive frames before it is confirmed, and a confirmed gesture emits
// exactly once until the hand leaves the pose.
package validator

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/bus"
	"github.com/ayusman/mudra/internal/gesture"
)

// State is the validator's position in its confirmation cycle.
type State int

const (
	// StateIdle means no gesture is being tracked.
	StateIdle State = iota
	// StateCandidate means a gesture has been seen but not yet held long
	// enough to confirm.
	StateCandidate
	// StateConfirmed means the current gesture has been emitted and is still
	// being held.
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCandidate:
		return "candidate"
	case StateConfirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Validator is the per-hand stability state machine. It is driven from the
// single detection goroutine and is not safe for concurrent use.
type Validator struct {
	required int
	state    State
	current  string
	count    int
	log      zerolog.Logger
}

// New creates a Validator requiring the gesture to hold for required
// consecutive frames. required must be at least 1; with 1 every detection
// confirms immediately.
func New(required int, log zerolog.Logger) (*Validator, error) {
	if required < 1 {
		return nil, fmt.Errorf("stability frames must be at least 1, got %d", required)
	}
	return &Validator{
		required: required,
		log:      log.With().Str("component", "validator").Logger(),
	}, nil
}

// Observe feeds one detection cycle's winner into the state machine. A nil
// result means nothing was detected this frame. The returned event is non-nil
// only on the cycle that confirms a gesture; holding a confirmed gesture
// produces no further events until it is released and re-held.
func (v *Validator) Observe(res *gesture.Result) *bus.Event {
	if res == nil {
		if v.state != StateIdle {
			v.log.Debug().Str("gesture", v.current).Msg("gesture released")
		}
		v.toIdle()
		return nil
	}

	if res.Name != v.current {
		// A different winner restarts the count even mid-confirmation.
		v.state = StateCandidate
		v.current = res.Name
		v.count = 1
	} else if v.state != StateConfirmed {
		v.count++
	} else {
		// Confirmed and still holding. Edge-triggered: no re-emission.
		return nil
	}

	if v.count < v.required {
		return nil
	}

	v.state = StateConfirmed
	v.log.Info().Str("gesture", res.Name).Float64("confidence", res.Confidence).
		Int("frames", v.count).Msg("gesture confirmed")
	evt := bus.NewGestureEvent(res.Name, res.Confidence, res.Data, time.UnixMilli(res.Timestamp))
	return &evt
}

// State returns the current FSM state.
func (v *Validator) State() State {
	return v.state
}

// Current returns the gesture name being tracked, or "" when idle.
func (v *Validator) Current() string {
	return v.current
}

// Reset forces the validator back to idle, used when tracking is lost.
func (v *Validator) Reset() {
	v.toIdle()
}

func (v *Validator) toIdle() {
	v.state = StateIdle
	v.current = ""
	v.count = 0
}
