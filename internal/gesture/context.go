package gesture

import (
	"fmt"
	"math"

	"github.com/ayusman/mudra/internal/tracking"
)

// Context is a bounded sliding window over the last K filtered frames, newest
// last. Motion gestures read displacement and velocity from it instead of
// keeping private state. The window never grows beyond its capacity: the
// oldest frame is evicted on each push once full.
type Context struct {
	capacity int
	frames   []*tracking.Frame
}

// NewContext creates a Context holding at most capacity frames.
// Capacity must be at least 2 so motion deltas can be derived.
func NewContext(capacity int) (*Context, error) {
	if capacity < 2 {
		return nil, fmt.Errorf("context window must be at least 2, got %d", capacity)
	}
	return &Context{
		capacity: capacity,
		frames:   make([]*tracking.Frame, 0, capacity),
	}, nil
}

// Push appends a frame, evicting the oldest when the window is full.
func (c *Context) Push(f *tracking.Frame) {
	if len(c.frames) == c.capacity {
		copy(c.frames, c.frames[1:])
		c.frames = c.frames[:c.capacity-1]
	}
	c.frames = append(c.frames, f)
}

// Len returns the number of frames currently held.
func (c *Context) Len() int {
	return len(c.frames)
}

// Capacity returns the fixed window size.
func (c *Context) Capacity() int {
	return c.capacity
}

// Newest returns the most recently pushed frame, or nil when empty.
func (c *Context) Newest() *tracking.Frame {
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

// Previous returns the frame pushed before the newest one, or nil when the
// window holds fewer than two frames.
func (c *Context) Previous() *tracking.Frame {
	if len(c.frames) < 2 {
		return nil
	}
	return c.frames[len(c.frames)-2]
}

// Frames returns the window contents, oldest first. Callers must not mutate
// the returned frames.
func (c *Context) Frames() []*tracking.Frame {
	return c.frames
}

// Displacement returns the movement of the hand center from the oldest frame
// in the window to the newest, in normalized coordinates.
func (c *Context) Displacement() (dx, dy float64) {
	if len(c.frames) < 2 {
		return 0, 0
	}
	first := c.frames[0].Center()
	last := c.frames[len(c.frames)-1].Center()
	return last.X - first.X, last.Y - first.Y
}

// Velocity returns the hand center speed across the window in normalized
// units per second, derived from frame timestamps. Returns 0 when the window
// spans no measurable time.
func (c *Context) Velocity() float64 {
	if len(c.frames) < 2 {
		return 0
	}
	dtMs := c.frames[len(c.frames)-1].Timestamp - c.frames[0].Timestamp
	if dtMs <= 0 {
		return 0
	}
	dx, dy := c.Displacement()
	return math.Sqrt(dx*dx+dy*dy) / (float64(dtMs) / 1000.0)
}

// Path returns the planar trace of one landmark index across the window,
// oldest first.
func (c *Context) Path(landmark int) []PathPoint {
	path := make([]PathPoint, len(c.frames))
	for i, f := range c.frames {
		lm := f.Landmarks[landmark]
		path[i] = PathPoint{X: lm.X, Y: lm.Y}
	}
	return path
}

// Reset drops all buffered frames. Called when tracking is lost or the
// pipeline restarts.
func (c *Context) Reset() {
	c.frames = c.frames[:0]
}

// PathPoint is a 2D point on a motion trace.
type PathPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
