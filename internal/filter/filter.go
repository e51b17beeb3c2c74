// Package filter smooths noisy per-frame hand landmarks over a short temporal
// window before they reach the gesture detectors.
package filter

import (
	"fmt"

	"github.com/ayusman/mudra/internal/tracking"
)

// LandmarkFilter maintains one fixed-size circular buffer per landmark index
// and returns the arithmetic mean of each buffer as the smoothed coordinate.
// It is owned by the single detection goroutine and needs no locking.
type LandmarkFilter struct {
	window  int
	buffers [tracking.NumLandmarks]ringBuffer
}

// ringBuffer is a fixed-capacity circular buffer of raw landmark positions.
// Capacity never changes after construction.
type ringBuffer struct {
	values []tracking.Landmark
	next   int
	count  int
}

func (b *ringBuffer) push(lm tracking.Landmark) {
	b.values[b.next] = lm
	b.next = (b.next + 1) % len(b.values)
	if b.count < len(b.values) {
		b.count++
	}
}

func (b *ringBuffer) mean() tracking.Landmark {
	var sum tracking.Landmark
	for i := 0; i < b.count; i++ {
		v := b.values[i]
		sum.X += v.X
		sum.Y += v.Y
		sum.Z += v.Z
		sum.Visibility += v.Visibility
	}
	n := float64(b.count)
	return tracking.Landmark{
		X:          sum.X / n,
		Y:          sum.Y / n,
		Z:          sum.Z / n,
		Visibility: sum.Visibility / n,
	}
}

func (b *ringBuffer) clear() {
	b.next = 0
	b.count = 0
}

// New creates a LandmarkFilter with the given window size.
// The window must be odd and at least 3.
func New(window int) (*LandmarkFilter, error) {
	if window < 3 {
		return nil, fmt.Errorf("filter window must be at least 3, got %d", window)
	}
	if window%2 == 0 {
		return nil, fmt.Errorf("filter window must be odd, got %d", window)
	}

	f := &LandmarkFilter{window: window}
	for i := range f.buffers {
		f.buffers[i].values = make([]tracking.Landmark, window)
	}
	return f, nil
}

// Window returns the configured window size.
func (f *LandmarkFilter) Window() int {
	return f.window
}

// Update pushes a raw frame into the per-landmark buffers and returns the
// smoothed frame. Handedness, score and timestamp pass through unchanged.
// The first frame after a Reset is returned unsmoothed (its mean is itself).
func (f *LandmarkFilter) Update(raw *tracking.Frame) *tracking.Frame {
	smoothed := &tracking.Frame{
		Handedness: raw.Handedness,
		Score:      raw.Score,
		Timestamp:  raw.Timestamp,
	}

	for i := range raw.Landmarks {
		f.buffers[i].push(raw.Landmarks[i])
		smoothed.Landmarks[i] = f.buffers[i].mean()
	}

	return smoothed
}

// Reset clears all buffers so the filter restarts cold. Called when tracking
// is lost for more than the configured number of cycles or when the pipeline
// restarts.
func (f *LandmarkFilter) Reset() {
	for i := range f.buffers {
		f.buffers[i].clear()
	}
}
