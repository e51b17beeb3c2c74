package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// blurKernel is the Gaussian blur kernel size used to suppress sensor
	// noise before differencing.
	blurKernel = 21
	// diffThreshold is the per-pixel intensity delta that counts as change.
	diffThreshold = 25
)

// MotionGate decides whether anything moved between consecutive frames. The
// pipeline uses it to stay at a low frame rate until a hand shows up: blur
// both frames, take the absolute difference, and count how many pixels
// changed by more than diffThreshold.
type MotionGate struct {
	mu        sync.Mutex
	threshold float64 // percent of pixels that must change
	baseline  gocv.Mat
	primed    bool
}

// NewMotionGate creates a MotionGate. threshold is the percentage of pixels
// that must change for motion, e.g. 1.0 means 1%.
func NewMotionGate(threshold float64) *MotionGate {
	return &MotionGate{
		threshold: threshold,
		baseline:  gocv.NewMat(),
	}
}

// Detect compares the frame against the previous one. Returns whether motion
// crossed the threshold and the measured change percentage. The first frame
// primes the baseline and never reports motion.
func (g *MotionGate) Detect(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

	if !g.primed {
		blurred.CopyTo(&g.baseline)
		g.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.baseline, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, diffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(mask)
	total := mask.Rows() * mask.Cols()
	percent := float64(changed) / float64(total) * 100.0

	blurred.CopyTo(&g.baseline)
	return percent > g.threshold, percent
}

// SetThreshold updates the change percentage threshold. Non-positive values
// are ignored.
func (g *MotionGate) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.threshold = threshold
}

// Reset drops the baseline so the next frame primes a fresh one.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.baseline.Empty() {
		g.baseline.Close()
		g.baseline = gocv.NewMat()
	}
	g.primed = false
}

// Close releases the baseline Mat. The gate must not be used afterwards.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.baseline.Close()
	g.primed = false
}
