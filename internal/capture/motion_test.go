package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestMotionGate_FirstFramePrimes(t *testing.T) {
	if testing.Short() {
		t.Skip("requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	detected, percent := g.Detect(&frame)
	if detected {
		t.Error("first frame reported motion")
	}
	if percent != 0 {
		t.Errorf("first frame percent = %f, want 0", percent)
	}
}

func TestMotionGate_IdenticalFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	g.Detect(&frame1)
	detected, percent := g.Detect(&frame2)
	if detected {
		t.Errorf("identical frames reported motion, percent = %f", percent)
	}
}

func TestMotionGate_DetectsChange(t *testing.T) {
	if testing.Short() {
		t.Skip("requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	dark := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer dark.Close()
	bright := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(200, 200, 200, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer bright.Close()

	g.Detect(&dark)
	detected, percent := g.Detect(&bright)
	if !detected {
		t.Errorf("full-frame change not reported as motion, percent = %f", percent)
	}
	if percent < 50 {
		t.Errorf("percent = %f, want well above 50 for a full-frame change", percent)
	}
}

func TestMotionGate_NilAndEmptyFrames(t *testing.T) {
	g := NewMotionGate(1.0)
	defer g.Close()

	if detected, _ := g.Detect(nil); detected {
		t.Error("nil frame reported motion")
	}

	if testing.Short() {
		return
	}
	empty := gocv.NewMat()
	defer empty.Close()
	if detected, _ := g.Detect(&empty); detected {
		t.Error("empty frame reported motion")
	}
}

func TestMotionGate_ResetReprimes(t *testing.T) {
	if testing.Short() {
		t.Skip("requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	dark := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer dark.Close()
	bright := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(200, 200, 200, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer bright.Close()

	g.Detect(&dark)
	g.Reset()

	// After reset the bright frame primes a fresh baseline instead of
	// producing a spurious diff against the dark one.
	if detected, _ := g.Detect(&bright); detected {
		t.Error("priming frame after Reset reported motion")
	}
}

func TestMotionGate_CloseReleasesBaseline(t *testing.T) {
	if testing.Short() {
		t.Skip("requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()
	g.Detect(&frame)

	g.Close()
	if !g.baseline.Closed() {
		t.Error("baseline Mat still allocated after Close")
	}

	// A second Close must not panic.
	g.Close()
}

func TestMotionGate_SetThreshold(t *testing.T) {
	g := NewMotionGate(1.0)
	defer g.Close()

	g.SetThreshold(5.0)
	if g.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0", g.threshold)
	}
	g.SetThreshold(0)
	if g.threshold != 5.0 {
		t.Errorf("threshold = %f after invalid update, want unchanged 5.0", g.threshold)
	}
}
