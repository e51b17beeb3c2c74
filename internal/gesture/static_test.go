package gesture

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/tracking"
)

func TestOpenPalm(t *testing.T) {
	f := tracking.OpenPalmFrame()
	res := OpenPalmGesture{}.Detect(&f, nil)
	if res == nil {
		t.Fatal("open palm frame not detected")
	}
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 for spread palm", res.Confidence)
	}

	fist := tracking.ClosedFistFrame()
	if res := (OpenPalmGesture{}).Detect(&fist, nil); res != nil {
		t.Errorf("fist frame matched OPEN_PALM: %+v", res)
	}
}

func TestClosedFist(t *testing.T) {
	f := tracking.ClosedFistFrame()
	res := ClosedFistGesture{}.Detect(&f, nil)
	if res == nil {
		t.Fatal("fist frame not detected")
	}
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 for tight fist", res.Confidence)
	}

	// Thumb sticking up turns the fist into a thumbs-up, not a fist.
	tu := tracking.ThumbsUpFrame()
	if res := (ClosedFistGesture{}).Detect(&tu, nil); res != nil {
		t.Errorf("thumbs-up frame matched CLOSED_FIST: %+v", res)
	}
}

func TestThumbsUp(t *testing.T) {
	f := tracking.ThumbsUpFrame()
	res := ThumbsUpGesture{}.Detect(&f, nil)
	if res == nil {
		t.Fatal("thumbs-up frame not detected")
	}
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", res.Confidence)
	}

	fist := tracking.ClosedFistFrame()
	if res := (ThumbsUpGesture{}).Detect(&fist, nil); res != nil {
		t.Errorf("fist frame matched THUMBS_UP: %+v", res)
	}
}

func TestPointing(t *testing.T) {
	f := tracking.PointingFrame()
	res := PointingGesture{}.Detect(&f, nil)
	if res == nil {
		t.Fatal("pointing frame not detected")
	}
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 for straight index", res.Confidence)
	}
	if _, ok := res.Data["x"]; !ok {
		t.Error("pointing result missing tip position")
	}

	palm := tracking.OpenPalmFrame()
	if res := (PointingGesture{}).Detect(&palm, nil); res != nil {
		t.Errorf("palm frame matched POINTING: %+v", res)
	}
}

func TestPeaceSign(t *testing.T) {
	f := tracking.PeaceSignFrame()
	res := PeaceSignGesture{}.Detect(&f, nil)
	if res == nil {
		t.Fatal("peace sign frame not detected")
	}
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", res.Confidence)
	}

	palm := tracking.OpenPalmFrame()
	if res := (PeaceSignGesture{}).Detect(&palm, nil); res != nil {
		t.Errorf("palm frame matched PEACE_SIGN: %+v", res)
	}
}

func TestRockOn(t *testing.T) {
	f := tracking.RockOnFrame()
	res := RockOnGesture{}.Detect(&f, nil)
	if res == nil {
		t.Fatal("rock-on frame not detected")
	}
	if res.Confidence != 1.0 {
		t.Errorf("straight horns confidence = %v, want 1.0", res.Confidence)
	}

	peace := tracking.PeaceSignFrame()
	if res := (RockOnGesture{}).Detect(&peace, nil); res != nil {
		t.Errorf("peace frame matched ROCK_ON: %+v", res)
	}
}

func TestRockOn_BentHornLowersConfidence(t *testing.T) {
	f := tracking.RockOnFrame()
	// Pull the pinky tip partway back toward its PIP. The finger still counts
	// as extended but the pose is sloppier.
	f.Landmarks[tracking.PinkyTip].Y = 0.35

	res := RockOnGesture{}.Detect(&f, nil)
	if res == nil {
		t.Fatal("bent-pinky frame not detected")
	}
	if res.Confidence >= 1.0 {
		t.Errorf("bent-pinky confidence = %v, want below 1.0", res.Confidence)
	}
	if res.Confidence < 0.75 {
		t.Errorf("bent-pinky confidence = %v, want at least 0.75", res.Confidence)
	}
}

// TestCatalog_StaticDisambiguation runs the full built-in catalog against each
// static fixture and checks the winning gesture.
func TestCatalog_StaticDisambiguation(t *testing.T) {
	cases := []struct {
		name  string
		frame tracking.Frame
		want  string
	}{
		{"open palm", tracking.OpenPalmFrame(), OpenPalm},
		{"closed fist", tracking.ClosedFistFrame(), ClosedFist},
		{"thumbs up", tracking.ThumbsUpFrame(), ThumbsUp},
		{"pointing", tracking.PointingFrame(), Pointing},
		{"peace sign", tracking.PeaceSignFrame(), PeaceSign},
		{"rock on", tracking.RockOnFrame(), RockOn},
		{"pinch", tracking.PinchFrame(0.55, 0.5), Pinch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDetector(0.6, zerolog.Nop())
			RegisterBuiltins(d)
			ctx, _ := NewContext(8)
			ctx.Push(&tc.frame)
			best := d.DetectBest(&tc.frame, ctx)
			if best == nil {
				t.Fatalf("no gesture detected, want %s", tc.want)
			}
			if best.Name != tc.want {
				t.Errorf("DetectBest() = %s (%.2f), want %s", best.Name, best.Confidence, tc.want)
			}
		})
	}
}
