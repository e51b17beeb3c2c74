package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/mudra/internal/tracking"
)

func TestDTWDistance_IdenticalPaths(t *testing.T) {
	path := []PathPoint{{0.1, 0.1}, {0.2, 0.2}, {0.3, 0.3}}
	if d := DTWDistance(path, path); d != 0 {
		t.Errorf("DTWDistance(path, path) = %v, want 0", d)
	}
}

func TestDTWDistance_EmptyPath(t *testing.T) {
	path := []PathPoint{{0.1, 0.1}}
	if d := DTWDistance(nil, path); !math.IsInf(d, 1) {
		t.Errorf("DTWDistance(nil, path) = %v, want +Inf", d)
	}
	if d := DTWDistance(path, nil); !math.IsInf(d, 1) {
		t.Errorf("DTWDistance(path, nil) = %v, want +Inf", d)
	}
}

func TestDTWDistance_TimeWarping(t *testing.T) {
	// The same shape sampled at different rates should stay close.
	slow := []PathPoint{{0, 0}, {0.1, 0}, {0.2, 0}, {0.3, 0}, {0.4, 0}}
	fast := []PathPoint{{0, 0}, {0.2, 0}, {0.4, 0}}
	far := []PathPoint{{0, 0.5}, {0.2, 0.5}, {0.4, 0.5}}

	same := DTWDistance(slow, fast)
	different := DTWDistance(slow, far)
	if same >= different {
		t.Errorf("resampled path distance %v not below displaced path distance %v", same, different)
	}
}

func TestTemplateGesture_Static(t *testing.T) {
	palm := tracking.OpenPalmFrame()
	normalized := palm.Normalize()

	tmpl := &Template{
		ID:        "tmpl-1",
		Name:      "MY_PALM",
		Kind:      KindStatic,
		Landmarks: normalized.Landmarks[:],
		Tolerance: 1.0,
	}
	g := NewTemplateGesture(tmpl, 0)

	res := g.Detect(&palm, nil)
	if res == nil {
		t.Fatal("frame did not match its own template")
	}
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 for exact match", res.Confidence)
	}
	if res.Data["template_id"] != "tmpl-1" {
		t.Errorf("template_id = %v, want tmpl-1", res.Data["template_id"])
	}

	fist := tracking.ClosedFistFrame()
	if res := g.Detect(&fist, nil); res != nil {
		t.Errorf("fist matched palm template: %+v", res)
	}
}

func TestTemplateGesture_StaticScaleInvariant(t *testing.T) {
	palm := tracking.OpenPalmFrame()
	tmpl := &Template{
		ID:        "tmpl-1",
		Name:      "MY_PALM",
		Kind:      KindStatic,
		Landmarks: palm.Normalize().Landmarks[:],
		Tolerance: 1.0,
	}
	g := NewTemplateGesture(tmpl, 0)

	// Shrink the hand toward the wrist; normalization should cancel it out.
	small := palm
	wrist := palm.Landmarks[tracking.Wrist]
	for i := range small.Landmarks {
		small.Landmarks[i].X = wrist.X + (palm.Landmarks[i].X-wrist.X)*0.5
		small.Landmarks[i].Y = wrist.Y + (palm.Landmarks[i].Y-wrist.Y)*0.5
		small.Landmarks[i].Z = wrist.Z + (palm.Landmarks[i].Z-wrist.Z)*0.5
	}

	res := g.Detect(&small, nil)
	if res == nil {
		t.Fatal("scaled hand did not match template")
	}
	if math.Abs(res.Confidence-1.0) > 1e-9 {
		t.Errorf("Confidence = %v, want 1.0 after normalization", res.Confidence)
	}
}

func TestTemplateGesture_Dynamic(t *testing.T) {
	tip := tracking.PointingFrame().Landmarks[tracking.IndexTip]
	offsets := []float64{0, 0.05, 0.1, 0.15, 0.2}

	path := make([]PathPoint, len(offsets))
	for i, off := range offsets {
		path[i] = PathPoint{X: tip.X + off, Y: tip.Y}
	}
	tmpl := &Template{
		ID:        "tmpl-2",
		Name:      "MY_SLIDE",
		Kind:      KindDynamic,
		Path:      path,
		Tolerance: 0.05,
	}
	g := NewTemplateGesture(tmpl, 0)

	ctx, _ := NewContext(8)
	base := tracking.PointingFrame()
	var last tracking.Frame
	for i, off := range offsets {
		last = tracking.ShiftFrame(base, off, 0, int64(i)*33)
		ctx.Push(&last)
	}

	res := g.Detect(&last, ctx)
	if res == nil {
		t.Fatal("traced path did not match its own template")
	}
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 for exact trace", res.Confidence)
	}

	// A vertical trace is nowhere near the horizontal template.
	ctx.Reset()
	for i, off := range offsets {
		last = tracking.ShiftFrame(base, 0, off+0.2, int64(i)*33)
		ctx.Push(&last)
	}
	if res := g.Detect(&last, ctx); res != nil {
		t.Errorf("vertical trace matched horizontal template: %+v", res)
	}
}
