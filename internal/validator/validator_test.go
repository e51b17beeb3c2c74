package validator

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/bus"
	"github.com/ayusman/mudra/internal/gesture"
)

func result(name string) *gesture.Result {
	return gesture.NewResult(name, 0.9, map[string]any{"k": "v"})
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(0, zerolog.Nop()); err == nil {
		t.Fatal("expected error for 0 stability frames")
	}
	if _, err := New(-2, zerolog.Nop()); err == nil {
		t.Fatal("expected error for negative stability frames")
	}
	if _, err := New(1, zerolog.Nop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestObserve_ConfirmsAfterRequiredFrames(t *testing.T) {
	v, _ := New(3, zerolog.Nop())

	if evt := v.Observe(result("OPEN_PALM")); evt != nil {
		t.Fatal("confirmed after 1 frame, want 3")
	}
	if v.State() != StateCandidate {
		t.Errorf("State() = %v after first frame, want candidate", v.State())
	}
	if evt := v.Observe(result("OPEN_PALM")); evt != nil {
		t.Fatal("confirmed after 2 frames, want 3")
	}

	evt := v.Observe(result("OPEN_PALM"))
	if evt == nil {
		t.Fatal("not confirmed after 3 consecutive frames")
	}
	if evt.Type != bus.EventGesture || evt.Gesture != "OPEN_PALM" {
		t.Errorf("event = %+v, want GESTURE/OPEN_PALM", evt)
	}
	if evt.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", evt.Confidence)
	}
	if v.State() != StateConfirmed {
		t.Errorf("State() = %v, want confirmed", v.State())
	}
}

func TestObserve_EdgeTriggered(t *testing.T) {
	v, _ := New(2, zerolog.Nop())
	v.Observe(result("PINCH"))
	if evt := v.Observe(result("PINCH")); evt == nil {
		t.Fatal("not confirmed after 2 frames")
	}

	// Holding the gesture must not re-emit.
	for i := 0; i < 10; i++ {
		if evt := v.Observe(result("PINCH")); evt != nil {
			t.Fatalf("re-emitted on held frame %d", i)
		}
	}
}

func TestObserve_ReleaseAndRehold(t *testing.T) {
	v, _ := New(2, zerolog.Nop())
	v.Observe(result("WAVE"))
	v.Observe(result("WAVE"))

	if evt := v.Observe(nil); evt != nil {
		t.Fatal("release emitted an event")
	}
	if v.State() != StateIdle {
		t.Errorf("State() = %v after release, want idle", v.State())
	}

	// Re-holding goes through the full confirmation again and re-emits.
	if evt := v.Observe(result("WAVE")); evt != nil {
		t.Fatal("confirmed after 1 frame on re-hold")
	}
	if evt := v.Observe(result("WAVE")); evt == nil {
		t.Fatal("re-hold did not confirm after required frames")
	}
}

func TestObserve_DifferentGestureRestartsCount(t *testing.T) {
	v, _ := New(3, zerolog.Nop())
	v.Observe(result("OPEN_PALM"))
	v.Observe(result("OPEN_PALM"))

	// Switch just before confirmation.
	if evt := v.Observe(result("CLOSED_FIST")); evt != nil {
		t.Fatal("switch confirmed immediately")
	}
	if v.Current() != "CLOSED_FIST" {
		t.Errorf("Current() = %s, want CLOSED_FIST", v.Current())
	}
	v.Observe(result("CLOSED_FIST"))
	if evt := v.Observe(result("CLOSED_FIST")); evt == nil {
		t.Fatal("new gesture not confirmed after full count")
	}
}

func TestObserve_SwitchWhileConfirmed(t *testing.T) {
	v, _ := New(2, zerolog.Nop())
	v.Observe(result("OPEN_PALM"))
	if evt := v.Observe(result("OPEN_PALM")); evt == nil {
		t.Fatal("setup: OPEN_PALM not confirmed")
	}

	// A new gesture while confirmed becomes the candidate and confirms on
	// its own schedule.
	if evt := v.Observe(result("PEACE_SIGN")); evt != nil {
		t.Fatal("switch from confirmed emitted immediately")
	}
	evt := v.Observe(result("PEACE_SIGN"))
	if evt == nil || evt.Gesture != "PEACE_SIGN" {
		t.Fatalf("event = %+v, want PEACE_SIGN confirmation", evt)
	}
}

func TestObserve_ImmediateWithSingleFrame(t *testing.T) {
	v, _ := New(1, zerolog.Nop())
	evt := v.Observe(result("POINTING"))
	if evt == nil || evt.Gesture != "POINTING" {
		t.Fatalf("event = %+v, want immediate POINTING confirmation", evt)
	}
}

func TestReset(t *testing.T) {
	v, _ := New(2, zerolog.Nop())
	v.Observe(result("PINCH"))
	v.Reset()
	if v.State() != StateIdle || v.Current() != "" {
		t.Errorf("state = %v/%q after Reset, want idle/empty", v.State(), v.Current())
	}
}
