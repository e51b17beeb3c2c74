package gesture

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/tracking"
)

// Detector holds the registered gesture catalog and evaluates every gesture
// against each frame, returning the single best match. A panicking gesture is
// logged and skipped; it never takes the detection loop down.
type Detector struct {
	mu       sync.RWMutex
	gestures []Gesture
	minConf  float64
	log      zerolog.Logger
}

// NewDetector creates an empty Detector. Results below minConfidence are
// discarded before winner selection.
func NewDetector(minConfidence float64, log zerolog.Logger) *Detector {
	return &Detector{
		minConf: minConfidence,
		log:     log.With().Str("component", "detector").Logger(),
	}
}

// Register adds a gesture to the catalog. Registering a gesture whose Name
// matches an existing entry replaces it in place, keeping the original
// registration position.
func (d *Detector) Register(g Gesture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.gestures {
		if existing.Name() == g.Name() {
			d.log.Warn().Str("gesture", g.Name()).Msg("replacing registered gesture")
			d.gestures[i] = g
			return
		}
	}
	d.gestures = append(d.gestures, g)
	d.log.Debug().Str("gesture", g.Name()).Int("priority", g.Priority()).Msg("gesture registered")
}

// Unregister removes a gesture by name. Returns false if no such gesture is
// registered.
func (d *Detector) Unregister(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, g := range d.gestures {
		if g.Name() == name {
			d.gestures = append(d.gestures[:i], d.gestures[i+1:]...)
			return true
		}
	}
	return false
}

// Names returns the registered gesture names in registration order.
func (d *Detector) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, len(d.gestures))
	for i, g := range d.gestures {
		names[i] = g.Name()
	}
	return names
}

// DetectBest runs every registered gesture against the frame and returns the
// best match, or nil when nothing meets the confidence floor. Ties on
// confidence go to the higher priority; ties on both go to the earlier
// registration. Results with confidence outside (0, 1] are dropped as
// malformed.
func (d *Detector) DetectBest(frame *tracking.Frame, ctx *Context) *Result {
	d.mu.RLock()
	catalog := make([]Gesture, len(d.gestures))
	copy(catalog, d.gestures)
	d.mu.RUnlock()

	var best *Result
	var bestPriority int
	for _, g := range catalog {
		res := d.detectOne(g, frame, ctx)
		if res == nil {
			continue
		}
		if res.Confidence <= 0 || res.Confidence > 1 {
			d.log.Warn().Str("gesture", g.Name()).Float64("confidence", res.Confidence).
				Msg("discarding result with out-of-range confidence")
			continue
		}
		if res.Confidence < d.minConf {
			continue
		}
		if best == nil ||
			res.Confidence > best.Confidence ||
			(res.Confidence == best.Confidence && g.Priority() > bestPriority) {
			best = res
			bestPriority = g.Priority()
		}
	}
	return best
}

// detectOne evaluates a single gesture, converting a panic into a skipped
// result.
func (d *Detector) detectOne(g Gesture, frame *tracking.Frame, ctx *Context) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("gesture", g.Name()).Interface("panic", r).
				Msg("gesture panicked during detection")
			res = nil
		}
	}()
	return g.Detect(frame, ctx)
}
