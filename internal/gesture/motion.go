package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/tracking"
)

const (
	// swipeMinTravel is the minimum hand center displacement across the
	// context window to register a swipe.
	swipeMinTravel = 0.2
	// swipeMinAlignment is the minimum cosine similarity between the observed
	// displacement and the swipe's axis direction.
	swipeMinAlignment = 0.8
	// waveMinReversals is how many horizontal direction changes a wave needs.
	waveMinReversals = 2
	// waveMinAmplitude is the minimum horizontal extent of the wave motion.
	waveMinAmplitude = 0.08
	// rotateMinSweep is the accumulated angle, in radians, the index tip must
	// sweep around the path centroid to register a rotation.
	rotateMinSweep = 1.5 * math.Pi
	// rotateMinRadius rejects rotations traced too close to the centroid,
	// which are indistinguishable from jitter.
	rotateMinRadius = 0.03
)

// SwipeGesture matches rapid directional hand movement. One type covers all
// four directions, parametrized by the axis unit vector.
type SwipeGesture struct {
	name string
	dirX float64
	dirY float64
}

// NewSwipeLeft matches movement toward negative x.
func NewSwipeLeft() SwipeGesture { return SwipeGesture{name: SwipeLeft, dirX: -1} }

// NewSwipeRight matches movement toward positive x.
func NewSwipeRight() SwipeGesture { return SwipeGesture{name: SwipeRight, dirX: 1} }

// NewSwipeUp matches movement toward negative y (up in image coordinates).
func NewSwipeUp() SwipeGesture { return SwipeGesture{name: SwipeUp, dirY: -1} }

// NewSwipeDown matches movement toward positive y.
func NewSwipeDown() SwipeGesture { return SwipeGesture{name: SwipeDown, dirY: 1} }

func (s SwipeGesture) Name() string  { return s.name }
func (s SwipeGesture) Priority() int { return 5 }

func (s SwipeGesture) Detect(_ *tracking.Frame, ctx *Context) *Result {
	if ctx == nil || ctx.Len() < 3 {
		return nil
	}
	dx, dy := ctx.Displacement()
	mag := math.Sqrt(dx*dx + dy*dy)
	if mag < swipeMinTravel {
		return nil
	}
	alignment := (dx*s.dirX + dy*s.dirY) / mag
	if alignment < swipeMinAlignment {
		return nil
	}
	conf := 0.6 + 0.4*math.Min(1, (mag-swipeMinTravel)/swipeMinTravel)
	return NewResult(s.name, conf, map[string]any{
		"magnitude": mag,
		"velocity":  ctx.Velocity(),
	})
}

// WaveGesture matches an open palm oscillating horizontally. Its priority
// puts it ahead of the static open palm whenever the hand is actually waving.
type WaveGesture struct{}

func (WaveGesture) Name() string  { return Wave }
func (WaveGesture) Priority() int { return 10 }

func (WaveGesture) Detect(f *tracking.Frame, ctx *Context) *Result {
	if (OpenPalmGesture{}).Detect(f, nil) == nil {
		return nil
	}
	if ctx == nil || ctx.Len() < 4 {
		return nil
	}
	frames := ctx.Frames()
	xs := make([]float64, len(frames))
	for i, fr := range frames {
		xs[i] = fr.Center().X
	}
	minX, maxX := xs[0], xs[0]
	for _, x := range xs[1:] {
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
	}
	if maxX-minX < waveMinAmplitude {
		return nil
	}
	reversals := 0
	prevSign := 0
	for i := 1; i < len(xs); i++ {
		d := xs[i] - xs[i-1]
		if d == 0 {
			continue
		}
		sign := 1
		if d < 0 {
			sign = -1
		}
		if prevSign != 0 && sign != prevSign {
			reversals++
		}
		prevSign = sign
	}
	if reversals < waveMinReversals {
		return nil
	}
	conf := 0.85
	if reversals >= waveMinReversals+1 {
		conf = 1.0
	}
	return NewResult(Wave, conf, map[string]any{
		"reversals": reversals,
		"amplitude": maxX - minX,
	})
}

// RotateCWGesture matches the index tip tracing a clockwise circle. In image
// coordinates (y grows downward) clockwise on screen accumulates a positive
// signed angle.
type RotateCWGesture struct{}

func (RotateCWGesture) Name() string  { return RotateCW }
func (RotateCWGesture) Priority() int { return 10 }

func (RotateCWGesture) Detect(f *tracking.Frame, ctx *Context) *Result {
	// Rotation is traced with the index finger; require the pointing pose so
	// an idle open hand drifting in a circle does not trigger it.
	extended, curled := fingerStates(f)
	if !extended[0] || !curled[1] || !curled[2] || !curled[3] {
		return nil
	}
	if ctx == nil || ctx.Len() < 5 {
		return nil
	}
	path := ctx.Path(tracking.IndexTip)
	var cx, cy float64
	for _, p := range path {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(path))
	cy /= float64(len(path))

	var sweep float64
	prevAngle := math.NaN()
	for _, p := range path {
		rx := p.X - cx
		ry := p.Y - cy
		if math.Sqrt(rx*rx+ry*ry) < rotateMinRadius {
			return nil
		}
		angle := math.Atan2(ry, rx)
		if !math.IsNaN(prevAngle) {
			delta := angle - prevAngle
			// Unwrap across the -pi/pi seam.
			for delta > math.Pi {
				delta -= 2 * math.Pi
			}
			for delta < -math.Pi {
				delta += 2 * math.Pi
			}
			sweep += delta
		}
		prevAngle = angle
	}
	if sweep < rotateMinSweep {
		return nil
	}
	conf := 0.8
	if sweep >= 2*math.Pi {
		conf = 1.0
	}
	return NewResult(RotateCW, conf, map[string]any{
		"sweep": sweep,
	})
}
