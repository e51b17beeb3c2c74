package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/tracking"
)

// Kind distinguishes template matching strategies.
type Kind string

const (
	// KindStatic matches a single normalized hand pose.
	KindStatic Kind = "static"
	// KindDynamic matches a motion path with dynamic time warping.
	KindDynamic Kind = "dynamic"
)

// Template is a user-trained gesture loaded from the store. Static templates
// hold a normalized landmark pose; dynamic templates hold an index tip path.
type Template struct {
	ID        string
	Name      string
	Kind      Kind
	Landmarks []tracking.Landmark
	Path      []PathPoint
	Tolerance float64
}

// TemplateGesture adapts a trained template to the Gesture interface so the
// detector treats built-in and user-trained gestures uniformly.
type TemplateGesture struct {
	tmpl     *Template
	priority int
}

// NewTemplateGesture wraps a template for registration with the detector.
func NewTemplateGesture(t *Template, priority int) *TemplateGesture {
	return &TemplateGesture{tmpl: t, priority: priority}
}

func (g *TemplateGesture) Name() string  { return g.tmpl.Name }
func (g *TemplateGesture) Priority() int { return g.priority }

// Detect scores the frame (static) or the context window's index tip path
// (dynamic) against the template. The score is 1/(1+distance), so a perfect
// reproduction scores 1.0 and confidence falls off smoothly with distance.
// Distances beyond the template's tolerance do not match at all.
func (g *TemplateGesture) Detect(f *tracking.Frame, ctx *Context) *Result {
	switch g.tmpl.Kind {
	case KindStatic:
		return g.detectStatic(f)
	case KindDynamic:
		return g.detectDynamic(ctx)
	default:
		return nil
	}
}

func (g *TemplateGesture) detectStatic(f *tracking.Frame) *Result {
	normalized := f.Normalize()
	if normalized == nil {
		return nil
	}
	distance := landmarkSetDistance(normalized.Landmarks[:], g.tmpl.Landmarks)
	if distance > g.tmpl.Tolerance {
		return nil
	}
	return NewResult(g.tmpl.Name, 1.0/(1.0+distance), map[string]any{
		"template_id": g.tmpl.ID,
		"distance":    distance,
	})
}

func (g *TemplateGesture) detectDynamic(ctx *Context) *Result {
	if ctx == nil || ctx.Len() < 2 {
		return nil
	}
	distance := DTWDistance(ctx.Path(tracking.IndexTip), g.tmpl.Path)
	if distance > g.tmpl.Tolerance {
		return nil
	}
	return NewResult(g.tmpl.Name, 1.0/(1.0+distance), map[string]any{
		"template_id": g.tmpl.ID,
		"distance":    distance,
	})
}

// landmarkSetDistance sums the Euclidean distances between corresponding
// points of two landmark sets. Mismatched lengths compare the common prefix.
func landmarkSetDistance(a, b []tracking.Landmark) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var total float64
	for i := 0; i < n; i++ {
		total += tracking.Distance(a[i], b[i])
	}
	return total
}

// DTWDistance calculates the dynamic time warping distance between two paths,
// normalized by the longer path's length. Empty paths are infinitely far
// apart.
func DTWDistance(path1, path2 []PathPoint) float64 {
	n := len(path1)
	m := len(path2)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	dtw := make([][]float64, n+1)
	for i := range dtw {
		dtw[i] = make([]float64, m+1)
		for j := range dtw[i] {
			dtw[i][j] = math.Inf(1)
		}
	}
	dtw[0][0] = 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := pathPointDistance(path1[i-1], path2[j-1])
			dtw[i][j] = cost + min3(dtw[i-1][j], dtw[i][j-1], dtw[i-1][j-1])
		}
	}

	longest := n
	if m > longest {
		longest = m
	}
	return dtw[n][m] / float64(longest)
}

func pathPointDistance(a, b PathPoint) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func min3(a, b, c float64) float64 {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}
