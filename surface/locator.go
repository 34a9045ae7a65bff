package surface

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// DefaultNudge lifts probe origins off the current plane so the first ray never
// starts exactly on it.
const DefaultNudge = 1e-9

// Outcome classifies a neighbor search.
type Outcome uint8

const (
	// NotFound means no geometry was hit.
	NotFound Outcome = iota
	// HitSelf means the probe re-hit the triangle it was cast from.
	HitSelf
	// Found means a different triangle was hit.
	Found
)

func (o Outcome) String() string {
	switch o {
	case HitSelf:
		return "hit-self"
	case Found:
		return "found"
	default:
		return "not-found"
	}
}

// BorderResult is the outcome of a neighbor search. Triangle and Position are
// only set when Outcome is Found.
type BorderResult struct {
	Outcome  Outcome
	Triangle *Triangle
	Position mgl64.Vec3
}

// Probe is one configuration of the border sweep: the footprint of the three
// casts and the angle (degrees, about the face normal) applied to the travel
// direction.
type Probe struct {
	Size  float64 `yaml:"size"`
	Angle float64 `yaml:"angle"`
}

// DefaultProbes returns the sweep configurations tried in order: a small probe
// straight ahead, the same probe turned by ±6° and finally a wider probe.
func DefaultProbes() []Probe {
	return []Probe{
		{Size: 0.05, Angle: 0},
		{Size: 0.05, Angle: 6},
		{Size: 0.05, Angle: -6},
		{Size: 0.2, Angle: 0},
	}
}

// Locator finds the triangle adjacent to a border point, tolerating gaps,
// creases and T-junctions in the mesh.
type Locator struct {
	Query  Query
	Mask   LayerMask
	Probes []Probe
	Nudge  float64
	Logger *zap.Logger
}

// NewLocator returns a locator using the default probe configurations.
func NewLocator(q Query, mask LayerMask, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Locator{
		Query:  q,
		Mask:   mask,
		Probes: DefaultProbes(),
		Nudge:  DefaultNudge,
		Logger: logger,
	}
}

// CheckRay casts a single ray and classifies what it hits relative to current.
func (l *Locator) CheckRay(current *Triangle, origin, direction mgl64.Vec3, length float64) BorderResult {
	if length <= 0 || direction.Len() < DegenerateEpsilon {
		return BorderResult{Outcome: NotFound}
	}

	hit, ok := l.Query.Raycast(origin, direction.Normalize(), length, l.Mask)
	if !ok {
		return BorderResult{Outcome: NotFound}
	}

	if current != nil && current.SameAs(hit) {
		l.logger().Debug("probe hit current triangle",
			zap.Int("triangle", hit.TriangleIndex),
			zap.Uint32("collider", uint32(hit.Collider)),
		)
		return BorderResult{Outcome: HitSelf}
	}

	triangle, err := TriangleFromHit(l.Query, hit)
	if err != nil {
		l.logger().Warn("discarding hit without geometry", zap.Error(err))
		return BorderResult{Outcome: NotFound}
	}

	return BorderResult{
		Outcome:  Found,
		Triangle: triangle,
		Position: hit.Point,
	}
}

// CheckBorder runs the full sweep from border along velocity, trying every probe
// configuration until one finds a neighbor.
//
// HitSelf ends the current configuration only; the next configuration is still
// tried. If nothing is found the result is HitSelf when any configuration re-hit
// the current triangle, NotFound otherwise. Callers treat both as "no neighbor".
func (l *Locator) CheckBorder(current *Triangle, border, velocity mgl64.Vec3) BorderResult {
	hitSelf := false

	for _, probe := range l.probes() {
		r := l.checkTriangle(current, border, velocity, probe)
		switch r.Outcome {
		case Found:
			return r
		case HitSelf:
			hitSelf = true
		}
	}

	if hitSelf {
		return BorderResult{Outcome: HitSelf}
	}
	return BorderResult{Outcome: NotFound}
}

// checkTriangle runs the three casts of one probe configuration:
// up and over the border, straight down from there, and back up from below
// toward the border.
func (l *Locator) checkTriangle(current *Triangle, border, direction mgl64.Vec3, probe Probe) BorderResult {
	normal := current.FaceNormal()
	direction = safeNormalize(direction)

	start := border.Sub(direction.Mul(probe.Size / 3))

	if probe.Angle != 0 {
		direction = mgl64.QuatRotate(mgl64.DegToRad(probe.Angle), normal).Rotate(direction)
		direction = safeNormalize(current.ProjectDirection(direction))
	}

	over := safeNormalize(normal.Add(direction)).Mul(probe.Size)
	r := l.CheckRay(current, start.Add(normal.Mul(l.nudge())), over, probe.Size)
	if r.Outcome != NotFound {
		return r
	}

	r = l.CheckRay(current, start.Add(over), normal.Mul(-1), probe.Size*math.Sqrt2)
	if r.Outcome != NotFound {
		return r
	}

	under := safeNormalize(direction.Sub(normal)).Mul(probe.Size)
	return l.CheckRay(current, start.Add(under).Sub(normal.Mul(l.nudge())), under.Mul(-1), probe.Size)
}

func (l *Locator) probes() []Probe {
	if len(l.Probes) == 0 {
		return DefaultProbes()
	}
	return l.Probes
}

func (l *Locator) nudge() float64 {
	if l.Nudge <= 0 {
		return DefaultNudge
	}
	return l.Nudge
}

func (l *Locator) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}
