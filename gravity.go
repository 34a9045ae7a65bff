package sticky

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DEFAULT_MAX_ALIGN_STEP = 0.05

	// alignment spring: critically damped, settles within a few hundred ms
	alignFrequency = 4.0
	alignDamping   = 1.0
)

// GravityField pulls bodies toward Center. Radius <= 0 reaches everywhere.
type GravityField struct {
	Center    mgl64.Vec3 `yaml:"center"`
	Magnitude float64    `yaml:"magnitude"`
	Radius    float64    `yaml:"radius"`
}

// Contains reports whether position is under the field's influence
func (f GravityField) Contains(position mgl64.Vec3) bool {
	return f.Radius <= 0 || position.Sub(f.Center).Len() <= f.Radius
}

// Gravity resolves the pull on each body and keeps airborne bodies upright
// against it.
type Gravity struct {
	// Constant is added everywhere, e.g. {0, -9.81, 0}.
	Constant mgl64.Vec3     `yaml:"constant"`
	Fields   []GravityField `yaml:"fields"`
	Scale    float64        `yaml:"scale"`
	// MaxAlignStep caps the up-vector rotation per tick, in radians.
	MaxAlignStep float64 `yaml:"max_align_step"`
	// Sticky also applies gravity to attached bodies, as an impulse along the surface.
	Sticky bool `yaml:"sticky"`

	spring   harmonica.Spring
	springDt float64
}

func NewGravity() *Gravity {
	return &Gravity{
		Scale:        1,
		MaxAlignStep: DEFAULT_MAX_ALIGN_STEP,
		Sticky:       true,
	}
}

// Resolve returns the gravity acceleration at position
func (g *Gravity) Resolve(position mgl64.Vec3) mgl64.Vec3 {
	accumulated := g.Constant
	for _, field := range g.Fields {
		if !field.Contains(position) {
			continue
		}
		direction := field.Center.Sub(position)
		if direction.Len() < 1e-12 {
			continue
		}
		accumulated = accumulated.Add(direction.Normalize().Mul(field.Magnitude))
	}

	return accumulated.Mul(g.Scale)
}

// prepare rebuilds the alignment spring when the step changes. It must run
// before Apply is called concurrently.
func (g *Gravity) prepare(dt float64) {
	if dt <= 0 || dt == g.springDt {
		return
	}
	g.spring = harmonica.NewSpring(dt, alignFrequency, alignDamping)
	g.springDt = dt
}

// Apply stores the resolved gravity on the body. Airborne bodies turn their up
// vector toward -gravity; attached bodies receive gravity * dt as an impulse
// when Sticky is set.
func (g *Gravity) Apply(b *Body, dt float64) mgl64.Vec3 {
	g.prepare(dt)

	gravity := g.Resolve(b.pose.GetPosition())
	b.gravity = gravity

	if b.attached {
		b.alignVel = 0
		if g.Sticky {
			b.AddImpulse(gravity.Mul(dt))
		}
		return gravity
	}

	if gravity.Len() > 0 {
		g.align(b, gravity.Mul(-1))
	}

	return gravity
}

// align eases the up vector toward target: the spring pulls the remaining
// angle to zero and the step it yields is capped by MaxAlignStep
func (g *Gravity) align(b *Body, target mgl64.Vec3) {
	target = target.Normalize()
	angle := math.Acos(mgl64.Clamp(b.pose.Up().Dot(target), -1, 1))
	if angle < 1e-9 {
		b.alignVel = 0
		return
	}

	remaining, velocity := g.spring.Update(angle, b.alignVel, 0)
	b.alignVel = velocity

	step := angle - remaining
	if g.MaxAlignStep > 0 {
		step = math.Min(step, g.MaxAlignStep)
	}
	if step <= 0 {
		return
	}

	b.pose.RotateTowardUp(target, step)
}
