package sticky

import (
	"github.com/akmonengine/sticky/actor"
	"github.com/akmonengine/sticky/surface"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Pose is the transform a body moves. *actor.Transform implements it.
type Pose interface {
	GetPosition() mgl64.Vec3
	SetPosition(position mgl64.Vec3)
	GetRotation() mgl64.Quat
	surface.Frame
}

// Dynamics is the rigid body that owns the body's motion while airborne.
// *actor.RigidBody implements it.
type Dynamics interface {
	SetKinematic(kinematic bool)
	IsKinematic() bool
	LinearVelocity() mgl64.Vec3
	SetLinearVelocity(velocity mgl64.Vec3)
	AddForce(force mgl64.Vec3)
	Mass() float64
}

// Integrator is implemented by dynamics the World can advance itself.
type Integrator interface {
	Integrate(dt float64, gravity mgl64.Vec3)
}

// DetachReason tells why a body left its surface.
type DetachReason uint8

const (
	// Requested is an explicit Detach call.
	Requested DetachReason = iota
	// NoSurface means the border sweep found no neighbor triangle.
	NoSurface
	// RecursionLimit means a tick needed more crossings than allowed.
	RecursionLimit
)

func (r DetachReason) String() string {
	switch r {
	case NoSurface:
		return "no-surface"
	case RecursionLimit:
		return "recursion-limit"
	default:
		return "requested"
	}
}

// Body is a character glued to a triangulated surface. While attached its
// dynamics are kinematic and the body moves along the current triangle's plane;
// once detached the dynamics take over until a grounding ray hits a surface.
//
// A Body is not safe for concurrent use; distinct bodies can tick in parallel
// when they share a concurrency-safe surface.Query.
type Body struct {
	pose     Pose
	dynamics Dynamics
	query    surface.Query
	locator  *surface.Locator
	config   Config
	logger   *zap.Logger

	triangle       *surface.Triangle
	velocity       mgl64.Vec3
	pendingImpulse mgl64.Vec3
	attached       bool
	lastPosition   mgl64.Vec3

	// gravity resolved for the current step, and the alignment easing state
	gravity  mgl64.Vec3
	alignVel float64

	events []Event
}

// NewBody creates an airborne body. The dynamics are switched to
// non-kinematic.
func NewBody(query surface.Query, pose Pose, dynamics Dynamics, config Config) *Body {
	config = config.normalized()

	b := &Body{
		pose:         pose,
		dynamics:     dynamics,
		query:        query,
		config:       config,
		logger:       zap.NewNop(),
		lastPosition: pose.GetPosition(),
	}
	b.locator = &surface.Locator{
		Query:  query,
		Mask:   config.Mask,
		Probes: config.Probes,
		Nudge:  config.ProbeNudge,
		Logger: b.logger,
	}
	dynamics.SetKinematic(false)

	return b
}

// NewActorBody creates a body driven by an actor.RigidBody, moving the rigid
// body's own transform.
func NewActorBody(query surface.Query, rb *actor.RigidBody, config Config) *Body {
	return NewBody(query, &rb.Transform, rb, config)
}

func (b *Body) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b.logger = logger
	b.locator.Logger = logger
}

func (b *Body) Pose() Pose {
	return b.pose
}

func (b *Body) Dynamics() Dynamics {
	return b.dynamics
}

func (b *Body) Config() Config {
	return b.config
}

func (b *Body) IsAttached() bool {
	return b.attached
}

// Triangle returns the current triangle, nil while airborne.
func (b *Body) Triangle() *surface.Triangle {
	return b.triangle
}

// Velocity returns the surface velocity, zero while airborne.
func (b *Body) Velocity() mgl64.Vec3 {
	return b.velocity
}

// SetVelocity sets the surface velocity, flattened onto the current triangle.
// It is ignored while airborne.
func (b *Body) SetVelocity(velocity mgl64.Vec3) {
	if !b.attached {
		return
	}
	b.velocity = b.triangle.ProjectDirection(velocity)
}

// PendingImpulse returns the impulse accumulated since the last attached tick.
func (b *Body) PendingImpulse() mgl64.Vec3 {
	return b.pendingImpulse
}

// AddImpulse accumulates a velocity change applied at the next attached tick.
func (b *Body) AddImpulse(impulse mgl64.Vec3) {
	b.pendingImpulse = b.pendingImpulse.Add(impulse)
}

// Attach sticks the body to triangle at position (projected onto the
// triangle's plane). The dynamics' velocity becomes an impulse for the next
// tick.
func (b *Body) Attach(triangle *surface.Triangle, position mgl64.Vec3) {
	b.attach(triangle, triangle.ProjectPoint(position))
}

// Detach releases the body from its surface. The surface velocity is dropped;
// the dynamics keep their own velocity.
func (b *Body) Detach() {
	b.detach(Requested)
}

// DrainEvents hands the buffered events to fn in emission order and clears them.
func (b *Body) DrainEvents(fn func(Event)) {
	for _, event := range b.events {
		fn(event)
	}
	clear(b.events)
	b.events = b.events[:0]
}

func (b *Body) attach(triangle *surface.Triangle, position mgl64.Vec3) {
	rigidVelocity := b.dynamics.LinearVelocity()

	b.attached = true
	b.triangle = triangle
	b.velocity = mgl64.Vec3{}
	b.dynamics.SetKinematic(true)
	b.dynamics.SetLinearVelocity(mgl64.Vec3{})
	b.pose.SetPosition(position)

	forward := triangle.ProjectDirection(b.pose.Forward())
	if forward.Len() < surface.DegenerateEpsilon {
		forward = triangle.ProjectDirection(b.pose.Up())
	}
	b.pose.LookAt(forward, triangle.FaceNormal())

	b.AddImpulse(rigidVelocity)

	b.logger.Debug("attached",
		zap.Stringer("triangle", triangle),
		zap.Uint64("owner", uint64(triangle.Owner)),
		zap.Int("index", triangle.Index),
	)
	b.events = append(b.events, AttachEvent{Body: b, Triangle: triangle, Position: position})
}

func (b *Body) detach(reason DetachReason) {
	if !b.attached {
		return
	}

	// the rigid body carries on with the surface velocity when the surface runs out
	if reason != Requested {
		b.dynamics.SetLinearVelocity(b.velocity)
	}
	b.dynamics.SetKinematic(false)

	b.attached = false
	b.triangle = nil
	b.velocity = mgl64.Vec3{}
	b.pendingImpulse = mgl64.Vec3{}

	position := b.pose.GetPosition()
	if reason == Requested {
		b.logger.Debug("detached", zap.Stringer("reason", reason))
	} else {
		b.logger.Info("detached", zap.Stringer("reason", reason), zap.Float64s("position", position[:]))
	}
	b.events = append(b.events, DetachEvent{Body: b, Reason: reason, Position: position})
}
