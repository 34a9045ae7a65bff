package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces and gravity unless kinematic
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	BodyTypeStatic
)

type Material struct {
	mass          float64
	LinearDamping float64 // 0.0 - 1.0, typical: 0.01
}

func (material Material) GetMass() float64 {
	return material.mass
}

// RigidBody is the free-body collaborator of a sticky body. While kinematic it
// is moved only through its transform; otherwise Integrate applies gravity,
// accumulated forces and damping.
type RigidBody struct {
	// Spatial properties
	PreviousTransform Transform
	Transform         Transform

	// Linear motion
	Velocity mgl64.Vec3 // Linear velocity (m/s)

	accumulatedForce mgl64.Vec3

	Kinematic bool

	// Physical properties
	Material Material
	BodyType BodyType
}

// NewRigidBody creates a new rigid body; mass is ignored for static bodies and
// defaults to 1 kg for dynamic ones
func NewRigidBody(transform Transform, bodyType BodyType, mass float64) *RigidBody {
	if transform.Rotation == (mgl64.Quat{}) {
		transform.Rotation = mgl64.QuatIdent()
	}
	transform.SetRotation(transform.Rotation)

	rb := &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		BodyType:          bodyType,
		Velocity:          mgl64.Vec3{0, 0, 0},
	}

	switch {
	case bodyType == BodyTypeStatic:
		rb.Material = Material{mass: math.Inf(1)}
	case mass <= 0:
		rb.Material = Material{mass: 1.0}
	default:
		rb.Material = Material{mass: mass}
	}

	return rb
}

func (rb *RigidBody) Mass() float64 {
	return rb.Material.GetMass()
}

// SetKinematic switches between transform-driven and simulated motion.
// Entering kinematic mode drops pending forces.
func (rb *RigidBody) SetKinematic(kinematic bool) {
	if kinematic && !rb.Kinematic {
		rb.ClearForces()
	}
	rb.Kinematic = kinematic
}

func (rb *RigidBody) IsKinematic() bool {
	return rb.Kinematic
}

func (rb *RigidBody) LinearVelocity() mgl64.Vec3 {
	return rb.Velocity
}

func (rb *RigidBody) SetLinearVelocity(velocity mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.Velocity = velocity
}

// AddForce accumulates a force (N) applied at the next Integrate
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType != BodyTypeStatic && !rb.Kinematic {
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
}

// Integrate advances a free body by dt under gravity and accumulated forces
func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic || rb.Kinematic {
		return
	}

	rb.PreviousTransform.Position = rb.Transform.Position
	rb.PreviousTransform.SetRotation(rb.Transform.Rotation)

	acceleration := gravity
	if mass := rb.Material.GetMass(); !math.IsInf(mass, 1) && mass > 0 {
		acceleration = acceleration.Add(rb.accumulatedForce.Mul(1.0 / mass))
	}
	rb.Velocity = rb.Velocity.Add(acceleration.Mul(dt))

	// ========== LINEAR DAMPING ==========
	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))
	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	rb.ClearForces()
}
