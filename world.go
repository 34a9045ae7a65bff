// Package sticky keeps characters glued to arbitrary triangulated surfaces.
// Bodies slide along the plane of their current triangle, cross onto
// neighboring triangles through creases, gaps and T-junctions, and hand over
// to rigid-body dynamics when the surface runs out.
package sticky

import (
	"github.com/akmonengine/sticky/surface"
	"go.uber.org/zap"
)

const DEFAULT_WORKERS = 1

type World struct {
	// List of all sticky bodies in the world
	Bodies []*Body
	// Query is the collision world bodies stick to
	Query   surface.Query
	Gravity *Gravity
	Workers int

	Events Events
	Logger *zap.Logger
}

func NewWorld(query surface.Query, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &World{
		Query:   query,
		Gravity: NewGravity(),
		Workers: DEFAULT_WORKERS,
		Events:  NewEvents(),
		Logger:  logger,
	}
}

// NewBody creates a body on the world's query and adds it
func (w *World) NewBody(pose Pose, dynamics Dynamics, config Config) *Body {
	b := NewBody(w.Query, pose, dynamics, config)
	b.SetLogger(w.logger())
	w.AddBody(b)

	return b
}

// AddBody adds a sticky body to the world
func (w *World) AddBody(body *Body) {
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a sticky body from the world, dropping its pending events
func (w *World) RemoveBody(body *Body) {
	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
		body.DrainEvents(func(Event) {})
	}
}

// Step advances every body by dt:
// gravity, surface tracking, free-body integration, grounding, then events.
func (w *World) Step(dt float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	if w.Gravity == nil {
		w.Gravity = NewGravity()
	}
	w.Gravity.prepare(dt)

	// Phase 1: Gravity, impulses for attached bodies and alignment for airborne ones
	task(w.Workers, w.Bodies, func(body *Body) {
		w.Gravity.Apply(body, dt)
	})

	// Phase 2: Surface tracking
	task(w.Workers, w.Bodies, func(body *Body) {
		body.TickAttached(dt)
	})

	// Phase 3: Free bodies
	task(w.Workers, w.Bodies, func(body *Body) {
		w.integrate(body, dt)
	})

	// Phase 4: Grounding
	task(w.Workers, w.Bodies, func(body *Body) {
		body.TickPostPhysics()
	})

	// Phase 5: Events, drained in body order
	for _, body := range w.Bodies {
		body.DrainEvents(w.Events.emit)
	}
	w.Events.flush()
}

// integrate advances an airborne body. Dynamics that cannot integrate
// themselves receive gravity as a force for the host to apply.
func (w *World) integrate(body *Body, dt float64) {
	if body.attached || body.dynamics.IsKinematic() {
		return
	}

	if integrator, ok := body.dynamics.(Integrator); ok {
		integrator.Integrate(dt, body.gravity)
		return
	}
	body.dynamics.AddForce(body.gravity.Mul(body.dynamics.Mass()))
}

func (w *World) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}
