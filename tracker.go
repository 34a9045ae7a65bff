package sticky

import (
	"math"

	"github.com/akmonengine/sticky/surface"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Outcome summarizes what a tick did to a body.
type Outcome uint8

const (
	// Idle means the body did not move.
	Idle Outcome = iota
	// Moved means the body moved within its current triangle.
	Moved
	// Crossed means the body moved onto at least one new triangle.
	Crossed
	// Detached means the body lost its surface during the tick.
	Detached
	// Attached means an airborne body stuck to a surface.
	Attached
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Crossed:
		return "crossed"
	case Detached:
		return "detached"
	case Attached:
		return "attached"
	default:
		return "idle"
	}
}

// TickResult is the state of a body after a tick.
type TickResult struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Velocity    mgl64.Vec3
	Attached    bool
	Crossings   int
	Outcome     Outcome
}

// TickAttached integrates the pending impulse and drag into the surface
// velocity, then moves the body by one tick of displacement. Airborne bodies
// are left untouched.
func (b *Body) TickAttached(dt float64) TickResult {
	if !b.attached {
		return b.result(Idle, 0)
	}

	force := b.triangle.ProjectDirection(b.pendingImpulse)
	if speed := b.velocity.Len(); speed > 0 {
		force = force.Sub(b.velocity.Mul(speed * b.config.Drag))
	}
	b.velocity = b.triangle.ProjectDirection(b.velocity.Add(force))
	b.pendingImpulse = mgl64.Vec3{}

	return b.TickDisplacement(dt)
}

// TickDisplacement moves an attached body by |velocity| * dt along its surface,
// crossing onto neighbor triangles as needed. The velocity itself is only
// changed by crossings.
func (b *Body) TickDisplacement(dt float64) TickResult {
	if !b.attached {
		return b.result(Idle, 0)
	}

	start := b.pose.GetPosition()
	traveled := 0.0
	crossings := 0

	for {
		tri := b.triangle
		position := tri.ProjectPoint(b.pose.GetPosition())
		b.pose.SetPosition(position)

		speed := b.velocity.Len()
		remaining := speed*dt - traveled
		if speed < surface.DegenerateEpsilon || remaining <= 0 {
			break
		}
		tickVelocity := b.velocity.Mul(remaining / speed)

		exitDistance := math.Inf(1)
		exitPoint, bounded := tri.IntersectBoundary(surface.Ray{Origin: position, Direction: tickVelocity})
		if bounded {
			exitPoint = tri.ProjectPoint(exitPoint)
			exitDistance = exitPoint.Sub(position).Len()
		}

		// a neighbor right ahead: the body already sits on the border
		flush := b.locator.CheckRay(
			tri,
			position.Add(tri.FaceNormal().Mul(b.config.FlushProbeHeight)),
			tickVelocity,
			math.Min(remaining, exitDistance),
		)
		if flush.Outcome == surface.Found {
			if !b.allowCrossing(crossings) {
				break
			}
			b.velocity = surface.ReconcileAbrupt(b.pose, tri, flush.Triangle, b.velocity)
			traveled += position.Sub(flush.Position).Len()
			b.triangle = flush.Triangle
			b.pose.SetPosition(flush.Triangle.ProjectPoint(flush.Position))
			b.cross(tri, flush.Triangle, surface.Abrupt)
			crossings++
			continue
		}

		if remaining < exitDistance {
			b.pose.SetPosition(tri.ProjectPoint(position.Add(tickVelocity)))
			break
		}

		border := b.locator.CheckBorder(tri, exitPoint, tickVelocity)
		if border.Outcome != surface.Found {
			b.logger.Warn("no surface found",
				zap.Stringer("triangle", tri),
				zap.Float64s("exit", exitPoint[:]),
				zap.Stringer("outcome", border.Outcome),
			)
			b.pose.SetPosition(position)
			b.detach(NoSurface)
			break
		}

		if !b.allowCrossing(crossings) {
			break
		}
		b.velocity = surface.ReconcileSmooth(b.pose, tri, border.Triangle, border.Position, b.velocity)
		b.pose.SetPosition(tri.ProjectPoint(border.Position))
		traveled += math.Max(exitDistance, border.Position.Sub(position).Len())
		b.triangle = border.Triangle
		b.cross(tri, border.Triangle, surface.Smooth)
		crossings++
	}

	switch {
	case !b.attached:
		return b.result(Detached, crossings)
	case crossings > 0:
		return b.result(Crossed, crossings)
	case b.pose.GetPosition() != start:
		return b.result(Moved, crossings)
	default:
		return b.result(Idle, crossings)
	}
}

// allowCrossing detaches the body once a tick has used up its crossings
func (b *Body) allowCrossing(crossings int) bool {
	if crossings < b.config.MaxCrossings {
		return true
	}

	b.logger.Warn("crossing limit reached",
		zap.Int("crossings", crossings),
		zap.Stringer("triangle", b.triangle),
	)
	b.detach(RecursionLimit)
	return false
}

func (b *Body) cross(from, to *surface.Triangle, mode surface.Mode) {
	b.logger.Debug("crossed",
		zap.Stringer("mode", mode),
		zap.Int("from", from.Index),
		zap.Int("to", to.Index),
	)
	b.events = append(b.events, CrossEvent{Body: b, From: from, To: to, Mode: mode})
}

func (b *Body) result(outcome Outcome, crossings int) TickResult {
	return TickResult{
		Position:    b.pose.GetPosition(),
		Orientation: b.pose.GetRotation(),
		Velocity:    b.velocity,
		Attached:    b.attached,
		Crossings:   crossings,
		Outcome:     outcome,
	}
}
