package sticky

import (
	"github.com/akmonengine/sticky/surface"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// TickPostPhysics runs after the dynamics moved the body. An airborne body
// casts a ray along its movement since the previous call and sticks to
// whatever it hits; the rigid body's velocity becomes the next tick's impulse.
func (b *Body) TickPostPhysics() TickResult {
	outcome := Idle

	if !b.attached {
		delta := b.pose.GetPosition().Sub(b.lastPosition)
		if delta.Len() > surface.DegenerateEpsilon && b.checkIfGrounded(delta) {
			outcome = Attached
		}
	}
	b.lastPosition = b.pose.GetPosition()

	return b.result(outcome, 0)
}

func (b *Body) checkIfGrounded(delta mgl64.Vec3) bool {
	position := b.pose.GetPosition()
	distance := delta.Len()
	origin := position.Sub(delta.Mul(b.config.Grounding.BackOffset / distance))

	hit, ok := b.query.Raycast(origin, delta, distance+b.config.Grounding.ExtraReach, b.config.Mask)
	if !ok {
		return false
	}

	triangle, err := surface.TriangleFromHit(b.query, hit)
	if err != nil {
		b.logger.Warn("grounding hit without geometry", zap.Error(err))
		return false
	}

	b.attach(triangle, hit.Point)
	return true
}
