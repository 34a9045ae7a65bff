package surface

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// alignedTolerance is how close to ±1 the dot product of two unit normals must be
// to treat them as parallel or antiparallel.
const alignedTolerance = 1e-9

// Mode tells how velocity and orientation were carried onto a new triangle.
type Mode uint8

const (
	// Abrupt rotates velocity and up rigidly by the angle between face normals.
	Abrupt Mode = iota
	// Smooth blends the forward direction through the interpolated vertex normals.
	Smooth
)

func (m Mode) String() string {
	if m == Smooth {
		return "smooth"
	}
	return "abrupt"
}

// Frame is the orientation a crossing updates.
type Frame interface {
	Up() mgl64.Vec3
	Forward() mgl64.Vec3
	// LookAt orients forward along forward with up as close to up as possible.
	LookAt(forward, up mgl64.Vec3)
	// RotateTowardUp applies the minimal rotation bringing up onto target,
	// limited to maxStep radians when maxStep > 0.
	RotateTowardUp(target mgl64.Vec3, maxStep float64)
}

// RotateToNewPlane rotates v by the rotation taking oldNormal onto newNormal.
// Antiparallel normals fold v over the edge it is crossing (a half turn about
// oldNormal × v), mirroring what the up-vector rotation does for that case.
func RotateToNewPlane(oldNormal, newNormal, v mgl64.Vec3) mgl64.Vec3 {
	dot := mgl64.Clamp(oldNormal.Dot(newNormal), -1, 1)
	if dot >= 1-alignedTolerance {
		return v
	}

	axis := oldNormal.Cross(newNormal)
	if dot <= -1+alignedTolerance || axis.Len() < alignedTolerance {
		axis = oldNormal.Cross(v)
		if axis.Len() < alignedTolerance {
			return v
		}
	}

	return mgl64.QuatRotate(math.Acos(dot), axis.Normalize()).Rotate(v)
}

// SignedAngle returns the angle in radians from a to b measured about axis,
// in (-π, π].
func SignedAngle(a, b, axis mgl64.Vec3) float64 {
	return math.Atan2(a.Cross(b).Dot(axis), a.Dot(b))
}

// SmoothedVector carries old onto next by first flattening it against the
// interpolated normal at position, then sliding it along that normal until it
// lies in next's flat plane. The result keeps the length of old. ok is false when
// the construction degenerates (old parallel to the interpolated normal, or the
// interpolated normal lying in the new plane).
func SmoothedVector(next *Triangle, position, old mgl64.Vec3) (mgl64.Vec3, bool) {
	interpolatedUp := next.InterpolatedNormal(position)
	interpolatedForward := safeNormalize(projectOnPlane(safeNormalize(old), interpolatedUp))
	newUp := next.FaceNormal()

	denom := interpolatedUp.Dot(newUp)
	if math.Abs(denom) < alignedTolerance {
		return mgl64.Vec3{}, false
	}

	direction := interpolatedForward.Sub(interpolatedUp.Mul(interpolatedForward.Dot(newUp) / denom))
	direction = next.ProjectDirection(direction)
	if direction.Len() < DegenerateEpsilon {
		return mgl64.Vec3{}, false
	}

	return direction.Normalize().Mul(old.Len()), true
}

// ReconcileAbrupt carries velocity from one triangle to the next by rigid
// rotation and snaps frame's up onto the new face normal.
func ReconcileAbrupt(frame Frame, from, to *Triangle, velocity mgl64.Vec3) mgl64.Vec3 {
	velocity = RotateToNewPlane(from.FaceNormal(), to.FaceNormal(), velocity)
	velocity = to.ProjectDirection(velocity)
	frame.RotateTowardUp(to.FaceNormal(), 0)

	return velocity
}

// ReconcileSmooth carries velocity onto to while keeping the angle between the
// frame's forward and the velocity. The new forward comes from the interpolated
// vertex normals at position, falling back to the rigid rotation when that
// construction degenerates (e.g. flat-shaded right-angle creases).
func ReconcileSmooth(frame Frame, from, to *Triangle, position, velocity mgl64.Vec3) mgl64.Vec3 {
	forward := frame.Forward()
	angle := SignedAngle(forward, velocity, frame.Up())

	newForward, ok := SmoothedVector(to, position, forward)
	if !ok {
		newForward = to.ProjectDirection(RotateToNewPlane(from.FaceNormal(), to.FaceNormal(), forward))
	}
	if newForward.Len() < DegenerateEpsilon {
		newForward, _ = TangentBasis(to.FaceNormal())
	}

	frame.LookAt(newForward.Normalize(), to.FaceNormal())

	speed := velocity.Len()
	if speed < DegenerateEpsilon {
		return mgl64.Vec3{}
	}

	newVelocity := mgl64.QuatRotate(angle, to.FaceNormal()).Rotate(frame.Forward())
	newVelocity = safeNormalize(newVelocity).Mul(speed)

	return to.ProjectDirection(newVelocity)
}

// TangentBasis returns two unit vectors spanning the plane orthogonal to normal.
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var tangent1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	} else {
		tangent1 = mgl64.Vec3{1, 0, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}

func projectOnPlane(v, normal mgl64.Vec3) mgl64.Vec3 {
	sqrLen := normal.Dot(normal)
	if sqrLen < DegenerateEpsilon {
		return v
	}
	return v.Sub(normal.Mul(v.Dot(normal) / sqrLen))
}
