package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Local axes of a transform: +X right, +Y up, +Z forward.
var (
	AxisRight   = mgl64.Vec3{1, 0, 0}
	AxisUp      = mgl64.Vec3{0, 1, 0}
	AxisForward = mgl64.Vec3{0, 0, 1}
)

const alignEpsilon = 1e-12

// Transform represents a position and orientation in 3D space
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position:        mgl64.Vec3{0, 0, 0},
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

func (t *Transform) GetPosition() mgl64.Vec3 {
	return t.Position
}

func (t *Transform) SetPosition(position mgl64.Vec3) {
	t.Position = position
}

func (t *Transform) GetRotation() mgl64.Quat {
	return t.Rotation
}

// SetRotation stores a normalized rotation and refreshes its inverse
func (t *Transform) SetRotation(rotation mgl64.Quat) {
	t.Rotation = rotation.Normalize()
	t.InverseRotation = t.Rotation.Inverse()
}

func (t *Transform) Up() mgl64.Vec3 {
	return t.Rotation.Rotate(AxisUp)
}

func (t *Transform) Forward() mgl64.Vec3 {
	return t.Rotation.Rotate(AxisForward)
}

func (t *Transform) Right() mgl64.Vec3 {
	return t.Rotation.Rotate(AxisRight)
}

// TransformPoint maps a local point to world space
func (t *Transform) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(p).Add(t.Position)
}

// TransformDirection maps a local direction to world space (rotation only)
func (t *Transform) TransformDirection(d mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(d)
}

// Rotate applies a world-space rotation of angle radians about axis
func (t *Transform) Rotate(axis mgl64.Vec3, angle float64) {
	if axis.Len() < alignEpsilon || angle == 0 {
		return
	}
	t.SetRotation(mgl64.QuatRotate(angle, axis.Normalize()).Mul(t.Rotation))
}

// LookAt orients the transform so Forward() == forward and Up() is as close as
// possible to up. When forward and up are parallel the current right axis is kept.
func (t *Transform) LookAt(forward, up mgl64.Vec3) {
	if forward.Len() < alignEpsilon {
		return
	}
	f := forward.Normalize()

	right := up.Cross(f)
	if right.Len() < alignEpsilon {
		right = t.Right()
		right = right.Sub(f.Mul(right.Dot(f)))
		if right.Len() < alignEpsilon {
			right = f.Cross(AxisUp)
			if right.Len() < alignEpsilon {
				right = f.Cross(AxisForward)
			}
		}
	}
	right = right.Normalize()
	u := f.Cross(right)

	basis := mgl64.Mat3FromCols(right, u, f)
	t.SetRotation(mgl64.Mat4ToQuat(basis.Mat4()))
}

// RotateTowardUp applies the minimal rotation bringing Up() onto target, capped at
// maxStep radians when maxStep > 0. Opposite vectors rotate about forward × target.
func (t *Transform) RotateTowardUp(target mgl64.Vec3, maxStep float64) {
	if target.Len() < alignEpsilon {
		return
	}
	target = target.Normalize()

	up := t.Up()
	dot := mgl64.Clamp(up.Dot(target), -1, 1)
	if dot >= 1-alignEpsilon {
		return
	}

	var axis mgl64.Vec3
	if dot <= -1+alignEpsilon {
		axis = t.Forward().Cross(target)
		if axis.Len() < alignEpsilon {
			axis = t.Right()
		}
	} else {
		axis = up.Cross(target)
	}

	angle := math.Acos(dot)
	if maxStep > 0 && angle > maxStep {
		angle = maxStep
	}

	t.Rotate(axis, angle)
}
