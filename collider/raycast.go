package collider

import "github.com/go-gl/mathgl/mgl64"

// rayEpsilon rejects rays parallel to a triangle and hits behind the origin.
const rayEpsilon = 1e-12

// IntersectTriangle runs the Möller–Trumbore test of the ray origin + t*direction
// against triangle (a, b, c) and returns t. Only the front face, the side the
// counter-clockwise winding normal points to, can be hit.
func IntersectTriangle(origin, direction, a, b, c mgl64.Vec3) (float64, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := direction.Cross(e2)
	det := e1.Dot(p)

	// det <= 0 is a back face or a ray parallel to the plane
	if det < rayEpsilon {
		return 0, false
	}
	invDet := 1.0 / det

	s := origin.Sub(a)
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := direction.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := e2.Dot(q) * invDet
	if t < 0 {
		return 0, false
	}

	return t, true
}
