// Package surface holds the geometry used to keep a body glued to a triangulated
// mesh: world-space triangle snapshots, the neighbor search run at triangle borders
// and the orientation updates applied on every crossing.
package surface

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DegenerateEpsilon is the smallest barycentric denominator (squared-area
	// measure) accepted before a triangle is considered degenerate.
	DegenerateEpsilon = 1e-12

	// boundaryEpsilon rejects edge walls that are parallel to the ray, and lets a
	// ray that starts a hair outside a wall still report that wall at t = 0.
	boundaryEpsilon = 1e-9
)

// ErrDegenerate is returned when a triangle has (near) zero area.
var ErrDegenerate = errors.New("surface: degenerate triangle")

// OwnerID identifies the scene object owning a collider.
type OwnerID uint64

// ColliderID identifies a collider inside a Query implementation.
type ColliderID uint32

// Geometry is the world-space data of one mesh triangle.
type Geometry struct {
	Positions [3]mgl64.Vec3
	Normals   [3]mgl64.Vec3
}

// Ray is a half-line; Direction does not need to be normalized.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Triangle is an immutable world-space snapshot of one mesh face.
// It never follows its owner: rebuild it whenever the owner moves.
type Triangle struct {
	Owner    OwnerID
	Collider ColliderID
	Index    int

	vertices   [3]mgl64.Vec3
	normals    [3]mgl64.Vec3
	faceNormal mgl64.Vec3
}

// NewTriangle builds a triangle from world-space data. The face normal is taken
// as given (normalized), not recomputed from the winding, so it matches the hit
// normals reported by the collision world.
func NewTriangle(vertices, normals [3]mgl64.Vec3, faceNormal mgl64.Vec3) *Triangle {
	return &Triangle{
		vertices:   vertices,
		normals:    normals,
		faceNormal: safeNormalize(faceNormal),
	}
}

// TriangleFromHit looks up the geometry of a raycast hit and snapshots it.
func TriangleFromHit(q Query, hit Hit) (*Triangle, error) {
	geometry, err := q.TriangleGeometry(hit.Collider, hit.TriangleIndex)
	if err != nil {
		return nil, fmt.Errorf("triangle %d of collider %d: %w", hit.TriangleIndex, hit.Collider, err)
	}

	t := NewTriangle(geometry.Positions, geometry.Normals, hit.Normal)
	t.Owner = hit.Owner
	t.Collider = hit.Collider
	t.Index = hit.TriangleIndex

	return t, nil
}

// FaceNormal returns the flat, unit face normal.
func (t *Triangle) FaceNormal() mgl64.Vec3 {
	return t.faceNormal
}

// Vertices returns the three world-space vertex positions.
func (t *Triangle) Vertices() [3]mgl64.Vec3 {
	return t.vertices
}

// VertexNormals returns the three world-space vertex normals.
func (t *Triangle) VertexNormals() [3]mgl64.Vec3 {
	return t.normals
}

// Centroid returns the average of the three vertices.
func (t *Triangle) Centroid() mgl64.Vec3 {
	return t.vertices[0].Add(t.vertices[1]).Add(t.vertices[2]).Mul(1.0 / 3.0)
}

// SameAs reports whether a hit landed on this very triangle.
func (t *Triangle) SameAs(hit Hit) bool {
	return t.Collider == hit.Collider && t.Owner == hit.Owner && t.Index == hit.TriangleIndex
}

// Barycentric returns the weights (u, v, w) of p against the three vertices.
// p is assumed to lie in the triangle's plane; the weights always sum to 1.
func (t *Triangle) Barycentric(p mgl64.Vec3) (mgl64.Vec3, error) {
	v0 := t.vertices[1].Sub(t.vertices[0])
	v1 := t.vertices[2].Sub(t.vertices[0])
	v2 := p.Sub(t.vertices[0])

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	if math.Abs(denom) < DegenerateEpsilon {
		return mgl64.Vec3{}, ErrDegenerate
	}

	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom

	return mgl64.Vec3{1.0 - v - w, v, w}, nil
}

// InterpolatedNormal blends the vertex normals by the barycentric weights of p.
// A degenerate triangle falls back to the normal of the nearest vertex.
func (t *Triangle) InterpolatedNormal(p mgl64.Vec3) mgl64.Vec3 {
	weights, err := t.Barycentric(p)
	if err != nil {
		return safeNormalize(t.normals[t.nearestVertex(p)])
	}

	n := t.normals[0].Mul(weights[0]).
		Add(t.normals[1].Mul(weights[1])).
		Add(t.normals[2].Mul(weights[2]))
	if n.Len() < DegenerateEpsilon {
		return t.faceNormal
	}

	return n.Normalize()
}

func (t *Triangle) nearestVertex(p mgl64.Vec3) int {
	best := 0
	bestDistance := math.MaxFloat64
	for i, v := range t.vertices {
		if d := v.Sub(p).LenSqr(); d < bestDistance {
			best = i
			bestDistance = d
		}
	}

	return best
}

// ProjectDirection removes the component of v along the face normal.
func (t *Triangle) ProjectDirection(v mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(t.faceNormal.Mul(v.Dot(t.faceNormal)))
}

// ProjectPoint moves p onto the triangle's plane.
func (t *Triangle) ProjectPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.ProjectDirection(p.Sub(t.vertices[0])).Add(t.vertices[0])
}

// IntersectBoundary casts r against the three edge walls (the planes through each
// edge spanned by the face normal) and returns the nearest crossing.
//
// Only walls the ray moves out through are considered, so a ray starting on an
// edge and heading inward reports the far side instead of its own origin. This is
// a line test, not a containment test: callers cast from inside or on the border.
func (t *Triangle) IntersectBoundary(r Ray) (mgl64.Vec3, bool) {
	if r.Direction.Len() < boundaryEpsilon {
		return mgl64.Vec3{}, false
	}

	found := false
	distance := math.Inf(1)

	for i := 0; i < 3; i++ {
		a := t.vertices[i]
		b := t.vertices[(i+1)%3]
		opposite := t.vertices[(i+2)%3]

		wall := b.Sub(a).Cross(t.faceNormal)
		if wall.Dot(opposite.Sub(a)) > 0 {
			wall = wall.Mul(-1)
		}

		denom := r.Direction.Dot(wall)
		if denom <= boundaryEpsilon*wall.Len() {
			continue
		}

		d := wall.Dot(a.Sub(r.Origin)) / denom
		if d < -boundaryEpsilon {
			continue
		}
		d = math.Max(d, 0)

		if d <= distance {
			found = true
			distance = d
		}
	}

	if !found {
		return mgl64.Vec3{}, false
	}

	return r.At(distance), true
}

// String formats the triangle for logs.
func (t *Triangle) String() string {
	return fmt.Sprintf("V0:%v V1:%v V2:%v N:%v", t.vertices[0], t.vertices[1], t.vertices[2], t.faceNormal)
}

func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() < DegenerateEpsilon {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}
