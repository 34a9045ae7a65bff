package collider

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NewPlaneMesh returns a flat width × depth grid on the XZ plane, centered on the
// origin and facing +Y. Each of the subdivisions² cells is split in two triangles.
func NewPlaneMesh(width, depth float64, subdivisions int) *Mesh {
	subdivisions = max(1, subdivisions)
	mesh := &Mesh{Name: "plane"}

	stepX := width / float64(subdivisions)
	stepZ := depth / float64(subdivisions)
	x0, z0 := -width/2, -depth/2

	for i := 0; i <= subdivisions; i++ {
		for j := 0; j <= subdivisions; j++ {
			mesh.Positions = append(mesh.Positions, mgl64.Vec3{x0 + float64(i)*stepX, 0, z0 + float64(j)*stepZ})
			mesh.Normals = append(mesh.Normals, mgl64.Vec3{0, 1, 0})
		}
	}

	row := subdivisions + 1
	for i := 0; i < subdivisions; i++ {
		for j := 0; j < subdivisions; j++ {
			a := i*row + j
			b := a + 1
			c := a + row
			d := c + 1
			mesh.Indices = append(mesh.Indices, a, b, c, c, b, d)
		}
	}

	return mesh
}

// boxFace is one side of a box: its outward normal and the two in-plane axes,
// ordered so u × v == normal.
type boxFace struct {
	normal, u, v mgl64.Vec3
}

var boxFaces = [6]boxFace{
	{mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}},
	{mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 1, 0}},
	{mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0}},
	{mgl64.Vec3{0, -1, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1}},
	{mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}},
	{mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}},
}

// NewBoxMesh returns a box centered on the origin with flat-shaded faces.
// Vertices are not shared between faces so every edge is a hard 90° crease.
func NewBoxMesh(halfExtents mgl64.Vec3) *Mesh {
	mesh := &Mesh{Name: "box"}

	scale := func(v mgl64.Vec3) mgl64.Vec3 {
		return mgl64.Vec3{v.X() * halfExtents.X(), v.Y() * halfExtents.Y(), v.Z() * halfExtents.Z()}
	}

	for _, face := range boxFaces {
		center := scale(face.normal)
		u, v := scale(face.u), scale(face.v)

		base := len(mesh.Positions)
		mesh.Positions = append(mesh.Positions,
			center.Sub(u).Sub(v),
			center.Add(u).Sub(v),
			center.Add(u).Add(v),
			center.Sub(u).Add(v),
		)
		for i := 0; i < 4; i++ {
			mesh.Normals = append(mesh.Normals, face.normal)
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}

	return mesh
}

// NewSphereMesh returns a UV sphere with smooth normals. rings counts latitude
// bands and segments longitude slices.
func NewSphereMesh(radius float64, rings, segments int) *Mesh {
	rings = max(2, rings)
	segments = max(3, segments)
	mesh := &Mesh{Name: "sphere"}

	for i := 0; i <= rings; i++ {
		theta := math.Pi * float64(i) / float64(rings)
		for j := 0; j <= segments; j++ {
			phi := 2 * math.Pi * float64(j) / float64(segments)
			normal := mgl64.Vec3{
				math.Sin(theta) * math.Cos(phi),
				math.Cos(theta),
				math.Sin(theta) * math.Sin(phi),
			}
			mesh.Positions = append(mesh.Positions, normal.Mul(radius))
			mesh.Normals = append(mesh.Normals, normal)
		}
	}

	row := segments + 1
	for i := 0; i < rings; i++ {
		for j := 0; j < segments; j++ {
			a := i*row + j
			b := a + row
			c := b + 1
			d := a + 1

			// the pole rows collapse one triangle of each quad
			if i != rings-1 {
				mesh.Indices = append(mesh.Indices, a, c, b)
			}
			if i != 0 {
				mesh.Indices = append(mesh.Indices, a, d, c)
			}
		}
	}

	return mesh
}
