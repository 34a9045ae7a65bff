// Package collider is an in-memory triangle collision world: meshes placed in
// world space by colliders, a uniform hash grid for the broad phase and
// single-sided ray/triangle tests for the narrow phase. World implements
// surface.Query.
package collider

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is an indexed triangle list in local space. Normals, when present, hold
// one unit normal per position.
type Mesh struct {
	Name      string
	Positions []mgl64.Vec3
	Normals   []mgl64.Vec3
	Indices   []int
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the position indices of triangle i.
func (m *Mesh) Triangle(i int) [3]int {
	return [3]int{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
}

// HasNormals reports whether every position carries a normal.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) == len(m.Positions) && len(m.Positions) > 0
}

// Validate checks the index buffer against the vertex buffers.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh %q: %d indices is not a multiple of 3", m.Name, len(m.Indices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("mesh %q: %d normals for %d positions", m.Name, len(m.Normals), len(m.Positions))
	}
	for i, idx := range m.Indices {
		if idx < 0 || idx >= len(m.Positions) {
			return fmt.Errorf("mesh %q: index %d at %d out of range: %w", m.Name, idx, i, ErrTriangleIndex)
		}
	}
	return nil
}

// FaceNormal returns the unit normal of triangle i from its counter-clockwise
// winding, or the zero vector for a degenerate triangle.
func (m *Mesh) FaceNormal(i int) mgl64.Vec3 {
	t := m.Triangle(i)
	return windingNormal(m.Positions[t[0]], m.Positions[t[1]], m.Positions[t[2]])
}

// CalculateSmoothNormals computes area-weighted averaged normals for shared vertices.
func (m *Mesh) CalculateSmoothNormals() {
	m.Normals = make([]mgl64.Vec3, len(m.Positions))

	// Accumulate face normals per vertex
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		v0, v1, v2 := m.Positions[t[0]], m.Positions[t[1]], m.Positions[t[2]]
		normal := v1.Sub(v0).Cross(v2.Sub(v0)) // Don't normalize yet

		for _, idx := range t {
			m.Normals[idx] = m.Normals[idx].Add(normal)
		}
	}

	for i, n := range m.Normals {
		if n.Len() > 0 {
			m.Normals[i] = n.Normalize()
		}
	}
}

// Flatten returns a copy where no vertex is shared and every vertex normal is its
// face normal, so crossings between faces see the flat shading.
func (m *Mesh) Flatten() *Mesh {
	flat := &Mesh{
		Name:      m.Name,
		Positions: make([]mgl64.Vec3, 0, len(m.Indices)),
		Normals:   make([]mgl64.Vec3, 0, len(m.Indices)),
		Indices:   make([]int, 0, len(m.Indices)),
	}

	for i := 0; i < m.TriangleCount(); i++ {
		normal := m.FaceNormal(i)
		for _, idx := range m.Triangle(i) {
			flat.Indices = append(flat.Indices, len(flat.Positions))
			flat.Positions = append(flat.Positions, m.Positions[idx])
			flat.Normals = append(flat.Normals, normal)
		}
	}

	return flat
}

// Bounds returns the local-space bounding box.
func (m *Mesh) Bounds() AABB {
	return AABBFromPoints(m.Positions...)
}

func windingNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() < 1e-12 {
		return mgl64.Vec3{}
	}
	return n.Normalize()
}
