package collider

import (
	"errors"
	"fmt"

	"github.com/akmonengine/sticky/actor"
	"github.com/akmonengine/sticky/surface"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrUnknownCollider is returned for a collider id the world does not hold.
	ErrUnknownCollider = errors.New("collider: unknown collider")
	// ErrTriangleIndex is returned for a triangle index outside a mesh.
	ErrTriangleIndex = errors.New("collider: triangle index out of range")
)

// MeshCollider places a mesh in the world. Positions and normals are baked to
// world space by Bake; call it (or World.Rebuild) after moving the collider.
type MeshCollider struct {
	ID        surface.ColliderID
	Owner     surface.OwnerID
	Layer     uint8
	Transform actor.Transform
	Scale     mgl64.Vec3
	Mesh      *Mesh

	positions []mgl64.Vec3
	normals   []mgl64.Vec3
	faces     []mgl64.Vec3
	bounds    AABB
}

// NewMeshCollider creates a collider on layer 0 with unit scale and bakes it
func NewMeshCollider(owner surface.OwnerID, mesh *Mesh, transform actor.Transform) (*MeshCollider, error) {
	if mesh == nil {
		return nil, fmt.Errorf("collider for owner %d: nil mesh", owner)
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	if transform.Rotation == (mgl64.Quat{}) {
		transform.Rotation = mgl64.QuatIdent()
	}
	transform.SetRotation(transform.Rotation)

	c := &MeshCollider{
		Owner:     owner,
		Transform: transform,
		Scale:     mgl64.Vec3{1, 1, 1},
		Mesh:      mesh,
	}
	c.Bake()

	return c, nil
}

// Bake recomputes the world-space positions, normals and bounds. Normals go
// through the inverse scale so non-uniform scaling keeps them perpendicular.
func (c *MeshCollider) Bake() {
	scale := c.Scale
	for i := 0; i < 3; i++ {
		if scale[i] == 0 {
			scale[i] = 1
		}
	}

	c.positions = make([]mgl64.Vec3, len(c.Mesh.Positions))
	for i, p := range c.Mesh.Positions {
		c.positions[i] = c.Transform.TransformPoint(mgl64.Vec3{p.X() * scale.X(), p.Y() * scale.Y(), p.Z() * scale.Z()})
	}

	if !c.Mesh.HasNormals() {
		c.Mesh.CalculateSmoothNormals()
	}
	c.normals = make([]mgl64.Vec3, len(c.Mesh.Normals))
	for i, n := range c.Mesh.Normals {
		world := c.Transform.TransformDirection(mgl64.Vec3{n.X() / scale.X(), n.Y() / scale.Y(), n.Z() / scale.Z()})
		if world.Len() > 0 {
			world = world.Normalize()
		}
		c.normals[i] = world
	}

	c.faces = make([]mgl64.Vec3, c.Mesh.TriangleCount())
	for i := range c.faces {
		t := c.Mesh.Triangle(i)
		c.faces[i] = windingNormal(c.positions[t[0]], c.positions[t[1]], c.positions[t[2]])
	}

	c.bounds = AABBFromPoints(c.positions...)
}

// Bounds returns the world-space bounding box from the last Bake
func (c *MeshCollider) Bounds() AABB {
	return c.bounds
}

func (c *MeshCollider) TriangleCount() int {
	return len(c.faces)
}

// Geometry returns the world-space data of triangle index
func (c *MeshCollider) Geometry(index int) (surface.Geometry, error) {
	if index < 0 || index >= len(c.faces) {
		return surface.Geometry{}, fmt.Errorf("collider %d: triangle %d of %d: %w", c.ID, index, len(c.faces), ErrTriangleIndex)
	}

	t := c.Mesh.Triangle(index)
	var g surface.Geometry
	for k, idx := range t {
		g.Positions[k] = c.positions[idx]
		g.Normals[k] = c.normals[idx]
	}

	return g, nil
}

// FaceNormal returns the world-space winding normal of triangle index
func (c *MeshCollider) FaceNormal(index int) mgl64.Vec3 {
	return c.faces[index]
}

func (c *MeshCollider) triangleBounds(index int) AABB {
	t := c.Mesh.Triangle(index)
	return AABBFromPoints(c.positions[t[0]], c.positions[t[1]], c.positions[t[2]])
}

// raycast tests every triangle of the collider and returns the nearest hit
func (c *MeshCollider) raycast(origin, direction mgl64.Vec3, maxDistance float64) (surface.Hit, bool) {
	best := surface.Hit{Distance: maxDistance}
	found := false

	for i := range c.faces {
		if hit, ok := c.raycastTriangle(i, origin, direction, best.Distance); ok {
			best = hit
			found = true
		}
	}

	return best, found
}

func (c *MeshCollider) raycastTriangle(index int, origin, direction mgl64.Vec3, maxDistance float64) (surface.Hit, bool) {
	t := c.Mesh.Triangle(index)
	distance, ok := IntersectTriangle(origin, direction, c.positions[t[0]], c.positions[t[1]], c.positions[t[2]])
	if !ok || distance > maxDistance {
		return surface.Hit{}, false
	}

	return surface.Hit{
		Point:         origin.Add(direction.Mul(distance)),
		Normal:        c.faces[index],
		Distance:      distance,
		Owner:         c.Owner,
		Collider:      c.ID,
		TriangleIndex: index,
	}, true
}
