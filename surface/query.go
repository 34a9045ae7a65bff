package surface

import "github.com/go-gl/mathgl/mgl64"

// LayerMask filters colliders by layer; bit i enables layer i.
type LayerMask uint32

// AllLayers matches every collider.
const AllLayers LayerMask = ^LayerMask(0)

// Has reports whether layer is enabled in the mask.
func (m LayerMask) Has(layer uint8) bool {
	return layer < 32 && m&(1<<layer) != 0
}

// Hit is the result of a successful raycast.
type Hit struct {
	Point         mgl64.Vec3
	Normal        mgl64.Vec3
	Distance      float64
	Owner         OwnerID
	Collider      ColliderID
	TriangleIndex int
}

// Query is the read-only view of the collision world needed to track a surface.
// Implementations must be safe for concurrent use.
type Query interface {
	// Raycast returns the nearest hit within maxDistance along direction.
	// direction does not need to be normalized.
	Raycast(origin, direction mgl64.Vec3, maxDistance float64, mask LayerMask) (Hit, bool)
	// TriangleGeometry returns the world-space positions and normals of a triangle.
	TriangleGeometry(collider ColliderID, index int) (Geometry, error)
}
