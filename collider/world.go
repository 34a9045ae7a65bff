package collider

import (
	"fmt"
	"math"
	"sync"

	"github.com/akmonengine/sticky/surface"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const (
	DEFAULT_CELL_SIZE = 2.0
	DEFAULT_NUM_CELLS = 4096

	// gridMargin keeps points lying on a cell border in both neighbor cells
	gridMargin = 1e-6
)

// triangleRef locates one indexed triangle
type triangleRef struct {
	collider *MeshCollider
	index    int
}

// World is a static collision world of mesh colliders. Raycast and
// TriangleGeometry may run concurrently; Add, Remove and Rebuild take the
// write lock.
type World struct {
	mu sync.RWMutex

	colliders []*MeshCollider
	byID      map[surface.ColliderID]*MeshCollider
	triangles []triangleRef
	grid      *Grid
	nextID    surface.ColliderID

	logger *zap.Logger
}

// NewWorld creates an empty world; cellSize and numCells size the broad phase
// grid and fall back to the defaults when <= 0.
func NewWorld(cellSize float64, numCells int, logger *zap.Logger) *World {
	if cellSize <= 0 {
		cellSize = DEFAULT_CELL_SIZE
	}
	if numCells <= 0 {
		numCells = DEFAULT_NUM_CELLS
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &World{
		byID:   make(map[surface.ColliderID]*MeshCollider),
		grid:   NewGrid(cellSize, numCells),
		nextID: 1,
		logger: logger,
	}
}

// Add assigns an id to the collider, bakes it and indexes its triangles
func (w *World) Add(c *MeshCollider) surface.ColliderID {
	w.mu.Lock()
	defer w.mu.Unlock()

	c.ID = w.nextID
	w.nextID++

	c.Bake()
	w.colliders = append(w.colliders, c)
	w.byID[c.ID] = c
	w.index(c)

	w.logger.Debug("collider added",
		zap.Uint32("collider", uint32(c.ID)),
		zap.Uint64("owner", uint64(c.Owner)),
		zap.String("mesh", c.Mesh.Name),
		zap.Int("triangles", c.TriangleCount()),
	)

	return c.ID
}

// Remove drops a collider and reindexes the remaining ones
func (w *World) Remove(id surface.ColliderID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	k := -1
	for i, c := range w.colliders {
		if c.ID == id {
			k = i
			break
		}
	}
	if k == -1 {
		return false
	}

	w.colliders = append(w.colliders[:k], w.colliders[k+1:]...)
	delete(w.byID, id)
	w.reindex()

	return true
}

// Rebuild rebakes every collider and reindexes the grid. Triangles snapshotted
// before the call keep their old world-space geometry.
func (w *World) Rebuild() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, c := range w.colliders {
		c.Bake()
	}
	w.reindex()
}

// Collider returns the collider registered under id
func (w *World) Collider(id surface.ColliderID) (*MeshCollider, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	c, ok := w.byID[id]
	return c, ok
}

// TriangleCount returns the number of indexed triangles
func (w *World) TriangleCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.triangles)
}

// Bounds returns the box containing every collider
func (w *World) Bounds() AABB {
	w.mu.RLock()
	defer w.mu.RUnlock()

	bounds := EmptyAABB()
	for _, c := range w.colliders {
		bounds = bounds.Union(c.Bounds())
	}
	return bounds
}

// Raycast returns the nearest front-face hit within maxDistance on a collider
// whose layer is in mask. The boundary distance itself counts as a hit.
func (w *World) Raycast(origin, direction mgl64.Vec3, maxDistance float64, mask surface.LayerMask) (surface.Hit, bool) {
	if maxDistance < 0 || direction.Len() < rayEpsilon {
		return surface.Hit{}, false
	}
	direction = direction.Normalize()

	w.mu.RLock()
	defer w.mu.RUnlock()

	best := surface.Hit{Distance: maxDistance}
	found := false

	test := func(ref triangleRef) {
		if !mask.Has(ref.collider.Layer) {
			return
		}
		if hit, ok := ref.collider.raycastTriangle(ref.index, origin, direction, best.Distance); ok {
			if !found || hit.Distance < best.Distance {
				best = hit
				found = true
			}
		}
	}

	if !math.IsInf(maxDistance, 0) {
		segment := AABBFromPoints(origin, origin.Add(direction.Mul(maxDistance))).Expand(gridMargin)
		if w.grid.Query(segment, len(w.triangles), func(triangle int) { test(w.triangles[triangle]) }) {
			return best, found
		}
	}

	// long rays: cull whole colliders by their bounds
	for _, c := range w.colliders {
		if !mask.Has(c.Layer) || !c.Bounds().IntersectRay(origin, direction, best.Distance) {
			continue
		}
		if hit, ok := c.raycast(origin, direction, best.Distance); ok {
			best = hit
			found = true
		}
	}

	return best, found
}

// TriangleGeometry returns the world-space positions and vertex normals of a
// triangle
func (w *World) TriangleGeometry(id surface.ColliderID, index int) (surface.Geometry, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	c, ok := w.byID[id]
	if !ok {
		return surface.Geometry{}, fmt.Errorf("collider %d: %w", id, ErrUnknownCollider)
	}

	return c.Geometry(index)
}

func (w *World) reindex() {
	w.grid.Clear()
	w.triangles = w.triangles[:0]
	for _, c := range w.colliders {
		w.index(c)
	}
}

func (w *World) index(c *MeshCollider) {
	for i := 0; i < c.TriangleCount(); i++ {
		w.grid.Insert(len(w.triangles), c.triangleBounds(i).Expand(gridMargin))
		w.triangles = append(w.triangles, triangleRef{collider: c, index: i})
	}
}
