package collider

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// maxQueryCells bounds how many cells a single query walks; longer rays fall
// back to testing every collider's bounds.
const maxQueryCells = 4096

// CellKey - coordinates of a cell in 3D space
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the triangles overlapping it
type Cell struct {
	triangles []int
}

// Grid is a uniform spatial grid hashed into a fixed number of buckets.
// Several cells may share a bucket; queries dedupe and the narrow phase
// discards the strays.
type Grid struct {
	cellSize float64
	cells    []Cell
	cellMask int

	scratch sync.Pool
}

// candidates is the per-query dedupe scratch
type candidates struct {
	seen    []bool
	touched []int
}

// NewGrid creates a grid of cellSize cells hashed into numCells buckets,
// rounded up to a power of two
func NewGrid(cellSize float64, numCells int) *Grid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].triangles = make([]int, 0, 8)
	}

	return &Grid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
		scratch: sync.Pool{
			New: func() any { return &candidates{} },
		},
	}
}

// nextPowerOfTwo rounds up to the next power of two
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert adds a triangle to every cell its bounds overlap
func (g *Grid) Insert(triangle int, bounds AABB) {
	minCell := g.worldToCell(bounds.Min)
	maxCell := g.worldToCell(bounds.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := g.hashCell(CellKey{x, y, z})
				g.cells[cellIdx].triangles = append(g.cells[cellIdx].triangles, triangle)
			}
		}
	}
}

func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i].triangles = g.cells[i].triangles[:0]
	}
}

// CellCount returns how many cells bounds spans, saturating at maxQueryCells+1
func (g *Grid) CellCount(bounds AABB) int {
	count := 1
	for axis := 0; axis < 3; axis++ {
		span := math.Floor(bounds.Max[axis]/g.cellSize) - math.Floor(bounds.Min[axis]/g.cellSize) + 1
		if math.IsNaN(span) || span > maxQueryCells {
			return maxQueryCells + 1
		}
		count *= int(span)
		if count > maxQueryCells {
			return maxQueryCells + 1
		}
	}
	return count
}

// Query calls fn once per triangle stored in the cells bounds overlaps.
// total is the number of indexed triangles. It returns false without calling fn
// when bounds spans more than maxQueryCells cells.
func (g *Grid) Query(bounds AABB, total int, fn func(triangle int)) bool {
	if bounds.IsEmpty() || g.CellCount(bounds) > maxQueryCells {
		return false
	}

	c := g.scratch.Get().(*candidates)
	if len(c.seen) < total {
		c.seen = make([]bool, total)
	}
	defer func() {
		for _, idx := range c.touched {
			c.seen[idx] = false
		}
		c.touched = c.touched[:0]
		g.scratch.Put(c)
	}()

	minCell := g.worldToCell(bounds.Min)
	maxCell := g.worldToCell(bounds.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				for _, idx := range g.cells[g.hashCell(CellKey{x, y, z})].triangles {
					if idx >= total || c.seen[idx] {
						continue
					}
					c.seen[idx] = true
					c.touched = append(c.touched, idx)
					fn(idx)
				}
			}
		}
	}

	return true
}

// worldToCell converts a world position to cell coordinates
func (g *Grid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / g.cellSize)),
		Y: int(math.Floor(pos.Y() / g.cellSize)),
		Z: int(math.Floor(pos.Z() / g.cellSize)),
	}
}

// hashCell hashes a cell to a bucket index
func (g *Grid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & g.cellMask
}
