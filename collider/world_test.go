package collider

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/akmonengine/sticky/actor"
	"github.com/akmonengine/sticky/surface"
	"github.com/go-gl/mathgl/mgl64"
)

func newTestWorld(t *testing.T) (*World, *MeshCollider) {
	t.Helper()

	world := NewWorld(1.0, 256, nil)
	floor, err := NewMeshCollider(7, NewPlaneMesh(10, 10, 2), actor.NewTransform())
	if err != nil {
		t.Fatalf("NewMeshCollider() = %v", err)
	}
	world.Add(floor)

	return world, floor
}

func TestWorldRaycast(t *testing.T) {
	world, floor := newTestWorld(t)

	tests := []struct {
		name        string
		origin      mgl64.Vec3
		direction   mgl64.Vec3
		maxDistance float64
		wantHit     bool
		wantPoint   mgl64.Vec3
	}{
		{"straight down", mgl64.Vec3{1, 2, 1}, mgl64.Vec3{0, -1, 0}, 5, true, mgl64.Vec3{1, 0, 1}},
		{"unnormalized direction", mgl64.Vec3{1, 2, 1}, mgl64.Vec3{0, -4, 0}, 5, true, mgl64.Vec3{1, 0, 1}},
		{"exactly at max distance", mgl64.Vec3{1, 2, 1}, mgl64.Vec3{0, -1, 0}, 2, true, mgl64.Vec3{1, 0, 1}},
		{"too short", mgl64.Vec3{1, 2, 1}, mgl64.Vec3{0, -1, 0}, 1.9, false, mgl64.Vec3{}},
		{"from below", mgl64.Vec3{1, -2, 1}, mgl64.Vec3{0, 1, 0}, 5, false, mgl64.Vec3{}},
		{"off the mesh", mgl64.Vec3{6, 2, 1}, mgl64.Vec3{0, -1, 0}, 5, false, mgl64.Vec3{}},
		{"unbounded", mgl64.Vec3{-3, 100, 2}, mgl64.Vec3{0, -1, 0}, math.Inf(1), true, mgl64.Vec3{-3, 0, 2}},
		{"long ray", mgl64.Vec3{-3, 10000, 2}, mgl64.Vec3{0, -1, 0}, 20000, true, mgl64.Vec3{-3, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := world.Raycast(tt.origin, tt.direction, tt.maxDistance, surface.AllLayers)
			if ok != tt.wantHit {
				t.Fatalf("Raycast() hit = %v, want %v", ok, tt.wantHit)
			}
			if !ok {
				return
			}
			if !vec3AlmostEqual(hit.Point, tt.wantPoint, 1e-9) {
				t.Errorf("Point = %v, want %v", hit.Point, tt.wantPoint)
			}
			if !vec3AlmostEqual(hit.Normal, mgl64.Vec3{0, 1, 0}, 1e-9) {
				t.Errorf("Normal = %v, want {0 1 0}", hit.Normal)
			}
			if hit.Collider != floor.ID || hit.Owner != 7 {
				t.Errorf("hit identity = (%d, %d), want (%d, 7)", hit.Collider, hit.Owner, floor.ID)
			}
			if !almostEqual(hit.Distance, tt.origin.Sub(tt.wantPoint).Len(), 1e-9) {
				t.Errorf("Distance = %v", hit.Distance)
			}
		})
	}
}

func TestWorldRaycast_Nearest(t *testing.T) {
	world, _ := newTestWorld(t)

	upper, err := NewMeshCollider(8, NewPlaneMesh(2, 2, 1), actor.Transform{Position: mgl64.Vec3{0, 1, 0}})
	if err != nil {
		t.Fatalf("NewMeshCollider() = %v", err)
	}
	world.Add(upper)

	hit, ok := world.Raycast(mgl64.Vec3{0.5, 3, 0.5}, mgl64.Vec3{0, -1, 0}, 10, surface.AllLayers)
	if !ok || hit.Owner != 8 || !almostEqual(hit.Point.Y(), 1, 1e-9) {
		t.Errorf("Raycast() = %+v, %v; want the upper plane", hit, ok)
	}
}

func TestWorldRaycast_LayerMask(t *testing.T) {
	world, floor := newTestWorld(t)
	floor.Layer = 3

	if _, ok := world.Raycast(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -1, 0}, 2, surface.LayerMask(1)); ok {
		t.Error("layer 3 should be filtered out by mask 1")
	}
	if _, ok := world.Raycast(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -1, 0}, 2, surface.LayerMask(1<<3)); !ok {
		t.Error("layer 3 should be hit by mask 1<<3")
	}
}

func TestWorldTriangleGeometry(t *testing.T) {
	world, floor := newTestWorld(t)

	geometry, err := world.TriangleGeometry(floor.ID, 0)
	if err != nil {
		t.Fatalf("TriangleGeometry() = %v", err)
	}
	for i := 0; i < 3; i++ {
		if !almostEqual(geometry.Positions[i].Y(), 0, 1e-12) {
			t.Errorf("vertex %d = %v, want y = 0", i, geometry.Positions[i])
		}
		if !vec3AlmostEqual(geometry.Normals[i], mgl64.Vec3{0, 1, 0}, 1e-12) {
			t.Errorf("normal %d = %v, want {0 1 0}", i, geometry.Normals[i])
		}
	}

	if _, err := world.TriangleGeometry(floor.ID, 99); !errors.Is(err, ErrTriangleIndex) {
		t.Errorf("TriangleGeometry(99) error = %v, want ErrTriangleIndex", err)
	}
	if _, err := world.TriangleGeometry(floor.ID+100, 0); !errors.Is(err, ErrUnknownCollider) {
		t.Errorf("TriangleGeometry(unknown) error = %v, want ErrUnknownCollider", err)
	}
}

func TestWorldRebuildAfterMove(t *testing.T) {
	world, floor := newTestWorld(t)

	floor.Transform.SetPosition(mgl64.Vec3{0, -1, 0})
	floor.Transform.SetRotation(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0}))
	world.Rebuild()

	// the plane now faces +Z
	hit, ok := world.Raycast(mgl64.Vec3{1, -2, 5}, mgl64.Vec3{0, 0, -1}, 10, surface.AllLayers)
	if !ok {
		t.Fatal("rotated plane should be hit along -Z")
	}
	if !vec3AlmostEqual(hit.Point, mgl64.Vec3{1, -2, 0}, 1e-9) {
		t.Errorf("Point = %v, want {1 -2 0}", hit.Point)
	}
	if !vec3AlmostEqual(hit.Normal, mgl64.Vec3{0, 0, 1}, 1e-9) {
		t.Errorf("Normal = %v, want {0 0 1}", hit.Normal)
	}

	geometry, err := world.TriangleGeometry(hit.Collider, hit.TriangleIndex)
	if err != nil {
		t.Fatalf("TriangleGeometry() = %v", err)
	}
	if !vec3AlmostEqual(geometry.Normals[0], mgl64.Vec3{0, 0, 1}, 1e-9) {
		t.Errorf("baked vertex normal = %v, want {0 0 1}", geometry.Normals[0])
	}
}

func TestWorldScaledColliderNormals(t *testing.T) {
	world := NewWorld(1.0, 256, nil)

	// a 45° ramp rising along +X
	ramp := &Mesh{
		Positions: []mgl64.Vec3{{0, 0, -1}, {0, 0, 1}, {1, 1, -1}, {1, 1, 1}},
		Indices:   []int{0, 1, 2, 2, 1, 3},
	}
	c, err := NewMeshCollider(1, ramp, actor.NewTransform())
	if err != nil {
		t.Fatalf("NewMeshCollider() = %v", err)
	}
	c.Scale = mgl64.Vec3{2, 1, 1}
	world.Add(c)

	geometry, err := world.TriangleGeometry(c.ID, 0)
	if err != nil {
		t.Fatalf("TriangleGeometry() = %v", err)
	}

	// stretching X by 2 halves the slope; the normal must stay perpendicular
	want := mgl64.Vec3{-1, 2, 0}.Normalize()
	if !vec3AlmostEqual(geometry.Normals[0], want, 1e-9) {
		t.Errorf("normal = %v, want %v", geometry.Normals[0], want)
	}
	if !vec3AlmostEqual(c.FaceNormal(0), want, 1e-9) {
		t.Errorf("face normal = %v, want %v", c.FaceNormal(0), want)
	}
}

func TestWorldRemove(t *testing.T) {
	world, floor := newTestWorld(t)

	if !world.Remove(floor.ID) {
		t.Fatal("Remove() = false")
	}
	if world.Remove(floor.ID) {
		t.Error("second Remove() should report false")
	}
	if world.TriangleCount() != 0 {
		t.Errorf("TriangleCount() = %d, want 0", world.TriangleCount())
	}
	if _, ok := world.Raycast(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -1, 0}, 2, surface.AllLayers); ok {
		t.Error("removed collider should not be hit")
	}
}

func TestWorldRaycast_Concurrent(t *testing.T) {
	world, _ := newTestWorld(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				x := float64(i) - 4 + 0.1
				if _, ok := world.Raycast(mgl64.Vec3{x, 1, 0.3}, mgl64.Vec3{0, -1, 0}, 2, surface.AllLayers); !ok {
					t.Errorf("ray at x=%v missed", x)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

// Helper function to compare floats with epsilon tolerance
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}
