package surface

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// testFrame is a bare up/forward pair
type testFrame struct {
	up, forward mgl64.Vec3
}

func (f *testFrame) Up() mgl64.Vec3      { return f.up }
func (f *testFrame) Forward() mgl64.Vec3 { return f.forward }

func (f *testFrame) LookAt(forward, up mgl64.Vec3) {
	f.forward = forward.Normalize()
	f.up = up.Sub(f.forward.Mul(up.Dot(f.forward))).Normalize()
}

func (f *testFrame) RotateTowardUp(target mgl64.Vec3, _ float64) {
	q := mgl64.QuatBetweenVectors(f.up, target.Normalize())
	f.up = q.Rotate(f.up)
	f.forward = q.Rotate(f.forward)
}

func flatTriangle(a, b, c mgl64.Vec3) *Triangle {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return NewTriangle([3]mgl64.Vec3{a, b, c}, [3]mgl64.Vec3{n, n, n}, n)
}

var (
	edgeA = mgl64.Vec3{0, 0, -2}
	edgeB = mgl64.Vec3{0, 0, 2}

	floorTriangle = flatTriangle(edgeA, mgl64.Vec3{-4, 0, 0}, edgeB) // +y
	sideTriangle  = flatTriangle(edgeA, edgeB, mgl64.Vec3{0, -4, 0}) // +x
	wallTriangle  = flatTriangle(edgeA, edgeB, mgl64.Vec3{0, 4, 0})  // -x
)

func TestRotateToNewPlane(t *testing.T) {
	x, y := mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}

	tests := []struct {
		name      string
		oldNormal mgl64.Vec3
		newNormal mgl64.Vec3
		v         mgl64.Vec3
		want      mgl64.Vec3
	}{
		{"same plane", y, y, mgl64.Vec3{1, 0, 2}, mgl64.Vec3{1, 0, 2}},
		{"convex 90°", y, x, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, -2, 0}},
		{"concave 90°", y, x.Mul(-1), mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 2, 0}},
		{"parallel to the edge", y, x, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, 1}},
		{"antiparallel folds", y, y.Mul(-1), mgl64.Vec3{1, 0, 0}, mgl64.Vec3{-1, 0, 0}},
		{"antiparallel along normal", y, y.Mul(-1), y, y},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RotateToNewPlane(tt.oldNormal, tt.newNormal, tt.v)
			if !vec3AlmostEqual(got, tt.want, 1e-12) {
				t.Errorf("RotateToNewPlane() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignedAngle(t *testing.T) {
	x, y, z := mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}

	tests := []struct {
		name string
		a, b mgl64.Vec3
		axis mgl64.Vec3
		want float64
	}{
		{"same", x, x, y, 0},
		{"quarter counter-clockwise", z, x, y, math.Pi / 2},
		{"quarter clockwise", x, z, y, -math.Pi / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignedAngle(tt.a, tt.b, tt.axis); !almostEqual(got, tt.want, 1e-12) {
				t.Errorf("SignedAngle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTangentBasis(t *testing.T) {
	for _, n := range []mgl64.Vec3{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}, mgl64.Vec3{1, 2, 3}.Normalize()} {
		t1, t2 := TangentBasis(n)

		if !almostEqual(t1.Len(), 1, 1e-12) || !almostEqual(t2.Len(), 1, 1e-12) {
			t.Errorf("normal %v: tangents %v %v should be unit", n, t1, t2)
		}
		if !almostEqual(t1.Dot(n), 0, 1e-12) || !almostEqual(t2.Dot(n), 0, 1e-12) || !almostEqual(t1.Dot(t2), 0, 1e-12) {
			t.Errorf("normal %v: basis %v %v is not orthogonal", n, t1, t2)
		}
	}
}

func TestSmoothedVector(t *testing.T) {
	tilted := mgl64.Vec3{1, 1, 0}.Normalize()
	curved := NewTriangle(
		[3]mgl64.Vec3{{0, 0, 0}, {0, 0, 2}, {2, 0, 0}},
		[3]mgl64.Vec3{tilted, tilted, tilted},
		mgl64.Vec3{0, 1, 0},
	)

	got, ok := SmoothedVector(curved, mgl64.Vec3{0.5, 0, 0.5}, mgl64.Vec3{3, 0, 0})
	if !ok {
		t.Fatal("SmoothedVector() should succeed")
	}
	if !vec3AlmostEqual(got, mgl64.Vec3{3, 0, 0}, 1e-12) {
		t.Errorf("SmoothedVector() = %v, want {3 0 0}", got)
	}

	x := mgl64.Vec3{1, 0, 0}
	inPlane := NewTriangle(curved.Vertices(), [3]mgl64.Vec3{x, x, x}, mgl64.Vec3{0, 1, 0})
	if _, ok := SmoothedVector(inPlane, mgl64.Vec3{0.5, 0, 0.5}, mgl64.Vec3{0, 0, 1}); ok {
		t.Error("interpolated normal lying in the plane should degenerate")
	}
}

func TestReconcileAbrupt(t *testing.T) {
	frame := &testFrame{up: mgl64.Vec3{0, 1, 0}, forward: mgl64.Vec3{0, 0, 1}}

	velocity := ReconcileAbrupt(frame, floorTriangle, wallTriangle, mgl64.Vec3{2, 0, 0})

	if !vec3AlmostEqual(velocity, mgl64.Vec3{0, 2, 0}, 1e-12) {
		t.Errorf("velocity = %v, want {0 2 0}", velocity)
	}
	if !vec3AlmostEqual(frame.Up(), mgl64.Vec3{-1, 0, 0}, 1e-9) {
		t.Errorf("Up() = %v, want {-1 0 0}", frame.Up())
	}
}

func TestReconcileSmooth(t *testing.T) {
	frame := &testFrame{up: mgl64.Vec3{0, 1, 0}, forward: mgl64.Vec3{0, 0, 1}}

	velocity := ReconcileSmooth(frame, floorTriangle, sideTriangle, mgl64.Vec3{0, -0.05, 0}, mgl64.Vec3{2, 0, 0})

	// velocity kept its quarter turn from forward, now measured about +x
	if !vec3AlmostEqual(velocity, mgl64.Vec3{0, -2, 0}, 1e-9) {
		t.Errorf("velocity = %v, want {0 -2 0}", velocity)
	}
	if !vec3AlmostEqual(frame.Up(), mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("Up() = %v, want {1 0 0}", frame.Up())
	}
	if !vec3AlmostEqual(frame.Forward(), mgl64.Vec3{0, 0, 1}, 1e-9) {
		t.Errorf("Forward() = %v, want {0 0 1}", frame.Forward())
	}

	still := ReconcileSmooth(frame, sideTriangle, floorTriangle, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{})
	if still != (mgl64.Vec3{}) {
		t.Errorf("zero velocity should stay zero, got %v", still)
	}
}

func TestMode_String(t *testing.T) {
	if Abrupt.String() != "abrupt" || Smooth.String() != "smooth" {
		t.Errorf("Mode strings = %q %q", Abrupt.String(), Smooth.String())
	}
}
