package sticky

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestGravityField_Contains(t *testing.T) {
	tests := []struct {
		name     string
		field    GravityField
		position mgl64.Vec3
		want     bool
	}{
		{"unbounded", GravityField{Radius: 0}, mgl64.Vec3{1e6, 0, 0}, true},
		{"inside", GravityField{Radius: 2}, mgl64.Vec3{1, 1, 0}, true},
		{"on the border", GravityField{Radius: 2}, mgl64.Vec3{0, 2, 0}, true},
		{"outside", GravityField{Center: mgl64.Vec3{5, 0, 0}, Radius: 2}, mgl64.Vec3{0, 0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.Contains(tt.position); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.position, got, tt.want)
			}
		})
	}
}

func TestGravity_Resolve(t *testing.T) {
	planet := GravityField{Center: mgl64.Vec3{0, 0, 0}, Magnitude: 10, Radius: 20}

	tests := []struct {
		name     string
		gravity  Gravity
		position mgl64.Vec3
		want     mgl64.Vec3
	}{
		{"constant", Gravity{Constant: mgl64.Vec3{0, -9.81, 0}, Scale: 1}, mgl64.Vec3{3, 4, 5}, mgl64.Vec3{0, -9.81, 0}},
		{"scaled", Gravity{Constant: mgl64.Vec3{0, -10, 0}, Scale: 0.5}, mgl64.Vec3{}, mgl64.Vec3{0, -5, 0}},
		{"toward field center", Gravity{Fields: []GravityField{planet}, Scale: 1}, mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, -10, 0}},
		{"outside field", Gravity{Fields: []GravityField{planet}, Scale: 1}, mgl64.Vec3{30, 0, 0}, mgl64.Vec3{}},
		{"at field center", Gravity{Fields: []GravityField{planet}, Scale: 1}, mgl64.Vec3{}, mgl64.Vec3{}},
		{
			"fields add up",
			Gravity{Constant: mgl64.Vec3{0, -1, 0}, Fields: []GravityField{planet, planet}, Scale: 1},
			mgl64.Vec3{-2, 0, 0},
			mgl64.Vec3{20, -1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.gravity.Resolve(tt.position)
			if !vec3AlmostEqual(got, tt.want, 1e-12) {
				t.Errorf("Resolve(%v) = %v, want %v", tt.position, got, tt.want)
			}
		})
	}
}

func TestGravity_ApplyAttached(t *testing.T) {
	tests := []struct {
		name        string
		sticky      bool
		wantImpulse mgl64.Vec3
	}{
		{"sticky", true, mgl64.Vec3{0, -1, 0}},
		{"not sticky", false, mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := newPlaneWorld(t)
			b, _ := newTestBody(world, mgl64.Vec3{0.5, 1, 0.3}, DefaultConfig())
			attachAt(t, world, b, mgl64.Vec3{0.5, 0, 0.3}, mgl64.Vec3{0, 1, 0})

			g := NewGravity()
			g.Constant = mgl64.Vec3{0, -10, 0}
			g.Sticky = tt.sticky

			got := g.Apply(b, 0.1)

			if !vec3AlmostEqual(got, mgl64.Vec3{0, -10, 0}, 1e-12) {
				t.Errorf("Apply() = %v, want {0 -10 0}", got)
			}
			if !vec3AlmostEqual(b.PendingImpulse(), tt.wantImpulse, 1e-12) {
				t.Errorf("PendingImpulse() = %v, want %v", b.PendingImpulse(), tt.wantImpulse)
			}
			if !vec3AlmostEqual(b.Pose().Up(), mgl64.Vec3{0, 1, 0}, 1e-12) {
				t.Errorf("attached bodies keep their orientation, Up() = %v", b.Pose().Up())
			}
		})
	}
}

func TestGravity_AlignmentIsCapped(t *testing.T) {
	world := newPlaneWorld(t)
	b, _ := newTestBody(world, mgl64.Vec3{0, 5, 0}, DefaultConfig())

	g := NewGravity()
	g.Constant = mgl64.Vec3{-10, 0, 0}
	g.MaxAlignStep = 0.001

	g.Apply(b, 1)

	angle := math.Acos(mgl64.Clamp(b.Pose().Up().Dot(mgl64.Vec3{1, 0, 0}), -1, 1))
	if !almostEqual(angle, math.Pi/2-0.001, 1e-9) {
		t.Errorf("angle to target = %v, want %v", angle, math.Pi/2-0.001)
	}
}

func TestGravity_AlignmentEases(t *testing.T) {
	world := newPlaneWorld(t)
	b, _ := newTestBody(world, mgl64.Vec3{0, 5, 0}, DefaultConfig())

	g := NewGravity()
	g.Constant = mgl64.Vec3{-10, 0, 0}

	dt := 1.0 / 60.0
	previous := math.Pi / 2
	for i := 0; i < 600; i++ {
		g.Apply(b, dt)

		angle := math.Acos(mgl64.Clamp(b.Pose().Up().Dot(mgl64.Vec3{1, 0, 0}), -1, 1))
		if angle > previous+1e-9 {
			t.Fatalf("step %d: angle grew from %v to %v", i, previous, angle)
		}
		if previous-angle > DEFAULT_MAX_ALIGN_STEP+1e-9 {
			t.Fatalf("step %d: rotated by %v, more than the cap", i, previous-angle)
		}
		previous = angle
	}

	if !vec3AlmostEqual(b.Pose().Up(), mgl64.Vec3{1, 0, 0}, 1e-3) {
		t.Errorf("Up() = %v, want it aligned with {1 0 0}", b.Pose().Up())
	}
}
