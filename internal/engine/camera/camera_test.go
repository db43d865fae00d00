package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/ssao/internal/engine/mesh"
	"github.com/Faultbox/ssao/pkg/math"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func TestFlyCameraDefaultLooksDownNegativeZ(t *testing.T) {
	c := NewFlyCamera(math.Vec3{Y: 0.1, Z: 0.5}, 1, 0.01)

	d := c.Direction()
	if !near(d.X, 0) || !near(d.Y, 0) || !near(d.Z, -1) {
		t.Errorf("direction = %v, want -Z", d)
	}
	r := c.Right()
	if !near(r.X, 1) || !near(r.Z, 0) {
		t.Errorf("right = %v, want +X", r)
	}
	u := c.Up()
	if !near(u.Y, 1) {
		t.Errorf("up = %v, want +Y", u)
	}

	// A point straight ahead lands on the view axis
	p := c.ViewMatrix().TransformPoint(math.Vec3{Y: 0.1, Z: -1.5})
	if !near(p.X, 0) || !near(p.Y, 0) || !near(p.Z, -2) {
		t.Errorf("view-space point = %v, want (0, 0, -2)", p)
	}
}

func TestFlyCameraMove(t *testing.T) {
	c := NewFlyCamera(math.Vec3{}, 2, 0.01)

	c.Move(1, 0, 0.5)
	if !near(c.Position.Z, -1) {
		t.Errorf("forward move: position = %v, want z = -1", c.Position)
	}

	c.Move(0, -1, 0.25)
	if !near(c.Position.X, -0.5) {
		t.Errorf("strafe left: position = %v, want x = -0.5", c.Position)
	}
}

func TestFlyCameraLookOnlyWhileFlying(t *testing.T) {
	c := NewFlyCamera(math.Vec3{}, 1, 0.01)

	c.Look(100, 0)
	if c.Yaw != gomath.Pi {
		t.Errorf("yaw changed while not flying: %f", c.Yaw)
	}

	if !c.ToggleFlying() {
		t.Fatal("ToggleFlying should enable flying")
	}
	c.Look(10, 0)
	if near(c.Yaw, gomath.Pi) {
		t.Error("yaw unchanged while flying")
	}

	c.Look(0, -10000)
	if c.Pitch > maxPitch {
		t.Errorf("pitch %f exceeds limit", c.Pitch)
	}

	if c.ToggleFlying() {
		t.Error("second toggle should disable flying")
	}
}

func TestOrbitCameraPosition(t *testing.T) {
	c := NewOrbitCamera()
	c.RotationX = 0
	c.RotationY = 0
	c.Distance = 3
	c.Center = math.Vec3{X: 1}

	p := c.Position()
	if !near(p.X, 1) || !near(p.Y, 0) || !near(p.Z, 3) {
		t.Errorf("position = %v, want (1, 0, 3)", p)
	}

	center := c.ViewMatrix().TransformPoint(c.Center)
	if !near(center.X, 0) || !near(center.Y, 0) || !near(center.Z, -3) {
		t.Errorf("center in view space = %v, want (0, 0, -3)", center)
	}
}

func TestOrbitClampsPitch(t *testing.T) {
	c := NewOrbitCamera()
	c.Orbit(0.5, 10)
	if c.RotationX != c.MaxPitch {
		t.Errorf("pitch = %f, want %f", c.RotationX, c.MaxPitch)
	}
	if !near(c.RotationY, 0.5) {
		t.Errorf("yaw = %f, want 0.5", c.RotationY)
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	b := mesh.Bounds{Min: math.Vec3{X: -1, Y: -1, Z: -1}, Max: math.Vec3{X: 3, Y: 1, Z: 1}}
	fov := math.Radians(45)
	c.FitToBounds(b, fov)

	if c.Center != (math.Vec3{X: 1}) {
		t.Errorf("center = %v, want (1, 0, 0)", c.Center)
	}

	radius := b.Size().Length() / 2
	if c.Distance*float32(gomath.Sin(float64(fov)/2)) < radius-1e-4 {
		t.Errorf("distance %f too close to fit radius %f", c.Distance, radius)
	}

	c.FitToBounds(mesh.Bounds{}, fov)
	if c.Distance <= 0 {
		t.Errorf("empty bounds gave distance %f", c.Distance)
	}
}
