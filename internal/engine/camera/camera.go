// Package camera provides camera implementations for 3D rendering.
package camera

import (
	gomath "math"

	"github.com/Faultbox/ssao/internal/engine/mesh"
	"github.com/Faultbox/ssao/pkg/math"
)

// maxPitch keeps the fly camera short of straight up or down.
const maxPitch = 1.55

// FlyCamera moves freely; mouse look applies only while flying.
type FlyCamera struct {
	Position math.Vec3
	Yaw      float32 // Radians; π looks down -Z
	Pitch    float32 // Radians

	Speed      float32 // World units per second
	MouseSpeed float32 // Radians per pixel
	Flying     bool
}

// NewFlyCamera creates a camera at pos looking down -Z.
func NewFlyCamera(pos math.Vec3, speed, mouseSpeed float32) *FlyCamera {
	return &FlyCamera{
		Position:   pos,
		Yaw:        gomath.Pi,
		Speed:      speed,
		MouseSpeed: mouseSpeed,
	}
}

// Direction returns the unit view direction.
func (c *FlyCamera) Direction() math.Vec3 {
	cp := gomath.Cos(float64(c.Pitch))
	return math.Vec3{
		X: float32(cp * gomath.Sin(float64(c.Yaw))),
		Y: float32(gomath.Sin(float64(c.Pitch))),
		Z: float32(cp * gomath.Cos(float64(c.Yaw))),
	}
}

// Right returns the horizontal right vector.
func (c *FlyCamera) Right() math.Vec3 {
	yaw := float64(c.Yaw) - gomath.Pi/2
	return math.Vec3{X: float32(gomath.Sin(yaw)), Z: float32(gomath.Cos(yaw))}
}

// Up returns the camera up vector.
func (c *FlyCamera) Up() math.Vec3 {
	return c.Right().Cross(c.Direction())
}

// ViewMatrix returns the view matrix for this camera.
func (c *FlyCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.Position.Add(c.Direction()), c.Up())
}

// Move translates the camera. forward and right are in [-1, 1]; dt is seconds.
func (c *FlyCamera) Move(forward, right, dt float32) {
	step := c.Speed * dt
	c.Position = c.Position.
		Add(c.Direction().Scale(forward * step)).
		Add(c.Right().Scale(right * step))
}

// Look turns the camera by a mouse delta in pixels. Ignored unless flying.
func (c *FlyCamera) Look(dx, dy float32) {
	if !c.Flying {
		return
	}
	c.Yaw -= dx * c.MouseSpeed
	c.Pitch = math.Clamp(c.Pitch-dy*c.MouseSpeed, -maxPitch, maxPitch)
}

// ToggleFlying switches mouse look on or off and returns the new state.
func (c *FlyCamera) ToggleFlying() bool {
	c.Flying = !c.Flying
	return c.Flying
}

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	MinPitch float32
	MaxPitch float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:  2.0,
		RotationX: 0.35,
		MinPitch:  -1.5,
		MaxPitch:  1.5,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	x := c.Distance * float32(gomath.Cos(float64(c.RotationX))*gomath.Sin(float64(c.RotationY)))
	y := c.Distance * float32(gomath.Sin(float64(c.RotationX)))
	z := c.Distance * float32(gomath.Cos(float64(c.RotationX))*gomath.Cos(float64(c.RotationY)))

	return c.Center.Add(math.Vec3{X: x, Y: y, Z: z})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// Orbit rotates the camera around the center by yaw and pitch deltas in radians.
func (c *OrbitCamera) Orbit(yaw, pitch float32) {
	c.RotationY += yaw
	c.RotationX = math.Clamp(c.RotationX+pitch, c.MinPitch, c.MaxPitch)
}

// FitToBounds centers on b and backs off until its bounding sphere fits a
// vertical field of view of fovY radians.
func (c *OrbitCamera) FitToBounds(b mesh.Bounds, fovY float32) {
	c.Center = b.Center()

	radius := b.Size().Length() / 2
	if radius == 0 {
		radius = 0.5
	}
	c.Distance = radius / float32(gomath.Sin(float64(fovY)/2))
}
