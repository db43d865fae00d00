package software

import (
	"fmt"
	"image"

	"github.com/Faultbox/ssao/internal/engine/pipeline"
)

// Target size limits.
const (
	MaxDimension = 16384
	MaxPixels    = 1 << 25
)

// Targets is the CPU render target set. Every target shares one size.
type Targets struct {
	width  int
	height int

	position *Plane // xyz view-space position, w coverage
	normal   *Plane // xyz view-space normal, w coverage
	albedo   *image.RGBA
	depth    *Plane // Window-space depth in [0, 1]

	occlusionRaw     *Plane
	occlusionBlurred *Plane

	output *image.RGBA // Presented surface
}

// NewTargets allocates a target set of the given size.
func NewTargets(width, height int) (*Targets, error) {
	t := &Targets{}
	if err := t.Resize(width, height); err != nil {
		return nil, err
	}
	return t, nil
}

// Resize reallocates every target. The new set is built completely before
// it replaces the old one, so on error the previous targets stay usable.
func (t *Targets) Resize(width, height int) error {
	if width < 1 || height < 1 || width > MaxDimension || height > MaxDimension || width*height > MaxPixels {
		return fmt.Errorf("%w: %dx%d", pipeline.ErrResourceAllocation, width, height)
	}

	next := Targets{
		width:            width,
		height:           height,
		position:         newPlane(width, height, 4),
		normal:           newPlane(width, height, 4),
		albedo:           image.NewRGBA(image.Rect(0, 0, width, height)),
		depth:            newPlane(width, height, 1),
		occlusionRaw:     newPlane(width, height, 1),
		occlusionBlurred: newPlane(width, height, 1),
		output:           image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	next.depth.Fill(1)
	next.occlusionRaw.Fill(1)
	next.occlusionBlurred.Fill(1)

	*t = next
	return nil
}

// Size returns the shared target size. A released set reports 0×0.
func (t *Targets) Size() (width, height int) {
	return t.width, t.height
}

// Bind prepares the targets a pass writes and returns its binding.
// Geometry clears its targets; depth clears to the far plane.
func (t *Targets) Bind(pass pipeline.Pass) (pipeline.Binding, error) {
	if t.width == 0 {
		return pipeline.Binding{}, fmt.Errorf("%w: targets released", pipeline.ErrResourceAllocation)
	}
	b, err := pipeline.BindingFor(pass)
	if err != nil {
		return b, err
	}
	if pass == pipeline.PassGeometry {
		t.position.Clear()
		t.normal.Clear()
		clear(t.albedo.Pix)
		t.depth.Fill(1)
	}
	return b, nil
}

// Plane returns the float target for a role. Albedo is stored as RGBA8
// and has no float plane.
func (t *Targets) Plane(role pipeline.Role) *Plane {
	switch role {
	case pipeline.RolePosition:
		return t.position
	case pipeline.RoleNormal:
		return t.normal
	case pipeline.RoleDepth:
		return t.depth
	case pipeline.RoleOcclusionRaw:
		return t.occlusionRaw
	case pipeline.RoleOcclusionBlurred:
		return t.occlusionBlurred
	}
	return nil
}

// Albedo returns the albedo target.
func (t *Targets) Albedo() *image.RGBA {
	return t.albedo
}

// Output returns the presented surface.
func (t *Targets) Output() *image.RGBA {
	return t.output
}

// Release drops every target.
func (t *Targets) Release() {
	*t = Targets{}
}
