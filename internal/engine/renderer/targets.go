package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/ssao/internal/engine/framebuffer"
	"github.com/Faultbox/ssao/internal/engine/pipeline"
)

// G-buffer attachment order, matching the geometry shader outputs.
const (
	attachPosition = 0
	attachNormal   = 1
	attachAlbedo   = 2
)

// Targets is the GPU render target set: the G-buffer with depth, and one
// framebuffer each for raw and blurred occlusion.
type Targets struct {
	gbuffer   *framebuffer.Framebuffer
	occlusion *framebuffer.Framebuffer
	blurred   *framebuffer.Framebuffer
	width     int
	height    int
}

var (
	gbufferSpec = framebuffer.Spec{
		Name:  "gbuffer",
		Color: []framebuffer.Attachment{framebuffer.RGBA16F, framebuffer.RGBA16F, framebuffer.RGBA8},
		Depth: true,
	}
	occlusionSpec = framebuffer.Spec{Name: "occlusion", Color: []framebuffer.Attachment{framebuffer.R16F}}
	blurredSpec   = framebuffer.Spec{Name: "occlusion-blurred", Color: []framebuffer.Attachment{framebuffer.R16F}}
)

// NewTargets allocates the target set.
func NewTargets(width, height int) (*Targets, error) {
	t := &Targets{width: width, height: height}
	specs := []struct {
		dst  **framebuffer.Framebuffer
		spec framebuffer.Spec
	}{
		{&t.gbuffer, gbufferSpec},
		{&t.occlusion, occlusionSpec},
		{&t.blurred, blurredSpec},
	}
	for _, s := range specs {
		fb, err := framebuffer.New(s.spec, int32(width), int32(height))
		if err != nil {
			t.Destroy()
			return nil, fmt.Errorf("%w: %w", pipeline.ErrResourceAllocation, err)
		}
		*s.dst = fb
	}
	return t, nil
}

func (t *Targets) all() []*framebuffer.Framebuffer {
	return []*framebuffer.Framebuffer{t.gbuffer, t.occlusion, t.blurred}
}

// Resize stages every framebuffer at the new size and commits only if all
// stages succeed. On failure the current targets are untouched.
func (t *Targets) Resize(width, height int) error {
	for _, fb := range t.all() {
		if err := fb.Stage(int32(width), int32(height)); err != nil {
			for _, staged := range t.all() {
				staged.Discard()
			}
			return fmt.Errorf("%w: %w", pipeline.ErrResourceAllocation, err)
		}
	}
	for _, fb := range t.all() {
		fb.Commit()
	}
	t.width, t.height = width, height
	return nil
}

// Size returns the target size.
func (t *Targets) Size() (width, height int) {
	return t.width, t.height
}

// Bind binds the framebuffer a pass draws into. Geometry also clears it.
// Composition draws into the default framebuffer.
func (t *Targets) Bind(pass pipeline.Pass) error {
	switch pass {
	case pipeline.PassGeometry:
		t.gbuffer.Bind()
		t.gbuffer.Clear(0, 0, 0, 0)
	case pipeline.PassOcclusion:
		t.occlusion.Bind()
	case pipeline.PassBlur:
		t.blurred.Bind()
	case pipeline.PassComposition:
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, int32(t.width), int32(t.height))
	default:
		return fmt.Errorf("unknown pass %s", pass)
	}
	return nil
}

// Texture returns the texture backing a role, or 0 for depth, which is a renderbuffer.
func (t *Targets) Texture(role pipeline.Role) uint32 {
	switch role {
	case pipeline.RolePosition:
		return t.gbuffer.ColorTexture(attachPosition)
	case pipeline.RoleNormal:
		return t.gbuffer.ColorTexture(attachNormal)
	case pipeline.RoleAlbedo:
		return t.gbuffer.ColorTexture(attachAlbedo)
	case pipeline.RoleOcclusionRaw:
		return t.occlusion.ColorTexture(0)
	case pipeline.RoleOcclusionBlurred:
		return t.blurred.ColorTexture(0)
	}
	return 0
}

// Destroy releases every framebuffer.
func (t *Targets) Destroy() {
	for _, fb := range t.all() {
		if fb != nil {
			fb.Destroy()
		}
	}
	t.gbuffer, t.occlusion, t.blurred = nil, nil, nil
}
