package software

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/ssao/internal/engine/pipeline"
	"github.com/Faultbox/ssao/internal/logger"
)

// Renderer is the CPU pipeline backend.
type Renderer struct {
	targets *Targets
	scene   pipeline.Scene
	workers int
	log     *zap.Logger

	albedo     [4]uint8
	background [4]uint8
}

var _ pipeline.Backend = (*Renderer)(nil)

// New creates a renderer for scene with targets of the given size.
// workers is the number of goroutines per pass; 0 uses one per CPU.
func New(width, height int, scene pipeline.Scene, workers int) (*Renderer, error) {
	if err := scene.Validate(); err != nil {
		return nil, fmt.Errorf("software renderer: %w", err)
	}
	targets, err := NewTargets(width, height)
	if err != nil {
		return nil, fmt.Errorf("software renderer: %w", err)
	}

	r := &Renderer{
		targets:    targets,
		scene:      scene,
		workers:    workerCount(workers),
		log:        logger.Named("software"),
		albedo:     toRGBA8(scene.Albedo),
		background: toRGBA8(scene.Background),
	}
	r.log.Debug("software renderer created",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("workers", r.workers),
		zap.Int("triangles", scene.Mesh.TriangleCount()),
		zap.Int("kernel", len(scene.Kernel)))
	return r, nil
}

// Resize reallocates the target set.
func (r *Renderer) Resize(width, height int) error {
	return r.targets.Resize(width, height)
}

// Size returns the target size.
func (r *Renderer) Size() (width, height int) {
	return r.targets.Size()
}

// Geometry fills the position, normal, albedo and depth targets.
// An empty mesh leaves them cleared.
func (r *Renderer) Geometry(in pipeline.FrameInputs) error {
	if _, err := r.targets.Bind(pipeline.PassGeometry); err != nil {
		return err
	}
	if r.scene.Mesh.Empty() {
		return nil
	}

	rast := rasterizer{t: r.targets, albedo: r.albedo}
	rast.drawMesh(r.scene.Mesh, in.ModelView(), in.Projection, in.NormalMatrix())
	return nil
}

// Occlusion fills the raw occlusion target.
func (r *Renderer) Occlusion(in pipeline.FrameInputs) error {
	if _, err := r.targets.Bind(pipeline.PassOcclusion); err != nil {
		return err
	}
	pass := occlusionPass{
		t:          r.targets,
		kernel:     r.scene.Kernel,
		noise:      r.scene.Noise,
		projection: in.Projection,
		radius:     in.Params.Radius,
		bias:       in.Params.Bias,
	}
	parallelRows(r.workers, r.targets.height, pass.rows)
	return nil
}

// Blur fills the blurred occlusion target, or copies the raw target when disabled.
func (r *Renderer) Blur(enabled bool) error {
	if _, err := r.targets.Bind(pipeline.PassBlur); err != nil {
		return err
	}
	if !enabled {
		copy(r.targets.occlusionBlurred.Pix, r.targets.occlusionRaw.Pix)
		return nil
	}
	pass := blurPass{t: r.targets, size: r.scene.Noise.Size}
	parallelRows(r.workers, r.targets.height, pass.rows)
	return nil
}

// Compose writes the final image to the output surface.
func (r *Renderer) Compose() error {
	if _, err := r.targets.Bind(pipeline.PassComposition); err != nil {
		return err
	}
	pass := composePass{t: r.targets, background: r.background}
	parallelRows(r.workers, r.targets.height, pass.rows)
	return nil
}

// Output returns the last composed frame. It is reallocated on resize.
func (r *Renderer) Output() *image.RGBA {
	return r.targets.Output()
}

// Targets exposes the render targets for inspection.
func (r *Renderer) Targets() *Targets {
	return r.targets
}

// Close releases the targets. Later passes fail with ErrResourceAllocation.
func (r *Renderer) Close() {
	r.targets.Release()
}
