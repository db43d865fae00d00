// Package pipeline defines the deferred SSAO pass contract and the orchestrator
// that sequences the passes once per frame.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/Faultbox/ssao/internal/engine/kernel"
	"github.com/Faultbox/ssao/internal/engine/mesh"
	"github.com/Faultbox/ssao/pkg/math"
)

var (
	// ErrResourceAllocation is returned when render targets cannot be created or resized.
	ErrResourceAllocation = errors.New("render target allocation failed")
	// ErrShaderProgram is returned when a pass program fails to compile or link.
	ErrShaderProgram = errors.New("shader program build failed")
	// ErrFrameInProgress is returned by a Frame call made while another frame runs.
	ErrFrameInProgress = errors.New("frame already in progress")
)

// Parameter limits.
const (
	MaxRadius = 5.0
	MaxBias   = 1.0
)

// Params are the tunable occlusion settings, read once per frame.
type Params struct {
	Radius      float32
	Bias        float32
	BlurEnabled bool
}

// DefaultParams returns radius 0.5, bias 0.025 and blur on.
func DefaultParams() Params {
	return Params{Radius: 0.5, Bias: 0.025, BlurEnabled: true}
}

// Clamp limits radius to (0, MaxRadius] and bias to [0, MaxBias].
func (p Params) Clamp() Params {
	const minRadius = 1e-3
	p.Radius = math.Clamp(p.Radius, minRadius, MaxRadius)
	p.Bias = math.Clamp(p.Bias, 0, MaxBias)
	return p
}

// FrameInputs is everything one frame reads.
type FrameInputs struct {
	Model      math.Mat4
	View       math.Mat4
	Projection math.Mat4
	Params     Params
}

// ModelView returns View × Model.
func (in FrameInputs) ModelView() math.Mat4 {
	return in.View.Mul(in.Model)
}

// NormalMatrix returns the inverse-transpose of the model-view upper 3×3.
func (in FrameInputs) NormalMatrix() math.Mat3 {
	return math.NormalMatrix(in.ModelView())
}

// Scene is the static content a backend renders every frame.
type Scene struct {
	Mesh       *mesh.Mesh
	Kernel     kernel.Kernel
	Noise      kernel.NoiseTile
	Albedo     [3]float32 // Flat surface colour
	Background [3]float32 // Colour of uncovered pixels
}

// Validate checks that the scene can be handed to a backend.
func (s Scene) Validate() error {
	if s.Mesh == nil {
		return errors.New("scene has no mesh")
	}
	if err := s.Mesh.Validate(); err != nil {
		return err
	}
	if n := len(s.Kernel); n < 1 || n > kernel.MaxSize {
		return fmt.Errorf("kernel size %d not in [1, %d]", n, kernel.MaxSize)
	}
	if s.Noise.Size < 1 || len(s.Noise.Vectors) != s.Noise.Size*s.Noise.Size {
		return fmt.Errorf("noise tile %d has %d vectors", s.Noise.Size, len(s.Noise.Vectors))
	}
	return nil
}

// Pass identifies one of the four render passes.
type Pass int

const (
	PassGeometry Pass = iota
	PassOcclusion
	PassBlur
	PassComposition
)

// Passes lists the passes in execution order.
var Passes = [...]Pass{PassGeometry, PassOcclusion, PassBlur, PassComposition}

func (p Pass) String() string {
	switch p {
	case PassGeometry:
		return "geometry"
	case PassOcclusion:
		return "occlusion"
	case PassBlur:
		return "blur"
	case PassComposition:
		return "composition"
	}
	return fmt.Sprintf("pass(%d)", int(p))
}

// Role names a render target in the set.
type Role int

const (
	RolePosition Role = iota
	RoleNormal
	RoleAlbedo
	RoleDepth
	RoleOcclusionRaw
	RoleOcclusionBlurred
)

func (r Role) String() string {
	switch r {
	case RolePosition:
		return "position"
	case RoleNormal:
		return "normal"
	case RoleAlbedo:
		return "albedo"
	case RoleDepth:
		return "depth"
	case RoleOcclusionRaw:
		return "occlusion-raw"
	case RoleOcclusionBlurred:
		return "occlusion-blurred"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Binding lists the targets a pass samples and the targets it writes.
// Composition writes the presented surface, which is not a role.
type Binding struct {
	Reads  []Role
	Writes []Role
}

// BindingFor returns the target binding of a pass.
func BindingFor(p Pass) (Binding, error) {
	switch p {
	case PassGeometry:
		return Binding{Writes: []Role{RolePosition, RoleNormal, RoleAlbedo, RoleDepth}}, nil
	case PassOcclusion:
		return Binding{Reads: []Role{RolePosition, RoleNormal}, Writes: []Role{RoleOcclusionRaw}}, nil
	case PassBlur:
		return Binding{Reads: []Role{RoleOcclusionRaw}, Writes: []Role{RoleOcclusionBlurred}}, nil
	case PassComposition:
		return Binding{Reads: []Role{RolePosition, RoleAlbedo, RoleOcclusionBlurred}}, nil
	}
	return Binding{}, fmt.Errorf("unknown pass %d", int(p))
}

// Backend executes the passes against its own render target set.
// Calls arrive sequentially from one goroutine.
type Backend interface {
	// Resize reallocates every target. On error the previous set stays in use.
	Resize(width, height int) error
	Size() (width, height int)

	Geometry(in FrameInputs) error
	Occlusion(in FrameInputs) error
	Blur(enabled bool) error
	Compose() error
}
