// Package scene assembles the static render content from configuration.
package scene

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/ssao/internal/config"
	"github.com/Faultbox/ssao/internal/engine/kernel"
	"github.com/Faultbox/ssao/internal/engine/mesh"
	"github.com/Faultbox/ssao/internal/engine/pipeline"
	"github.com/Faultbox/ssao/internal/logger"
	"github.com/Faultbox/ssao/pkg/math"
)

// Build loads the configured mesh, or the demo scene when none is set, and
// generates the sample kernel and noise tile from the configured seed.
func Build(cfg *config.Config) (pipeline.Scene, error) {
	log := logger.Named("scene")

	m, err := loadMesh(cfg.Scene.MeshPath)
	if err != nil {
		return pipeline.Scene{}, err
	}

	k, noise := kernel.Generate(cfg.SSAO.KernelSize, cfg.SSAO.NoiseSize, NewSource(cfg.SSAO.Seed))

	s := pipeline.Scene{
		Mesh:       m,
		Kernel:     k,
		Noise:      noise,
		Albedo:     cfg.Scene.Albedo,
		Background: cfg.Scene.Background,
	}
	if err := s.Validate(); err != nil {
		return pipeline.Scene{}, fmt.Errorf("scene: %w", err)
	}

	b := m.Bounds()
	log.Info("scene ready",
		zap.String("mesh", meshName(cfg.Scene.MeshPath)),
		zap.Int("vertices", len(m.Positions)),
		zap.Int("triangles", m.TriangleCount()),
		zap.Any("bounds_min", b.Min.Array()),
		zap.Any("bounds_max", b.Max.Array()),
		zap.Int("kernel", len(k)),
		zap.Int("noise", noise.Size),
		zap.Uint64("seed", cfg.SSAO.Seed),
	)
	return s, nil
}

// NewSource returns the deterministic generator used for kernel sampling.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Projection returns a perspective builder for the configured lens, suitable
// for pipeline.WithProjection.
func Projection(g config.GraphicsConfig) func(width, height int) math.Mat4 {
	fov := math.Radians(g.FOVDegrees)
	return func(width, height int) math.Mat4 {
		aspect := float32(width) / float32(max(height, 1))
		return math.Perspective(fov, aspect, g.Near, g.Far)
	}
}

// Params returns the initial tunable SSAO parameters.
func Params(cfg *config.Config) pipeline.Params {
	return pipeline.Params{
		Radius:      cfg.SSAO.Radius,
		Bias:        cfg.SSAO.Bias,
		BlurEnabled: cfg.SSAO.Blur,
	}.Clamp()
}

func loadMesh(path string) (*mesh.Mesh, error) {
	if path == "" {
		return mesh.Demo(), nil
	}
	m, err := mesh.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading mesh: %w", err)
	}
	return m, nil
}

func meshName(path string) string {
	if path == "" {
		return "demo"
	}
	return path
}
