// Package headless renders frames with the software backend and writes PNGs.
package headless

import (
	"fmt"
	"image"
	gomath "math"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/ssao/internal/config"
	"github.com/Faultbox/ssao/internal/engine/camera"
	"github.com/Faultbox/ssao/internal/engine/debug"
	"github.com/Faultbox/ssao/internal/engine/pipeline"
	"github.com/Faultbox/ssao/internal/engine/scene"
	"github.com/Faultbox/ssao/internal/engine/software"
	"github.com/Faultbox/ssao/internal/logger"
	"github.com/Faultbox/ssao/pkg/math"
)

const (
	sheetColumns = 4
	sheetTileW   = 320
)

// sheetRoles are the targets shown on the debug contact sheet, in order.
var sheetRoles = []pipeline.Role{
	pipeline.RolePosition,
	pipeline.RoleNormal,
	pipeline.RoleAlbedo,
	pipeline.RoleDepth,
	pipeline.RoleOcclusionRaw,
	pipeline.RoleOcclusionBlurred,
}

// Result describes a completed headless run.
type Result struct {
	Frames []string // Written frame paths in render order
	Sheet  string   // Contact sheet path, empty if not requested
	Stats  pipeline.Stats
}

// Run renders cfg.Render.Frames frames orbiting the scene and saves each one.
func Run(cfg *config.Config) (*Result, error) {
	log := logger.Named("headless")

	s, err := scene.Build(cfg)
	if err != nil {
		return nil, err
	}

	r, err := software.New(cfg.Graphics.Width, cfg.Graphics.Height, s, cfg.Render.Workers)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	res := &Result{}
	frames := cfg.Render.Frames
	index := 0

	present := func() error {
		path := FramePath(cfg.Render.Output, index, frames)
		if err := debug.SavePNG(path, r.Output()); err != nil {
			return fmt.Errorf("writing frame %d: %w", index, err)
		}
		res.Frames = append(res.Frames, path)
		return nil
	}

	orch := pipeline.New(r,
		pipeline.WithPresenter(present),
		pipeline.WithProjection(scene.Projection(cfg.Graphics)),
	)

	orbit := camera.NewOrbitCamera()
	orbit.FitToBounds(s.Mesh.Bounds(), math.Radians(cfg.Graphics.FOVDegrees))
	step := float32(2 * gomath.Pi / float64(frames))

	params := scene.Params(cfg)
	start := time.Now()
	for index = 0; index < frames; index++ {
		in := pipeline.FrameInputs{
			Model:  math.Identity(),
			View:   orbit.ViewMatrix(),
			Params: params,
		}
		if err := orch.Frame(in); err != nil {
			return res, fmt.Errorf("frame %d: %w", index, err)
		}

		st := orch.Stats()
		log.Debug("frame rendered",
			zap.Int("frame", index),
			zap.Duration("geometry", st.Passes[pipeline.PassGeometry]),
			zap.Duration("occlusion", st.Passes[pipeline.PassOcclusion]),
			zap.Duration("blur", st.Passes[pipeline.PassBlur]),
			zap.Duration("composition", st.Passes[pipeline.PassComposition]),
			zap.Duration("present", st.Present),
		)
		orbit.Orbit(step, 0)
	}
	res.Stats = orch.Stats()

	if cfg.Render.DebugSheet != "" {
		sheet := ContactSheet(r)
		if err := debug.SavePNG(cfg.Render.DebugSheet, sheet); err != nil {
			return res, fmt.Errorf("writing contact sheet: %w", err)
		}
		res.Sheet = cfg.Render.DebugSheet
	}

	log.Info("render complete",
		zap.Int("frames", frames),
		zap.String("output", cfg.Render.Output),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// ContactSheet tiles every render target of the last frame followed by the
// composed output.
func ContactSheet(r *software.Renderer) *image.RGBA {
	t := r.Targets()
	tiles := make([]image.Image, 0, len(sheetRoles)+1)
	for _, role := range sheetRoles {
		tiles = append(tiles, t.Visualize(role))
	}
	tiles = append(tiles, r.Output())
	return debug.ContactSheet(tiles, sheetColumns, sheetTileW)
}

// FramePath numbers output when more than one frame is rendered:
// out.png becomes out_000.png, out_001.png and so on.
func FramePath(output string, index, frames int) string {
	if frames <= 1 {
		return output
	}
	ext := filepath.Ext(output)
	base := strings.TrimSuffix(output, ext)
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("%s_%03d%s", base, index, ext)
}
