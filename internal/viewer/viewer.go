// Package viewer implements the interactive SSAO viewer loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/ssao/internal/config"
	"github.com/Faultbox/ssao/internal/engine/camera"
	"github.com/Faultbox/ssao/internal/engine/debug"
	"github.com/Faultbox/ssao/internal/engine/input"
	"github.com/Faultbox/ssao/internal/engine/pipeline"
	"github.com/Faultbox/ssao/internal/engine/renderer"
	"github.com/Faultbox/ssao/internal/engine/scene"
	"github.com/Faultbox/ssao/internal/engine/window"
	"github.com/Faultbox/ssao/internal/logger"
	"github.com/Faultbox/ssao/pkg/math"
)

const (
	radiusStep = 0.05
	biasStep   = 0.005
	titleEvery = 250 * time.Millisecond
)

// Viewer is the interactive viewer instance.
type Viewer struct {
	cfg     *config.Config
	running bool
	log     *zap.Logger

	window      *window.Window
	renderer    *renderer.Renderer
	pipeline    *pipeline.Orchestrator
	input       *input.Input
	camera      *camera.FlyCamera
	screenshots *debug.ScreenshotCapture

	params    pipeline.Params
	frameTime time.Duration
	capture   bool // Save the next composed frame before it is presented
}

// New creates the window, GL backend and pipeline.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:    cfg,
		log:    logger.Named("viewer"),
		params: scene.Params(cfg),
	}

	v.log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Int("kernel", cfg.SSAO.KernelSize),
	)

	s, err := scene.Build(cfg)
	if err != nil {
		return nil, err
	}

	// Create window (this also creates OpenGL context)
	v.window, err = window.New(window.Config{
		Title:      "SSAO",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(width, height, s)
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.pipeline = pipeline.New(v.renderer,
		pipeline.WithPresenter(v.present),
		pipeline.WithProjection(scene.Projection(cfg.Graphics)),
	)

	v.input = input.New()
	v.camera = camera.NewFlyCamera(math.Vec3{
		X: cfg.Camera.Position[0],
		Y: cfg.Camera.Position[1],
		Z: cfg.Camera.Position[2],
	}, cfg.Camera.Speed, cfg.Camera.MouseSpeed)
	v.screenshots = debug.NewScreenshotCapture("screenshots", "ssao")

	v.log.Info("viewer initialized")
	return v, nil
}

// Run starts the main loop. A frame error ends the loop and is returned.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	titleTimer := time.Now()

	v.log.Info("starting render loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleInput(dt)
		if !v.running {
			break
		}

		in := pipeline.FrameInputs{
			Model:  math.Identity(),
			View:   v.camera.ViewMatrix(),
			Params: v.params,
		}
		if err := v.pipeline.Frame(in); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		v.frameTime = v.pipeline.Stats().Total

		if time.Since(titleTimer) >= titleEvery {
			v.window.SetTitle(v.title())
			titleTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleInput(dt float32) {
	in := v.input

	if w, h, ok := in.Resize(); ok {
		// Event sizes are in screen coordinates; targets follow the drawable
		dw, dh := v.window.DrawableSize()
		v.log.Debug("window resized", zap.Int("width", w), zap.Int("height", h),
			zap.Int("drawable_width", dw), zap.Int("drawable_height", dh))
		v.pipeline.RequestResize(dw, dh)
	}

	if in.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		v.running = false
		return
	}
	if in.IsKeyPressed(sdl.SCANCODE_B) {
		v.params.BlurEnabled = !v.params.BlurEnabled
		v.log.Info("blur toggled", zap.Bool("enabled", v.params.BlurEnabled))
	}

	steps := in.KeyPresses(sdl.SCANCODE_UP) - in.KeyPresses(sdl.SCANCODE_DOWN)
	v.params.Radius += float32(steps) * radiusStep
	steps = in.KeyPresses(sdl.SCANCODE_RIGHT) - in.KeyPresses(sdl.SCANCODE_LEFT)
	v.params.Bias += float32(steps) * biasStep
	v.params = v.params.Clamp()

	if in.IsKeyPressed(sdl.SCANCODE_F) {
		flying := v.camera.ToggleFlying()
		v.window.SetRelativeMouse(flying)
	}
	if in.IsKeyPressed(sdl.SCANCODE_F12) {
		v.capture = true
	}
	if in.IsKeyPressed(sdl.SCANCODE_P) {
		v.saveParams()
	}

	var forward, right float32
	if in.IsKeyHeld(sdl.SCANCODE_W) {
		forward++
	}
	if in.IsKeyHeld(sdl.SCANCODE_S) {
		forward--
	}
	if in.IsKeyHeld(sdl.SCANCODE_D) {
		right++
	}
	if in.IsKeyHeld(sdl.SCANCODE_A) {
		right--
	}
	v.camera.Move(forward, right, dt)

	dx, dy := in.MouseDelta()
	v.camera.Look(float32(dx), float32(dy))
}

// present reads back a pending screenshot while the back buffer is still
// defined, then swaps.
func (v *Viewer) present() error {
	if v.capture {
		v.capture = false
		v.screenshot()
	}
	return v.window.SwapBuffers()
}

func (v *Viewer) screenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

// saveParams writes the current tunables back to the user config file.
func (v *Viewer) saveParams() {
	v.cfg.SSAO.Radius = v.params.Radius
	v.cfg.SSAO.Bias = v.params.Bias
	v.cfg.SSAO.Blur = v.params.BlurEnabled

	path, err := v.cfg.Save()
	if err != nil {
		v.log.Error("saving config failed", zap.Error(err))
		return
	}
	v.log.Info("config saved", zap.String("path", path))
}

func (v *Viewer) title() string {
	return Title(v.params, v.frameTime)
}

// Title formats the window title from the live parameters.
func Title(p pipeline.Params, frame time.Duration) string {
	blur := "off"
	if p.BlurEnabled {
		blur = "on"
	}
	return fmt.Sprintf("SSAO | radius %.2f | bias %.3f | blur %s | %.2f ms",
		p.Radius, p.Bias, blur, float64(frame.Microseconds())/1000)
}

// Close releases GL resources and the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
