// Package config handles renderer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// MaxKernelSize bounds the SSAO sample count; the occlusion shader declares a fixed-size array.
const MaxKernelSize = 64

// MaxNoiseSize bounds the rotation-noise tile edge.
const MaxNoiseSize = 16

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all renderer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	SSAO     SSAOConfig     `yaml:"ssao"`
	Scene    SceneConfig    `yaml:"scene"`
	Camera   CameraConfig   `yaml:"camera"`
	Render   RenderConfig   `yaml:"render"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and projection settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FOVDegrees float32 `yaml:"fov_degrees"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
}

// SSAOConfig holds occlusion sampling settings and the initial tunable parameters.
type SSAOConfig struct {
	KernelSize int     `yaml:"kernel_size"`
	NoiseSize  int     `yaml:"noise_size"`
	Radius     float32 `yaml:"radius"`
	Bias       float32 `yaml:"bias"`
	Blur       bool    `yaml:"blur"`
	Seed       uint64  `yaml:"seed"` // Kernel and noise are reproducible per seed
}

// SceneConfig holds scene content settings.
type SceneConfig struct {
	MeshPath   string     `yaml:"mesh_path"` // Empty selects the built-in demo scene
	Albedo     [3]float32 `yaml:"albedo"`
	Background [3]float32 `yaml:"background"`
}

// CameraConfig holds free-fly camera settings.
type CameraConfig struct {
	Position   [3]float32 `yaml:"position"`
	Speed      float32    `yaml:"speed"`       // World units per second
	MouseSpeed float32    `yaml:"mouse_speed"` // Radians per pixel of mouse motion
}

// RenderConfig holds headless renderer settings.
type RenderConfig struct {
	Workers    int    `yaml:"workers"` // 0 uses one worker per CPU
	Frames     int    `yaml:"frames"`
	Output     string `yaml:"output"`
	DebugSheet string `yaml:"debug_sheet"` // Optional G-buffer contact sheet path
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1024,
			Height:     768,
			Fullscreen: false,
			VSync:      true,
			FOVDegrees: 45,
			Near:       0.1,
			Far:        100,
		},
		SSAO: SSAOConfig{
			KernelSize: 64,
			NoiseSize:  4,
			Radius:     0.5,
			Bias:       0.025,
			Blur:       true,
			Seed:       0,
		},
		Scene: SceneConfig{
			MeshPath:   "",
			Albedo:     [3]float32{0.95, 0.95, 0.95},
			Background: [3]float32{0.1, 0.2, 0.0},
		},
		Camera: CameraConfig{
			Position:   [3]float32{0, 0.1, 0.5},
			Speed:      0.5,
			MouseSpeed: 0.003,
		},
		Render: RenderConfig{
			Workers: 0,
			Frames:  1,
			Output:  "ssao.png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting the renderer cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Graphics.Width < 1 || c.Graphics.Height < 1:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Graphics.Width, c.Graphics.Height)
	case c.Graphics.FOVDegrees <= 0 || c.Graphics.FOVDegrees >= 180:
		return fmt.Errorf("%w: fov_degrees %v", ErrInvalidConfig, c.Graphics.FOVDegrees)
	case c.Graphics.Near <= 0 || c.Graphics.Far <= c.Graphics.Near:
		return fmt.Errorf("%w: clip range [%v, %v]", ErrInvalidConfig, c.Graphics.Near, c.Graphics.Far)
	case c.SSAO.KernelSize < 1 || c.SSAO.KernelSize > MaxKernelSize:
		return fmt.Errorf("%w: kernel_size %d not in [1, %d]", ErrInvalidConfig, c.SSAO.KernelSize, MaxKernelSize)
	case c.SSAO.NoiseSize < 1 || c.SSAO.NoiseSize > MaxNoiseSize:
		return fmt.Errorf("%w: noise_size %d not in [1, %d]", ErrInvalidConfig, c.SSAO.NoiseSize, MaxNoiseSize)
	case c.SSAO.Radius <= 0:
		return fmt.Errorf("%w: radius %v must be positive", ErrInvalidConfig, c.SSAO.Radius)
	case c.SSAO.Bias < 0:
		return fmt.Errorf("%w: bias %v must not be negative", ErrInvalidConfig, c.SSAO.Bias)
	case c.Render.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Render.Workers)
	case c.Render.Frames < 1:
		return fmt.Errorf("%w: frames %d", ErrInvalidConfig, c.Render.Frames)
	}
	return nil
}
