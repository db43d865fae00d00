package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/ssao/internal/logger"
	"github.com/Faultbox/ssao/pkg/math"
)

// Stats holds the timings of the last completed frame.
type Stats struct {
	Passes  [len(Passes)]time.Duration // Indexed by Pass
	Present time.Duration
	Total   time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPresenter sets the function called after composition, such as a buffer swap.
func WithPresenter(present func() error) Option {
	return func(o *Orchestrator) { o.present = present }
}

// WithObserver registers a callback invoked on every state change.
func WithObserver(observe func(State)) Option {
	return func(o *Orchestrator) { o.observe = observe }
}

// WithProjection rebuilds FrameInputs.Projection from the current target size
// at the start of every frame, after any pending resize is applied.
func WithProjection(project func(width, height int) math.Mat4) Option {
	return func(o *Orchestrator) { o.project = project }
}

// Orchestrator runs Geometry, Occlusion, Blur, Composition and presentation
// in order, and applies resize requests only between frames.
type Orchestrator struct {
	backend Backend
	resize  ResizeSlot
	running atomic.Bool
	log     *zap.Logger

	present func() error
	observe func(State)
	project func(width, height int) math.Mat4

	mu     sync.Mutex
	state  State
	stats  Stats
	frames uint64
}

// New creates an orchestrator driving backend.
func New(backend Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend: backend,
		log:     logger.Named("pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RequestResize queues a new viewport size for the next frame boundary.
// It may be called from any goroutine, including during a frame.
func (o *Orchestrator) RequestResize(width, height int) {
	o.resize.Request(width, height)
}

// Frame renders and presents one frame. A pass failure returns the
// orchestrator to Idle and is returned wrapped; callers treat it as fatal.
func (o *Orchestrator) Frame(in FrameInputs) error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrFrameInProgress
	}
	defer o.running.Store(false)

	if err := o.applyResize(); err != nil {
		return err
	}
	if o.project != nil {
		in.Projection = o.project(o.backend.Size())
	}
	in.Params = in.Params.Clamp()

	var stats Stats
	frameStart := time.Now()

	for _, pass := range Passes {
		o.setState(stateFor(pass))
		start := time.Now()
		if err := o.run(pass, in); err != nil {
			o.setState(StateIdle)
			o.log.Error("pass failed", zap.Stringer("pass", pass), zap.Error(err))
			return fmt.Errorf("%s pass: %w", pass, err)
		}
		stats.Passes[pass] = time.Since(start)
	}

	o.setState(StatePresented)
	if o.present != nil {
		start := time.Now()
		if err := o.present(); err != nil {
			o.setState(StateIdle)
			return fmt.Errorf("presenting frame: %w", err)
		}
		stats.Present = time.Since(start)
	}
	stats.Total = time.Since(frameStart)

	o.mu.Lock()
	o.stats = stats
	o.frames++
	o.mu.Unlock()

	o.setState(StateIdle)
	return nil
}

func (o *Orchestrator) run(pass Pass, in FrameInputs) error {
	switch pass {
	case PassGeometry:
		return o.backend.Geometry(in)
	case PassOcclusion:
		return o.backend.Occlusion(in)
	case PassBlur:
		return o.backend.Blur(in.Params.BlurEnabled)
	case PassComposition:
		return o.backend.Compose()
	}
	return fmt.Errorf("unknown pass %d", int(pass))
}

// applyResize drains the slot. It runs only while Idle.
func (o *Orchestrator) applyResize() error {
	width, height, ok := o.resize.Take()
	if !ok {
		return nil
	}
	if w, h := o.backend.Size(); w == width && h == height {
		return nil
	}
	if err := o.backend.Resize(width, height); err != nil {
		return fmt.Errorf("resizing render targets to %dx%d: %w", width, height, err)
	}
	o.log.Info("render targets resized", zap.Int("width", width), zap.Int("height", height))
	return nil
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	if o.observe != nil {
		o.observe(s)
	}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Stats returns the timings of the last completed frame.
func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}

// Frames returns the number of frames presented.
func (o *Orchestrator) Frames() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.frames
}

// Size returns the current render target size.
func (o *Orchestrator) Size() (width, height int) {
	return o.backend.Size()
}

// ResizePending reports whether a resize waits for the next frame.
func (o *Orchestrator) ResizePending() bool {
	return o.resize.Pending()
}
