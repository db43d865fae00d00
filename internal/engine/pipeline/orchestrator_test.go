package pipeline

import (
	"errors"
	"sync"
	"testing"

	"github.com/Faultbox/ssao/pkg/math"
)

// recordingBackend logs every call and optionally fails one pass.
type recordingBackend struct {
	width, height int
	calls         []string
	failPass      string
	failResize    bool
	resizes       [][2]int
	blurFlags     []bool
	onGeometry    func()
	lastInputs    FrameInputs
}

func newRecordingBackend(w, h int) *recordingBackend {
	return &recordingBackend{width: w, height: h}
}

func (b *recordingBackend) step(name string) error {
	b.calls = append(b.calls, name)
	if b.failPass == name {
		return errors.New(name + " exploded")
	}
	return nil
}

func (b *recordingBackend) Resize(w, h int) error {
	b.calls = append(b.calls, "resize")
	if b.failResize {
		return ErrResourceAllocation
	}
	b.width, b.height = w, h
	b.resizes = append(b.resizes, [2]int{w, h})
	return nil
}

func (b *recordingBackend) Size() (int, int) { return b.width, b.height }

func (b *recordingBackend) Geometry(in FrameInputs) error {
	b.lastInputs = in
	if b.onGeometry != nil {
		b.onGeometry()
	}
	return b.step("geometry")
}

func (b *recordingBackend) Occlusion(in FrameInputs) error { return b.step("occlusion") }

func (b *recordingBackend) Blur(enabled bool) error {
	b.blurFlags = append(b.blurFlags, enabled)
	return b.step("blur")
}

func (b *recordingBackend) Compose() error { return b.step("composition") }

func frameInputs() FrameInputs {
	return FrameInputs{
		Model:      math.Identity(),
		View:       math.Identity(),
		Projection: math.Identity(),
		Params:     DefaultParams(),
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFramePassOrder(t *testing.T) {
	b := newRecordingBackend(64, 48)
	var states []State
	presented := 0
	o := New(b,
		WithObserver(func(s State) { states = append(states, s) }),
		WithPresenter(func() error {
			presented++
			b.calls = append(b.calls, "present")
			return nil
		}),
	)

	if err := o.Frame(frameInputs()); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	wantCalls := []string{"geometry", "occlusion", "blur", "composition", "present"}
	if !equalStrings(b.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", b.calls, wantCalls)
	}

	wantStates := []State{StateGeometry, StateOcclusion, StateBlur, StateComposition, StatePresented, StateIdle}
	if len(states) != len(wantStates) {
		t.Fatalf("states = %v, want %v", states, wantStates)
	}
	for i := range states {
		if states[i] != wantStates[i] {
			t.Errorf("state %d = %s, want %s", i, states[i], wantStates[i])
		}
	}

	if presented != 1 || o.Frames() != 1 {
		t.Errorf("presented %d times, frames %d", presented, o.Frames())
	}
	if o.State() != StateIdle {
		t.Errorf("state after frame = %s, want idle", o.State())
	}
}

func TestBlurDisabledStillRunsBlurPass(t *testing.T) {
	b := newRecordingBackend(8, 8)
	o := New(b)

	in := frameInputs()
	in.Params.BlurEnabled = false
	if err := o.Frame(in); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	if len(b.blurFlags) != 1 || b.blurFlags[0] {
		t.Errorf("blur flags = %v, want [false]", b.blurFlags)
	}
}

func TestResizeAppliedAtFrameStart(t *testing.T) {
	b := newRecordingBackend(1024, 768)
	o := New(b)

	o.RequestResize(800, 600)
	if !o.ResizePending() {
		t.Fatal("expected pending resize")
	}
	if w, h := o.Size(); w != 1024 || h != 768 {
		t.Errorf("size changed before frame: %dx%d", w, h)
	}

	if err := o.Frame(frameInputs()); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	if b.calls[0] != "resize" {
		t.Errorf("resize should run before geometry, calls = %v", b.calls)
	}
	if w, h := o.Size(); w != 800 || h != 600 {
		t.Errorf("size after frame = %dx%d, want 800x600", w, h)
	}
	if o.ResizePending() {
		t.Error("slot should be empty after frame")
	}
}

func TestResizeDuringFrameDeferred(t *testing.T) {
	b := newRecordingBackend(100, 100)
	o := New(b)

	// A windowing callback fires mid-frame
	b.onGeometry = func() { o.RequestResize(50, 40) }

	if err := o.Frame(frameInputs()); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if len(b.resizes) != 0 {
		t.Fatalf("resize applied mid-frame: %v", b.resizes)
	}
	if w, h := o.Size(); w != 100 || h != 100 {
		t.Errorf("size = %dx%d during first frame", w, h)
	}

	b.onGeometry = nil
	if err := o.Frame(frameInputs()); err != nil {
		t.Fatalf("second Frame failed: %v", err)
	}
	if len(b.resizes) != 1 || b.resizes[0] != [2]int{50, 40} {
		t.Errorf("resizes = %v, want [[50 40]]", b.resizes)
	}
}

func TestResizeLastRequestWins(t *testing.T) {
	b := newRecordingBackend(100, 100)
	o := New(b)

	o.RequestResize(10, 10)
	o.RequestResize(20, 20)
	o.RequestResize(30, 25)

	if err := o.Frame(frameInputs()); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if len(b.resizes) != 1 || b.resizes[0] != [2]int{30, 25} {
		t.Errorf("resizes = %v, want only [30 25]", b.resizes)
	}
}

func TestResizeToCurrentSizeSkipped(t *testing.T) {
	b := newRecordingBackend(64, 64)
	o := New(b)

	o.RequestResize(64, 64)
	if err := o.Frame(frameInputs()); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if len(b.resizes) != 0 {
		t.Errorf("unchanged size should not reallocate, got %v", b.resizes)
	}
}

func TestResizeFailure(t *testing.T) {
	b := newRecordingBackend(64, 64)
	b.failResize = true
	o := New(b)

	o.RequestResize(32, 32)
	err := o.Frame(frameInputs())
	if !errors.Is(err, ErrResourceAllocation) {
		t.Fatalf("expected ErrResourceAllocation, got %v", err)
	}
	if w, h := o.Size(); w != 64 || h != 64 {
		t.Errorf("size after failed resize = %dx%d, want 64x64", w, h)
	}
	if o.State() != StateIdle {
		t.Errorf("state = %s, want idle", o.State())
	}
}

func TestPassFailureReturnsToIdle(t *testing.T) {
	for _, pass := range []string{"geometry", "occlusion", "blur", "composition"} {
		t.Run(pass, func(t *testing.T) {
			b := newRecordingBackend(16, 16)
			b.failPass = pass
			presented := false
			o := New(b, WithPresenter(func() error {
				presented = true
				return nil
			}))

			if err := o.Frame(frameInputs()); err == nil {
				t.Fatal("expected error")
			}
			if o.State() != StateIdle {
				t.Errorf("state = %s, want idle", o.State())
			}
			if presented {
				t.Error("failed frame should not be presented")
			}
			if o.Frames() != 0 {
				t.Errorf("frames = %d, want 0", o.Frames())
			}
			if last := b.calls[len(b.calls)-1]; last != pass {
				t.Errorf("passes ran after failure: %v", b.calls)
			}
		})
	}
}

func TestReentrantFrameRejected(t *testing.T) {
	b := newRecordingBackend(16, 16)
	var o *Orchestrator
	var inner error
	b.onGeometry = func() { inner = o.Frame(frameInputs()) }
	o = New(b)

	if err := o.Frame(frameInputs()); err != nil {
		t.Fatalf("outer Frame failed: %v", err)
	}
	if !errors.Is(inner, ErrFrameInProgress) {
		t.Errorf("inner Frame = %v, want ErrFrameInProgress", inner)
	}
	if o.Frames() != 1 {
		t.Errorf("frames = %d, want 1", o.Frames())
	}
}

func TestParamsClampedPerFrame(t *testing.T) {
	b := newRecordingBackend(16, 16)
	o := New(b)

	in := frameInputs()
	in.Params.Radius = 50
	in.Params.Bias = -1
	if err := o.Frame(in); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if got := b.lastInputs.Params; got.Radius != MaxRadius || got.Bias != 0 {
		t.Errorf("params reaching backend = %+v", got)
	}
}

func TestProjectionRebuiltFromSize(t *testing.T) {
	b := newRecordingBackend(100, 50)
	var sizes [][2]int
	o := New(b, WithProjection(func(w, h int) math.Mat4 {
		sizes = append(sizes, [2]int{w, h})
		return math.Perspective(math.Radians(45), float32(w)/float32(h), 0.1, 100)
	}))

	o.RequestResize(40, 40)
	if err := o.Frame(frameInputs()); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if len(sizes) != 1 || sizes[0] != [2]int{40, 40} {
		t.Errorf("projection built for %v, want [[40 40]]", sizes)
	}
	if b.lastInputs.Projection == math.Identity() {
		t.Error("projection was not replaced")
	}
}

func TestStatsRecorded(t *testing.T) {
	b := newRecordingBackend(16, 16)
	o := New(b)

	if err := o.Frame(frameInputs()); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	s := o.Stats()
	var sum int64
	for _, d := range s.Passes {
		if d < 0 {
			t.Errorf("negative pass duration %v", d)
		}
		sum += int64(d)
	}
	if int64(s.Total) < sum {
		t.Errorf("total %v shorter than pass sum %v", s.Total, sum)
	}
}

func TestResizeSlotConcurrent(t *testing.T) {
	var slot ResizeSlot
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			slot.Request(n, n)
		}(i)
	}
	wg.Wait()

	w, h, ok := slot.Take()
	if !ok || w != h || w < 1 || w > 50 {
		t.Errorf("Take = %d, %d, %v", w, h, ok)
	}
	if _, _, ok := slot.Take(); ok {
		t.Error("slot should be empty after Take")
	}
}

func TestResizeSlotClampsZero(t *testing.T) {
	var slot ResizeSlot
	slot.Request(0, -5)
	w, h, ok := slot.Take()
	if !ok || w != 1 || h != 1 {
		t.Errorf("Take = %d, %d, %v, want 1, 1, true", w, h, ok)
	}
}
