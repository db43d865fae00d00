package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func feed(in *Input, events ...sdl.Event) {
	in.events = in.events[:0]
	for _, ev := range events {
		if e, ok := Translate(ev); ok {
			in.record(e)
		}
	}
}

func keyDown(sc sdl.Scancode, repeat bool) *sdl.KeyboardEvent {
	var r uint8
	if repeat {
		r = 1
	}
	return &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: r, Keysym: sdl.Keysym{Scancode: sc}}
}

func keyUp(sc sdl.Scancode) *sdl.KeyboardEvent {
	return &sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: sc}}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name  string
		event sdl.Event
		want  EventType
		ok    bool
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, EventQuit, true},
		{"size changed", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 800, Data2: 600}, EventWindowResize, true},
		{"window moved", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_MOVED}, EventNone, false},
		{"key down", keyDown(sdl.SCANCODE_B, false), EventKeyDown, true},
		{"key up", keyUp(sdl.SCANCODE_B), EventKeyUp, true},
		{"mouse move", &sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 3, YRel: -2}, EventMouseMove, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := Translate(tt.event)
			if ok != tt.ok || e.Type != tt.want {
				t.Errorf("Translate = %+v, %v; want type %d, %v", e, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResizeKeepsLast(t *testing.T) {
	in := New()
	feed(in,
		&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 640, Data2: 480},
		&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 800, Data2: 600},
	)

	w, h, ok := in.Resize()
	if !ok || w != 800 || h != 600 {
		t.Errorf("Resize = %d, %d, %v; want 800, 600, true", w, h, ok)
	}
}

func TestKeyPressesAndRepeats(t *testing.T) {
	in := New()
	feed(in, keyDown(sdl.SCANCODE_UP, false), keyDown(sdl.SCANCODE_UP, true), keyDown(sdl.SCANCODE_UP, true))

	if !in.IsKeyPressed(sdl.SCANCODE_UP) {
		t.Error("expected UP pressed")
	}
	if n := in.KeyPresses(sdl.SCANCODE_UP); n != 3 {
		t.Errorf("KeyPresses = %d, want 3", n)
	}

	feed(in, keyDown(sdl.SCANCODE_UP, true))
	if in.IsKeyPressed(sdl.SCANCODE_UP) {
		t.Error("auto-repeat should not count as a fresh press")
	}
}

func TestKeyHeldAcrossFrames(t *testing.T) {
	in := New()
	feed(in, keyDown(sdl.SCANCODE_W, false))
	feed(in)
	if !in.IsKeyHeld(sdl.SCANCODE_W) {
		t.Error("W should stay held with no new events")
	}

	feed(in, keyUp(sdl.SCANCODE_W))
	if in.IsKeyHeld(sdl.SCANCODE_W) {
		t.Error("W should be released")
	}
}

func TestMouseDelta(t *testing.T) {
	in := New()
	feed(in,
		&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 3, YRel: -2},
		&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 4, YRel: 1},
	)

	dx, dy := in.MouseDelta()
	if dx != 7 || dy != -1 {
		t.Errorf("MouseDelta = %d, %d; want 7, -1", dx, dy)
	}
}
