// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Repeat bool // Key down generated by auto-repeat
	Width  int
	Height int
	DeltaX int // Relative mouse motion
	DeltaY int
}

// Input handles all input processing.
type Input struct {
	events []Event
	held   map[sdl.Scancode]bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		held:   make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events.
// Returns true if the application should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		e, ok := Translate(event)
		if !ok {
			continue
		}
		i.record(e)
		if e.Type == EventQuit {
			quit = true
		}
	}
	return quit
}

func (i *Input) record(e Event) {
	switch e.Type {
	case EventKeyDown:
		i.held[e.Key] = true
	case EventKeyUp:
		delete(i.held, e.Key)
	}
	i.events = append(i.events, e)
}

// Translate converts an SDL event. ok is false for events the viewer ignores.
func Translate(event sdl.Event) (e Event, ok bool) {
	switch ev := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		// SIZE_CHANGED covers both user resizes and programmatic ones
		if ev.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{Type: EventWindowResize, Width: int(ev.Data1), Height: int(ev.Data2)}, true
		}

	case *sdl.KeyboardEvent:
		switch ev.Type {
		case sdl.KEYDOWN:
			return Event{Type: EventKeyDown, Key: ev.Keysym.Scancode, Repeat: ev.Repeat != 0}, true
		case sdl.KEYUP:
			return Event{Type: EventKeyUp, Key: ev.Keysym.Scancode}, true
		}

	case *sdl.MouseMotionEvent:
		return Event{Type: EventMouseMove, DeltaX: int(ev.XRel), DeltaY: int(ev.YRel)}, true
	}
	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a key went down this frame, ignoring auto-repeat.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode && !e.Repeat {
			return true
		}
	}
	return false
}

// KeyPresses counts key-down events for a key this frame, including auto-repeat.
func (i *Input) KeyPresses(scancode sdl.Scancode) int {
	n := 0
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			n++
		}
	}
	return n
}

// IsKeyHeld reports whether a key is currently down.
func (i *Input) IsKeyHeld(scancode sdl.Scancode) bool {
	return i.held[scancode]
}

// MouseDelta sums relative mouse motion this frame.
func (i *Input) MouseDelta() (dx, dy int) {
	for _, e := range i.events {
		if e.Type == EventMouseMove {
			dx += e.DeltaX
			dy += e.DeltaY
		}
	}
	return dx, dy
}

// Resize returns the last window size change this frame.
func (i *Input) Resize() (width, height int, ok bool) {
	for _, e := range i.events {
		if e.Type == EventWindowResize {
			width, height, ok = e.Width, e.Height, true
		}
	}
	return width, height, ok
}
