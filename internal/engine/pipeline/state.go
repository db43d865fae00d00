package pipeline

import "fmt"

// State is the orchestrator's position within a frame.
type State int

const (
	StateIdle State = iota
	StateGeometry
	StateOcclusion
	StateBlur
	StateComposition
	StatePresented
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGeometry:
		return "geometry"
	case StateOcclusion:
		return "occlusion"
	case StateBlur:
		return "blur"
	case StateComposition:
		return "composition"
	case StatePresented:
		return "presented"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// stateFor maps a pass to the state the orchestrator holds while it runs.
func stateFor(p Pass) State {
	return State(int(p) + 1)
}
