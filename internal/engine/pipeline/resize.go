package pipeline

import "sync"

// ResizeSlot holds at most one pending viewport size. Later requests
// overwrite earlier ones. Safe for use from any goroutine.
type ResizeSlot struct {
	mu      sync.Mutex
	width   int
	height  int
	pending bool
}

// Request records a new size. Dimensions below 1 are raised to 1.
func (s *ResizeSlot) Request(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.width = max(width, 1)
	s.height = max(height, 1)
	s.pending = true
}

// Take empties the slot and returns its contents.
func (s *ResizeSlot) Take() (width, height int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending {
		return 0, 0, false
	}
	s.pending = false
	return s.width, s.height, true
}

// Pending reports whether a request is waiting.
func (s *ResizeSlot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
