package pigpio

import (
	"sort"
	"sync"
)

// HandleKind names the type of daemon resource a handle refers to.
type HandleKind string

const (
	KindI2C    HandleKind = "i2c"
	KindSPI    HandleKind = "spi"
	KindSerial HandleKind = "serial"
)

// handleSet tracks open handles of one kind. Safe for concurrent use; a nil
// set tracks nothing.
type handleSet struct {
	mu      sync.Mutex
	handles map[int]struct{}
}

func newHandleSet() *handleSet {
	return &handleSet{handles: map[int]struct{}{}}
}

func (s *handleSet) add(h int) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.handles[h] = struct{}{}
}

func (s *handleSet) remove(h int) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.handles, h)
}

func (s *handleSet) contains(h int) bool {
	if s == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.handles[h]
	return ok
}

// snapshot returns the handles in ascending order.
func (s *handleSet) snapshot() []int {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, 0, len(s.handles))
	for h := range s.handles {
		out = append(out, h)
	}
	sort.Ints(out)

	return out
}
