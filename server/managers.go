package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gloworm-vision/pigpio/hardware/pigpio"
)

// maxEdges is how many recent edges are kept per watched pin.
const maxEdges = 64

var errNotWatched = errors.New("pin is not watched")

type watch struct {
	remove func()
	edges  []pigpio.StateChangeEvent
}

// watchManager records recent edges of the pins being watched. Edges arrive on
// the monitor's dispatch goroutine while handlers read them.
type watchManager struct {
	client *pigpio.Client

	mu      sync.Mutex
	watches map[int]*watch
}

// Watch starts recording edges of pin. Watching a pin twice keeps the first
// watch.
func (w *watchManager) Watch(pin int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watches[pin]; ok {
		return nil
	}

	ws := &watch{}
	remove, err := w.client.AddPinListener(pin, pigpio.ListenerFunc(func(e pigpio.StateChangeEvent) {
		w.record(ws, e)
	}))
	if err != nil {
		return fmt.Errorf("unable to watch pin %d: %w", pin, err)
	}

	ws.remove = remove
	w.watches[pin] = ws

	return nil
}

func (w *watchManager) record(ws *watch, e pigpio.StateChangeEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ws.edges = append(ws.edges, e)
	if len(ws.edges) > maxEdges {
		ws.edges = ws.edges[len(ws.edges)-maxEdges:]
	}
}

// Unwatch stops recording edges of pin and forgets the recorded ones.
func (w *watchManager) Unwatch(pin int) error {
	w.mu.Lock()
	ws, ok := w.watches[pin]
	delete(w.watches, pin)
	w.mu.Unlock()

	if !ok {
		return errNotWatched
	}

	ws.remove()

	return nil
}

// Edges returns the recorded edges of pin, oldest first.
func (w *watchManager) Edges(pin int) ([]pigpio.StateChangeEvent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ws, ok := w.watches[pin]
	if !ok {
		return nil, errNotWatched
	}

	return append([]pigpio.StateChangeEvent{}, ws.edges...), nil
}

// Close stops every watch.
func (w *watchManager) Close() {
	w.mu.Lock()
	watches := w.watches
	w.watches = map[int]*watch{}
	w.mu.Unlock()

	for _, ws := range watches {
		ws.remove()
	}
}
