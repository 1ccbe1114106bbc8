package pigpio

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Listener receives state change events.
type Listener interface {
	OnStateChange(e StateChangeEvent)
}

// ListenerFunc adapts a function to a Listener. Functions can't be compared,
// so every registration of a ListenerFunc is distinct; use the returned
// remove func to unregister it.
type ListenerFunc func(e StateChangeEvent)

func (f ListenerFunc) OnStateChange(e StateChangeEvent) {
	f(e)
}

type listenerEntry struct {
	id       uint64
	listener Listener
}

// listenerSet is an immutable snapshot; writers replace it wholesale.
type listenerSet struct {
	global []listenerEntry
	pins   map[int][]listenerEntry
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Enable is called when a pin gets its first pin-scoped listener.
	Enable func(pin int) error

	// Disable is called when a pin loses its last pin-scoped listener.
	Disable func(pin int) error

	Logger  *logrus.Logger
	Metrics *Metrics
}

// Registry holds global and pin-scoped listeners. Dispatch reads a snapshot
// and never blocks on registration, so listeners may (un)register from inside
// a callback.
type Registry struct {
	config RegistryConfig

	mu      sync.Mutex
	nextID  uint64
	current atomic.Pointer[listenerSet]
}

// NewRegistry creates an empty registry.
func NewRegistry(config RegistryConfig) *Registry {
	r := &Registry{config: config}
	r.current.Store(&listenerSet{pins: map[int][]listenerEntry{}})
	return r
}

func sameListener(a, b Listener) bool {
	if a == nil || b == nil {
		return false
	}

	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}

	return a == b
}

func indexOf(entries []listenerEntry, l Listener) int {
	for i, e := range entries {
		if sameListener(e.listener, l) {
			return i
		}
	}

	return -1
}

func withoutID(entries []listenerEntry, id uint64) []listenerEntry {
	out := make([]listenerEntry, 0, len(entries))
	for _, e := range entries {
		if e.id != id {
			out = append(out, e)
		}
	}

	return out
}

func (s *listenerSet) clone() *listenerSet {
	pins := make(map[int][]listenerEntry, len(s.pins))
	for pin, entries := range s.pins {
		pins[pin] = entries
	}

	return &listenerSet{global: s.global, pins: pins}
}

// AddListener registers l for every event. Registering the same comparable
// listener twice is a no-op. The returned func removes the registration.
func (r *Registry) AddListener(l Listener) (remove func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.current.Load()
	if i := indexOf(cur.global, l); i >= 0 {
		return r.globalRemover(cur.global[i].id)
	}

	r.nextID++
	entry := listenerEntry{id: r.nextID, listener: l}

	next := cur.clone()
	next.global = append(append([]listenerEntry(nil), cur.global...), entry)
	r.current.Store(next)

	return r.globalRemover(entry.id)
}

func (r *Registry) globalRemover(id uint64) func() {
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		cur := r.current.Load()
		next := cur.clone()
		next.global = withoutID(cur.global, id)
		r.current.Store(next)
	}
}

// RemoveListener unregisters a global listener previously added with
// AddListener.
func (r *Registry) RemoveListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.current.Load()
	i := indexOf(cur.global, l)
	if i < 0 {
		return
	}

	next := cur.clone()
	next.global = withoutID(cur.global, cur.global[i].id)
	r.current.Store(next)
}

// RemoveAllListeners drops every global listener.
func (r *Registry) RemoveAllListeners() {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.current.Load().clone()
	next.global = nil
	r.current.Store(next)
}

// AddPinListener registers l for events of one pin. The first listener for a
// pin enables notifications for it; if that fails the registration is undone.
func (r *Registry) AddPinListener(pin int, l Listener) (remove func(), err error) {
	if err := validateRange("addPinListener", "pin", int64(pin), MinGPIO, MaxUserGPIO); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.current.Load()
	existing := cur.pins[pin]
	if i := indexOf(existing, l); i >= 0 {
		return r.pinRemover(pin, existing[i].id), nil
	}

	if len(existing) == 0 && r.config.Enable != nil {
		if err := r.config.Enable(pin); err != nil {
			return nil, fmt.Errorf("unable to enable notifications for pin %d: %w", pin, err)
		}
	}

	r.nextID++
	entry := listenerEntry{id: r.nextID, listener: l}

	next := cur.clone()
	next.pins[pin] = append(append([]listenerEntry(nil), existing...), entry)
	r.current.Store(next)

	return r.pinRemover(pin, entry.id), nil
}

func (r *Registry) pinRemover(pin int, id uint64) func() {
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.removePinEntry(pin, id)
	}
}

// removePinEntry must be called with mu held.
func (r *Registry) removePinEntry(pin int, id uint64) {
	cur := r.current.Load()
	existing, ok := cur.pins[pin]
	if !ok {
		return
	}

	remaining := withoutID(existing, id)
	if len(remaining) == len(existing) {
		return
	}

	next := cur.clone()
	if len(remaining) == 0 {
		delete(next.pins, pin)
	} else {
		next.pins[pin] = remaining
	}
	r.current.Store(next)

	if len(remaining) == 0 {
		r.disable(pin)
	}
}

func (r *Registry) disable(pin int) {
	if r.config.Disable == nil {
		return
	}

	if err := r.config.Disable(pin); err != nil && r.config.Logger != nil {
		r.config.Logger.WithField("pin", pin).Warnf("unable to disable notifications: %s", err)
	}
}

// RemovePinListener unregisters a pin-scoped listener. Removing the last
// listener of a pin disables its notifications.
func (r *Registry) RemovePinListener(pin int, l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.current.Load().pins[pin]
	if i := indexOf(existing, l); i >= 0 {
		r.removePinEntry(pin, existing[i].id)
	}
}

// RemovePinListeners drops every listener of one pin.
func (r *Registry) RemovePinListeners(pin int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.current.Load()
	if _, ok := cur.pins[pin]; !ok {
		return
	}

	next := cur.clone()
	delete(next.pins, pin)
	r.current.Store(next)

	r.disable(pin)
}

// RemoveAllPinListeners drops every pin-scoped listener.
func (r *Registry) RemoveAllPinListeners() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.current.Load()
	r.current.Store(&listenerSet{global: cur.global, pins: map[int][]listenerEntry{}})

	for pin := range cur.pins {
		r.disable(pin)
	}
}

// PinListenerCount returns the number of listeners registered for pin.
func (r *Registry) PinListenerCount(pin int) int {
	return len(r.current.Load().pins[pin])
}

// ListenerCount returns the number of global listeners.
func (r *Registry) ListenerCount() int {
	return len(r.current.Load().global)
}

// Dispatch delivers e to every global listener and to the listeners of e.Pin.
// A panicking listener is logged and skipped; the others still get the event.
func (r *Registry) Dispatch(e StateChangeEvent) {
	set := r.current.Load()

	r.config.Metrics.dispatched()

	for _, entry := range set.global {
		r.deliver(entry.listener, e)
	}

	for _, entry := range set.pins[e.Pin] {
		r.deliver(entry.listener, e)
	}
}

func (r *Registry) deliver(l Listener, e StateChangeEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			r.config.Metrics.listenerPanicked()
			if r.config.Logger != nil {
				r.config.Logger.WithField("pin", e.Pin).Errorf("state change listener panicked: %v", rec)
			}
		}
	}()

	l.OnStateChange(e)
}
