// Package dedupe tracks recently processed event identities.
package dedupe

// DefaultCapacity is the number of identities retained when no option is given.
const DefaultCapacity = 1000

// Window remembers the most recent identities in insertion order.
// When full, recording a new identity evicts the oldest one.
//
// Window is not safe for concurrent use; it is owned by the poll loop.
type Window struct {
	ring     []string            // circular buffer of ids, oldest at head once full
	seen     map[string]struct{} // membership for ring contents
	head     int                 // next slot to overwrite
	size     int                 // number of live entries
	capacity int
}

// New creates a Window with configuration options.
func New(opts ...Option) *Window {
	w := &Window{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(w)
	}
	if w.capacity <= 0 {
		w.capacity = DefaultCapacity
	}
	w.ring = make([]string, w.capacity)
	w.seen = make(map[string]struct{}, w.capacity)
	return w
}

// Seen reports whether id is currently in the window.
func (w *Window) Seen(id string) bool {
	_, ok := w.seen[id]
	return ok
}

// Record inserts id. Recording an id that is already present is a no-op
// and does not refresh its position.
func (w *Window) Record(id string) {
	if _, ok := w.seen[id]; ok {
		return
	}
	if w.size == w.capacity {
		delete(w.seen, w.ring[w.head])
	} else {
		w.size++
	}
	w.ring[w.head] = id
	w.seen[id] = struct{}{}
	w.head = (w.head + 1) % w.capacity
}

// Len returns the number of identities held.
func (w *Window) Len() int { return w.size }

// Cap returns the maximum number of identities held.
func (w *Window) Cap() int { return w.capacity }

// Reset forgets every identity.
func (w *Window) Reset() {
	clear(w.ring)
	clear(w.seen)
	w.head = 0
	w.size = 0
}
