package events

import "sync"

// registry holds listeners of type L and optionally the last notified value.
// It backs both CallbackEvent and ChannelEvent.
type registry[T any, L any] struct {
	mu        sync.RWMutex
	listeners map[uint64]L
	nextID    uint64
	replay    bool // Deliver the last value to new listeners
	last      T
	hasLast   bool
}

func newRegistry[T any, L any](replay bool) *registry[T, L] {
	return &registry[T, L]{
		listeners: make(map[uint64]L),
		replay:    replay,
	}
}

// add stores listener and returns its id plus the value to replay, if any
func (r *registry[T, L]) add(listener L) (id uint64, replay T, shouldReplay bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id = r.nextID
	r.nextID++
	r.listeners[id] = listener
	return id, r.last, r.replay && r.hasLast
}

func (r *registry[T, L]) remove(id uint64) {
	r.mu.Lock()
	delete(r.listeners, id)
	r.mu.Unlock()
}

// snapshot records value as the last event and returns the current listeners.
// Listeners are invoked by the caller outside the lock so they may unregister themselves.
func (r *registry[T, L]) snapshot(value T) []L {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replay {
		r.last = value
		r.hasLast = true
	}
	result := make([]L, 0, len(r.listeners))
	for _, l := range r.listeners {
		result = append(result, l)
	}
	return result
}

func (r *registry[T, L]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}
