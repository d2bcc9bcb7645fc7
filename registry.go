package rowan

import (
	"fmt"
	"iter"
	"sync"
)

// Handle is a weak reference to a value of type T held in a Registry. The
// zero Handle refers to nothing. A handle whose slot has been removed (and
// possibly reused) is stale and fails validation instead of aliasing the
// new occupant.
type Handle[T any] struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle[T]) IsZero() bool { return h.generation == 0 }

// String formats the handle for logs.
func (h Handle[T]) String() string {
	if h.IsZero() {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(%d@%d)", h.index, h.generation)
}

type registrySlot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// Registry owns values of type T and hands out generation-checked handles to
// them. It is safe for concurrent use.
type Registry[T any] struct {
	mu    sync.RWMutex
	slots []registrySlot[T]
	free  []uint32
	live  int
}

// NewRegistry returns an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Insert stores v and returns its handle.
func (r *Registry[T]) Insert(v T) Handle[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, registrySlot[T]{})
	}
	s := &r.slots[idx]
	s.generation++
	if s.generation == 0 {
		// Wrapped: skip the generation reserved for the zero Handle.
		s.generation = 1
	}
	s.value = v
	s.live = true
	r.live++
	return Handle[T]{index: idx, generation: s.generation}
}

// Get returns the value for h. The zero handle yields ErrNilReference and a
// removed or foreign handle yields ErrStaleHandle.
func (r *Registry[T]) Get(h Handle[T]) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, err := r.slot(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.value, nil
}

// Contains reports whether h refers to a live value.
func (r *Registry[T]) Contains(h Handle[T]) bool {
	_, err := r.Get(h)
	return err == nil
}

// Remove releases the slot for h and returns the value it held. Subsequent
// lookups with h fail with ErrStaleHandle.
func (r *Registry[T]) Remove(h Handle[T]) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	s, err := r.slot(h)
	if err != nil {
		return zero, err
	}
	v := s.value
	s.value = zero
	s.live = false
	r.free = append(r.free, h.index)
	r.live--
	return v, nil
}

// Len returns the number of live values.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.live
}

// All iterates over live handles and values in slot order. The registry is
// read-locked for the duration of the iteration; do not call Insert or
// Remove from the loop body.
func (r *Registry[T]) All() iter.Seq2[Handle[T], T] {
	return func(yield func(Handle[T], T) bool) {
		r.mu.RLock()
		defer r.mu.RUnlock()
		for i := range r.slots {
			s := &r.slots[i]
			if !s.live {
				continue
			}
			if !yield(Handle[T]{index: uint32(i), generation: s.generation}, s.value) {
				return
			}
		}
	}
}

// slot must be called with r.mu held.
func (r *Registry[T]) slot(h Handle[T]) (*registrySlot[T], error) {
	if h.IsZero() {
		return nil, fmt.Errorf("rowan: registry lookup: %w", ErrNilReference)
	}
	if int(h.index) >= len(r.slots) {
		return nil, fmt.Errorf("rowan: registry lookup %v: %w", h, ErrStaleHandle)
	}
	s := &r.slots[h.index]
	if !s.live || s.generation != h.generation {
		return nil, fmt.Errorf("rowan: registry lookup %v: %w", h, ErrStaleHandle)
	}
	return s, nil
}
