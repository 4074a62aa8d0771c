// Package store holds the console's client-side state: one ordered,
// id-keyed container per entity family.
package store

import "sync"

// Record is anything with a stable identity.
type Record interface {
	Key() string
}

// Listener is notified with the slice version after each mutation.
type Listener func(version uint64)

// Slice is an ordered collection holding at most one record per key. It is
// safe for concurrent use; listeners run after the lock is released.
type Slice[T Record] struct {
	mu        sync.RWMutex
	records   []T
	index     map[string]int
	version   uint64
	listeners map[int]Listener
	nextID    int
}

// NewSlice returns an empty slice.
func NewSlice[T Record]() *Slice[T] {
	return &Slice[T]{
		index:     make(map[string]int),
		listeners: make(map[int]Listener),
	}
}

// ReplaceAll overwrites the contents with records. When a key repeats, the
// last occurrence wins and keeps the position of the first.
func (s *Slice[T]) ReplaceAll(records []T) {
	s.mutate(func() bool {
		s.records = make([]T, 0, len(records))
		s.index = make(map[string]int, len(records))
		for _, r := range records {
			if i, ok := s.index[r.Key()]; ok {
				s.records[i] = r
				continue
			}
			s.index[r.Key()] = len(s.records)
			s.records = append(s.records, r)
		}
		return true
	})
}

// UpsertOne replaces the record with the same key in place, or appends it.
func (s *Slice[T]) UpsertOne(r T) {
	s.mutate(func() bool {
		s.put(r)
		return true
	})
}

// AppendOne adds r at the end. An existing record with the same key is
// replaced in place instead so keys stay unique.
func (s *Slice[T]) AppendOne(r T) {
	s.UpsertOne(r)
}

// PatchByID applies fn to a copy of the record with id and stores the result.
// Other records are not touched. It reports whether id was found.
func (s *Slice[T]) PatchByID(id string, fn func(*T)) bool {
	return s.mutate(func() bool {
		i, ok := s.index[id]
		if !ok {
			return false
		}
		r := s.records[i]
		fn(&r)
		if r.Key() != id {
			// Re-keying goes through Replace.
			return false
		}
		s.records[i] = r
		return true
	})
}

// Replace swaps the record stored under oldID for r, keeping its position.
// If r's key already exists elsewhere, that other copy is dropped. It
// reports whether oldID was found.
func (s *Slice[T]) Replace(oldID string, r T) bool {
	return s.mutate(func() bool {
		i, ok := s.index[oldID]
		if !ok {
			return false
		}
		newID := r.Key()
		if j, dup := s.index[newID]; dup && j != i {
			s.records = append(s.records[:j], s.records[j+1:]...)
			s.reindex()
			i = s.index[oldID]
		}
		s.records[i] = r
		delete(s.index, oldID)
		s.index[newID] = i
		return true
	})
}

// Remove deletes the record with id, reporting whether it existed.
func (s *Slice[T]) Remove(id string) bool {
	return s.mutate(func() bool {
		i, ok := s.index[id]
		if !ok {
			return false
		}
		s.records = append(s.records[:i], s.records[i+1:]...)
		s.reindex()
		return true
	})
}

// Reset empties the slice.
func (s *Slice[T]) Reset() {
	s.ReplaceAll(nil)
}

// Get returns the record with id.
func (s *Slice[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[id]; ok {
		return s.records[i], true
	}
	var zero T
	return zero, false
}

// All returns the records in order. The returned slice is a copy.
func (s *Slice[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.records))
	copy(out, s.records)
	return out
}

// Keys returns the record keys in order.
func (s *Slice[T]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.records))
	for i, r := range s.records {
		out[i] = r.Key()
	}
	return out
}

// Len returns the number of records.
func (s *Slice[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Version increases by one on every applied mutation.
func (s *Slice[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn and returns a func that removes it.
func (s *Slice[T]) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// mutate runs apply under the write lock and, when it reports a change,
// bumps the version and notifies listeners.
func (s *Slice[T]) mutate(apply func() bool) bool {
	s.mu.Lock()
	if !apply() {
		s.mu.Unlock()
		return false
	}
	s.version++
	version := s.version
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(version)
	}
	return true
}

// put must be called with mu held.
func (s *Slice[T]) put(r T) {
	if i, ok := s.index[r.Key()]; ok {
		s.records[i] = r
		return
	}
	s.index[r.Key()] = len(s.records)
	s.records = append(s.records, r)
}

// reindex must be called with mu held.
func (s *Slice[T]) reindex() {
	s.index = make(map[string]int, len(s.records))
	for i, r := range s.records {
		s.index[r.Key()] = i
	}
}
