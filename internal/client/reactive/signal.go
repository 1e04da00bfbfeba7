// Package reactive provides observable state cells.
//
// A Signal holds a value and notifies its subscribers after every change.
// Subscribers run synchronously on the goroutine that performed the change,
// in registration order, so a renderer subscribed to a signal always sees
// the state that triggered it.
package reactive

import "sync"

// Signal is a mutable cell that notifies subscribers on change.
type Signal[T any] struct {
	mu     sync.Mutex
	value  T
	nextID uint64
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// New returns a Signal holding initial.
func New[T any](initial T) *Signal[T] {
	return &Signal[T]{value: initial}
}

// Get returns the current value. Slice and map values are shared with the
// cell and must be treated as read-only.
func (s *Signal[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the value and notifies subscribers.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	s.value = value
	subs := s.snapshot()
	s.mu.Unlock()
	notify(subs, value)
}

// Update replaces the value with fn(current) and notifies subscribers.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	s.value = fn(s.value)
	value := s.value
	subs := s.snapshot()
	s.mu.Unlock()
	notify(subs, value)
}

// Subscribe registers fn and returns a function that removes it.
func (s *Signal[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Signal[T]) snapshot() []subscriber[T] {
	if len(s.subs) == 0 {
		return nil
	}
	out := make([]subscriber[T], len(s.subs))
	copy(out, s.subs)
	return out
}

func notify[T any](subs []subscriber[T], value T) {
	for _, sub := range subs {
		sub.fn(value)
	}
}
