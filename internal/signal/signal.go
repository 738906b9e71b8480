// Package signal provides push-based value streams for view-model outputs.
//
// A Signal has any number of observers. Values are delivered synchronously,
// on the emitting goroutine, to observers in subscription order. Signals keep
// no history: an observer only sees values emitted after it subscribed.
package signal

import "sync"

// Signal is a stream of values of type T.
type Signal[T any] struct {
	mu        sync.Mutex
	nextID    uint64
	observers []observer[T]
}

type observer[T any] struct {
	id uint64
	fn func(T)
}

// Pipe returns a new Signal and the function that emits on it. Only the
// holder of emit can send values.
func Pipe[T any]() (*Signal[T], func(T)) {
	s := &Signal[T]{}
	return s, s.emit
}

// Observe registers fn for every later value and returns a func that removes
// it. Cancelling twice is harmless.
func (s *Signal[T]) Observe(fn func(T)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observer[T]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Signal[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.observers {
		if o.id == id {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

// emit delivers value outside the lock so observers may subscribe, cancel or
// emit on other signals.
func (s *Signal[T]) emit(value T) {
	s.mu.Lock()
	snapshot := make([]observer[T], len(s.observers))
	copy(snapshot, s.observers)
	s.mu.Unlock()

	for _, o := range snapshot {
		o.fn(value)
	}
}

// Map returns a Signal carrying fn applied to every value of src.
func Map[T, U any](src *Signal[T], fn func(T) U) *Signal[U] {
	out, emit := Pipe[U]()
	src.Observe(func(v T) { emit(fn(v)) })
	return out
}

