// Package event provides the synchronous handler lists behind the scene
// manager and editor notifications.
package event

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribers keeps handlers in registration order. The zero value is
// ready to use. It is not safe for concurrent use.
type Subscribers[T any] struct {
	next int
	list []subscriber[T]
}

// Add registers fn and returns a func that unregisters it. Calling the
// returned func more than once is harmless.
func (s *Subscribers[T]) Add(fn func(T)) func() {
	s.next++
	id := s.next
	s.list = append(s.list, subscriber[T]{id: id, fn: fn})
	return func() {
		for i, sub := range s.list {
			if sub.id == id {
				s.list = append(s.list[:i], s.list[i+1:]...)
				return
			}
		}
	}
}

// Emit calls every handler with v.
func (s *Subscribers[T]) Emit(v T) {
	// Copy so handlers may unsubscribe while being notified.
	list := append([]subscriber[T](nil), s.list...)
	for _, sub := range list {
		sub.fn(v)
	}
}

// Len returns the number of registered handlers.
func (s *Subscribers[T]) Len() int {
	return len(s.list)
}
