package theme

import "slices"

// Signal holds a value and notifies subscribers when it changes. Setting the
// current value again is a no-op. A Signal is not safe for concurrent use;
// it belongs to whoever owns the engine.
type Signal[T comparable] struct {
	value T
	subs  []*subscription[T]
}

type subscription[T comparable] struct {
	fn     func(T)
	active bool
}

// NewSignal returns a Signal holding initial.
func NewSignal[T comparable](initial T) *Signal[T] {
	return &Signal[T]{value: initial}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	return s.value
}

// Set stores v and, if it differs from the current value, calls every active
// subscriber in registration order. It reports whether the value changed.
// Subscribers cancelled during notification are skipped.
func (s *Signal[T]) Set(v T) bool {
	if v == s.value {
		return false
	}
	s.value = v
	for _, sub := range slices.Clone(s.subs) {
		if sub.active {
			sub.fn(v)
		}
	}
	return true
}

// Subscribe registers fn and returns a cancel func. Cancel is idempotent.
func (s *Signal[T]) Subscribe(fn func(T)) (cancel func()) {
	sub := &subscription[T]{fn: fn, active: true}
	s.subs = append(s.subs, sub)
	return func() {
		if !sub.active {
			return
		}
		sub.active = false
		s.subs = slices.DeleteFunc(s.subs, func(x *subscription[T]) bool { return x == sub })
	}
}
