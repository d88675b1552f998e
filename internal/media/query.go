// Package media watches the operating system's dark-mode signal, the
// server-side counterpart of matchMedia('(prefers-color-scheme: dark)').
package media

import (
	"slices"
	"sync"
)

// Query is a dark-mode media query. Matches reports whether dark is
// preferred; Subscribe calls fn with the new value whenever it changes.
type Query interface {
	Matches() (bool, error)
	Subscribe(fn func(dark bool)) (cancel func(), err error)
}

// listeners is a set of change callbacks safe for concurrent use.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = map[int]func(T){}
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners[T]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}

func (l *listeners[T]) clear() {
	l.mu.Lock()
	l.fns = nil
	l.mu.Unlock()
}

// notify calls every listener registered at the time of the call, in
// registration order, without holding the lock.
func (l *listeners[T]) notify(v T) {
	l.mu.Lock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	l.mu.Unlock()
	slices.Sort(ids)

	for _, id := range ids {
		l.mu.Lock()
		fn, ok := l.fns[id]
		l.mu.Unlock()
		if ok {
			fn(v)
		}
	}
}
