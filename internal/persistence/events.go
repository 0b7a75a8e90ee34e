package persistence

import (
	"sync"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// EventKind identifies which operation produced an Event.
type EventKind int

// Event kinds, one per notifying operation.
const (
	EventRead EventKind = iota + 1
	EventWritten
	EventMoved
	EventCopied
	EventDeleted
)

// String returns the lower-case name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventRead:
		return "read"
	case EventWritten:
		return "written"
	case EventMoved:
		return "moved"
	case EventCopied:
		return "copied"
	case EventDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event describes a completed file operation. Destination is set for
// EventMoved and EventCopied only.
type Event struct {
	Kind        EventKind
	File        *types.File
	Destination *types.File
}

// Listener receives events synchronously on the calling goroutine of the
// operation that produced them.
type Listener func(Event)

type subscription struct {
	id uint64
	fn Listener
}

// Subscribe registers l for every event and returns a function that removes
// it. The returned function is safe to call more than once.
func (s *System) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: l})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// SubscribeKind registers l for events of one kind only.
func (s *System) SubscribeKind(kind EventKind, l Listener) (unsubscribe func()) {
	return s.Subscribe(func(ev Event) {
		if ev.Kind == kind {
			l(ev)
		}
	})
}

// notify delivers ev to a snapshot of the current listeners, in
// subscription order, without holding the lock.
func (s *System) notify(ev Event) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	for i, sub := range s.listeners {
		listeners[i] = sub.fn
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}
