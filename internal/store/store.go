// Package store holds normalized events in memory for the lifetime of the
// process, keyed by event identity. It is the single place idempotency is
// enforced: every access goes through its operations, never through the map.
package store

import (
	"sync"
	"time"

	"github.com/dkarger/signalbridge/internal/event"
)

// DefaultQueryLimit is used when Recent is called without a positive limit.
const DefaultQueryLimit = 50

// Store is an idempotent, insertion-ordered event store. Safe for
// concurrent use. Events are never evicted.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]*event.Normalized
	order []string // event ids, oldest first
}

// New creates an empty Store. One Store is constructed per process and
// shared by every ingestion path.
func New() *Store {
	return &Store{byID: make(map[string]*event.Normalized)}
}

// InsertIfAbsent stores ev under its EventID unless an event with that id
// already exists. The check and the insert are one atomic step: of any
// number of concurrent calls with the same id, exactly one observes
// inserted=true. On a duplicate the returned event is a snapshot of the
// original record, copied under the lock, so the caller may read it while
// a concurrent delivery updates the live record.
func (s *Store) InsertIfAbsent(ev *event.Normalized) (*event.Normalized, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byID[ev.EventID]; ok {
		return copyEvent(existing), false
	}
	ev.FirstSeenAt = time.Now().UTC()
	if ev.Delivery.DeliveredTo == nil {
		ev.Delivery.DeliveredTo = []string{}
	}
	s.byID[ev.EventID] = ev
	s.order = append(s.order, ev.EventID)
	return ev, true
}

// MarkDelivered appends destination to the event's delivery list and sets
// routed. Unknown ids are ignored; the caller may race a query that has
// already snapshotted the store.
func (s *Store) MarkDelivered(eventID, destination string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.byID[eventID]
	if !ok {
		return
	}
	ev.Delivery.Routed = true
	ev.Delivery.DeliveredTo = append(ev.Delivery.DeliveredTo, destination)
}

// Recent returns up to limit events, most recently inserted first. A
// non-positive limit means DefaultQueryLimit. The returned events are
// copies; mutating them does not touch the store.
func (s *Store) Recent(limit int) []*event.Normalized {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.order)
	if limit > n {
		limit = n
	}
	out := make([]*event.Normalized, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, copyEvent(s.byID[s.order[i]]))
	}
	return out
}

// copyEvent snapshots an event, including its delivery list. Callers must
// hold at least the read lock.
func copyEvent(ev *event.Normalized) *event.Normalized {
	cp := *ev
	cp.Delivery.DeliveredTo = append([]string(nil), cp.Delivery.DeliveredTo...)
	return &cp
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
