package memstore

import (
	"context"
	"sync"

	"github.com/porolink/porobase/domain"
)

// subscriptionBuffer bounds the per-listener delivery queue. Callbacks run
// one at a time on a dedicated goroutine; a listener that falls this far
// behind blocks writers until it catches up.
const subscriptionBuffer = 256

type subscription struct {
	collection string
	filters    []domain.Constraint
	fn         domain.ChangeHandler
	queue      chan domain.Change
	quit       chan struct{}
	once       sync.Once
}

func (s *subscription) loop() {
	for {
		select {
		case ev := <-s.queue:
			s.fn(ev)
		case <-s.quit:
			return
		}
	}
}

func (s *subscription) enqueue(ev domain.Change) {
	select {
	case s.queue <- ev:
	case <-s.quit:
	}
}

func (s *subscription) close() {
	s.once.Do(func() { close(s.quit) })
}

// Subscribe implements [domain.Store]. The handler first receives one
// ChangeAdded per currently matching document in query order, then live
// changes. Registration and the initial scan happen under one lock so no
// concurrent write can slip between them.
func (m *Memstore) Subscribe(ctx context.Context, collection string, constraints []domain.Constraint, fn domain.ChangeHandler) (func(), error) {
	if err := m.mu.LockWithContext(ctx); err != nil {
		return nil, err
	}
	current, err := m.queryLocked(collection, constraints)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	sub := &subscription{
		collection: collection,
		filters:    filterConstraints(constraints),
		fn:         fn,
		queue:      make(chan domain.Change, subscriptionBuffer),
		quit:       make(chan struct{}),
	}
	go sub.loop()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = sub

	for _, snap := range current {
		sub.enqueue(domain.Change{Kind: domain.ChangeAdded, Snapshot: snap})
	}
	m.mu.Unlock()

	unsubscribe := func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
		sub.close()
	}
	return unsubscribe, nil
}

// filterConstraints keeps only the constraints relevant for event
// matching; ordering has no bearing on whether a change is delivered.
func filterConstraints(constraints []domain.Constraint) []domain.Constraint {
	var filters []domain.Constraint
	for _, c := range constraints {
		if _, ok := c.(domain.OrderBy); ok {
			continue
		}
		filters = append(filters, c)
	}
	return filters
}

// emitLocked fans a document transition out to matching subscriptions.
// A document leaving a subscribed query surfaces as a removal, one
// entering it as an addition, matching the native store's semantics.
func (m *Memstore) emitLocked(collection string, old domain.M, snap domain.Snapshot) {
	for _, sub := range m.subs {
		if sub.collection != collection {
			continue
		}
		oldMatch := old != nil && matches(m.cmpr, old, sub.filters)
		newMatch := matches(m.cmpr, snap.Data, sub.filters)

		cloned := domain.Snapshot{ID: snap.ID, Data: snap.Data.Clone()}
		switch {
		case oldMatch && newMatch:
			sub.enqueue(domain.Change{Kind: domain.ChangeModified, Snapshot: cloned, Local: m.localWrites})
		case !oldMatch && newMatch:
			sub.enqueue(domain.Change{Kind: domain.ChangeAdded, Snapshot: cloned, Local: m.localWrites})
		case oldMatch && !newMatch:
			sub.enqueue(domain.Change{Kind: domain.ChangeRemoved, Snapshot: domain.Snapshot{ID: snap.ID, Data: old.Clone()}, Local: m.localWrites})
		}
	}
}

// emitRemovedLocked fans a deletion out to matching subscriptions.
func (m *Memstore) emitRemovedLocked(collection string, snap domain.Snapshot) {
	for _, sub := range m.subs {
		if sub.collection != collection {
			continue
		}
		if !matches(m.cmpr, snap.Data, sub.filters) {
			continue
		}
		cloned := domain.Snapshot{ID: snap.ID, Data: snap.Data.Clone()}
		sub.enqueue(domain.Change{Kind: domain.ChangeRemoved, Snapshot: cloned, Local: m.localWrites})
	}
}
