// Package memstore contains an in-memory [domain.Store] implementation.
//
// It emulates the remote document store at the primitive level the adapter
// layer consumes: collections of documents, the closed native constraint
// set (equality, bounded membership, ordering), and live query
// subscriptions. Documents are kept both in a map by identifier and in a
// per-collection tree ordered by their creation timestamp, which gives
// queries and subscriptions the store's natural ordering.
package memstore

import (
	"context"
	"log/slog"
	"os"
	"sort"

	"github.com/porolink/porobase/adapter/comparer"
	"github.com/porolink/porobase/adapter/idgenerator"
	"github.com/porolink/porobase/adapter/timegetter"
	"github.com/porolink/porobase/domain"
	"github.com/porolink/porobase/pkg/ctxsync"
	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"
)

// createdAtField is the document field the store uses for its natural
// ordering. The collection accessor stamps it on every insert.
const createdAtField = "created_at"

// Memstore implements [domain.Store].
type Memstore struct {
	mu          *ctxsync.Mutex
	collections map[string]*collectionData
	subs        map[int]*subscription
	nextSub     int

	tg           domain.TimeGetter
	idgen        domain.IDGenerator
	cmpr         domain.Comparer
	logger       *slog.Logger
	localWrites  bool
	snapshotPath string
	fileMode     os.FileMode
}

type collectionData struct {
	docs  map[string]domain.M
	order bst.BST[any, domain.Snapshot]
}

// NewMemstore returns a new implementation of [domain.Store].
func NewMemstore(opts ...Option) *Memstore {
	m := Memstore{
		mu:          ctxsync.NewMutex(),
		collections: make(map[string]*collectionData),
		subs:        make(map[int]*subscription),
		tg:          timegetter.NewTimeGetter(),
		idgen:       idgenerator.NewIDGenerator(),
		cmpr:        comparer.NewComparer(),
		logger:      slog.Default(),
		localWrites: true,
		fileMode:    0o644,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return &m
}

// Now implements [domain.Store].
func (m *Memstore) Now() domain.Timestamp {
	return domain.NewTimestamp(m.tg.GetTime())
}

func (m *Memstore) collection(name string) *collectionData {
	cd, ok := m.collections[name]
	if !ok {
		cd = &collectionData{
			docs:  make(map[string]domain.M),
			order: avl.NewBST(false, 8, newTreeComparer(m.cmpr)),
		}
		m.collections[name] = cd
	}
	return cd
}

// Create implements [domain.Store].
func (m *Memstore) Create(ctx context.Context, collection string, data domain.M) (string, error) {
	id, err := m.idgen.GenerateID(idgenerator.DefaultLength)
	if err != nil {
		return "", err
	}

	if err := m.mu.LockWithContext(ctx); err != nil {
		return "", err
	}
	cd := m.collection(collection)
	doc := data.Clone()
	cd.docs[id] = doc
	if err := cd.order.Insert(doc[createdAtField], domain.Snapshot{ID: id, Data: doc}); err != nil {
		delete(cd.docs, id)
		m.mu.Unlock()
		return "", err
	}
	m.emitLocked(collection, nil, domain.Snapshot{ID: id, Data: doc})
	m.mu.Unlock()
	return id, nil
}

// Get implements [domain.Store].
func (m *Memstore) Get(ctx context.Context, collection, id string) (domain.M, bool, error) {
	if err := m.mu.LockWithContext(ctx); err != nil {
		return nil, false, err
	}
	defer m.mu.Unlock()
	cd, ok := m.collections[collection]
	if !ok {
		return nil, false, nil
	}
	doc, ok := cd.docs[id]
	if !ok {
		return nil, false, nil
	}
	return doc.Clone(), true, nil
}

// Put implements [domain.Store].
func (m *Memstore) Put(ctx context.Context, collection, id string, data domain.M) error {
	if err := m.mu.LockWithContext(ctx); err != nil {
		return err
	}
	defer m.mu.Unlock()
	cd := m.collection(collection)

	doc := data.Clone()
	old, existed := cd.docs[id]
	if existed {
		oldSnap := domain.Snapshot{ID: id, Data: old}
		if err := cd.order.Delete(old[createdAtField], &oldSnap); err != nil {
			return err
		}
	}
	cd.docs[id] = doc
	if err := cd.order.Insert(doc[createdAtField], domain.Snapshot{ID: id, Data: doc}); err != nil {
		return err
	}
	if existed {
		m.emitLocked(collection, old.Clone(), domain.Snapshot{ID: id, Data: doc})
	} else {
		m.emitLocked(collection, nil, domain.Snapshot{ID: id, Data: doc})
	}
	return nil
}

// Update implements [domain.Store]. Unlike [Memstore.Put] it fails when the
// document does not exist.
func (m *Memstore) Update(ctx context.Context, collection, id string, partial domain.M) error {
	if err := m.mu.LockWithContext(ctx); err != nil {
		return err
	}
	defer m.mu.Unlock()
	cd, ok := m.collections[collection]
	if !ok {
		return domain.ErrNoDocument
	}
	old, ok := cd.docs[id]
	if !ok {
		return domain.ErrNoDocument
	}

	merged := old.Clone()
	for k, v := range partial {
		merged[k] = v
	}

	oldSnap := domain.Snapshot{ID: id, Data: old}
	if err := cd.order.Delete(old[createdAtField], &oldSnap); err != nil {
		return err
	}
	cd.docs[id] = merged
	if err := cd.order.Insert(merged[createdAtField], domain.Snapshot{ID: id, Data: merged}); err != nil {
		return err
	}
	m.emitLocked(collection, old.Clone(), domain.Snapshot{ID: id, Data: merged})
	return nil
}

// Delete implements [domain.Store]. Deleting an absent document succeeds.
func (m *Memstore) Delete(ctx context.Context, collection, id string) error {
	if err := m.mu.LockWithContext(ctx); err != nil {
		return err
	}
	defer m.mu.Unlock()
	cd, ok := m.collections[collection]
	if !ok {
		return nil
	}
	old, ok := cd.docs[id]
	if !ok {
		return nil
	}
	snap := domain.Snapshot{ID: id, Data: old}
	if err := cd.order.Delete(old[createdAtField], &snap); err != nil {
		return err
	}
	delete(cd.docs, id)
	m.emitRemovedLocked(collection, snap)
	return nil
}

// Query implements [domain.Store].
func (m *Memstore) Query(ctx context.Context, collection string, constraints ...domain.Constraint) ([]domain.Snapshot, error) {
	if err := m.mu.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()
	return m.queryLocked(collection, constraints)
}

func (m *Memstore) queryLocked(collection string, constraints []domain.Constraint) ([]domain.Snapshot, error) {
	var filters []domain.Constraint
	var orders []domain.OrderBy
	for _, c := range constraints {
		switch t := c.(type) {
		case domain.OrderBy:
			orders = append(orders, t)
		case domain.OneOf:
			if len(t.Values) > domain.MaxOneOfValues {
				return nil, domain.ErrTooManyValues
			}
			filters = append(filters, t)
		default:
			filters = append(filters, c)
		}
	}

	cd, ok := m.collections[collection]
	if !ok {
		return []domain.Snapshot{}, nil
	}

	res := make([]domain.Snapshot, 0, len(cd.docs))
	for snap := range cd.order.GetAll() {
		if matches(m.cmpr, snap.Data, filters) {
			res = append(res, domain.Snapshot{ID: snap.ID, Data: snap.Data.Clone()})
		}
	}

	if len(orders) > 0 {
		var sortErr error
		sort.SliceStable(res, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			for _, o := range orders {
				comp, err := m.cmpr.Compare(res[i].Data[o.Field], res[j].Data[o.Field])
				if err != nil {
					sortErr = err
					return false
				}
				if comp == 0 {
					continue
				}
				if o.Descending {
					return comp > 0
				}
				return comp < 0
			}
			return false
		})
		if sortErr != nil {
			return nil, sortErr
		}
	}
	return res, nil
}

// matches evaluates the filter constraints conjunctively. Values the
// comparer cannot relate count as non-matching.
func matches(cmpr domain.Comparer, doc domain.M, filters []domain.Constraint) bool {
	for _, c := range filters {
		switch t := c.(type) {
		case domain.EqualTo:
			if !valueEq(cmpr, doc[t.Field], t.Value) {
				return false
			}
		case domain.OneOf:
			found := false
			for _, v := range t.Values {
				if valueEq(cmpr, doc[t.Field], v) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func valueEq(cmpr domain.Comparer, a, b any) bool {
	comp, err := cmpr.Compare(a, b)
	if err != nil {
		return false
	}
	return comp == 0
}
