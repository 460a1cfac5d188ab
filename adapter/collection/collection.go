// Package collection contains the accessor tying one named collection to
// reads through the query builder and direct mutations.
package collection

import (
	"context"
	"sync"

	"github.com/porolink/porobase/adapter/comparer"
	"github.com/porolink/porobase/adapter/normalizer"
	"github.com/porolink/porobase/adapter/query"
	"github.com/porolink/porobase/domain"
)

// idField is the document field carrying the store identifier. It is
// stripped from inserts and merged into every query result.
const idField = "id"

// Collection exposes one named collection. Values pass through the
// normalizer on the way in and out.
type Collection struct {
	store domain.Store
	norm  domain.Normalizer
	cmpr  domain.Comparer
	name  string
}

// New returns an accessor over the named collection.
func New(store domain.Store, name string, opts ...Option) *Collection {
	c := Collection{
		store: store,
		norm:  normalizer.NewNormalizer(),
		cmpr:  comparer.NewComparer(),
		name:  name,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Select returns a fresh query builder over the collection. The fields
// argument is accepted for call compatibility and performs no projection.
func (c *Collection) Select(fields ...string) *query.Builder {
	return query.New(c.store, c.name,
		query.WithNormalizer(c.norm),
		query.WithComparer(c.cmpr),
	).Select(fields...)
}

// Insert creates one document per entry, issued concurrently, and returns
// the new identifiers in input order. Client-supplied identifiers are
// stripped, date-like strings become store-native timestamps, and the
// creation stamp is always overwritten with the store's now. A failure on
// any entry fails the whole call; entries already persisted stay
// persisted, so the operation is best effort rather than atomic.
func (c *Collection) Insert(ctx context.Context, docs ...domain.M) ([]string, error) {
	prepared := make([]domain.M, len(docs))
	for i, doc := range docs {
		d := c.norm.Denormalize(doc)
		if d == nil {
			d = domain.M{}
		}
		delete(d, idField)
		d["created_at"] = c.store.Now()
		prepared[i] = d
	}

	ids := make([]string, len(prepared))
	errs := make([]error, len(prepared))
	var wg sync.WaitGroup
	for i, doc := range prepared {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i], errs[i] = c.store.Create(ctx, c.name, doc)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// Update stages a partial document for a single-target update. The target
// is picked by the following [Updater.Eq] call.
func (c *Collection) Update(partial domain.M) *Updater {
	return &Updater{c: c, partial: c.norm.Denormalize(partial)}
}

// Delete removes a document by identifier. Deleting an absent document
// succeeds.
func (c *Collection) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}
