package collection

import (
	"context"
	"fmt"

	"github.com/porolink/porobase/domain"
)

// Updater applies a staged partial document to one target.
type Updater struct {
	c       *Collection
	partial domain.M
}

// Eq resolves the target and applies the partial document. When field is
// the identifier field the target is addressed directly; otherwise the
// first document matching the equality is updated. A missing target
// surfaces as [domain.ErrNotFound], distinct from store failures.
func (u *Updater) Eq(ctx context.Context, field string, value any) error {
	if field == idField {
		id := fmt.Sprint(value)
		_, ok, err := u.c.store.Get(ctx, u.c.name, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		return u.c.store.Update(ctx, u.c.name, id, u.partial)
	}

	snaps, err := u.c.store.Query(ctx, u.c.name, domain.EqualTo{Field: field, Value: value})
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return domain.ErrNotFound
	}
	return u.c.store.Update(ctx, u.c.name, snaps[0].ID, u.partial)
}
