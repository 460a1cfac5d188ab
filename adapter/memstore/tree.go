package memstore

import (
	"github.com/porolink/porobase/domain"
	"github.com/vinicius-lino-figueiredo/bst"
)

// treeComparer adapts [domain.Comparer] to the ordered-tree contract. Keys
// are creation-timestamp values; tree values are snapshots, equal when they
// carry the same document identifier.
type treeComparer struct {
	cmpr domain.Comparer
}

func newTreeComparer(cmpr domain.Comparer) bst.Comparer[any, domain.Snapshot] {
	return &treeComparer{cmpr: cmpr}
}

// CompareKeys implements bst.Comparer.
func (tc *treeComparer) CompareKeys(a, b any) (int, error) {
	return tc.cmpr.Compare(a, b)
}

// CompareValues implements bst.Comparer.
func (tc *treeComparer) CompareValues(a, b domain.Snapshot) (bool, error) {
	return a.ID == b.ID, nil
}
