// Package query contains the fluent deferred-execution query builder.
//
// A builder composes native store constraints where the store supports
// them and records the rest as deferred filters evaluated in memory after
// the fetch: case-insensitive substring match, membership lists larger
// than the native bound, and disjunctive field-value groups parsed from
// the compact "field.eq.value,field.eq.value" textual form. A builder
// serves one logical query and is not safe for concurrent use.
package query

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/porolink/porobase/adapter/comparer"
	"github.com/porolink/porobase/adapter/normalizer"
	"github.com/porolink/porobase/domain"
)

// orClause matches one clause of the OR mini-language. Only the eq
// operator exists in the grammar.
var orClause = regexp.MustCompile(`^(\w+)\.eq\.(.+)$`)

type substringFilter struct {
	field   string
	pattern string
}

type membershipFilter struct {
	field  string
	values []any
}

type orPair struct {
	field string
	value string
}

// Builder accumulates constraints for one collection and executes them on
// demand. Zero or more chained calls, then [Builder.Execute] or
// [Builder.Single].
type Builder struct {
	store      domain.Store
	norm       domain.Normalizer
	cmpr       domain.Comparer
	collection string

	constraints []domain.Constraint
	orders      []domain.OrderBy
	substrings  []substringFilter
	memberships []membershipFilter
	orPairs     []orPair
	err         error
}

// New returns a builder over the named collection.
func New(store domain.Store, collection string, opts ...Option) *Builder {
	b := Builder{
		store:      store,
		norm:       normalizer.NewNormalizer(),
		cmpr:       comparer.NewComparer(),
		collection: collection,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return &b
}

// Eq adds a native equality constraint.
func (b *Builder) Eq(field string, value any) *Builder {
	b.constraints = append(b.constraints, domain.EqualTo{Field: field, Value: value})
	return b
}

// In adds a set-membership constraint. Lists within the native bound run
// on the store; larger lists are evaluated in memory after the fetch. An
// empty list adds no constraint at all.
func (b *Builder) In(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	if len(values) <= domain.MaxOneOfValues {
		b.constraints = append(b.constraints, domain.OneOf{Field: field, Values: values})
		return b
	}
	b.memberships = append(b.memberships, membershipFilter{field: field, values: values})
	return b
}

// ILike adds a deferred case-insensitive substring filter. An empty
// pattern matches every document.
func (b *Builder) ILike(field, pattern string) *Builder {
	b.substrings = append(b.substrings, substringFilter{
		field:   field,
		pattern: strings.ToLower(pattern),
	})
	return b
}

// Or parses a comma-separated list of field.eq.value clauses into a
// disjunction. Its presence switches execution to a full-collection fetch
// with in-memory filtering, since the store cannot express disjunction
// across fields. Each call replaces any previously recorded disjunction.
// A malformed clause fails the query at execution.
func (b *Builder) Or(expression string) *Builder {
	b.orPairs = b.orPairs[:0]
	b.err = nil
	for _, clause := range strings.Split(expression, ",") {
		m := orClause.FindStringSubmatch(clause)
		if m == nil {
			if b.err == nil {
				b.err = domain.ErrBadOrClause{Clause: clause}
			}
			return b
		}
		b.orPairs = append(b.orPairs, orPair{field: m[1], value: m[2]})
	}
	return b
}

// Order adds an ordering constraint, ascending unless [Descending] is
// given. Multiple orderings apply in call order.
func (b *Builder) Order(field string, opts ...OrderOption) *Builder {
	o := domain.OrderBy{Field: field}
	for _, opt := range opts {
		opt(&o)
	}
	b.constraints = append(b.constraints, o)
	b.orders = append(b.orders, o)
	return b
}

// Select is accepted for call compatibility and performs no projection.
// Full documents are always returned.
func (b *Builder) Select(fields ...string) *Builder {
	return b
}

// Execute runs the query and returns the matching documents in result
// order, each with its identifier merged in under "id".
func (b *Builder) Execute(ctx context.Context) ([]domain.M, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.orPairs) > 0 {
		return b.executeDisjunction(ctx)
	}

	snaps, err := b.store.Query(ctx, b.collection, b.constraints...)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.M, 0, len(snaps))
	for _, snap := range snaps {
		doc := b.enrich(snap)
		if !b.matchSubstrings(doc) {
			continue
		}
		if !b.matchMemberships(doc) {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Single runs the query and returns the first matching document, or nil
// without error when nothing matches. Deferred filters are not honored
// here; only native constraints narrow the result.
func (b *Builder) Single(ctx context.Context) (domain.M, error) {
	if b.err != nil {
		return nil, b.err
	}
	snaps, err := b.store.Query(ctx, b.collection, b.constraints...)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return b.enrich(snaps[0]), nil
}

// executeDisjunction fetches the whole collection and keeps documents
// matching at least one OR pair. Only the first recorded ordering applies.
func (b *Builder) executeDisjunction(ctx context.Context) ([]domain.M, error) {
	snaps, err := b.store.Query(ctx, b.collection)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.M, 0, len(snaps))
	for _, snap := range snaps {
		doc := b.enrich(snap)
		if b.matchPairs(doc) {
			docs = append(docs, doc)
		}
	}

	if len(b.orders) > 0 {
		o := b.orders[0]
		sort.SliceStable(docs, func(i, j int) bool {
			comp := b.compareLoose(docs[i][o.Field], docs[j][o.Field])
			if o.Descending {
				return comp > 0
			}
			return comp < 0
		})
	}
	return docs, nil
}

// enrich normalizes a snapshot's content and merges the identifier in.
// Documents stored with nil content come back as an otherwise empty map.
func (b *Builder) enrich(snap domain.Snapshot) domain.M {
	doc := b.norm.Normalize(snap.Data)
	if doc == nil {
		doc = domain.M{}
	}
	doc["id"] = snap.ID
	return doc
}

func (b *Builder) matchSubstrings(doc domain.M) bool {
	for _, f := range b.substrings {
		var value string
		if raw, ok := doc[f.field]; ok && raw != nil {
			value = strings.ToLower(fmt.Sprint(raw))
		}
		if !strings.Contains(value, f.pattern) {
			return false
		}
	}
	return true
}

func (b *Builder) matchMemberships(doc domain.M) bool {
	for _, f := range b.memberships {
		found := false
		for _, v := range f.values {
			if comp, err := b.cmpr.Compare(doc[f.field], v); err == nil && comp == 0 {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchPairs tests the disjunction. Equality falls back to string
// coercion because pair values come in as text.
func (b *Builder) matchPairs(doc domain.M) bool {
	for _, p := range b.orPairs {
		got, ok := doc[p.field]
		if !ok {
			continue
		}
		if got == any(p.value) {
			return true
		}
		if fmt.Sprint(got) == p.value {
			return true
		}
	}
	return false
}

// compareLoose orders two values, treating anything the comparer cannot
// relate as equal after a string-form comparison.
func (b *Builder) compareLoose(x, y any) int {
	comp, err := b.cmpr.Compare(x, y)
	if err == nil {
		return comp
	}
	return strings.Compare(fmt.Sprint(x), fmt.Sprint(y))
}
