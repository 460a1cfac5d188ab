package query

import "github.com/porolink/porobase/domain"

// Option configures builder behavior through the functional options
// pattern.
type Option func(*Builder)

// WithNormalizer sets the normalizer applied to every returned document.
func WithNormalizer(n domain.Normalizer) Option {
	return func(b *Builder) {
		b.norm = n
	}
}

// WithComparer sets the comparer used for deferred membership tests and
// in-memory ordering.
func WithComparer(c domain.Comparer) Option {
	return func(b *Builder) {
		b.cmpr = c
	}
}

// OrderOption configures one ordering constraint.
type OrderOption func(*domain.OrderBy)

// Descending flips the ordering from its ascending default.
func Descending() OrderOption {
	return func(o *domain.OrderBy) {
		o.Descending = true
	}
}
