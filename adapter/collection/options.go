package collection

import "github.com/porolink/porobase/domain"

// Option configures accessor behavior through the functional options
// pattern.
type Option func(*Collection)

// WithNormalizer sets the normalizer applied to documents going in and
// out of the collection.
func WithNormalizer(n domain.Normalizer) Option {
	return func(c *Collection) {
		c.norm = n
	}
}

// WithComparer sets the comparer handed to builders created by
// [Collection.Select].
func WithComparer(cmp domain.Comparer) Option {
	return func(c *Collection) {
		c.cmpr = cmp
	}
}
