package idgenerator

import "io"

// Option configures generator behavior through the functional options
// pattern.
type Option func(*IDGenerator)

// WithRandomReader sets the source of random bytes.
func WithRandomReader(r io.Reader) Option {
	return func(g *IDGenerator) {
		g.reader = r
	}
}
