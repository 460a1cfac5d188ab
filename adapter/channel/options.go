package channel

import (
	"log/slog"

	"github.com/porolink/porobase/domain"
)

// Option configures channel behavior through the functional options
// pattern.
type Option func(*Channel)

// WithNormalizer sets the normalizer applied to delivered documents.
func WithNormalizer(n domain.Normalizer) Option {
	return func(c *Channel) {
		c.norm = n
	}
}

// WithLogger sets the logger used for ignored registrations.
func WithLogger(l *slog.Logger) Option {
	return func(c *Channel) {
		c.logger = l
	}
}
