package identity

import (
	"log/slog"
	"time"

	"github.com/porolink/porobase/domain"
)

// Option configures provider behavior through the functional options
// pattern.
type Option func(*Identity)

// WithTimeGetter sets the clock used for token claims.
func WithTimeGetter(tg domain.TimeGetter) Option {
	return func(i *Identity) {
		i.tg = tg
	}
}

// WithMailer sets the verification email transport. Without it dispatches
// are logged rather than sent.
func WithMailer(m domain.Mailer) Option {
	return func(i *Identity) {
		i.mailer = m
	}
}

// WithSecret sets the HS256 signing secret for minted access tokens.
func WithSecret(secret []byte) Option {
	return func(i *Identity) {
		i.secret = secret
	}
}

// WithTokenTTL sets the lifetime of minted access tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(i *Identity) {
		i.ttl = ttl
	}
}

// WithLogger sets the logger used by the default mailer.
func WithLogger(l *slog.Logger) Option {
	return func(i *Identity) {
		i.logger = l
	}
}
