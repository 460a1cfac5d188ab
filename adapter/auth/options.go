package auth

import "log/slog"

// Option configures adapter behavior through the functional options
// pattern.
type Option func(*Service)

// WithLogger sets the logger used for swallowed best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}
