package porobase

import (
	"log/slog"

	"github.com/porolink/porobase/domain"
)

type settings struct {
	store    domain.Store
	identity domain.Identity
	norm     domain.Normalizer
	cmpr     domain.Comparer
	logger   *slog.Logger
}

// ClientOption configures client behavior through the functional options
// pattern.
type ClientOption func(*settings)

// WithStore sets the document-store primitives. Without it the client
// runs on an in-memory store.
func WithStore(s domain.Store) ClientOption {
	return func(st *settings) {
		st.store = s
	}
}

// WithIdentity sets the identity-provider primitives. Without it the
// client runs on an in-memory provider.
func WithIdentity(i domain.Identity) ClientOption {
	return func(st *settings) {
		st.identity = i
	}
}

// WithNormalizer sets the normalizer shared by collections and channels.
func WithNormalizer(n domain.Normalizer) ClientOption {
	return func(st *settings) {
		st.norm = n
	}
}

// WithComparer sets the comparer handed to query builders.
func WithComparer(c domain.Comparer) ClientOption {
	return func(st *settings) {
		st.cmpr = c
	}
}

// WithLogger sets the logger used for best-effort failure reporting.
func WithLogger(l *slog.Logger) ClientOption {
	return func(st *settings) {
		st.logger = l
	}
}
