// Package porobase provides the data-access surface of the Porolink
// parcel delivery marketplace: fluent collection queries with in-memory
// fallback filtering, realtime change channels, and credential
// authentication with sessions, all over pluggable document-store and
// identity-provider primitives.
//
// The basic usage starts with creating a [Client] by calling [New], then
// reading and writing through [Client.From], watching through
// [Client.Channel], and authenticating through [Client.Auth].
package porobase

import (
	"context"

	"github.com/porolink/porobase/adapter/auth"
	"github.com/porolink/porobase/adapter/channel"
	"github.com/porolink/porobase/adapter/collection"
	"github.com/porolink/porobase/adapter/comparer"
	"github.com/porolink/porobase/adapter/identity"
	"github.com/porolink/porobase/adapter/memstore"
	"github.com/porolink/porobase/adapter/normalizer"
	"github.com/porolink/porobase/domain"
)

var (
	// ErrNotFound is returned by [collection.Updater.Eq] when no document
	// matches the targeting condition.
	ErrNotFound = domain.ErrNotFound
	// ErrTooManyValues is returned when a membership constraint exceeds
	// the native bound instead of going through the deferred path.
	ErrTooManyValues = domain.ErrTooManyValues
	// ErrNoSession is returned by [auth.Service.ResendVerificationEmail]
	// when nobody is signed in.
	ErrNoSession = domain.ErrNoSession
	// ErrAlreadyVerified is returned by
	// [auth.Service.ResendVerificationEmail] when the signed-in email is
	// already verified.
	ErrAlreadyVerified = domain.ErrAlreadyVerified
	// ErrTargetNil is returned when a nil value is given as a decode
	// target.
	ErrTargetNil = domain.ErrTargetNil
)

// M is the document shape flowing through the adapter layer.
type M = domain.M

// Timestamp is the store-native temporal value.
type Timestamp = domain.Timestamp

// Session is an identity principal plus an access token.
type Session = domain.Session

// Credentials is an email and password pair.
type Credentials = domain.Credentials

// ChangeEvent carries before/after document snapshots for one realtime
// change.
type ChangeEvent = domain.ChangeEvent

// Store is the document-store primitive surface a client runs over.
type Store = domain.Store

// Identity is the identity-provider primitive surface a client runs over.
type Identity = domain.Identity

// ErrBadOrClause reports a disjunction clause that does not parse as
// field.eq.value.
type ErrBadOrClause = domain.ErrBadOrClause

// ErrBadFilter reports a realtime filter string that does not parse as
// field=eq.value.
type ErrBadFilter = domain.ErrBadFilter

// StatusError is a provider failure carrying a status code next to its
// message.
type StatusError = domain.StatusError

// Client is the produced five-operation surface. A zero-configuration
// client runs on in-memory primitives, which is what tests and local
// development want; production injects its own [Store] and [Identity].
type Client struct {
	store    domain.Store
	identity domain.Identity
	norm     domain.Normalizer
	cmpr     domain.Comparer
	auth     *auth.Service
}

// New creates a new client with the provided configuration options:
//
// - [WithStore]: sets the document-store primitives.
//
// - [WithIdentity]: sets the identity-provider primitives.
//
// - [WithNormalizer]: sets the temporal value normalizer.
//
// - [WithComparer]: sets the value comparer.
//
// - [WithLogger]: sets the logger for best-effort failure reporting.
func New(options ...ClientOption) *Client {
	s := settings{
		norm: normalizer.NewNormalizer(),
		cmpr: comparer.NewComparer(),
	}
	for _, opt := range options {
		opt(&s)
	}
	if s.store == nil {
		s.store = memstore.NewMemstore()
	}
	if s.identity == nil {
		s.identity = identity.NewIdentity()
	}

	var authOpts []auth.Option
	if s.logger != nil {
		authOpts = append(authOpts, auth.WithLogger(s.logger))
	}
	return &Client{
		store:    s.store,
		identity: s.identity,
		norm:     s.norm,
		cmpr:     s.cmpr,
		auth:     auth.New(s.identity, s.store, authOpts...),
	}
}

// From returns an accessor over the named collection.
func (c *Client) From(name string) *collection.Collection {
	return collection.New(c.store, name,
		collection.WithNormalizer(c.norm),
		collection.WithComparer(c.cmpr),
	)
}

// Channel creates a realtime channel with the given consumer-chosen name.
// Nothing attaches until the channel's Subscribe runs.
func (c *Client) Channel(name string) *channel.Channel {
	return channel.New(c.store, name, channel.WithNormalizer(c.norm))
}

// RemoveChannel tears the channel down. Removing an already removed
// channel is a no-op.
func (c *Client) RemoveChannel(ch *channel.Channel) {
	ch.Unsubscribe()
}

// Auth returns the session adapter.
func (c *Client) Auth() *auth.Service {
	return c.auth
}

// Store returns the underlying document-store primitives, for callers
// wiring maintenance tasks like snapshot persistence.
func (c *Client) Store() domain.Store {
	return c.store
}

// Close tears down provider state by signing out any cached session.
func (c *Client) Close(ctx context.Context) error {
	return c.identity.SignOut(ctx)
}
