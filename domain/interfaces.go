// Package domain contains the interfaces and value types shared by the
// porobase adapters.
//
// The package splits the system at the seam the compatibility layer cares
// about: [Store] and [Identity] are the native document-store and
// identity-provider primitives (opaque remote systems in production,
// in-memory adapters in tests and local development), while everything else
// is plumbing the adapters inject into each other.
package domain

import (
	"context"
	"time"
)

// Store is the native document-store primitive surface the adapter layer is
// written against. Query supports only the closed [Constraint] set;
// richer filtering is emulated above this interface.
type Store interface {
	// Create persists a new document under a generated identifier and
	// returns that identifier.
	Create(ctx context.Context, collection string, data M) (string, error)

	// Get returns a document by identifier. The second result is false
	// when the document does not exist.
	Get(ctx context.Context, collection, id string) (M, bool, error)

	// Put writes a document under a caller-chosen identifier, creating
	// or replacing it.
	Put(ctx context.Context, collection, id string, data M) error

	// Update merges the partial data into an existing document. It fails
	// when the document does not exist.
	Update(ctx context.Context, collection, id string, partial M) error

	// Delete removes a document by identifier. Deleting an absent
	// document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Query runs a filtered, ordered read over one collection and
	// returns matching snapshots. A [OneOf] constraint with more than
	// [MaxOneOfValues] values is rejected.
	Query(ctx context.Context, collection string, constraints ...Constraint) ([]Snapshot, error)

	// Subscribe attaches a live listener to the given query. The handler
	// first receives one ChangeAdded notification per currently matching
	// document, in query order, then live changes as they happen. The
	// returned function detaches the listener and is safe to call twice.
	Subscribe(ctx context.Context, collection string, constraints []Constraint, fn ChangeHandler) (func(), error)

	// Now returns the store-native "current time" value.
	Now() Timestamp
}

// Identity is the identity-provider primitive surface consumed by the
// auth/session adapter.
type Identity interface {
	// SignIn authenticates a credential pair and makes the principal
	// current. Failures are provider-opaque: wrong password and absent
	// account return the same error.
	SignIn(ctx context.Context, email, password string) (*Principal, error)

	// CreateUser registers a new principal and makes it current.
	CreateUser(ctx context.Context, email, password string) (*Principal, error)

	// SignOut clears the current principal.
	SignOut(ctx context.Context) error

	// SendVerification dispatches a verification email for the principal,
	// linking back to redirectURL.
	SendVerification(ctx context.Context, p *Principal, redirectURL string) error

	// OnStateChange registers a listener invoked with the current
	// principal (nil when signed out), immediately on registration and
	// then on every transition. The returned function detaches it.
	OnStateChange(fn func(*Principal)) func()

	// Current returns the cached signed-in principal, if any.
	Current() *Principal

	// Token mints a fresh access token for the principal.
	Token(ctx context.Context, p *Principal) (string, error)
}

// Mailer delivers verification emails on behalf of the identity provider.
type Mailer interface {
	SendVerification(ctx context.Context, email, link string) error
}

// Normalizer converts between store-native and page-facing value shapes.
type Normalizer interface {
	// Normalize recursively replaces native [Timestamp] values with ISO
	// strings on the way out of the store.
	Normalize(data M) M
	// Denormalize replaces top-level ISO-looking string values with
	// native [Timestamp] values on the way in, best effort: strings that
	// only look like dates stay strings.
	Denormalize(data M) M
}

// Comparer provides ordering for the value types documents may carry.
type Comparer interface {
	// Compare returns -1, 0, or 1. Values of different kinds order by a
	// fixed kind rank; values the comparer does not know are an error.
	Compare(a, b any) (int, error)
}

// Decoder converts result documents into caller-declared record shapes.
type Decoder interface {
	Decode(source, target any) error
}

// TimeGetter provides current time for timestamping operations.
type TimeGetter interface {
	GetTime() time.Time
}

// IDGenerator mints identifiers for new documents.
type IDGenerator interface {
	GenerateID(length int) (string, error)
}
