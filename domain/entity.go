package domain

import "time"

// M is the document payload shape used across the adapter. Values are
// primitives, nested M maps, []any slices, or the store-native [Timestamp].
type M map[string]any

// Clone returns a shallow copy of the document.
func (m M) Clone() M {
	if m == nil {
		return nil
	}
	c := make(M, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// isoLayout renders instants the way the page layer expects to read them
// back: UTC, millisecond precision, Z suffix.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is the document store's native temporal value. It is the only
// non-JSON type the store persists; the normalizer converts it to and from
// ISO-8601 strings at the adapter boundary.
type Timestamp struct {
	Seconds     int64
	Nanoseconds int32
}

// NewTimestamp converts a [time.Time] into the store-native temporal value.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int32(t.Nanosecond())}
}

// Time converts the timestamp back into a [time.Time].
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanoseconds))
}

// ISO renders the timestamp as an ISO-8601 string in UTC.
func (t Timestamp) ISO() string {
	return t.Time().UTC().Format(isoLayout)
}

// Snapshot is one document as returned by the native store: its identifier
// plus its raw (unnormalized) content.
type Snapshot struct {
	ID   string
	Data M
}

// Constraint is one atomic native query directive. Implementations are
// [EqualTo], [OneOf] and [OrderBy]; the set is closed because the native
// store understands nothing else.
type Constraint interface {
	constraint()
}

// EqualTo is a native field-equality constraint.
type EqualTo struct {
	Field string
	Value any
}

// OneOf is a native set-membership constraint. The native store bounds the
// value list at [MaxOneOfValues] elements.
type OneOf struct {
	Field  string
	Values []any
}

// OrderBy is a native ordering constraint. Multiple order constraints apply
// primary-first in the order they were recorded.
type OrderBy struct {
	Field      string
	Descending bool
}

// MaxOneOfValues is the native store's bound on [OneOf] value lists. Larger
// lists must be evaluated by the caller after fetch.
const MaxOneOfValues = 10

func (EqualTo) constraint() {}
func (OneOf) constraint()   {}
func (OrderBy) constraint() {}

// ChangeKind classifies one native per-document change notification.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeRemoved
)

// Change is one native live-query notification. Local is set when the
// change originates from this client's own pending write.
type Change struct {
	Kind     ChangeKind
	Snapshot Snapshot
	Local    bool
}

// ChangeHandler receives native change notifications, one at a time, in the
// order the store emits them.
type ChangeHandler func(Change)

// ChangeEvent is the payload delivered to realtime channel consumers.
// New nil signals deletion, Old nil signals creation, both set signals
// modification.
type ChangeEvent struct {
	New M `json:"new"`
	Old M `json:"old"`
}

// Principal is an identity-provider account.
type Principal struct {
	ID            string
	Email         string
	EmailVerified bool
}

// Session pairs a signed-in principal with a freshly minted access token.
// A nil session means signed out.
type Session struct {
	User        *Principal
	AccessToken string
}

// AuthData is the success payload of credential operations.
type AuthData struct {
	User    *Principal
	Session *Session
}

// Credentials is an email/password pair.
type Credentials struct {
	Email    string
	Password string
}

// Auth state change event names, mirroring the identity-provider wire
// vocabulary the page layer already speaks.
const (
	EventSignedIn  = "SIGNED_IN"
	EventSignedOut = "SIGNED_OUT"
)
