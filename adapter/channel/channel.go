// Package channel contains the realtime adapter translating live query
// subscriptions into single before/after change-event callbacks.
package channel

import (
	"context"
	"log/slog"
	"regexp"
	"sync"

	"github.com/porolink/porobase/adapter/normalizer"
	"github.com/porolink/porobase/domain"
)

// PostgresChanges is the only event source the adapter understands.
// Registrations for any other source are ignored.
const PostgresChanges = "postgres_changes"

// Event names delivered to handlers, plus the wildcard matching all of
// them.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
	EventAll    = "*"
)

// eqFilter matches the optional equality filter string, field=eq.value.
var eqFilter = regexp.MustCompile(`^(\w+)=eq\.(.+)$`)

// Handler receives one translated change event. A nil New signals
// deletion, a nil Old creation, both set modification.
type Handler func(domain.ChangeEvent)

// Config narrows a registration to one collection, one event kind and an
// optional equality filter.
type Config struct {
	Table  string
	Event  string
	Filter string
}

type binding struct {
	cfg Config
	fn  Handler
}

type channelState int

const (
	stateCreated channelState = iota
	stateSubscribed
	stateUnsubscribed
)

// Channel adapts live query subscriptions for one logical consumer. The
// lifecycle is created, subscribed, unsubscribed; the last state is
// terminal and tearing down twice is a no-op. Native listeners attach
// only when [Channel.Subscribe] runs, so an abandoned registration chain
// never leaks a listener.
type Channel struct {
	store  domain.Store
	norm   domain.Normalizer
	logger *slog.Logger
	name   string

	mu            sync.Mutex
	state         channelState
	bindings      []binding
	unsubscribers []func()
}

// New returns a channel with the given consumer-chosen name.
func New(store domain.Store, name string, opts ...Option) *Channel {
	c := Channel{
		store:  store,
		norm:   normalizer.NewNormalizer(),
		logger: slog.Default(),
		name:   name,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Name returns the consumer-chosen channel name.
func (c *Channel) Name() string {
	return c.name
}

// On registers a handler for changes from the given source. Only the
// postgres_changes source is supported; registrations for other sources
// or on an already torn down channel are ignored. Nothing attaches until
// [Channel.Subscribe].
func (c *Channel) On(source string, cfg Config, fn Handler) *Channel {
	if source != PostgresChanges {
		c.logger.Warn("ignoring registration for unsupported source", "source", source, "channel", c.name)
		return c
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateUnsubscribed {
		c.logger.Warn("ignoring registration on torn down channel", "channel", c.name)
		return c
	}
	c.bindings = append(c.bindings, binding{cfg: cfg, fn: fn})
	return c
}

// Subscribe attaches one native listener per registration and starts
// delivery. A malformed filter string fails the whole call and nothing
// attaches. Subscribing twice or after teardown is an error-free no-op.
func (c *Channel) Subscribe(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateCreated {
		return nil
	}

	type attach struct {
		constraints []domain.Constraint
		b           binding
	}
	attaches := make([]attach, 0, len(c.bindings))
	for _, b := range c.bindings {
		constraints := []domain.Constraint{domain.OrderBy{Field: "created_at"}}
		if b.cfg.Filter != "" {
			m := eqFilter.FindStringSubmatch(b.cfg.Filter)
			if m == nil {
				return domain.ErrBadFilter{Filter: b.cfg.Filter}
			}
			constraints = append([]domain.Constraint{domain.EqualTo{Field: m[1], Value: m[2]}}, constraints...)
		}
		attaches = append(attaches, attach{constraints: constraints, b: b})
	}

	for _, a := range attaches {
		b := a.b
		unsubscribe, err := c.store.Subscribe(ctx, b.cfg.Table, a.constraints, func(change domain.Change) {
			c.deliver(b, change)
		})
		if err != nil {
			for _, u := range c.unsubscribers {
				u()
			}
			c.unsubscribers = nil
			return err
		}
		c.unsubscribers = append(c.unsubscribers, unsubscribe)
	}
	c.state = stateSubscribed
	return nil
}

// Unsubscribe detaches every native listener. The channel becomes inert;
// calling again is a no-op.
func (c *Channel) Unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateUnsubscribed {
		return
	}
	for _, u := range c.unsubscribers {
		u()
	}
	c.unsubscribers = nil
	c.state = stateUnsubscribed
}

// deliver classifies one native change and invokes the handler when the
// registered event kind matches.
func (c *Channel) deliver(b binding, change domain.Change) {
	want := b.cfg.Event
	if want == "" {
		want = EventAll
	}

	var name string
	var ev domain.ChangeEvent
	switch change.Kind {
	case domain.ChangeAdded:
		name = EventInsert
		ev = domain.ChangeEvent{New: c.enrich(change.Snapshot)}
	case domain.ChangeModified:
		name = EventUpdate
		ev = domain.ChangeEvent{New: c.enrich(change.Snapshot)}
		// A change echoing this client's own pending write carries no
		// previous image; remote updates carry an identifier stub.
		if !change.Local {
			ev.Old = domain.M{"id": change.Snapshot.ID}
		}
	case domain.ChangeRemoved:
		name = EventDelete
		ev = domain.ChangeEvent{Old: c.enrich(change.Snapshot)}
	default:
		return
	}

	if want != EventAll && want != name {
		return
	}
	b.fn(ev)
}

func (c *Channel) enrich(snap domain.Snapshot) domain.M {
	doc := c.norm.Normalize(snap.Data)
	if doc == nil {
		doc = domain.M{}
	}
	doc["id"] = snap.ID
	return doc
}
