package memstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/porolink/porobase/adapter/timegetter"
	"github.com/porolink/porobase/domain"
)

type MemstoreTestSuite struct {
	suite.Suite
	ctx context.Context
	m   *Memstore
}

func (s *MemstoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.m = NewMemstore()
}

// seed creates documents with explicit creation stamps so the natural
// order is deterministic.
func (s *MemstoreTestSuite) seed(collection string, docs ...domain.M) []string {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ids := make([]string, len(docs))
	for i, doc := range docs {
		d := doc.Clone()
		if _, ok := d[createdAtField]; !ok {
			d[createdAtField] = domain.NewTimestamp(base.Add(time.Duration(i) * time.Second))
		}
		id, err := s.m.Create(s.ctx, collection, d)
		s.Require().NoError(err)
		ids[i] = id
	}
	return ids
}

func (s *MemstoreTestSuite) TestCreateGet() {
	ids := s.seed("parcels", domain.M{"status": "picked_up", "weight": 2.5})
	s.Len(ids[0], 20)

	doc, ok, err := s.m.Get(s.ctx, "parcels", ids[0])
	s.NoError(err)
	s.True(ok)
	s.Equal("picked_up", doc["status"])
	s.Equal(2.5, doc["weight"])

	// The returned document is a copy.
	doc["status"] = "delivered"
	doc2, _, _ := s.m.Get(s.ctx, "parcels", ids[0])
	s.Equal("picked_up", doc2["status"])
}

func (s *MemstoreTestSuite) TestGetMissing() {
	_, ok, err := s.m.Get(s.ctx, "parcels", "nope")
	s.NoError(err)
	s.False(ok)
}

func (s *MemstoreTestSuite) TestQueryNaturalOrder() {
	s.seed("parcels",
		domain.M{"n": 1},
		domain.M{"n": 2},
		domain.M{"n": 3},
	)
	res, err := s.m.Query(s.ctx, "parcels")
	s.NoError(err)
	s.Require().Len(res, 3)
	s.Equal(1, res[0].Data["n"])
	s.Equal(2, res[1].Data["n"])
	s.Equal(3, res[2].Data["n"])
}

func (s *MemstoreTestSuite) TestQueryEqual() {
	s.seed("parcels",
		domain.M{"status": "picked_up"},
		domain.M{"status": "delivered"},
		domain.M{"status": "picked_up"},
	)
	res, err := s.m.Query(s.ctx, "parcels", domain.EqualTo{Field: "status", Value: "picked_up"})
	s.NoError(err)
	s.Len(res, 2)
	for _, snap := range res {
		s.Equal("picked_up", snap.Data["status"])
	}
}

func (s *MemstoreTestSuite) TestQueryOneOf() {
	s.seed("parcels",
		domain.M{"status": "new"},
		domain.M{"status": "picked_up"},
		domain.M{"status": "delivered"},
	)
	res, err := s.m.Query(s.ctx, "parcels",
		domain.OneOf{Field: "status", Values: []any{"new", "delivered"}})
	s.NoError(err)
	s.Len(res, 2)
}

func (s *MemstoreTestSuite) TestQueryOneOfTooLarge() {
	values := make([]any, domain.MaxOneOfValues+1)
	for i := range values {
		values[i] = i
	}
	_, err := s.m.Query(s.ctx, "parcels", domain.OneOf{Field: "n", Values: values})
	s.ErrorIs(err, domain.ErrTooManyValues)
}

func (s *MemstoreTestSuite) TestQueryOrderDescending() {
	s.seed("parcels",
		domain.M{"weight": 1.0},
		domain.M{"weight": 3.0},
		domain.M{"weight": 2.0},
	)
	res, err := s.m.Query(s.ctx, "parcels", domain.OrderBy{Field: "weight", Descending: true})
	s.NoError(err)
	s.Require().Len(res, 3)
	s.Equal(3.0, res[0].Data["weight"])
	s.Equal(2.0, res[1].Data["weight"])
	s.Equal(1.0, res[2].Data["weight"])
}

func (s *MemstoreTestSuite) TestQueryEmptyCollection() {
	res, err := s.m.Query(s.ctx, "nothing")
	s.NoError(err)
	s.Empty(res)
}

func (s *MemstoreTestSuite) TestUpdateMergesPartial() {
	ids := s.seed("parcels", domain.M{"status": "new", "weight": 2.5})
	err := s.m.Update(s.ctx, "parcels", ids[0], domain.M{"status": "picked_up"})
	s.NoError(err)

	doc, _, _ := s.m.Get(s.ctx, "parcels", ids[0])
	s.Equal("picked_up", doc["status"])
	s.Equal(2.5, doc["weight"])
}

func (s *MemstoreTestSuite) TestUpdateMissing() {
	err := s.m.Update(s.ctx, "parcels", "nope", domain.M{"status": "picked_up"})
	s.ErrorIs(err, domain.ErrNoDocument)
}

func (s *MemstoreTestSuite) TestDeleteIdempotent() {
	ids := s.seed("parcels", domain.M{"status": "new"})
	s.NoError(s.m.Delete(s.ctx, "parcels", ids[0]))
	s.NoError(s.m.Delete(s.ctx, "parcels", ids[0]))
	s.NoError(s.m.Delete(s.ctx, "other", "nope"))

	_, ok, _ := s.m.Get(s.ctx, "parcels", ids[0])
	s.False(ok)
}

func (s *MemstoreTestSuite) TestPutUpsert() {
	err := s.m.Put(s.ctx, "profiles", "u1", domain.M{"first_name": "Aino"})
	s.NoError(err)
	err = s.m.Put(s.ctx, "profiles", "u1", domain.M{"first_name": "Aino", "last_name": "K"})
	s.NoError(err)

	doc, ok, _ := s.m.Get(s.ctx, "profiles", "u1")
	s.True(ok)
	s.Equal("K", doc["last_name"])
}

func recv(s *MemstoreTestSuite, ch <-chan domain.Change) domain.Change {
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for change event")
		return domain.Change{}
	}
}

func (s *MemstoreTestSuite) TestSubscribeInitialState() {
	ids := s.seed("parcels",
		domain.M{"sender_id": "U1"},
		domain.M{"sender_id": "U2"},
		domain.M{"sender_id": "U1"},
	)

	events := make(chan domain.Change, 16)
	unsubscribe, err := s.m.Subscribe(s.ctx, "parcels",
		[]domain.Constraint{domain.EqualTo{Field: "sender_id", Value: "U1"}},
		func(ev domain.Change) { events <- ev })
	s.Require().NoError(err)
	defer unsubscribe()

	first := recv(s, events)
	s.Equal(domain.ChangeAdded, first.Kind)
	s.Equal(ids[0], first.Snapshot.ID)
	s.False(first.Local)

	second := recv(s, events)
	s.Equal(domain.ChangeAdded, second.Kind)
	s.Equal(ids[2], second.Snapshot.ID)
}

func (s *MemstoreTestSuite) TestSubscribeLiveChanges() {
	events := make(chan domain.Change, 16)
	unsubscribe, err := s.m.Subscribe(s.ctx, "parcels",
		[]domain.Constraint{domain.EqualTo{Field: "sender_id", Value: "U1"}},
		func(ev domain.Change) { events <- ev })
	s.Require().NoError(err)
	defer unsubscribe()

	id, err := s.m.Create(s.ctx, "parcels", domain.M{"sender_id": "U1", "status": "new"})
	s.Require().NoError(err)

	added := recv(s, events)
	s.Equal(domain.ChangeAdded, added.Kind)
	s.Equal(id, added.Snapshot.ID)
	s.True(added.Local)

	s.Require().NoError(s.m.Update(s.ctx, "parcels", id, domain.M{"status": "picked_up"}))
	modified := recv(s, events)
	s.Equal(domain.ChangeModified, modified.Kind)
	s.Equal("picked_up", modified.Snapshot.Data["status"])

	s.Require().NoError(s.m.Delete(s.ctx, "parcels", id))
	removed := recv(s, events)
	s.Equal(domain.ChangeRemoved, removed.Kind)
	s.Equal(id, removed.Snapshot.ID)
}

// A document updated out of a subscribed query surfaces as a removal,
// and into it as an addition.
func (s *MemstoreTestSuite) TestSubscribeEnterLeave() {
	ids := s.seed("parcels", domain.M{"status": "new"})

	events := make(chan domain.Change, 16)
	unsubscribe, err := s.m.Subscribe(s.ctx, "parcels",
		[]domain.Constraint{domain.EqualTo{Field: "status", Value: "picked_up"}},
		func(ev domain.Change) { events <- ev })
	s.Require().NoError(err)
	defer unsubscribe()

	s.Require().NoError(s.m.Update(s.ctx, "parcels", ids[0], domain.M{"status": "picked_up"}))
	entered := recv(s, events)
	s.Equal(domain.ChangeAdded, entered.Kind)

	s.Require().NoError(s.m.Update(s.ctx, "parcels", ids[0], domain.M{"status": "delivered"}))
	left := recv(s, events)
	s.Equal(domain.ChangeRemoved, left.Kind)
	s.Equal("picked_up", left.Snapshot.Data["status"])
}

func (s *MemstoreTestSuite) TestSubscribeRemoteWrites() {
	s.m = NewMemstore(WithLocalWrites(false))

	events := make(chan domain.Change, 16)
	unsubscribe, err := s.m.Subscribe(s.ctx, "parcels", nil,
		func(ev domain.Change) { events <- ev })
	s.Require().NoError(err)
	defer unsubscribe()

	_, err = s.m.Create(s.ctx, "parcels", domain.M{"status": "new"})
	s.Require().NoError(err)

	ev := recv(s, events)
	s.Equal(domain.ChangeAdded, ev.Kind)
	s.False(ev.Local)
}

func (s *MemstoreTestSuite) TestUnsubscribeStopsDelivery() {
	events := make(chan domain.Change, 16)
	unsubscribe, err := s.m.Subscribe(s.ctx, "parcels", nil,
		func(ev domain.Change) { events <- ev })
	s.Require().NoError(err)

	unsubscribe()
	unsubscribe()

	_, err = s.m.Create(s.ctx, "parcels", domain.M{"status": "new"})
	s.Require().NoError(err)

	select {
	case ev := <-events:
		s.Failf("unexpected event after unsubscribe", "%+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *MemstoreTestSuite) TestNow() {
	instant := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.m = NewMemstore(WithTimeGetter(timegetter.NewFixed(instant, 0)))
	s.Equal(domain.NewTimestamp(instant), s.m.Now())
}

func (s *MemstoreTestSuite) TestSnapshotRoundTrip() {
	path := filepath.Join(s.T().TempDir(), "poro.snapshot")
	s.m = NewMemstore(WithSnapshotFile(path))

	stamp := domain.NewTimestamp(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	ids := s.seed("parcels", domain.M{
		"status":     "picked_up",
		"weight":     2.5,
		"picked_at":  stamp,
		"created_at": stamp,
	})
	s.Require().NoError(s.m.PersistSnapshot(s.ctx))

	restored := NewMemstore(WithSnapshotFile(path))
	s.Require().NoError(restored.LoadSnapshot(s.ctx))

	doc, ok, err := restored.Get(s.ctx, "parcels", ids[0])
	s.NoError(err)
	s.Require().True(ok)
	s.Equal("picked_up", doc["status"])
	s.Equal(2.5, doc["weight"])
	s.Equal(stamp, doc["picked_at"])
	s.Equal(stamp, doc["created_at"])
}

func (s *MemstoreTestSuite) TestSnapshotNoFileConfigured() {
	s.NoError(s.m.LoadSnapshot(s.ctx))
	s.NoError(s.m.PersistSnapshot(s.ctx))
}

func (s *MemstoreTestSuite) TestLoadSnapshotMissingFile() {
	s.m = NewMemstore(WithSnapshotFile(filepath.Join(s.T().TempDir(), "absent")))
	s.NoError(s.m.LoadSnapshot(s.ctx))
}

func TestMemstoreTestSuite(t *testing.T) {
	suite.Run(t, new(MemstoreTestSuite))
}
