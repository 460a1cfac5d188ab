package memstore

import (
	"log/slog"
	"os"

	"github.com/porolink/porobase/domain"
)

// Option configures store behavior through the functional options pattern.
type Option func(*Memstore)

// WithTimeGetter sets the clock used for the store-native "now" value.
func WithTimeGetter(tg domain.TimeGetter) Option {
	return func(m *Memstore) {
		m.tg = tg
	}
}

// WithIDGenerator sets the generator used for new document identifiers.
func WithIDGenerator(g domain.IDGenerator) Option {
	return func(m *Memstore) {
		m.idgen = g
	}
}

// WithComparer sets the comparer used for filtering and ordering.
func WithComparer(c domain.Comparer) Option {
	return func(m *Memstore) {
		m.cmpr = c
	}
}

// WithLogger sets the logger used for snapshot load warnings.
func WithLogger(l *slog.Logger) Option {
	return func(m *Memstore) {
		m.logger = l
	}
}

// WithLocalWrites controls whether change events carry the pending-local
// mark. This store's writes always originate in-process, so it defaults to
// true; tests covering the remote-origin event shape switch it off.
func WithLocalWrites(local bool) Option {
	return func(m *Memstore) {
		m.localWrites = local
	}
}

// WithSnapshotFile sets the file used by [Memstore.LoadSnapshot] and
// [Memstore.PersistSnapshot]. Without it both are no-ops.
func WithSnapshotFile(path string) Option {
	return func(m *Memstore) {
		m.snapshotPath = path
	}
}

// WithFileMode sets the permissions for the snapshot file.
func WithFileMode(mode os.FileMode) Option {
	return func(m *Memstore) {
		m.fileMode = mode
	}
}
