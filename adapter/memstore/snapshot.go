package memstore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dolmen-go/contextio"
	"github.com/porolink/porobase/domain"
)

// snapshotLine is one persisted document. The snapshot file is JSON lines,
// one document per line, so partial writes lose at most a tail.
type snapshotLine struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Data       map[string]any `json:"data"`
}

// tsKey marks an encoded store-native timestamp inside snapshot JSON.
const tsKey = "$ts"

// LoadSnapshot reads the snapshot file, if configured and present, into
// the store. Lines that do not decode are skipped with a warning rather
// than failing the load. No change events are emitted.
func (m *Memstore) LoadSnapshot(ctx context.Context) error {
	if m.snapshotPath == "" {
		return nil
	}
	f, err := os.Open(m.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	if err := m.mu.LockWithContext(ctx); err != nil {
		return err
	}
	defer m.mu.Unlock()

	sc := bufio.NewScanner(contextio.NewReader(ctx, f))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		var rec snapshotLine
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			m.logger.Warn("skipping corrupt snapshot line", "file", m.snapshotPath, "line", line, "err", err)
			continue
		}
		if rec.Collection == "" || rec.ID == "" {
			m.logger.Warn("skipping snapshot line without address", "file", m.snapshotPath, "line", line)
			continue
		}
		doc := decodeData(rec.Data)
		cd := m.collection(rec.Collection)
		cd.docs[rec.ID] = doc
		if err := cd.order.Insert(doc[createdAtField], domain.Snapshot{ID: rec.ID, Data: doc}); err != nil {
			return err
		}
	}
	return sc.Err()
}

// PersistSnapshot writes every document to the snapshot file, if
// configured. The write goes through a temporary file and a rename so a
// crash mid-write never clobbers the previous snapshot.
func (m *Memstore) PersistSnapshot(ctx context.Context) error {
	if m.snapshotPath == "" {
		return nil
	}

	tmp := m.snapshotPath + "~"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, m.fileMode)
	if err != nil {
		return err
	}

	w := contextio.NewWriter(ctx, f)
	enc := json.NewEncoder(w)

	if err := m.mu.LockWithContext(ctx); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	for name, cd := range m.collections {
		for id, doc := range cd.docs {
			rec := snapshotLine{Collection: name, ID: id, Data: encodeData(doc)}
			if err := enc.Encode(rec); err != nil {
				m.mu.Unlock()
				f.Close()
				os.Remove(tmp)
				return fmt.Errorf("encoding snapshot: %w", err)
			}
		}
	}
	m.mu.Unlock()

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.snapshotPath)
}

// encodeData rewrites native timestamps into tagged JSON objects.
func encodeData(data domain.M) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeValue(v any) any {
	switch t := v.(type) {
	case domain.Timestamp:
		return map[string]any{tsKey: map[string]any{"seconds": t.Seconds, "nanos": t.Nanoseconds}}
	case domain.M:
		return encodeData(t)
	case map[string]any:
		return encodeData(domain.M(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = encodeValue(e)
		}
		return out
	default:
		return v
	}
}

// decodeData restores tagged timestamp objects into native timestamps.
func decodeData(data map[string]any) domain.M {
	out := make(domain.M, len(data))
	for k, v := range data {
		out[k] = decodeValue(v)
	}
	return out
}

func decodeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if raw, ok := t[tsKey]; ok && len(t) == 1 {
			if fields, ok := raw.(map[string]any); ok {
				sec, _ := fields["seconds"].(float64)
				nanos, _ := fields["nanos"].(float64)
				return domain.Timestamp{Seconds: int64(sec), Nanoseconds: int32(nanos)}
			}
		}
		return decodeData(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = decodeValue(e)
		}
		return out
	default:
		return v
	}
}
