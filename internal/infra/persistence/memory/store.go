// Package memory provides the in-memory export record store. It is the
// authoritative state for the SQL stores, which snapshot it after writes.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"launchdash/internal/export"
)

var _ export.RecordStore = (*Store)(nil)

// Snapshot is the serialisable state of a Store, one field per bucket.
type Snapshot struct {
	Exports map[string]export.Record `json:"exports"`
	Audit   []export.AuditEntry      `json:"audit"`
}

// Store keeps export records and audit entries in process memory.
type Store struct {
	mu      sync.RWMutex
	exports map[string]export.Record
	audit   []export.AuditEntry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{exports: make(map[string]export.Record)}
}

// SaveExport inserts or replaces the record with the same id.
func (s *Store) SaveExport(ctx context.Context, record export.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.ID == "" {
		return fmt.Errorf("export record id required")
	}
	s.mu.Lock()
	s.exports[record.ID] = record.Copy()
	s.mu.Unlock()
	return nil
}

// GetExport returns a copy of the record.
func (s *Store) GetExport(ctx context.Context, id string) (export.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return export.Record{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.exports[id]
	if !ok {
		return export.Record{}, false, nil
	}
	return record.Copy(), true, nil
}

// ListExports returns every record ordered by creation time, then id.
func (s *Store) ListExports() []export.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]export.Record, 0, len(s.exports))
	for _, record := range s.exports {
		out = append(out, record.Copy())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// AppendAudit adds an entry to the trail.
func (s *Store) AppendAudit(ctx context.Context, entry export.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.audit = append(s.audit, cloneEntry(entry))
	s.mu.Unlock()
	return nil
}

// ListAudit returns the entries of one export in append order. An empty id
// returns the whole trail.
func (s *Store) ListAudit(ctx context.Context, exportID string) ([]export.AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]export.AuditEntry, 0)
	for _, entry := range s.audit {
		if exportID == "" || entry.ExportID == exportID {
			out = append(out, cloneEntry(entry))
		}
	}
	return out, nil
}

// ExportState returns a deep copy of the store contents.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Exports: make(map[string]export.Record, len(s.exports)),
		Audit:   make([]export.AuditEntry, 0, len(s.audit)),
	}
	for id, record := range s.exports {
		snap.Exports[id] = record.Copy()
	}
	for _, entry := range s.audit {
		snap.Audit = append(snap.Audit, cloneEntry(entry))
	}
	return snap
}

// ImportState replaces the store contents with snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	exports := make(map[string]export.Record, len(snapshot.Exports))
	for id, record := range snapshot.Exports {
		if record.ID == "" {
			record.ID = id
		}
		exports[id] = record.Copy()
	}
	audit := make([]export.AuditEntry, 0, len(snapshot.Audit))
	for _, entry := range snapshot.Audit {
		audit = append(audit, cloneEntry(entry))
	}
	s.mu.Lock()
	s.exports = exports
	s.audit = audit
	s.mu.Unlock()
}

func cloneEntry(e export.AuditEntry) export.AuditEntry {
	if e.Metadata != nil {
		md := make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			md[k] = v
		}
		e.Metadata = md
	}
	return e
}
