// Package memory provides an in-memory Store implementation for unit
// testing and standalone use.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	adapter "github.com/imarval/mele-sap-adapter"
	"github.com/imarval/mele-sap-adapter/dlq"
	"github.com/imarval/mele-sap-adapter/event"
	"github.com/imarval/mele-sap-adapter/id"
	adapterstore "github.com/imarval/mele-sap-adapter/store"
)

// compile-time interface check.
var _ adapterstore.Store = (*Store)(nil)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu sync.RWMutex

	events     map[string]*event.Event // keyed by hub event ID
	dlqEntries map[string]*dlq.Entry   // keyed by entry ID string

	closed bool
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		events:     make(map[string]*event.Event),
		dlqEntries: make(map[string]*dlq.Entry),
	}
}

// Ping reports whether the store is still open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return adapter.ErrStoreClosed
	}
	return nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ──────────────────────────────────────────────────
// event.Store
// ──────────────────────────────────────────────────

// SaveEvent creates or updates an event keyed by its hub-assigned ID.
func (s *Store) SaveEvent(_ context.Context, e *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return adapter.ErrStoreClosed
	}

	s.events[e.ID] = e
	return nil
}

// GetEvent returns an event by its hub-assigned ID.
func (s *Store) GetEvent(_ context.Context, eventID string) (*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[eventID]
	if !ok {
		return nil, adapter.ErrEventNotFound
	}
	return e, nil
}

// ListEvents returns events matching the given options, newest first.
func (s *Store) ListEvents(_ context.Context, opts event.ListOpts) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*event.Event
	for _, e := range s.events {
		if opts.Status != nil && e.Status != *opts.Status {
			continue
		}
		if opts.EntityType != "" && e.EntityType != opts.EntityType {
			continue
		}
		result = append(result, e)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return paginate(result, opts.Offset, opts.Limit), nil
}

// CountEvents returns the number of stored events.
func (s *Store) CountEvents(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.events)), nil
}

// ──────────────────────────────────────────────────
// dlq.Store
// ──────────────────────────────────────────────────

// PushDLQ stores a new dead-letter entry.
func (s *Store) PushDLQ(_ context.Context, entry *dlq.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return adapter.ErrStoreClosed
	}

	s.dlqEntries[entry.ID.String()] = entry
	return nil
}

// GetDLQ returns an entry by ID.
func (s *Store) GetDLQ(_ context.Context, entryID id.ID) (*dlq.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.dlqEntries[entryID.String()]
	if !ok {
		return nil, adapter.ErrDLQNotFound
	}
	return entry, nil
}

// ListDLQ returns entries matching the given options, newest first.
func (s *Store) ListDLQ(_ context.Context, opts dlq.ListOpts) ([]*dlq.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*dlq.Entry
	for _, entry := range s.dlqEntries {
		if opts.EntityType != "" && entry.EntityType != opts.EntityType {
			continue
		}
		if opts.From != nil && entry.FailedAt.Before(*opts.From) {
			continue
		}
		if opts.To != nil && entry.FailedAt.After(*opts.To) {
			continue
		}
		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].FailedAt.After(result[j].FailedAt)
	})

	return paginate(result, opts.Offset, opts.Limit), nil
}

// MarkReplayed stamps an entry's ReplayedAt.
func (s *Store) MarkReplayed(_ context.Context, entryID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.dlqEntries[entryID.String()]
	if !ok {
		return adapter.ErrDLQNotFound
	}

	now := time.Now().UTC()
	entry.ReplayedAt = &now
	entry.Touch()
	return nil
}

// DeleteDLQ removes an entry.
func (s *Store) DeleteDLQ(_ context.Context, entryID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dlqEntries[entryID.String()]; !ok {
		return adapter.ErrDLQNotFound
	}

	delete(s.dlqEntries, entryID.String())
	return nil
}

// CountDLQ returns the number of stored entries.
func (s *Store) CountDLQ(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.dlqEntries)), nil
}

// paginate applies offset and limit to a slice.
func paginate[T any](items []*T, offset, limit int) []*T {
	if offset >= len(items) {
		return nil
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
