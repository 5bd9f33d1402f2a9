package dlq

import (
	"context"

	"github.com/imarval/mele-sap-adapter/id"
)

// Store is the persistence interface for dead-letter entries.
type Store interface {
	// PushDLQ stores a new entry.
	PushDLQ(ctx context.Context, entry *Entry) error

	// GetDLQ returns an entry by ID.
	GetDLQ(ctx context.Context, entryID id.ID) (*Entry, error)

	// ListDLQ returns entries matching the given options, newest first.
	ListDLQ(ctx context.Context, opts ListOpts) ([]*Entry, error)

	// MarkReplayed stamps an entry's ReplayedAt.
	MarkReplayed(ctx context.Context, entryID id.ID) error

	// DeleteDLQ removes an entry.
	DeleteDLQ(ctx context.Context, entryID id.ID) error

	// CountDLQ returns the number of stored entries.
	CountDLQ(ctx context.Context) (int64, error)
}
