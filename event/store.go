package event

import "context"

// ListOpts configures filtering and pagination for event listing.
type ListOpts struct {
	Offset     int
	Limit      int
	Status     *Status
	EntityType string
}

// Store is the persistence interface for canonical events.
type Store interface {
	// SaveEvent creates or updates an event keyed by its hub-assigned ID.
	SaveEvent(ctx context.Context, e *Event) error

	// GetEvent returns an event by its hub-assigned ID.
	GetEvent(ctx context.Context, eventID string) (*Event, error)

	// ListEvents returns events matching the given options, newest first.
	ListEvents(ctx context.Context, opts ListOpts) ([]*Event, error)

	// CountEvents returns the number of stored events.
	CountEvents(ctx context.Context) (int64, error)
}
