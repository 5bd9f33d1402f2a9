package adapter

import "errors"

// Sentinel errors returned by adapter operations.
var (
	// ErrNoCaller is returned when an Adapter is created without an RFC caller.
	ErrNoCaller = errors.New("adapter: rfc caller is required")

	// ErrEventNotFound is returned when an event cannot be found in the store.
	ErrEventNotFound = errors.New("adapter: event not found")

	// ErrDLQNotFound is returned when a DLQ entry cannot be found.
	ErrDLQNotFound = errors.New("adapter: dlq entry not found")

	// ErrStoreClosed is returned when a store operation is attempted after the store is closed.
	ErrStoreClosed = errors.New("adapter: store is closed")

	// ErrNoStore is returned when a store-backed operation is requested on an adapter without a store.
	ErrNoStore = errors.New("adapter: store is not configured")
)
