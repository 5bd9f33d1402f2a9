// Package store defines the composite Store interface for adapter
// persistence.
//
// Each subsystem defines its own store interface; the aggregate Store
// composes them all. Persistence is optional: an adapter without a store
// simply keeps no event history and disables the DLQ.
package store

import (
	"context"

	"github.com/imarval/mele-sap-adapter/dlq"
	"github.com/imarval/mele-sap-adapter/event"
)

// Store is the aggregate persistence interface.
type Store interface {
	event.Store
	dlq.Store

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
