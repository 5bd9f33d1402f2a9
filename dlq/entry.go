// Package dlq holds events that permanently failed processing: outcomes that
// are not retryable, or events whose retry budget is exhausted.
package dlq

import (
	"time"

	"github.com/imarval/mele-sap-adapter/id"
	"github.com/imarval/mele-sap-adapter/internal/entity"
)

// Entry represents one permanently failed event.
type Entry struct {
	entity.Entity

	// ID is the unique TypeID for this entry.
	ID id.ID `json:"id"`

	// EventID is the hub-assigned ID of the failed event.
	EventID string `json:"event_id"`

	// EventType is the canonical change kind of the event.
	EventType string `json:"event_type"`

	// EntityType is the canonical entity type of the event.
	EntityType string `json:"entity_type"`

	// Operation is the remote operation category that failed.
	Operation string `json:"operation"`

	// RawPayload is the original transport payload, kept for replay.
	RawPayload map[string]any `json:"raw_payload"`

	// Error is the failure cause from the final attempt.
	Error string `json:"error"`

	// RetryCount is the retry count at the time of the final failure.
	RetryCount int `json:"retry_count"`

	// ReplayedAt is set when the entry has been replayed.
	ReplayedAt *time.Time `json:"replayed_at,omitempty"`

	// FailedAt is when the event permanently failed.
	FailedAt time.Time `json:"failed_at"`
}

// ListOpts configures filtering and pagination for DLQ listing.
type ListOpts struct {
	Offset     int
	Limit      int
	EntityType string
	From       *time.Time
	To         *time.Time
}
