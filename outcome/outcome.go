// Package outcome defines the normalized processing result of a relayed
// event and the normalizer that classifies raw SAP responses into it.
package outcome

import (
	"time"
)

// Operation is the remote operation category an outcome reports on.
type Operation string

const (
	// OpCreate is a create call.
	OpCreate Operation = "CREATE"

	// OpUpdate is an update call.
	OpUpdate Operation = "UPDATE"

	// OpDelete is a delete call.
	OpDelete Operation = "DELETE"

	// OpRead is a read call.
	OpRead Operation = "READ"

	// OpSync is a reconciliation flow (read then create or update).
	OpSync Operation = "SYNC"

	// OpValidate is a validation-only pass.
	OpValidate Operation = "VALIDATE"

	// OpProcess tags outcomes that failed before any operation was resolved
	// (malformed payloads, unsupported combinations).
	OpProcess Operation = "PROCESS"
)

// Outcome is the canonical success/failure result of attempting to relay one
// event, carrying retryability and diagnostic metadata.
type Outcome struct {
	// Success reports whether the relay attempt succeeded.
	Success bool `json:"success"`

	// EventID is the canonical event's hub-assigned ID.
	EventID string `json:"event_id"`

	// EntityType is the canonical entity type of the event.
	EntityType string `json:"entity_type"`

	// Operation is the remote operation category that was attempted.
	Operation Operation `json:"operation"`

	// SAPResult is an opaque echo of the raw SAP response, when one exists.
	SAPResult map[string]any `json:"sap_result,omitempty"`

	// Message is the human-readable summary.
	Message string `json:"message"`

	// Error is the failure cause; empty on success.
	Error string `json:"error,omitempty"`

	// Metadata carries the SAP message list, object key and warnings. For
	// reconciliation outcomes it also records under "syncLeg" which write
	// was actually taken.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Timestamp is when the outcome was produced.
	Timestamp time.Time `json:"timestamp"`

	// ProcessingTimeMs is the end-to-end processing duration. Nil until set;
	// set exactly once after invocation completes.
	ProcessingTimeMs *int64 `json:"processing_time_ms,omitempty"`

	// Retryable reports whether re-submitting the event may succeed.
	// Always false on success.
	Retryable bool `json:"retryable"`
}

// NewSuccess creates a successful outcome. Success outcomes are never
// retryable.
func NewSuccess(eventID, entityType string, op Operation, message string) *Outcome {
	return &Outcome{
		Success:    true,
		EventID:    eventID,
		EntityType: entityType,
		Operation:  op,
		Message:    message,
		Metadata:   map[string]any{},
		Timestamp:  time.Now().UTC(),
		Retryable:  false,
	}
}

// NewFailure creates a failed outcome. Retryable defaults to true and is
// downgraded explicitly for permanent failures (validation, unsupported
// combinations).
func NewFailure(eventID, entityType string, op Operation, cause string) *Outcome {
	return &Outcome{
		Success:    false,
		EventID:    eventID,
		EntityType: entityType,
		Operation:  op,
		Message:    "event processing failed",
		Error:      cause,
		Metadata:   map[string]any{},
		Timestamp:  time.Now().UTC(),
		Retryable:  true,
	}
}

// Permanent marks the outcome as not retryable and returns it.
func (o *Outcome) Permanent() *Outcome {
	o.Retryable = false
	return o
}

// SetProcessingTime records the elapsed time since start. The duration is
// set exactly once; later calls are no-ops.
func (o *Outcome) SetProcessingTime(start time.Time) {
	if o.ProcessingTimeMs != nil {
		return
	}
	ms := time.Since(start).Milliseconds()
	o.ProcessingTimeMs = &ms
}

// Wire is the outcome shape returned to the calling transport, rendered as
// JSON by the transport collaborator.
type Wire struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	EventID   string    `json:"eventId"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Wire returns the transport-facing projection of the outcome.
func (o *Outcome) Wire() Wire {
	return Wire{
		Success:   o.Success,
		Message:   o.Message,
		EventID:   o.EventID,
		Error:     o.Error,
		Timestamp: o.Timestamp,
	}
}
