// Package event defines the canonical change event the adapter processes.
//
// A canonical event is the normalized, validated representation of an inbound
// change notification, independent of whether the hub delivered it over the
// push channel or the HTTP webhook.
package event

import (
	"time"

	"github.com/imarval/mele-sap-adapter/internal/entity"
)

// Type is the kind of change an event represents.
type Type string

const (
	// TypeCreate indicates a new business entity was created.
	TypeCreate Type = "Create"

	// TypeUpdate indicates an existing business entity changed.
	TypeUpdate Type = "Update"

	// TypeDelete indicates a business entity was removed.
	TypeDelete Type = "Delete"

	// TypeSync requests reconciliation of an entity with SAP state.
	TypeSync Type = "Sync"
)

// KnownTypes is the closed set of accepted event types.
var KnownTypes = map[Type]bool{
	TypeCreate: true,
	TypeUpdate: true,
	TypeDelete: true,
	TypeSync:   true,
}

// Status is the processing lifecycle state of an event.
type Status string

const (
	// StatusPending indicates the event has not been processed yet.
	StatusPending Status = "pending"

	// StatusProcessing indicates the event is currently being processed.
	StatusProcessing Status = "processing"

	// StatusCompleted indicates processing succeeded.
	StatusCompleted Status = "completed"

	// StatusFailed indicates processing failed.
	StatusFailed Status = "failed"

	// StatusRetry indicates the event was marked for another attempt.
	StatusRetry Status = "retry"
)

// KnownEntityTypes is the closed set of canonical business entity types the
// hub is allowed to send. Construction rejects anything outside this set.
var KnownEntityTypes = map[string]bool{
	"Product":       true,
	"Customer":      true,
	"Vendor":        true,
	"SalesOrder":    true,
	"PurchaseOrder": true,
	"Store":         true,
	"Invoice":       true,
	"GoodsReceipt":  true,
	"GoodsIssue":    true,
	"Inventory":     true,
	"CostCenter":    true,
	"ProfitCenter":  true,
	"GLAccount":     true,
	"User":          true,
}

// Source identifies the system that emitted an event.
type Source struct {
	Name     string `json:"name,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Context carries optional multi-tenant routing information.
type Context struct {
	TenantID      string `json:"tenant_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// ErrorEntry records one failed processing attempt.
type ErrorEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Error      string    `json:"error"`
	RetryCount int       `json:"retry_count"`
}

// Event is the canonical change event.
type Event struct {
	entity.Entity

	// ID is the hub-assigned unique event identifier.
	ID string `json:"id"`

	// Type is the change kind (Create, Update, Delete, Sync).
	Type Type `json:"type"`

	// EntityType is the canonical business entity type (e.g. "Product").
	EntityType string `json:"entity_type"`

	// Timestamp is the hub's ISO-8601 emission time, kept verbatim.
	Timestamp string `json:"timestamp"`

	// Source identifies the emitting system, when provided.
	Source *Source `json:"source,omitempty"`

	// Data is the entity payload. Always non-nil after construction.
	Data map[string]any `json:"data"`

	// Context carries tenant and correlation identifiers, when provided.
	Context *Context `json:"context,omitempty"`

	// RetryCount is the number of retry markings applied to this event.
	RetryCount int `json:"retry_count"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// Errors is the ordered log of failed attempts.
	Errors []ErrorEntry `json:"errors,omitempty"`
}

// MarkAsProcessed transitions the event to completed or failed based on the
// processing result. On failure the cause is appended to the error log
// together with the retry count at the time of failure.
func (e *Event) MarkAsProcessed(success bool, cause string) {
	if success {
		e.Status = StatusCompleted
	} else {
		e.Status = StatusFailed
		e.Errors = append(e.Errors, ErrorEntry{
			Timestamp:  time.Now().UTC(),
			Error:      cause,
			RetryCount: e.RetryCount,
		})
	}
	e.Touch()
}

// MarkForRetry increments the retry count and moves the event to retry state.
// Actually re-invoking processing is owned by an external scheduler.
func (e *Event) MarkForRetry() {
	e.RetryCount++
	e.Status = StatusRetry
	e.Touch()
}

// CanRetry reports whether the event is eligible for another attempt.
func (e *Event) CanRetry(maxRetries int) bool {
	return e.RetryCount < maxRetries && e.Status == StatusFailed
}
