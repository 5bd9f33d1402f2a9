package event_test

import (
	"errors"
	"testing"

	"github.com/imarval/mele-sap-adapter/event"
)

func validRaw() map[string]any {
	return map[string]any{
		"eventType":  "Create",
		"entityType": "Product",
		"eventId":    "evt-1001",
		"timestamp":  "2024-03-15T10:30:00Z",
		"payload": map[string]any{
			"data": map[string]any{
				"id":   "MAT001",
				"name": "Widget",
			},
		},
	}
}

func TestFromRawPayload(t *testing.T) {
	evt, err := event.FromRawPayload(validRaw())
	if err != nil {
		t.Fatal(err)
	}

	if evt.ID != "evt-1001" {
		t.Fatalf("expected ID evt-1001, got %q", evt.ID)
	}
	if evt.Type != event.TypeCreate {
		t.Fatalf("expected Create, got %s", evt.Type)
	}
	if evt.EntityType != "Product" {
		t.Fatalf("expected Product, got %q", evt.EntityType)
	}
	if evt.Timestamp != "2024-03-15T10:30:00Z" {
		t.Fatalf("timestamp must be kept verbatim, got %q", evt.Timestamp)
	}
	if evt.Data["id"] != "MAT001" {
		t.Fatalf("expected data.id MAT001, got %v", evt.Data["id"])
	}
	if evt.Status != event.StatusPending {
		t.Fatalf("new events start pending, got %s", evt.Status)
	}
	if evt.RetryCount != 0 {
		t.Fatalf("expected retry count 0, got %d", evt.RetryCount)
	}
}

// The push channel sends lowerCamel keys, the webhook UpperCamel. Both
// spellings of every field must normalize to the same event.
func TestFromRawPayloadCasingEquivalence(t *testing.T) {
	upper := map[string]any{
		"EventType":  "Update",
		"EntityType": "Customer",
		"EventId":    "evt-77",
		"TimeStamp":  "2024-03-15T10:30:00Z",
		"Payload": map[string]any{
			"Data": map[string]any{"id": "CUST01"},
		},
	}
	lower := map[string]any{
		"eventType":  "Update",
		"entityType": "Customer",
		"eventId":    "evt-77",
		"timestamp":  "2024-03-15T10:30:00Z",
		"payload": map[string]any{
			"data": map[string]any{"id": "CUST01"},
		},
	}

	a, err := event.FromRawPayload(upper)
	if err != nil {
		t.Fatal(err)
	}
	b, err := event.FromRawPayload(lower)
	if err != nil {
		t.Fatal(err)
	}

	if a.ID != b.ID || a.Type != b.Type || a.EntityType != b.EntityType || a.Timestamp != b.Timestamp {
		t.Fatalf("casing variants diverged: %+v vs %+v", a, b)
	}
	if a.Data["id"] != "CUST01" || b.Data["id"] != "CUST01" {
		t.Fatal("payload data lost during normalization")
	}
}

func TestFromRawPayloadValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(raw map[string]any)
		wantField string
	}{
		{
			name:      "missing eventType",
			mutate:    func(raw map[string]any) { delete(raw, "eventType") },
			wantField: "eventType",
		},
		{
			name:      "unknown eventType",
			mutate:    func(raw map[string]any) { raw["eventType"] = "Purge" },
			wantField: "eventType",
		},
		{
			name:      "missing entityType",
			mutate:    func(raw map[string]any) { delete(raw, "entityType") },
			wantField: "entityType",
		},
		{
			name:      "unknown entityType",
			mutate:    func(raw map[string]any) { raw["entityType"] = "Spaceship" },
			wantField: "entityType",
		},
		{
			name:      "missing eventId",
			mutate:    func(raw map[string]any) { delete(raw, "eventId") },
			wantField: "eventId",
		},
		{
			name:      "missing timestamp",
			mutate:    func(raw map[string]any) { delete(raw, "timestamp") },
			wantField: "timestamp",
		},
		{
			name:      "payload without data",
			mutate:    func(raw map[string]any) { raw["payload"] = map[string]any{"meta": "x"} },
			wantField: "payload.data",
		},
		{
			name:      "payload data null",
			mutate:    func(raw map[string]any) { raw["payload"] = map[string]any{"data": nil} },
			wantField: "payload.data",
		},
		{
			name:      "payload not an object",
			mutate:    func(raw map[string]any) { raw["payload"] = "oops" },
			wantField: "payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)

			_, err := event.FromRawPayload(raw)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *event.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, verr.Field)
			}
		})
	}
}

// A payload envelope is optional. Events like Sync requests carry no data at
// all; those must construct with an empty, non-nil data map.
func TestFromRawPayloadWithoutEnvelope(t *testing.T) {
	raw := validRaw()
	delete(raw, "payload")

	evt, err := event.FromRawPayload(raw)
	if err != nil {
		t.Fatal(err)
	}
	if evt.Data == nil {
		t.Fatal("data must be non-nil even without an envelope")
	}
	if len(evt.Data) != 0 {
		t.Fatalf("expected empty data, got %v", evt.Data)
	}
}

func TestFromRawPayloadOptionalSections(t *testing.T) {
	raw := validRaw()
	raw["sourceSystem"] = map[string]any{"name": "mele-hub", "instance": "prod-1"}
	raw["context"] = map[string]any{"tenantId": "200", "correlationId": "corr-9"}
	raw["retryCount"] = float64(2)

	evt, err := event.FromRawPayload(raw)
	if err != nil {
		t.Fatal(err)
	}

	if evt.Source == nil || evt.Source.Name != "mele-hub" || evt.Source.Instance != "prod-1" {
		t.Fatalf("source not parsed: %+v", evt.Source)
	}
	if evt.Context == nil || evt.Context.TenantID != "200" || evt.Context.CorrelationID != "corr-9" {
		t.Fatalf("context not parsed: %+v", evt.Context)
	}
	if evt.RetryCount != 2 {
		t.Fatalf("expected retry count 2, got %d", evt.RetryCount)
	}
}

func TestFromRawPayloadNil(t *testing.T) {
	_, err := event.FromRawPayload(nil)
	if err == nil {
		t.Fatal("expected error for nil payload")
	}
}

func TestPeekID(t *testing.T) {
	if got := event.PeekID(map[string]any{"eventId": "evt-5"}); got != "evt-5" {
		t.Fatalf("expected evt-5, got %q", got)
	}
	if got := event.PeekID(map[string]any{"EventId": "evt-6"}); got != "evt-6" {
		t.Fatalf("expected evt-6, got %q", got)
	}
	if got := event.PeekID(map[string]any{}); got != "" {
		t.Fatalf("expected empty ID, got %q", got)
	}
}
