package event

import (
	"fmt"
	"strconv"

	"github.com/imarval/mele-sap-adapter/internal/entity"
)

// ValidationError describes a malformed raw event payload.
// Validation failures are never retryable: the same payload will fail again.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("event: invalid field %q: %s", e.Field, e.Message)
}

// The two hub transports disagree on field casing: the push channel sends
// lower-camel keys, the webhook historically sent upper-camel (and a mixed
// "timeStamp"). Candidate lists are probed in order, first present wins.
// Keep these centralized: they encode observed hub payload shapes.
var (
	eventTypeKeys    = []string{"eventType", "EventType"}
	entityTypeKeys   = []string{"entityType", "EntityType"}
	eventIDKeys      = []string{"eventId", "EventId", "eventID"}
	timestampKeys    = []string{"timestamp", "Timestamp", "timeStamp", "TimeStamp"}
	payloadKeys      = []string{"payload", "Payload"}
	dataKeys         = []string{"data", "Data"}
	sourceSystemKeys = []string{"sourceSystem", "SourceSystem"}
	contextKeys      = []string{"context", "Context"}
	retryCountKeys   = []string{"retryCount", "RetryCount"}
)

// FromRawPayload normalizes a raw transport payload into a canonical Event.
//
// Construction fails with a *ValidationError when eventType, entityType,
// eventId or timestamp is absent, when eventType or entityType falls outside
// its closed enumeration, or when a payload envelope is present without a
// data property. Construction is pure: no statistics or remote calls.
func FromRawPayload(raw map[string]any) (*Event, error) {
	if raw == nil {
		return nil, &ValidationError{Field: "payload", Message: "raw payload is nil"}
	}

	evtType := pickString(raw, eventTypeKeys)
	if evtType == "" {
		return nil, &ValidationError{Field: "eventType", Message: "required"}
	}
	if !KnownTypes[Type(evtType)] {
		return nil, &ValidationError{Field: "eventType", Message: fmt.Sprintf("unsupported event type %q", evtType)}
	}

	entityType := pickString(raw, entityTypeKeys)
	if entityType == "" {
		return nil, &ValidationError{Field: "entityType", Message: "required"}
	}
	if !KnownEntityTypes[entityType] {
		return nil, &ValidationError{Field: "entityType", Message: fmt.Sprintf("unknown entity type %q", entityType)}
	}

	eventID := pickString(raw, eventIDKeys)
	if eventID == "" {
		return nil, &ValidationError{Field: "eventId", Message: "required"}
	}

	timestamp := pickString(raw, timestampKeys)
	if timestamp == "" {
		return nil, &ValidationError{Field: "timestamp", Message: "required"}
	}

	data := map[string]any{}
	if envelope, ok := pick(raw, payloadKeys); ok {
		envMap, isMap := envelope.(map[string]any)
		if !isMap {
			return nil, &ValidationError{Field: "payload", Message: "must be an object"}
		}
		inner, ok := pick(envMap, dataKeys)
		if !ok {
			return nil, &ValidationError{Field: "payload.data", Message: "required"}
		}
		dataMap, isMap := inner.(map[string]any)
		if !isMap || dataMap == nil {
			return nil, &ValidationError{Field: "payload.data", Message: "must be a non-null object"}
		}
		data = dataMap
	}

	e := &Event{
		Entity:     entity.New(),
		ID:         eventID,
		Type:       Type(evtType),
		EntityType: entityType,
		Timestamp:  timestamp,
		Data:       data,
		RetryCount: pickInt(raw, retryCountKeys),
		Status:     StatusPending,
	}

	if src, ok := pick(raw, sourceSystemKeys); ok {
		if srcMap, isMap := src.(map[string]any); isMap {
			e.Source = &Source{
				Name:     pickString(srcMap, []string{"name", "Name"}),
				Instance: pickString(srcMap, []string{"instance", "Instance"}),
			}
		}
	}

	if cctx, ok := pick(raw, contextKeys); ok {
		if ctxMap, isMap := cctx.(map[string]any); isMap {
			e.Context = &Context{
				TenantID:      pickString(ctxMap, []string{"tenantId", "TenantId", "tenantID"}),
				CorrelationID: pickString(ctxMap, []string{"correlationId", "CorrelationId", "correlationID"}),
			}
		}
	}

	return e, nil
}

// PeekID extracts the event ID from a raw payload without validating it.
// Used to tag rejection outcomes with whatever ID the payload carried.
func PeekID(raw map[string]any) string {
	return pickString(raw, eventIDKeys)
}

// pick returns the first present candidate key's value.
func pick(raw map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// pickString returns the first present candidate key's value as a string.
// Non-string scalars are formatted; absent keys yield "".
func pickString(raw map[string]any, keys []string) string {
	v, ok := pick(raw, keys)
	if !ok {
		return ""
	}

	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// pickInt returns the first present candidate key's value as a non-negative
// int. JSON numbers arrive as float64; anything unparseable yields 0.
func pickInt(raw map[string]any, keys []string) int {
	v, ok := pick(raw, keys)
	if !ok {
		return 0
	}

	var n int
	switch x := v.(type) {
	case float64:
		n = int(x)
	case int:
		n = x
	case string:
		parsed, err := strconv.Atoi(x)
		if err != nil {
			return 0
		}
		n = parsed
	}
	if n < 0 {
		return 0
	}
	return n
}
