package outcome

import (
	"fmt"
	"strings"
)

// Severity codes attached to SAP response messages.
const (
	SeverityError   = "E"
	SeverityAbort   = "A"
	SeverityWarning = "W"
	SeverityInfo    = "I"
	SeveritySuccess = "S"
)

// messageListFields is the ordered list of response fields probed for the
// BAPI message list. The field name varies by call kind; the first present
// one wins. This list encodes observed SAP response shapes; keep it
// centralized.
var messageListFields = []string{"RETURN", "Return", "ET_RETURN", "RETURN_TAB", "MESSAGES"}

// objectKeyFields is the ordered list of response fields probed for the
// business object key on success. First non-empty wins.
var objectKeyFields = []string{
	"MATERIAL",
	"CUSTOMERNO",
	"CUSTOMER",
	"VENDORNO",
	"VENDOR",
	"SALESDOCUMENT",
	"PURCHASEORDER",
	"DOCUMENT_NUMBER",
}

// Message is one entry of a BAPI response message list.
type Message struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Number string `json:"number"`
	Text   string `json:"text"`
}

// failing reports whether the message marks the whole response a failure.
// Error and Abort are equally failing; Warning never fails a response; any
// other severity code is treated as non-failing.
func (m Message) failing() bool {
	return m.Type == SeverityError || m.Type == SeverityAbort
}

// Normalize classifies a raw SAP response or transport error into an Outcome.
//
// A transport error yields a retryable failure with no SAP result. A response
// whose message list contains an Error or Abort severity yields a retryable
// failure with all offending messages concatenated. Anything else is success,
// with the business object key and Warning-severity messages attached in
// metadata.
func Normalize(eventID, entityType string, op Operation, response map[string]any, callErr error) *Outcome {
	if callErr != nil {
		return NewFailure(eventID, entityType, op, callErr.Error())
	}

	messages := extractMessages(response)

	var failures []string
	var warnings []Message
	for _, m := range messages {
		if m.failing() {
			failures = append(failures, fmt.Sprintf("%s%s: %s", m.ID, m.Number, m.Text))
		}
		if m.Type == SeverityWarning {
			warnings = append(warnings, m)
		}
	}

	if len(failures) > 0 {
		out := NewFailure(eventID, entityType, op, "SAP BAPI Error: "+strings.Join(failures, "; "))
		out.SAPResult = response
		out.Metadata["messages"] = messages
		out.Metadata["operation"] = string(op)
		return out
	}

	out := NewSuccess(eventID, entityType, op, fmt.Sprintf("%s completed for %s", op, entityType))
	out.SAPResult = response
	out.Metadata["messages"] = messages
	out.Metadata["operation"] = string(op)
	if key := extractObjectKey(response); key != "" {
		out.Metadata["objectKey"] = key
	}
	if len(warnings) > 0 {
		out.Metadata["warnings"] = warnings
	}
	return out
}

// ResponseFailed reports whether a raw response's message list contains an
// Error or Abort severity message. Used by the invoker to decide whether a
// write call earned its follow-up commit.
func ResponseFailed(response map[string]any) bool {
	for _, m := range extractMessages(response) {
		if m.failing() {
			return true
		}
	}
	return false
}

// extractMessages probes the known message-list fields and decodes the first
// present one. A bare single message object is treated as a one-element list.
func extractMessages(response map[string]any) []Message {
	if response == nil {
		return nil
	}

	for _, field := range messageListFields {
		raw, ok := response[field]
		if !ok || raw == nil {
			continue
		}

		switch v := raw.(type) {
		case []any:
			msgs := make([]Message, 0, len(v))
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					msgs = append(msgs, decodeMessage(m))
				}
			}
			return msgs
		case []map[string]any:
			msgs := make([]Message, 0, len(v))
			for _, m := range v {
				msgs = append(msgs, decodeMessage(m))
			}
			return msgs
		case map[string]any:
			// Single-structure RETURN: only meaningful when populated.
			m := decodeMessage(v)
			if m.Type == "" && m.Text == "" {
				return nil
			}
			return []Message{m}
		}
	}
	return nil
}

func decodeMessage(m map[string]any) Message {
	return Message{
		Type:   fieldString(m, "TYPE", "Type"),
		ID:     fieldString(m, "ID", "Id"),
		Number: fieldString(m, "NUMBER", "Number"),
		Text:   fieldString(m, "MESSAGE", "Message"),
	}
}

// extractObjectKey probes the known key-bearing fields; first non-empty wins.
func extractObjectKey(response map[string]any) string {
	for _, field := range objectKeyFields {
		if v, ok := response[field].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func fieldString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			switch s := v.(type) {
			case string:
				return s
			default:
				return fmt.Sprint(s)
			}
		}
	}
	return ""
}
