package params

import (
	"time"
	"unicode"
)

// sapDateLayout is SAP's compact 8-digit date form (YYYYMMDD).
const sapDateLayout = "20060102"

// dateLayouts are the inbound formats the hub has been observed to send.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// SAPDate coerces an arbitrary date value into SAP's compact 8-digit form.
// Unparseable or empty input yields an empty string, never an error: date
// fields are optional in every parameter bag.
func SAPDate(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(sapDateLayout)
	case string:
		return parseDateString(x)
	default:
		return ""
	}
}

func parseDateString(s string) string {
	if s == "" {
		return ""
	}

	// Already compact: 8 digits pass through unchanged.
	if len(s) == 8 && allDigits(s) {
		return s
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(sapDateLayout)
		}
	}
	return ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
