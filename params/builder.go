// Package params shapes canonical event data into the parameter structures
// SAP BAPI calls expect.
//
// Builders are pure and total: missing optional fields fall back to
// documented defaults, never to an error. One builder exists per
// (SAP entity type, operation kind) pair; entity types without a specific
// builder go through the generic fallback.
package params

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode"
)

// Context carries the per-record call context every builder receives.
type Context struct {
	// SAPKey is the SAP object key for the record.
	SAPKey string

	// Client is the SAP client number.
	Client string

	// CompanyCode is the company code.
	CompanyCode string

	// Plant is the default plant.
	Plant string

	// Warehouse is the default warehouse number.
	Warehouse string

	// Language is the logon language.
	Language string
}

// Builder transforms canonical payload data into a BAPI parameter bag.
type Builder func(data map[string]any, ctx Context) map[string]any

// Registry holds parameter builders keyed by builder ID.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry creates a Registry preloaded with the built-in builders.
func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	for builderID, b := range builtinBuilders() {
		r.builders[builderID] = b
	}
	return r
}

// Register adds or replaces a builder.
func (r *Registry) Register(builderID string, b Builder) {
	r.mu.Lock()
	r.builders[builderID] = b
	r.mu.Unlock()
}

// Build runs the builder registered under builderID. When no specific
// builder exists the generic fallback is used, so Build never fails.
func (r *Registry) Build(builderID string, data map[string]any, ctx Context) map[string]any {
	r.mu.RLock()
	b, ok := r.builders[builderID]
	r.mu.RUnlock()

	if !ok {
		return Fallback(data)
	}
	return b(data, ctx)
}

func builtinBuilders() map[string]Builder {
	return map[string]Builder{
		"material.create":      buildMaterialCreate,
		"material.update":      buildMaterialUpdate,
		"material.read":        buildMaterialRead,
		"customer.create":      buildCustomerCreate,
		"customer.update":      buildCustomerUpdate,
		"customer.read":        buildCustomerRead,
		"vendor.create":        buildVendorCreate,
		"vendor.update":        buildVendorUpdate,
		"vendor.read":          buildVendorRead,
		"salesorder.create":    buildSalesOrderCreate,
		"salesorder.update":    buildSalesOrderUpdate,
		"salesorder.read":      buildSalesOrderRead,
		"purchaseorder.create": buildPurchaseOrderCreate,
		"purchaseorder.update": buildPurchaseOrderUpdate,
		"purchaseorder.read":   buildPurchaseOrderRead,
	}
}

// Fallback is the generic builder for entity types without a specific
// mapping: every key becomes its UPPER_SNAKE form, objects and lists are
// serialized to JSON text, all other values to their string form. No field
// is ever dropped.
func Fallback(data map[string]any) map[string]any {
	bag := make(map[string]any, len(data))
	for k, v := range data {
		bag[UpperSnake(k)] = stringify(v)
	}
	return bag
}

// UpperSnake converts a camelCase key to UPPER_SNAKE form
// (e.g. "baseUnit" → "BASE_UNIT").
func UpperSnake(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// stringify renders a value as the flat string SAP parameter tables expect.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case map[string]any, []any:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(raw)
	default:
		return fmt.Sprint(x)
	}
}

// str returns the first present key's value as a string, or fallback.
func str(data map[string]any, key, fallback string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return fallback
	}

	s := stringify(v)
	if s == "" {
		return fallback
	}
	return s
}

// flagBag builds the parallel changed-field marker bag for update-style
// calls: one "X" marker per key present in the update payload. It iterates
// the payload generically and requires no fixed field list.
func flagBag(data map[string]any) map[string]any {
	flags := make(map[string]any, len(data))
	for k := range data {
		flags[UpperSnake(k)] = "X"
	}
	return flags
}

// mirrorFlags builds the marker bag for a hand-mapped SAP structure: one "X"
// per field the structure carries, keys taken verbatim.
func mirrorFlags(bag map[string]any) map[string]any {
	flags := make(map[string]any, len(bag))
	for k := range bag {
		flags[k] = "X"
	}
	return flags
}

// items returns the payload's line item list, if present.
func items(data map[string]any) []map[string]any {
	raw, ok := data["items"].([]any)
	if !ok {
		return nil
	}

	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
