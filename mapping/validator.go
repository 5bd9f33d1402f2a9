package mapping

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator validates event payload data against per-entity JSON Schemas.
// Schemas are optional: entities without one skip validation entirely.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]json.RawMessage // keyed by canonical entity type
	cache   map[string]*jsonschema.Schema
}

// NewValidator creates an empty schema validator.
func NewValidator() *Validator {
	return &Validator{
		schemas: make(map[string]json.RawMessage),
		cache:   make(map[string]*jsonschema.Schema),
	}
}

// RegisterSchema attaches a JSON Schema (draft-07 or later) to a canonical
// entity type. Payload data for that type is validated before parameter
// building.
func (v *Validator) RegisterSchema(entityType string, schema json.RawMessage) error {
	if entityType == "" {
		return fmt.Errorf("mapping: schema registration requires an entity type")
	}

	// Compile eagerly so a broken schema fails at registration, not per event.
	if _, err := v.compile(schema); err != nil {
		return err
	}

	v.mu.Lock()
	v.schemas[entityType] = schema
	v.mu.Unlock()

	return nil
}

// Validate checks payload data against the entity type's registered schema.
// Entities without a schema always pass.
func (v *Validator) Validate(entityType string, data map[string]any) error {
	v.mu.RLock()
	schema, ok := v.schemas[entityType]
	v.mu.RUnlock()

	if !ok {
		return nil
	}

	compiled, err := v.compile(schema)
	if err != nil {
		return fmt.Errorf("mapping: schema compilation error: %w", err)
	}

	// The compiler works on decoded documents, not raw maps with typed values.
	normalized, err := normalizeDoc(data)
	if err != nil {
		return fmt.Errorf("mapping: normalize payload: %w", err)
	}

	return compiled.Validate(normalized)
}

// compile returns a compiled schema, using the cache for previously-seen ones.
func (v *Validator) compile(schema json.RawMessage) (*jsonschema.Schema, error) {
	key := string(schema)

	v.mu.RLock()
	if cached, ok := v.cache[key]; ok {
		v.mu.RUnlock()
		return cached, nil
	}
	v.mu.RUnlock()

	var doc any
	if err := json.Unmarshal(schema, &doc); err != nil {
		return nil, fmt.Errorf("mapping: unmarshal schema: %w", err)
	}

	url := "sapadapter://schema/" + sanitizeKey(key)

	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("mapping: add schema resource: %w", err)
	}

	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("mapping: compile schema: %w", err)
	}

	v.mu.Lock()
	v.cache[key] = compiled
	v.mu.Unlock()

	return compiled, nil
}

// normalizeDoc round-trips a value through JSON so typed Go values (ints,
// structs) become the generic shapes the schema engine expects.
func normalizeDoc(data map[string]any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// sanitizeKey creates a safe URL path segment from a schema key.
func sanitizeKey(key string) string {
	r := strings.NewReplacer(
		`"`, "",
		`{`, "",
		`}`, "",
		` `, "_",
		`:`, "",
	)
	s := r.Replace(key)
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}
