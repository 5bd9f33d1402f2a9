// Package record defines the SAP-side record derived from a canonical event
// immediately before invocation.
package record

import (
	"fmt"

	"github.com/imarval/mele-sap-adapter/id"
	"github.com/imarval/mele-sap-adapter/internal/entity"
)

// Tenant carries the SAP tenant context stamped onto every derived record.
type Tenant struct {
	// Client is the SAP client number (MANDT).
	Client string `json:"client"`

	// CompanyCode is the company code (BUKRS).
	CompanyCode string `json:"company_code"`

	// Plant is the plant (WERKS).
	Plant string `json:"plant,omitempty"`

	// Warehouse is the warehouse number (LGNUM).
	Warehouse string `json:"warehouse,omitempty"`

	// Language is the logon language (SPRAS).
	Language string `json:"language,omitempty"`
}

// Record is the SAP-side view of a canonical event: the mapped SAP entity
// type, the SAP object key, the payload data and the tenant context. It is
// constructed once per event and never mutated afterwards except through
// MergeData.
type Record struct {
	entity.Entity

	// ID is the adapter-assigned record identifier.
	ID id.ID `json:"id"`

	// SAPEntityType is the SAP category for the business object (e.g. MATERIAL).
	SAPEntityType string `json:"sap_entity_type"`

	// SAPKey is the SAP object key, derived from the payload's id field or
	// the source event ID when absent.
	SAPKey string `json:"sap_key"`

	// SourceEventID references the canonical event this record was derived from.
	SourceEventID string `json:"source_event_id"`

	// Data is a copy of the event payload data.
	Data map[string]any `json:"data"`

	// Tenant is the SAP tenant context.
	Tenant Tenant `json:"tenant"`

	// Version counts MergeData applications. Starts at 1.
	Version int `json:"version"`
}

// New derives a Record from event payload data. The sapKey falls back to
// sourceEventID when the payload carries no id field.
//
// Construction fails when sapEntityType, the derived key, data, the tenant
// client or the company code is empty: an invalid record must never reach
// the invocation path.
func New(sapEntityType, sapKey, sourceEventID string, data map[string]any, tenant Tenant) (*Record, error) {
	if sapKey == "" {
		sapKey = sourceEventID
	}

	switch {
	case sapEntityType == "":
		return nil, fmt.Errorf("record: sap entity type is required")
	case sapKey == "":
		return nil, fmt.Errorf("record: sap key is required")
	case data == nil:
		return nil, fmt.Errorf("record: data is required")
	case tenant.Client == "":
		return nil, fmt.Errorf("record: tenant client is required")
	case tenant.CompanyCode == "":
		return nil, fmt.Errorf("record: company code is required")
	}

	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}

	return &Record{
		Entity:        entity.New(),
		ID:            id.NewRecordID(),
		SAPEntityType: sapEntityType,
		SAPKey:        sapKey,
		SourceEventID: sourceEventID,
		Data:          copied,
		Tenant:        tenant,
		Version:       1,
	}, nil
}

// MergeData replaces and extends the record's data bag with the given fields,
// bumps the version counter and refreshes UpdatedAt. Used only by
// read-modify-write flows, never by the base Create/Update/Delete path.
func (r *Record) MergeData(fields map[string]any) {
	for k, v := range fields {
		r.Data[k] = v
	}
	r.Version++
	r.Touch()
}
