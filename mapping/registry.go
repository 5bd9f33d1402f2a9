package mapping

import (
	"fmt"
	"sync"
	"time"
)

// Operation pairs a BAPI function name with the parameter builder that
// shapes its inbound structure.
type Operation struct {
	// BAPI is the SAP function module name (e.g. BAPI_MATERIAL_SAVEDATA).
	BAPI string `json:"bapi"`

	// BuilderID selects the registered parameter builder for this call.
	BuilderID string `json:"builder_id"`
}

// EntityDef describes the SAP operations available for one entity category.
type EntityDef struct {
	// SAPEntityType is the SAP category this definition covers.
	SAPEntityType string `json:"sap_entity_type"`

	// Operations maps operation kinds to BAPI calls.
	Operations map[Kind]Operation `json:"operations"`
}

// Registry resolves (SAP entity type, operation kind) pairs to BAPI calls.
// It ships with definitions for the entity categories the adapter has BAPI
// coverage for; additional categories can be registered at runtime.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]EntityDef
}

// NewRegistry creates a Registry preloaded with the built-in entity
// definitions.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]EntityDef)}
	for _, def := range builtinDefs() {
		r.defs[def.SAPEntityType] = def
	}
	return r
}

// builtinDefs returns the BAPI coverage the adapter ships with.
func builtinDefs() []EntityDef {
	return []EntityDef{
		{
			SAPEntityType: "MATERIAL",
			Operations: map[Kind]Operation{
				KindCreate: {BAPI: "BAPI_MATERIAL_SAVEDATA", BuilderID: "material.create"},
				KindUpdate: {BAPI: "BAPI_MATERIAL_SAVEDATA", BuilderID: "material.update"},
				KindRead:   {BAPI: "BAPI_MATERIAL_GET_DETAIL", BuilderID: "material.read"},
			},
		},
		{
			SAPEntityType: "CUSTOMER",
			Operations: map[Kind]Operation{
				KindCreate: {BAPI: "BAPI_CUSTOMER_CREATEFROMDATA1", BuilderID: "customer.create"},
				KindUpdate: {BAPI: "BAPI_CUSTOMER_CHANGEFROMDATA1", BuilderID: "customer.update"},
				KindRead:   {BAPI: "BAPI_CUSTOMER_GETDETAIL2", BuilderID: "customer.read"},
			},
		},
		{
			SAPEntityType: "VENDOR",
			Operations: map[Kind]Operation{
				KindCreate: {BAPI: "BAPI_VENDOR_CREATE", BuilderID: "vendor.create"},
				KindUpdate: {BAPI: "BAPI_VENDOR_CHANGE", BuilderID: "vendor.update"},
				KindRead:   {BAPI: "BAPI_VENDOR_GETDETAIL", BuilderID: "vendor.read"},
			},
		},
		{
			SAPEntityType: "SALES_ORDER",
			Operations: map[Kind]Operation{
				KindCreate: {BAPI: "BAPI_SALESORDER_CREATEFROMDAT2", BuilderID: "salesorder.create"},
				KindUpdate: {BAPI: "BAPI_SALESORDER_CHANGE", BuilderID: "salesorder.update"},
				KindRead:   {BAPI: "BAPI_SALESORDER_GETSTATUS", BuilderID: "salesorder.read"},
			},
		},
		{
			SAPEntityType: "PURCHASE_ORDER",
			Operations: map[Kind]Operation{
				KindCreate: {BAPI: "BAPI_PO_CREATE1", BuilderID: "purchaseorder.create"},
				KindUpdate: {BAPI: "BAPI_PO_CHANGE", BuilderID: "purchaseorder.update"},
				KindRead:   {BAPI: "BAPI_PO_GETDETAIL1", BuilderID: "purchaseorder.read"},
			},
		},
	}
}

// Register adds or replaces an entity definition.
func (r *Registry) Register(def EntityDef) error {
	if def.SAPEntityType == "" {
		return fmt.Errorf("mapping: entity definition requires a SAP entity type")
	}
	if len(def.Operations) == 0 {
		return fmt.Errorf("mapping: entity definition for %s has no operations", def.SAPEntityType)
	}

	r.mu.Lock()
	r.defs[def.SAPEntityType] = def
	r.mu.Unlock()

	return nil
}

// Resolve returns the BAPI operation for the given SAP entity type and kind.
func (r *Registry) Resolve(sapEntityType string, kind Kind) (Operation, error) {
	r.mu.RLock()
	def, ok := r.defs[sapEntityType]
	r.mu.RUnlock()

	if !ok {
		return Operation{}, &UnsupportedError{SAPEntityType: sapEntityType, Kind: kind}
	}

	op, ok := def.Operations[kind]
	if !ok {
		return Operation{}, &UnsupportedError{SAPEntityType: sapEntityType, Kind: kind}
	}
	return op, nil
}

// ResolveDelete resolves a Delete event. SAP business objects are rarely
// physically deleted; unless physical deletion is requested, the delete maps
// to the entity's Update operation with a deletion flag and deletion date to
// be merged into the parameter bag.
//
// Physical deletion requires an explicit Delete operation in the entity's
// definition; requesting it for an entity without one fails.
func (r *Registry) ResolveDelete(sapEntityType string, physical bool) (Operation, map[string]any, error) {
	if physical {
		op, err := r.Resolve(sapEntityType, KindDelete)
		if err != nil {
			return Operation{}, nil, &UnsupportedError{
				SAPEntityType: sapEntityType,
				Kind:          KindDelete,
				Reason:        "physical deletion not supported",
			}
		}
		return op, nil, nil
	}

	op, err := r.Resolve(sapEntityType, KindUpdate)
	if err != nil {
		return Operation{}, nil, err
	}

	extra := map[string]any{
		"DELETION_FLAG": "X",
		"DELETION_DATE": compactDate(time.Now()),
	}
	return op, extra, nil
}

// compactDate formats a time in SAP's 8-digit YYYYMMDD form.
func compactDate(t time.Time) string {
	return t.Format("20060102")
}
