// Package mapping holds the static tables that translate canonical entity
// types and event kinds into SAP vocabulary: entity categories and BAPI
// operation names.
//
// The tables are data, not branching: new entity types are added by
// registration rather than code modification.
package mapping

import "fmt"

// sapEntityTypes maps canonical entity types to SAP entity categories.
var sapEntityTypes = map[string]string{
	"Product":       "MATERIAL",
	"Customer":      "CUSTOMER",
	"Vendor":        "VENDOR",
	"SalesOrder":    "SALES_ORDER",
	"PurchaseOrder": "PURCHASE_ORDER",
	"Store":         "PLANT",
	"Invoice":       "BILLING_DOCUMENT",
	"GoodsReceipt":  "GOODS_RECEIPT",
	"GoodsIssue":    "GOODS_ISSUE",
	"Inventory":     "STOCK",
	"CostCenter":    "COST_CENTER",
	"ProfitCenter":  "PROFIT_CENTER",
	"GLAccount":     "GL_ACCOUNT",
	"User":          "USER",
}

// SAPEntityType resolves a canonical entity type to its SAP category.
// The mapping is advisory, not a gate: unknown inputs are returned unchanged
// so downstream operation resolution decides whether the type is usable.
func SAPEntityType(entityType string) string {
	if sap, ok := sapEntityTypes[entityType]; ok {
		return sap
	}
	return entityType
}

// Kind is the remote operation kind an event resolves to.
type Kind string

const (
	// KindCreate creates a business object in SAP.
	KindCreate Kind = "Create"

	// KindUpdate changes an existing business object.
	KindUpdate Kind = "Update"

	// KindDelete removes a business object (usually via a deletion flag).
	KindDelete Kind = "Delete"

	// KindRead fetches a business object's current SAP state.
	KindRead Kind = "Read"

	// KindSearch looks up business objects by criteria.
	KindSearch Kind = "Search"
)

// UnsupportedError indicates no BAPI operation exists for an
// (entity type, operation kind) combination. Never retryable.
type UnsupportedError struct {
	SAPEntityType string
	Kind          Kind
	Reason        string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("mapping: %s not supported for %s: %s", e.Kind, e.SAPEntityType, e.Reason)
	}
	return fmt.Sprintf("mapping: no BAPI operation for %s %s", e.SAPEntityType, e.Kind)
}
