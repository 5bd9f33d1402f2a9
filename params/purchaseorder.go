package params

// Purchase order builder defaults.
//
//	documentType → "NB"   (standard purchase order)
//	purchOrg     → "1000"
//	purchGroup   → "001"
const (
	defaultPODocType  = "NB"
	defaultPurchOrg   = "1000"
	defaultPurchGroup = "001"
)

// buildPurchaseOrderCreate shapes BAPI_PO_CREATE1 input.
func buildPurchaseOrderCreate(data map[string]any, ctx Context) map[string]any {
	poItems := make([]map[string]any, 0)
	poItemsX := make([]map[string]any, 0)
	for i, it := range items(data) {
		itemNumber := (i + 1) * 10
		poItems = append(poItems, map[string]any{
			"PO_ITEM":  itemNumber,
			"MATERIAL": str(it, "materialId", str(it, "material", "")),
			"QUANTITY": str(it, "quantity", "1"),
			"PLANT":    str(it, "plant", ctx.Plant),
		})
		poItemsX = append(poItemsX, map[string]any{
			"PO_ITEM":  itemNumber,
			"MATERIAL": "X",
			"QUANTITY": "X",
			"PLANT":    "X",
		})
	}

	return map[string]any{
		"POHEADER": map[string]any{
			"COMP_CODE": ctx.CompanyCode,
			"DOC_TYPE":  str(data, "documentType", defaultPODocType),
			"VENDOR":    str(data, "vendorId", ""),
			"PURCH_ORG": str(data, "purchasingOrg", defaultPurchOrg),
			"PUR_GROUP": str(data, "purchasingGroup", defaultPurchGroup),
			"CURRENCY":  str(data, "currency", defaultCurrency),
			"DOC_DATE":  SAPDate(data["documentDate"]),
		},
		"POHEADERX": map[string]any{
			"COMP_CODE": "X",
			"DOC_TYPE":  "X",
			"VENDOR":    "X",
			"PURCH_ORG": "X",
			"PUR_GROUP": "X",
			"CURRENCY":  "X",
		},
		"POITEM":  poItems,
		"POITEMX": poItemsX,
	}
}

// buildPurchaseOrderUpdate shapes BAPI_PO_CHANGE input with a generically
// mapped header bag and the parallel changed-field flag bag.
func buildPurchaseOrderUpdate(data map[string]any, ctx Context) map[string]any {
	header := make(map[string]any, len(data))
	for k, v := range data {
		if k == "id" || k == "items" {
			continue
		}
		header[UpperSnake(k)] = stringify(v)
	}

	return map[string]any{
		"PURCHASEORDER": str(data, "id", ctx.SAPKey),
		"POHEADER":      header,
		"POHEADERX":     flagBag(data),
	}
}

// buildPurchaseOrderRead shapes BAPI_PO_GETDETAIL1 input.
func buildPurchaseOrderRead(data map[string]any, ctx Context) map[string]any {
	return map[string]any{
		"PURCHASEORDER": str(data, "id", ctx.SAPKey),
	}
}
