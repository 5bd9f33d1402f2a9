package params

// Sales order builder defaults.
//
//	documentType → "TA" (standard order)
//	distChannel  → "10"
//	division     → "00"
//	salesUnit    → "EA"
//	currency     → "USD"
const (
	defaultOrderDocType = "TA"
	defaultDistChannel  = "10"
	defaultDivision     = "00"
	defaultSalesUnit    = "EA"
	defaultCurrency     = "USD"
	defaultPartnerRole  = "AG" // sold-to party
)

// buildSalesOrderCreate shapes BAPI_SALESORDER_CREATEFROMDAT2 input.
func buildSalesOrderCreate(data map[string]any, ctx Context) map[string]any {
	orderItems := make([]map[string]any, 0)
	for i, it := range items(data) {
		orderItems = append(orderItems, map[string]any{
			"ITM_NUMBER": (i + 1) * 10,
			"MATERIAL":   str(it, "materialId", str(it, "material", "")),
			"TARGET_QTY": str(it, "quantity", "1"),
			"SALES_UNIT": str(it, "unit", defaultSalesUnit),
			"PLANT":      str(it, "plant", ctx.Plant),
		})
	}

	return map[string]any{
		"ORDER_HEADER_IN": map[string]any{
			"DOC_TYPE":   str(data, "documentType", defaultOrderDocType),
			"SALES_ORG":  str(data, "salesOrg", ctx.CompanyCode),
			"DISTR_CHAN": str(data, "distributionChannel", defaultDistChannel),
			"DIVISION":   str(data, "division", defaultDivision),
			"PURCH_NO_C": str(data, "customerReference", ""),
			"REQ_DATE_H": SAPDate(data["requestedDate"]),
			"CURRENCY":   str(data, "currency", defaultCurrency),
		},
		"ORDER_PARTNERS": []map[string]any{
			{
				"PARTN_ROLE": defaultPartnerRole,
				"PARTN_NUMB": str(data, "customerId", ""),
			},
		},
		"ORDER_ITEMS_IN": orderItems,
	}
}

// buildSalesOrderUpdate shapes BAPI_SALESORDER_CHANGE input. The header
// bag is mapped generically; ORDER_HEADER_INX carries the update flag plus
// one marker per payload field.
func buildSalesOrderUpdate(data map[string]any, ctx Context) map[string]any {
	header := make(map[string]any, len(data))
	for k, v := range data {
		if k == "id" || k == "items" {
			continue
		}
		header[UpperSnake(k)] = stringify(v)
	}

	headerX := flagBag(data)
	headerX["UPDATEFLAG"] = "U"

	return map[string]any{
		"SALESDOCUMENT":    str(data, "id", ctx.SAPKey),
		"ORDER_HEADER_IN":  header,
		"ORDER_HEADER_INX": headerX,
	}
}

// buildSalesOrderRead shapes BAPI_SALESORDER_GETSTATUS input.
func buildSalesOrderRead(data map[string]any, ctx Context) map[string]any {
	return map[string]any{
		"SALESDOCUMENT": str(data, "id", ctx.SAPKey),
	}
}
