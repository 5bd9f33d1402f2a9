package params

// Vendor builder defaults.
//
//	accountGroup → "KRED" (standard vendor account group)
const defaultVendorAccountGroup = "KRED"

// buildVendorCreate shapes BAPI_VENDOR_CREATE input.
func buildVendorCreate(data map[string]any, ctx Context) map[string]any {
	return map[string]any{
		"VENDORNO":      str(data, "id", ctx.SAPKey),
		"COMPANYCODE":   ctx.CompanyCode,
		"ACCOUNT_GROUP": str(data, "accountGroup", defaultVendorAccountGroup),
		"ADDRESS": map[string]any{
			"NAME":       str(data, "name", ""),
			"STREET":     str(data, "street", ""),
			"CITY":       str(data, "city", ""),
			"POSTL_COD1": str(data, "postalCode", ""),
			"COUNTRY":    str(data, "country", ""),
			"E_MAIL":     str(data, "email", ""),
			"LANGU":      ctx.Language,
		},
	}
}

// buildVendorUpdate shapes BAPI_VENDOR_CHANGE input with a generically
// mapped data bag and the parallel changed-field flag bag.
func buildVendorUpdate(data map[string]any, ctx Context) map[string]any {
	fields := make(map[string]any, len(data))
	for k, v := range data {
		if k == "id" {
			continue
		}
		fields[UpperSnake(k)] = stringify(v)
	}

	return map[string]any{
		"VENDORNO":    str(data, "id", ctx.SAPKey),
		"COMPANYCODE": ctx.CompanyCode,
		"DATA":        fields,
		"DATAX":       flagBag(data),
	}
}

// buildVendorRead shapes BAPI_VENDOR_GETDETAIL input.
func buildVendorRead(data map[string]any, ctx Context) map[string]any {
	return map[string]any{
		"VENDORNO":    str(data, "id", ctx.SAPKey),
		"COMPANYCODE": ctx.CompanyCode,
	}
}
