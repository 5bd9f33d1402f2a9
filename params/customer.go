package params

// buildCustomerCreate shapes BAPI_CUSTOMER_CREATEFROMDATA1 input.
func buildCustomerCreate(data map[string]any, ctx Context) map[string]any {
	return map[string]any{
		"PI_PERSONALDATA": map[string]any{
			"CUSTOMER":   str(data, "id", ctx.SAPKey),
			"FIRSTNAME":  str(data, "firstName", ""),
			"LASTNAME":   str(data, "lastName", str(data, "name", "")),
			"E_MAIL":     str(data, "email", ""),
			"TELEPHONE1": str(data, "phone", ""),
			"STREET":     str(data, "street", ""),
			"CITY":       str(data, "city", ""),
			"POSTL_COD1": str(data, "postalCode", ""),
			"COUNTRY":    str(data, "country", ""),
			"LANGU_P":    ctx.Language,
		},
		"PI_COMPANYDATA": map[string]any{
			"COMP_CODE": ctx.CompanyCode,
			"CURRENCY":  str(data, "currency", defaultCurrency),
		},
	}
}

// buildCustomerUpdate shapes BAPI_CUSTOMER_CHANGEFROMDATA1 input: the
// address bag is mapped generically from the payload, with a parallel X-flag
// bag for exactly the fields present.
func buildCustomerUpdate(data map[string]any, ctx Context) map[string]any {
	address := make(map[string]any, len(data))
	for k, v := range data {
		if k == "id" {
			continue
		}
		address[UpperSnake(k)] = stringify(v)
	}

	return map[string]any{
		"PI_CUSTOMER": map[string]any{
			"CUSTOMER": str(data, "id", ctx.SAPKey),
		},
		"PI_ADDRESS":  address,
		"PI_ADDRESSX": flagBag(data),
	}
}

// buildCustomerRead shapes BAPI_CUSTOMER_GETDETAIL2 input.
func buildCustomerRead(data map[string]any, ctx Context) map[string]any {
	return map[string]any{
		"CUSTOMERNO":  str(data, "id", ctx.SAPKey),
		"COMPANYCODE": ctx.CompanyCode,
	}
}
