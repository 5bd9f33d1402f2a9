package params

// Material builder defaults.
//
//	industrySector → "M"    (mechanical engineering)
//	materialType   → "FERT" (finished product)
//	baseUnit       → "EA"
const (
	defaultIndustrySector = "M"
	defaultMaterialType   = "FERT"
	defaultBaseUnit       = "EA"
)

// buildMaterialCreate shapes BAPI_MATERIAL_SAVEDATA input for a new material.
func buildMaterialCreate(data map[string]any, ctx Context) map[string]any {
	key := str(data, "id", ctx.SAPKey)

	clientData := map[string]any{
		"MATL_GROUP": str(data, "materialGroup", ""),
		"BASE_UOM":   str(data, "baseUnit", defaultBaseUnit),
		"DIVISION":   str(data, "division", ""),
		"NET_WEIGHT": str(data, "netWeight", ""),
	}

	return map[string]any{
		"HEADDATA": map[string]any{
			"MATERIAL":   key,
			"IND_SECTOR": str(data, "industrySector", defaultIndustrySector),
			"MATL_TYPE":  str(data, "materialType", defaultMaterialType),
			"BASIC_VIEW": "X",
			"SALES_VIEW": "X",
		},
		"CLIENTDATA":  clientData,
		"CLIENTDATAX": mirrorFlags(clientData),
		"MATERIALDESCRIPTION": []map[string]any{
			{
				"LANGU":     ctx.Language,
				"MATL_DESC": str(data, "name", str(data, "description", "")),
			},
		},
	}
}

// buildMaterialUpdate shapes BAPI_MATERIAL_SAVEDATA input for a change.
// The data bag is mapped generically; the parallel CLIENTDATAX bag flags
// exactly the fields present in the update payload.
func buildMaterialUpdate(data map[string]any, ctx Context) map[string]any {
	clientData := make(map[string]any, len(data))
	for k, v := range data {
		if k == "id" {
			continue
		}
		clientData[UpperSnake(k)] = stringify(v)
	}

	return map[string]any{
		"HEADDATA": map[string]any{
			"MATERIAL": str(data, "id", ctx.SAPKey),
		},
		"CLIENTDATA":  clientData,
		"CLIENTDATAX": flagBag(data),
	}
}

// buildMaterialRead shapes BAPI_MATERIAL_GET_DETAIL input.
func buildMaterialRead(data map[string]any, ctx Context) map[string]any {
	return map[string]any{
		"MATERIAL": str(data, "id", ctx.SAPKey),
		"PLANT":    str(data, "plant", ctx.Plant),
	}
}
