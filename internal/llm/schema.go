package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/claimsight/claims-pipeline/constants"
)

// BuildClaimJSONSchema returns the claim schema for a variant as a generic
// map (JSON-Schema draft 2020-12 subset). It is sent to the model as a
// structured-output constraint and used locally as the post-repair guard.
func BuildClaimJSONSchema(variant constants.Variant) map[string]any {
	severity := map[string]any{
		"type": "string",
		"enum": constants.SeveritiesAsStrings(),
	}

	props := map[string]any{
		"vehicle_side": map[string]any{
			"type": "string",
			"enum": []string{"front", "back", constants.Unknown},
		},
		"vehicle_info": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"make":  map[string]any{"type": "string", "minLength": 1},
				"model": map[string]any{"type": "string", "minLength": 1},
				"year":  map[string]any{"type": "string", "minLength": 1},
				"vin":   map[string]any{"type": "string", "minLength": 1},
			},
			"required": []string{"make", "model", "year", "vin"},
		},
		"incident_details": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"date":        map[string]any{"type": "string", "minLength": 1},
				"description": map[string]any{"type": "string", "minLength": 1},
				"location":    map[string]any{"type": "string", "minLength": 1},
			},
			"required": []string{"date", "description", "location"},
		},
	}
	required := []string{"vehicle_side", "vehicle_info", "incident_details"}

	if fields := constants.DamageFieldsFor(variant); fields != nil {
		blockProps := make(map[string]any, len(fields))
		for _, f := range fields {
			blockProps[f] = severity
		}
		blockName := variantBlockName(variant)
		props[blockName] = map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           blockProps,
			"required":             fields,
		}
		required = append(required, blockName)
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func variantBlockName(v constants.Variant) string {
	switch v {
	case constants.VariantFront:
		return "front_specific"
	case constants.VariantBack:
		return "back_specific"
	default:
		return ""
	}
}

// ValidateJSONAgainstSchema validates data against schemaMap.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
