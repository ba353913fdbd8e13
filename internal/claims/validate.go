// Package claims converts untrusted candidate output from the structuring
// capability into validated StructuredClaim records. This is the last point
// at which possibly hallucinated model output becomes a record downstream
// systems can trust field-by-field, so the rules here are repair-first:
// partial extraction is expected and more useful than total rejection.
package claims

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/claimsight/claims-pipeline/constants"
	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
	"github.com/claimsight/claims-pipeline/internal/llm"
)

// Validator repairs and validates candidate claims against the schema for a
// document variant.
type Validator struct {
	logger *slog.Logger
}

func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate turns a candidate into a StructuredClaim or a
// *common.ValidationError.
//
// Repairs applied, in order: missing envelope fields become the unknown
// sentinel; the variant block is trimmed to its fixed field set (extras
// dropped, missing fields become unknown); enumerated values outside their
// allowed set are coerced to unknown; an absent vehicle_side is backfilled
// from the already-known variant. Rejection is reserved for candidates that
// are not a JSON object at all.
func (v *Validator) Validate(candidate json.RawMessage, variant constants.Variant) (*entity.StructuredClaim, error) {
	var m map[string]any
	if err := json.Unmarshal(candidate, &m); err != nil {
		return nil, common.NewValidationError("candidate is not a JSON object: %v", err)
	}
	if m == nil {
		return nil, common.NewValidationError("candidate is null")
	}

	claim := &entity.StructuredClaim{
		VehicleSide:     v.vehicleSide(m, variant),
		VehicleInfo:     repairVehicleInfo(subMap(m, "vehicle_info")),
		IncidentDetails: repairIncidentDetails(subMap(m, "incident_details")),
	}

	switch variant {
	case constants.VariantFront:
		claim.FrontSpecific = repairFrontDamage(subMap(m, "front_specific"))
	case constants.VariantBack:
		claim.BackSpecific = repairBackDamage(subMap(m, "back_specific"))
	}

	// The repaired record must satisfy the strict schema; a failure here is
	// a bug in the repair rules, not bad model output.
	repaired, err := json.Marshal(claim)
	if err != nil {
		return nil, fmt.Errorf("marshal repaired claim: %w", err)
	}
	if err := llm.ValidateJSONAgainstSchema(llm.BuildClaimJSONSchema(variant), repaired); err != nil {
		return nil, fmt.Errorf("repaired claim failed schema guard: %w", err)
	}

	return claim, nil
}

// vehicleSide keeps a valid model-provided value and otherwise backfills
// from the variant instead of rejecting.
func (v *Validator) vehicleSide(m map[string]any, variant constants.Variant) string {
	if s, ok := m["vehicle_side"].(string); ok {
		switch s {
		case "front", "back", constants.Unknown:
			return s
		}
	}
	side := variant.VehicleSide()
	v.logger.Debug("claims.validate.vehicle_side_backfilled", "side", side)
	return side
}

func repairVehicleInfo(m map[string]any) entity.VehicleInfo {
	return entity.VehicleInfo{
		Make:  fieldOrUnknown(m, "make"),
		Model: fieldOrUnknown(m, "model"),
		Year:  fieldOrUnknown(m, "year"),
		VIN:   fieldOrUnknown(m, "vin"),
	}
}

func repairIncidentDetails(m map[string]any) entity.IncidentDetails {
	return entity.IncidentDetails{
		Date:        fieldOrUnknown(m, "date"),
		Description: fieldOrUnknown(m, "description"),
		Location:    fieldOrUnknown(m, "location"),
	}
}

func repairFrontDamage(m map[string]any) *entity.FrontDamage {
	return &entity.FrontDamage{
		FrontBumperDamage: coerceSeverity(m["front_bumper_damage"]),
		HoodDamage:        coerceSeverity(m["hood_damage"]),
		WindshieldDamage:  coerceSeverity(m["windshield_damage"]),
		HeadlightsDamage:  coerceSeverity(m["headlights_damage"]),
		GrilleDamage:      coerceSeverity(m["grille_damage"]),
	}
}

func repairBackDamage(m map[string]any) *entity.BackDamage {
	return &entity.BackDamage{
		RearBumperDamage:     coerceSeverity(m["rear_bumper_damage"]),
		TrunkDamage:          coerceSeverity(m["trunk_damage"]),
		RearWindshieldDamage: coerceSeverity(m["rear_windshield_damage"]),
		TaillightsDamage:     coerceSeverity(m["taillights_damage"]),
		TailgateDamage:       coerceSeverity(m["tailgate_damage"]),
	}
}
