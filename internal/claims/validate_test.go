package claims

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/claimsight/claims-pipeline/constants"
	"github.com/claimsight/claims-pipeline/internal/common"
)

func TestValidateWellFormedCandidate(t *testing.T) {
	candidate := json.RawMessage(`{
		"vehicle_side": "front",
		"vehicle_info": {"make": "Honda", "model": "Accord", "year": "2019", "vin": "1HGCV1F34KA000000"},
		"incident_details": {"date": "2024-03-01", "description": "Rear-ended a truck at low speed", "location": "Austin, TX"},
		"front_specific": {
			"front_bumper_damage": "dented",
			"hood_damage": "none",
			"windshield_damage": "cracked",
			"headlights_damage": "shattered",
			"grille_damage": "unknown"
		}
	}`)

	claim, err := NewValidator(nil).Validate(candidate, constants.VariantFront)
	require.NoError(t, err)
	require.Equal(t, "front", claim.VehicleSide)
	require.Equal(t, "Honda", claim.VehicleInfo.Make)
	require.Equal(t, "Accord", claim.VehicleInfo.Model)
	require.Equal(t, "2019", claim.VehicleInfo.Year)
	require.NotNil(t, claim.FrontSpecific)
	require.Nil(t, claim.BackSpecific)
	require.Equal(t, "dented", claim.FrontSpecific.FrontBumperDamage)
	require.Equal(t, "cracked", claim.FrontSpecific.WindshieldDamage)
}

func TestValidateMissingFieldsBecomeUnknown(t *testing.T) {
	candidate := json.RawMessage(`{
		"vehicle_info": {"make": "Honda"},
		"front_specific": {"hood_damage": "dented"}
	}`)

	claim, err := NewValidator(nil).Validate(candidate, constants.VariantFront)
	require.NoError(t, err)
	require.Equal(t, "front", claim.VehicleSide, "vehicle_side backfilled from variant")
	require.Equal(t, "Honda", claim.VehicleInfo.Make)
	require.Equal(t, constants.Unknown, claim.VehicleInfo.Model)
	require.Equal(t, constants.Unknown, claim.VehicleInfo.VIN)
	require.Equal(t, constants.Unknown, claim.IncidentDetails.Date)
	require.Equal(t, "dented", claim.FrontSpecific.HoodDamage)
	require.Equal(t, constants.Unknown, claim.FrontSpecific.GrilleDamage)
}

func TestValidateDropsExtraFields(t *testing.T) {
	candidate := json.RawMessage(`{
		"vehicle_side": "back",
		"color": "red",
		"confidence": 0.93,
		"vehicle_info": {"make": "Toyota", "model": "Camry", "year": "2021", "vin": "unknown", "owner": "J. Doe"},
		"incident_details": {"date": "2024-05-10", "description": "parking lot", "location": "unknown"},
		"back_specific": {
			"rear_bumper_damage": "scratched",
			"trunk_damage": "none",
			"rear_windshield_damage": "none",
			"taillights_damage": "none",
			"tailgate_damage": "none",
			"spoiler_damage": "dented"
		}
	}`)

	claim, err := NewValidator(nil).Validate(candidate, constants.VariantBack)
	require.NoError(t, err)

	// The marshaled form must contain only schema fields.
	b, err := json.Marshal(claim)
	require.NoError(t, err)
	require.NotContains(t, string(b), "color")
	require.NotContains(t, string(b), "owner")
	require.NotContains(t, string(b), "spoiler_damage")
	require.Equal(t, "scratched", claim.BackSpecific.RearBumperDamage)
}

func TestValidateCoercesSeverities(t *testing.T) {
	candidate := json.RawMessage(`{
		"vehicle_side": "front",
		"vehicle_info": {"make": "Ford", "model": "F-150", "year": 2020, "vin": "unknown"},
		"incident_details": {"date": "2024-01-15", "description": "highway debris", "location": "I-35"},
		"front_specific": {
			"front_bumper_damage": "totally wrecked",
			"hood_damage": "Scuffed",
			"windshield_damage": "smashed",
			"headlights_damage": 3,
			"grille_damage": "intact"
		}
	}`)

	claim, err := NewValidator(nil).Validate(candidate, constants.VariantFront)
	require.NoError(t, err)
	require.Equal(t, "2020", claim.VehicleInfo.Year, "numeric year coerced to string")
	require.Equal(t, constants.Unknown, claim.FrontSpecific.FrontBumperDamage, "out-of-set text coerced to unknown")
	require.Equal(t, "scratched", claim.FrontSpecific.HoodDamage, "synonym canonicalized")
	require.Equal(t, "shattered", claim.FrontSpecific.WindshieldDamage)
	require.Equal(t, constants.Unknown, claim.FrontSpecific.HeadlightsDamage, "non-string coerced to unknown")
	require.Equal(t, "none", claim.FrontSpecific.GrilleDamage)
}

func TestValidateRejectsNonObject(t *testing.T) {
	v := NewValidator(nil)
	for _, candidate := range []string{`[1,2,3]`, `"text"`, `null`, `not json at all`} {
		_, err := v.Validate(json.RawMessage(candidate), constants.VariantFront)
		var verr *common.ValidationError
		require.Truef(t, errors.As(err, &verr), "candidate %q: err = %v, want ValidationError", candidate, err)
	}
}

func TestValidateUnclassifiedCarriesNoDamageBlock(t *testing.T) {
	candidate := json.RawMessage(`{
		"vehicle_info": {"make": "Honda", "model": "Civic", "year": "2018", "vin": "unknown"},
		"incident_details": {"date": "unknown", "description": "damage report", "location": "unknown"},
		"front_specific": {"hood_damage": "dented"}
	}`)

	claim, err := NewValidator(nil).Validate(candidate, constants.VariantUnclassified)
	require.NoError(t, err)
	require.Equal(t, constants.Unknown, claim.VehicleSide)
	require.Nil(t, claim.FrontSpecific, "unclassified documents carry no damage block")
	require.Nil(t, claim.BackSpecific)
}

func TestValidateIdempotent(t *testing.T) {
	candidate := json.RawMessage(`{
		"vehicle_info": {"make": "Subaru", "year": 2022},
		"back_specific": {"trunk_damage": "dents", "tailgate_damage": "gone"}
	}`)
	v := NewValidator(nil)

	first, err := v.Validate(candidate, constants.VariantBack)
	require.NoError(t, err)

	rebytes, err := json.Marshal(first)
	require.NoError(t, err)
	second, err := v.Validate(rebytes, constants.VariantBack)
	require.NoError(t, err)
	require.Equal(t, first, second, "validating a validated claim must be a no-op")
}

func TestValidateKeepsExplicitVehicleSide(t *testing.T) {
	candidate := json.RawMessage(`{
		"vehicle_side": "back",
		"back_specific": {}
	}`)
	claim, err := NewValidator(nil).Validate(candidate, constants.VariantBack)
	require.NoError(t, err)
	require.Equal(t, "back", claim.VehicleSide)

	invalidSide := json.RawMessage(`{"vehicle_side": "left", "back_specific": {}}`)
	claim, err = NewValidator(nil).Validate(invalidSide, constants.VariantBack)
	require.NoError(t, err)
	require.Equal(t, "back", claim.VehicleSide, "out-of-enum side replaced from variant")
}
