package entity

import "github.com/claimsight/claims-pipeline/constants"

// VehicleInfo is the vehicle identity part of the claim envelope. Unextracted
// values carry the "unknown" sentinel, never an empty field.
type VehicleInfo struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  string `json:"year"`
	VIN   string `json:"vin"`
}

// IncidentDetails is the incident part of the claim envelope.
type IncidentDetails struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// FrontDamage is the variant-specific block for vehicle-front documents.
type FrontDamage struct {
	FrontBumperDamage string `json:"front_bumper_damage"`
	HoodDamage        string `json:"hood_damage"`
	WindshieldDamage  string `json:"windshield_damage"`
	HeadlightsDamage  string `json:"headlights_damage"`
	GrilleDamage      string `json:"grille_damage"`
}

// BackDamage is the variant-specific block for vehicle-back documents.
type BackDamage struct {
	RearBumperDamage     string `json:"rear_bumper_damage"`
	TrunkDamage          string `json:"trunk_damage"`
	RearWindshieldDamage string `json:"rear_windshield_damage"`
	TaillightsDamage     string `json:"taillights_damage"`
	TailgateDamage       string `json:"tailgate_damage"`
}

// StructuredClaim is the validated target record. Exactly one variant block
// is set for a classified document; both are nil for unclassified ones.
// Every present field holds either an extracted value or the "unknown"
// sentinel; absence of information is never represented by omission inside
// the envelope.
type StructuredClaim struct {
	VehicleSide     string          `json:"vehicle_side"`
	VehicleInfo     VehicleInfo     `json:"vehicle_info"`
	IncidentDetails IncidentDetails `json:"incident_details"`
	FrontSpecific   *FrontDamage    `json:"front_specific,omitempty"`
	BackSpecific    *BackDamage     `json:"back_specific,omitempty"`
}

// Variant derives the document variant a claim was validated against.
func (c *StructuredClaim) Variant() constants.Variant {
	switch {
	case c.FrontSpecific != nil:
		return constants.VariantFront
	case c.BackSpecific != nil:
		return constants.VariantBack
	default:
		return constants.VariantUnclassified
	}
}
