package constants

import "strings"

// Variant classifies which structured schema applies to a document.
type Variant string

const (
	VariantFront        Variant = "vehicle-front"
	VariantBack         Variant = "vehicle-back"
	VariantUnclassified Variant = "unclassified"
)

// VehicleSide returns the vehicle_side envelope value implied by the variant.
func (v Variant) VehicleSide() string {
	switch v {
	case VariantFront:
		return "front"
	case VariantBack:
		return "back"
	default:
		return Unknown
	}
}

// Unknown is the sentinel written into any field whose value could not be
// extracted. Downstream consumers rely on it to tell "not extracted" apart
// from "missing from schema".
const Unknown = "unknown"

// Severity is the enumerated condition of a single damage-assessment field.
type Severity string

const (
	SeverityNone      Severity = "none"
	SeverityScratched Severity = "scratched"
	SeverityDented    Severity = "dented"
	SeverityCracked   Severity = "cracked"
	SeverityShattered Severity = "shattered"
	SeverityCrushed   Severity = "crushed"
	SeverityMissing   Severity = "missing"
	SeverityUnknown   Severity = Unknown
)

var allSeverities = []Severity{
	SeverityNone,
	SeverityScratched,
	SeverityDented,
	SeverityCracked,
	SeverityShattered,
	SeverityCrushed,
	SeverityMissing,
	SeverityUnknown,
}

var severitySynonyms = map[string]Severity{
	"intact":     SeverityNone,
	"undamaged":  SeverityNone,
	"no damage":  SeverityNone,
	"ok":         SeverityNone,
	"scuffed":    SeverityScratched,
	"scratch":    SeverityScratched,
	"scratches":  SeverityScratched,
	"dent":       SeverityDented,
	"dents":      SeverityDented,
	"dinged":     SeverityDented,
	"crack":      SeverityCracked,
	"cracks":     SeverityCracked,
	"chipped":    SeverityCracked,
	"smashed":    SeverityShattered,
	"broken":     SeverityShattered,
	"destroyed":  SeverityCrushed,
	"caved in":   SeverityCrushed,
	"torn off":   SeverityMissing,
	"gone":       SeverityMissing,
	"not stated": SeverityUnknown,
	"n/a":        SeverityUnknown,
}

// SeveritiesAsStrings returns the allowed severity values for schema enums.
func SeveritiesAsStrings() []string {
	result := make([]string, len(allSeverities))
	for i, s := range allSeverities {
		result[i] = string(s)
	}
	return result
}

// CanonicalizeSeverity maps free-text model output onto the severity enum.
// The second return reports whether the input matched; unmatched input maps
// to SeverityUnknown, never passed through.
func CanonicalizeSeverity(input string) (Severity, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return SeverityUnknown, false
	}

	if s, ok := severitySynonyms[normalized]; ok {
		return s, true
	}

	for _, s := range allSeverities {
		if normalized == string(s) {
			return s, true
		}
	}

	return SeverityUnknown, false
}

// FrontDamageFields is the fixed field set of the front_specific block.
var FrontDamageFields = []string{
	"front_bumper_damage",
	"hood_damage",
	"windshield_damage",
	"headlights_damage",
	"grille_damage",
}

// BackDamageFields is the fixed field set of the back_specific block.
var BackDamageFields = []string{
	"rear_bumper_damage",
	"trunk_damage",
	"rear_windshield_damage",
	"taillights_damage",
	"tailgate_damage",
}

// DamageFieldsFor returns the damage field set for a variant, or nil when the
// variant carries no damage block.
func DamageFieldsFor(v Variant) []string {
	switch v {
	case VariantFront:
		return FrontDamageFields
	case VariantBack:
		return BackDamageFields
	default:
		return nil
	}
}
