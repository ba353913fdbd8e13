package llm

import (
	"strings"

	"github.com/claimsight/claims-pipeline/constants"
)

// BuildSystemPrompt composes the system message for a variant: the shared
// extraction rules plus the variant-specific damage checklist.
func BuildSystemPrompt(variant constants.Variant) string {
	parts := []string{
		"You are an insurance claim document parser. Return ONLY JSON that matches the provided JSON Schema.",
		"Extract vehicle identity (make, model, year, VIN) and incident details (date, description, location) from the document text.",
		"Use ISO-8601 dates (YYYY-MM-DD). The year is a 4-digit string.",
		"Damage severity values MUST be exactly one of: " + strings.Join(constants.SeveritiesAsStrings(), ", ") + ".",
		"If a value is not stated in the text, use the string \"unknown\". Never invent values and never output null.",
	}

	switch variant {
	case constants.VariantFront:
		parts = append(parts,
			"This document describes the FRONT of the vehicle. Set vehicle_side to \"front\".",
			"Assess each front component: "+strings.Join(constants.FrontDamageFields, ", ")+".")
	case constants.VariantBack:
		parts = append(parts,
			"This document describes the BACK of the vehicle. Set vehicle_side to \"back\".",
			"Assess each rear component: "+strings.Join(constants.BackDamageFields, ", ")+".")
	default:
		parts = append(parts,
			"The side of the vehicle could not be determined. Set vehicle_side to \"unknown\" and extract only the envelope fields.")
	}

	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the OCR text with an optional filename hint.
// Long OCR text is truncated; the claim-relevant content of these documents
// sits well within the cap.
func BuildUserPrompt(req ExtractRequest) string {
	const maxOCRChars = 6000

	var b strings.Builder
	if name := strings.TrimSpace(req.FilenameHint); name != "" {
		b.WriteString("Filename: ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("\nDocument text:\n")
	text := strings.TrimSpace(req.OCRText)
	if len(text) > maxOCRChars {
		b.WriteString(text[:maxOCRChars])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	b.WriteString("\n\nReturn ONLY JSON that matches the provided schema.")
	return b.String()
}
