package llm

import (
	"context"
	"encoding/json"

	"github.com/claimsight/claims-pipeline/constants"
)

// ExtractRequest carries everything the structuring capability needs for one
// invocation: the OCR text, the detected variant (which selects the
// instruction set and schema template), and a filename hint.
type ExtractRequest struct {
	OCRText      string
	Variant      constants.Variant
	FilenameHint string
}

// ClaimExtractor is the external text-structuring capability. It returns a
// candidate object as raw JSON, deliberately not the trusted domain type;
// every candidate goes through the validator before use. Failures are
// classified as *common.ServiceError.
type ClaimExtractor interface {
	ExtractClaim(ctx context.Context, req ExtractRequest) (json.RawMessage, error)
}
