package ocr

import (
	"context"

	"github.com/claimsight/claims-pipeline/internal/entity"
)

// Recognizer is the external OCR capability: encoded document in, raw text
// out. Implementations classify their failures as *common.ServiceError; the
// stage client owns retry policy and artifact persistence, not the provider.
type Recognizer interface {
	Recognize(ctx context.Context, doc *entity.Document) (string, error)
}
