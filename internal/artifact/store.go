// Package artifact persists stage outputs keyed by document identity.
//
// The store is append-only and write-once-per-stage: writing a key that
// already holds a value is an idempotent no-op, so re-running a stage never
// clobbers the artifact an earlier run produced. There are no update or
// delete operations.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claimsight/claims-pipeline/internal/entity"
)

// Stage keys under one document ID.
const (
	StageKeyOCR   = "ocr"
	StageKeyClaim = "claim"
)

// Store is the persistence surface shared by all pipeline runs. Writes to
// distinct document IDs never conflict, which is what lets independent runs
// proceed without locking.
type Store interface {
	SaveOCR(ctx context.Context, docID string, res entity.OCRResult) error
	LoadOCR(ctx context.Context, docID string) (entity.OCRResult, error)
	SaveClaim(ctx context.Context, docID string, claim *entity.StructuredClaim) error
	LoadClaim(ctx context.Context, docID string) (*entity.StructuredClaim, error)
	Ping(ctx context.Context) error
	Close() error
}

func marshalOCR(res entity.OCRResult) ([]byte, error) {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal ocr artifact: %w", err)
	}
	return b, nil
}

func unmarshalOCR(b []byte) (entity.OCRResult, error) {
	var res entity.OCRResult
	if err := json.Unmarshal(b, &res); err != nil {
		return entity.OCRResult{}, fmt.Errorf("unmarshal ocr artifact: %w", err)
	}
	return res, nil
}

func marshalClaim(claim *entity.StructuredClaim) ([]byte, error) {
	b, err := json.MarshalIndent(claim, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal claim artifact: %w", err)
	}
	return b, nil
}

func unmarshalClaim(b []byte) (*entity.StructuredClaim, error) {
	var claim entity.StructuredClaim
	if err := json.Unmarshal(b, &claim); err != nil {
		return nil, fmt.Errorf("unmarshal claim artifact: %w", err)
	}
	return &claim, nil
}
