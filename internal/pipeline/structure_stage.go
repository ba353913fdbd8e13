package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/claimsight/claims-pipeline/constants"
	"github.com/claimsight/claims-pipeline/internal/artifact"
	"github.com/claimsight/claims-pipeline/internal/claims"
	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/detect"
	"github.com/claimsight/claims-pipeline/internal/entity"
	"github.com/claimsight/claims-pipeline/internal/llm"
)

// ErrUpstreamOCR marks a structuring request against a document whose
// persisted OCR artifact records a failure. Structuring never retries OCR.
var ErrUpstreamOCR = errors.New("document failed ocr")

// StructureStage turns a successful OCR result into a validated, persisted
// claim: variant detection, extraction, repair and validation, then the
// write-once artifact save. A cancelled run persists nothing.
type StructureStage struct {
	store     artifact.Store
	extractor *llm.Client
	validator *claims.Validator
	logger    *slog.Logger
}

func NewStructureStage(store artifact.Store, extractor *llm.Client, validator *claims.Validator, logger *slog.Logger) *StructureStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &StructureStage{store: store, extractor: extractor, validator: validator, logger: logger}
}

// FromArtifact structures a document whose OCR already ran, reading the
// persisted artifact instead of re-invoking OCR. This is the resume path:
// it produces the same claim a full run would, because both paths read the
// identical artifact bytes.
func (s *StructureStage) FromArtifact(ctx context.Context, docID, sourcePath string) (*entity.StructuredClaim, constants.Variant, error) {
	res, err := s.store.LoadOCR(ctx, docID)
	if err != nil {
		if !errors.Is(err, common.ErrArtifactNotFound) {
			return nil, "", fmt.Errorf("%w: load ocr artifact for %s: %w", common.ErrStoreUnavailable, docID, err)
		}
		return nil, "", fmt.Errorf("load ocr artifact for %s: %w", docID, err)
	}
	if !res.OK() {
		return nil, "", fmt.Errorf("%w: %s: %s", ErrUpstreamOCR, res.ErrorDetail.Kind, res.ErrorDetail.Message)
	}
	return s.FromResult(ctx, docID, res, sourcePath)
}

// FromResult structures a known-successful OCR result.
func (s *StructureStage) FromResult(ctx context.Context, docID string, res entity.OCRResult, sourcePath string) (*entity.StructuredClaim, constants.Variant, error) {
	variant := detect.DetectWithHint(res.Text, sourcePath)
	s.logger.Info("structure.variant_detected",
		"doc_id", docID, "variant", string(variant), "text_len", len(res.Text))

	candidate, err := s.extractor.Invoke(ctx, llm.ExtractRequest{
		OCRText:      res.Text,
		Variant:      variant,
		FilenameHint: filepath.Base(sourcePath),
	})
	if err != nil {
		return nil, variant, err
	}

	claim, err := s.validator.Validate(candidate, variant)
	if err != nil {
		return nil, variant, err
	}

	if err := ctx.Err(); err != nil {
		return nil, variant, fmt.Errorf("structuring cancelled: %w", err)
	}
	if err := s.store.SaveClaim(ctx, docID, claim); err != nil {
		return nil, variant, fmt.Errorf("%w: persist claim artifact: %w", common.ErrStoreUnavailable, err)
	}

	s.logger.Info("structure.claim_persisted", "doc_id", docID, "variant", string(variant))
	return claim, variant, nil
}
