// Package tesseract implements the OCR capability with a local Tesseract
// engine via gosseract. It needs no network or credentials, which makes it
// the offline fallback, but it handles images only.
package tesseract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/claimsight/claims-pipeline/constants"
	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
)

// Recognizer runs Tesseract over document bytes. A fresh gosseract client is
// created per call; the client is not safe for concurrent use.
type Recognizer struct {
	clientFactory func() *gosseract.Client
	languages     []string
	logger        *slog.Logger
}

func NewRecognizer(languages []string, logger *slog.Logger) *Recognizer {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{
		clientFactory: gosseract.NewClient,
		languages:     languages,
		logger:        logger,
	}
}

// Recognize extracts text from an image document. PDF inputs are rejected as
// unsupported content rather than silently producing empty text.
func (r *Recognizer) Recognize(ctx context.Context, doc *entity.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if doc.Kind == constants.KindPDF {
		return "", common.NewServiceError(common.KindUnsupportedContent,
			"tesseract handles images only; pdf input requires a vision provider", nil)
	}
	if !doc.Kind.IsImage() {
		return "", common.NewServiceError(common.KindUnsupportedContent,
			fmt.Sprintf("unsupported media kind %s", doc.Kind), nil)
	}

	start := time.Now()
	c := r.clientFactory()
	defer func() {
		if err := c.Close(); err != nil {
			r.logger.Warn("tesseract.client_close_error", "error", err)
		}
	}()

	if err := c.SetImageFromBytes(doc.Bytes); err != nil {
		return "", common.NewServiceError(common.KindUnsupportedContent, "set image", err)
	}
	if err := c.SetLanguage(r.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", common.NewServiceError(common.KindMalformedResponse, "tesseract recognition failed", err)
	}

	r.logger.Debug("tesseract.ocr.ok",
		"doc_id", doc.ID, "text_len", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}
