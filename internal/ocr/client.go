package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claimsight/claims-pipeline/constants"
	"github.com/claimsight/claims-pipeline/internal/artifact"
	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
	"github.com/claimsight/claims-pipeline/internal/metrics"
)

// Config holds retry behavior for the OCR stage client.
type Config struct {
	MaxAttempts int           // default 3
	BackoffBase time.Duration // default 500ms
	Timeout     time.Duration // per-attempt; default 60s
}

// Client is the OCR stage client. Expected remote failures come back as an
// OCRResult with status=error, not as a Go error, so the orchestrator can
// branch on them; the error return is reserved for unexpected conditions
// (artifact store down, run cancelled).
type Client struct {
	rec    Recognizer
	store  artifact.Store
	cfg    Config
	logger *slog.Logger
}

func NewClient(rec Recognizer, store artifact.Store, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 500 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{rec: rec, store: store, cfg: cfg, logger: logger}
}

// Invoke runs OCR for one document, retrying transient failures with
// exponential backoff, and persists the resulting artifact (success or
// error) before returning.
func (c *Client) Invoke(ctx context.Context, doc *entity.Document) (entity.OCRResult, error) {
	start := time.Now()
	res := c.invoke(ctx, doc)

	if err := ctx.Err(); err != nil {
		// Cancelled runs persist nothing and abort outright.
		return entity.OCRResult{}, fmt.Errorf("ocr cancelled: %w", err)
	}
	if err := c.store.SaveOCR(ctx, doc.ID, res); err != nil {
		return entity.OCRResult{}, fmt.Errorf("%w: persist ocr artifact: %w", common.ErrStoreUnavailable, err)
	}

	c.logger.Info("ocr.invoke.done",
		"doc_id", doc.ID,
		"status", string(res.Status),
		"text_bytes", len(res.Text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (c *Client) invoke(ctx context.Context, doc *entity.Document) entity.OCRResult {
	var lastKind common.ErrorKind
	var lastMsg string

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		text, err := c.rec.Recognize(attemptCtx, doc)
		cancel()

		if err == nil {
			text = Normalize(text)
			if text == "" {
				// A success with no characters breaks the result invariant;
				// treat it as a malformed response.
				return entity.NewOCRError(common.KindMalformedResponse,
					"remote returned empty text", doc.SourcePath)
			}
			return entity.NewOCRSuccess(text, doc.SourcePath)
		}

		lastKind = common.KindOf(err)
		lastMsg = err.Error()
		c.logger.Warn("ocr.invoke.attempt_failed",
			"doc_id", doc.ID, "attempt", attempt, "kind", string(lastKind), "error", err)

		if !lastKind.Retryable() || attempt == c.cfg.MaxAttempts {
			break
		}
		if err := common.SleepCtx(ctx, common.Backoff(attempt, c.cfg.BackoffBase)); err != nil {
			break
		}
		metrics.StageRetries.WithLabelValues(constants.StageOCR).Inc()
		c.logger.Info("ocr.invoke.retry", "doc_id", doc.ID, "attempt", attempt+1)
	}

	return entity.NewOCRError(lastKind, lastMsg, doc.SourcePath)
}
