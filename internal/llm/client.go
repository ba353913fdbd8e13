package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claimsight/claims-pipeline/constants"
	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/metrics"
)

// Config holds retry behavior for the structuring stage client.
type Config struct {
	MaxAttempts int           // default 3
	BackoffBase time.Duration // default 500ms
	Timeout     time.Duration // per-attempt; default 45s
}

// Client is the structuring stage client. It wraps a ClaimExtractor
// capability with retry policy and structural sanity checks, and hands back
// an UNVALIDATED candidate; conversion into the trusted record happens in
// the claims validator, never here.
type Client struct {
	ext    ClaimExtractor
	cfg    Config
	logger *slog.Logger
}

func NewClient(ext ClaimExtractor, cfg Config, logger *slog.Logger) *Client {
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
		cfg.Timeout = 45 * time.Second
	}
	return &Client{ext: ext, cfg: cfg, logger: logger}
}

// Invoke requests a candidate claim for the given OCR text and variant.
// Transient failures are retried with exponential backoff; a response that is
// not a JSON object at all surfaces as a schema_violation ServiceError and is
// never retried, since an identical request is unlikely to fix a structurally
// malformed response.
func (c *Client) Invoke(ctx context.Context, req ExtractRequest) (json.RawMessage, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("llm.extract.start",
		"req_id", rid, "variant", string(req.Variant), "text_len", len(req.OCRText))

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		raw, err := c.ext.ExtractClaim(attemptCtx, req)
		cancel()

		if err == nil {
			candidate, cerr := extractObject(raw)
			if cerr != nil {
				c.logger.Error("llm.extract.schema_violation",
					"req_id", rid, "error", cerr, "raw_bytes", len(raw),
					"elapsed_ms", time.Since(start).Milliseconds())
				return nil, common.NewServiceError(common.KindSchemaViolation,
					"response is not a JSON object", cerr)
			}
			c.logger.Info("llm.extract.ok",
				"req_id", rid, "bytes", len(candidate),
				"elapsed_ms", time.Since(start).Milliseconds())
			return candidate, nil
		}

		lastErr = err
		kind := common.KindOf(err)
		c.logger.Warn("llm.extract.attempt_failed",
			"req_id", rid, "attempt", attempt, "kind", string(kind), "error", err)

		if !kind.Retryable() || attempt == c.cfg.MaxAttempts {
			break
		}
		if serr := common.SleepCtx(ctx, common.Backoff(attempt, c.cfg.BackoffBase)); serr != nil {
			return nil, fmt.Errorf("structuring cancelled: %w", serr)
		}
		metrics.StageRetries.WithLabelValues(constants.StageStructuring).Inc()
		c.logger.Info("llm.extract.retry", "req_id", rid, "attempt", attempt+1)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("structuring cancelled: %w", err)
	}
	return nil, fmt.Errorf("llm extract: %w", lastErr)
}

// extractObject strips markdown code fences some models wrap around JSON and
// verifies the payload is an object. The parsed content is discarded; the
// raw bytes flow on so the validator sees exactly what the model produced.
func extractObject(raw json.RawMessage) (json.RawMessage, error) {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return json.RawMessage(s), nil
}
