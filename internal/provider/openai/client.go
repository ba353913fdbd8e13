package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
	"github.com/claimsight/claims-pipeline/internal/llm"
)

const ocrSystemPrompt = "You are an OCR engine. Transcribe ALL text visible in the document image exactly as written, preserving line breaks. Output plain text only, with no commentary and no markdown."

// Recognize implements the OCR capability via the vision path of
// chat/completions: the document payload goes up as an image content part and
// the transcription comes back as plain text.
func (c *Client) Recognize(ctx context.Context, doc *entity.Document) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("openai.ocr.start",
		"req_id", rid, "model", c.cfg.Model, "doc_id", doc.ID, "kind", string(doc.Kind))

	if !doc.Kind.IsImage() {
		return "", common.NewServiceError(common.KindUnsupportedContent,
			fmt.Sprintf("vision OCR supports images only, got %s", doc.Kind), nil)
	}

	body := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]any{
			{"role": "system", "content": ocrSystemPrompt},
			{"role": "user", "content": []map[string]any{
				{"type": "text", "text": "Transcribe this document."},
				{"type": "image_url", "image_url": map[string]any{"url": doc.Payload}},
			}},
		},
	}

	content, err := c.complete(ctx, body)
	if err != nil {
		c.logger.Error("openai.ocr.error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	c.logger.Info("openai.ocr.ok",
		"req_id", rid, "text_len", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}

// ExtractClaim implements the structuring capability using text-only
// chat/completions with a JSON response format. The schema rides along as a
// trailing system message; structural validation of the reply belongs to the
// caller.
func (c *Client) ExtractClaim(ctx context.Context, req llm.ExtractRequest) (json.RawMessage, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("openai.extract.start",
		"req_id", rid, "model", c.cfg.Model, "variant", string(req.Variant), "text_len", len(req.OCRText))

	schema := llm.BuildClaimJSONSchema(req.Variant)
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req.Variant)},
			{"role": "user", "content": llm.BuildUserPrompt(req)},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	content, err := c.complete(ctx, body)
	if err != nil {
		c.logger.Error("openai.extract.error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	c.logger.Info("openai.extract.ok",
		"req_id", rid, "bytes", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return json.RawMessage(content), nil
}

// complete posts a chat/completions request and returns the first choice's
// content, classifying transport and protocol failures into service errors.
func (c *Client) complete(ctx context.Context, body map[string]any) (string, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", common.NewServiceError(common.KindTimeout, "openai request timed out", err)
		}
		return "", common.NewServiceError(common.KindTimeout, "openai request failed", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("openai.response_body_close_error", "error", cerr)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return "", classifyStatus(resp.StatusCode, raw)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", common.NewServiceError(common.KindMalformedResponse, "decode openai response", err)
	}
	if len(cc.Choices) == 0 {
		return "", common.NewServiceError(common.KindMalformedResponse, "no choices in openai response", nil)
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

func classifyStatus(status int, body []byte) error {
	msg := fmt.Sprintf("openai status %d: %s", status, truncate(string(body), 300))
	switch {
	case status == http.StatusTooManyRequests:
		return common.NewServiceError(common.KindRateLimited, msg, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return common.NewServiceError(common.KindAuthFailure, msg, nil)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return common.NewServiceError(common.KindTimeout, msg, nil)
	case status == http.StatusUnsupportedMediaType:
		return common.NewServiceError(common.KindUnsupportedContent, msg, nil)
	default:
		return common.NewServiceError(common.KindMalformedResponse, msg, nil)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
