// Package gemini implements the OCR and structuring capabilities on Vertex AI
// Gemini. One base client is shared; generative models are configured per
// call because the system instruction depends on the document variant.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
	"github.com/claimsight/claims-pipeline/internal/llm"
)

const ocrSystemPrompt = "You are an OCR engine. Transcribe ALL text visible in the document exactly as written, preserving line breaks. Output plain text only, with no commentary and no markdown."

// Config for the Vertex AI Gemini client.
type Config struct {
	ProjectID string
	Region    string // default us-central1
	Model     string // default gemini-1.5-pro
}

type Client struct {
	cfg    Config
	base   *genai.Client
	logger *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("gemini: project id cannot be empty")
	}
	if cfg.Region == "" {
		cfg.Region = "us-central1"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	if logger == nil {
		logger = slog.Default()
	}
	base, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &Client{cfg: cfg, base: base, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.base.Close()
}

// Recognize transcribes a document by sending its raw bytes as an inline
// blob. Gemini accepts both image and PDF payloads on this path, so no
// rasterization step is needed for multi-page inputs.
func (c *Client) Recognize(ctx context.Context, doc *entity.Document) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("gemini.ocr.start",
		"req_id", rid, "model", c.cfg.Model, "doc_id", doc.ID, "kind", string(doc.Kind))

	model := c.base.GenerativeModel(c.cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ocrSystemPrompt)},
	}

	blob := genai.Blob{MIMEType: doc.Kind.MIMEType(), Data: doc.Bytes}
	resp, err := model.GenerateContent(ctx, blob, genai.Text("Transcribe this document."))
	if err != nil {
		cerr := classify(err)
		c.logger.Error("gemini.ocr.error",
			"req_id", rid, "error", cerr, "elapsed_ms", time.Since(start).Milliseconds())
		return "", cerr
	}

	text := collectText(resp)
	c.logger.Info("gemini.ocr.ok",
		"req_id", rid, "text_len", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}

// ExtractClaim requests a candidate claim as forced-JSON output.
func (c *Client) ExtractClaim(ctx context.Context, req llm.ExtractRequest) (json.RawMessage, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("gemini.extract.start",
		"req_id", rid, "model", c.cfg.Model, "variant", string(req.Variant), "text_len", len(req.OCRText))

	schema := llm.BuildClaimJSONSchema(req.Variant)
	schemaText, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	model := c.base.GenerativeModel(c.cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(llm.BuildSystemPrompt(req.Variant))},
	}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.0),
	}

	prompt := llm.BuildUserPrompt(req) + "\n\nJSON Schema:\n" + string(schemaText)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		cerr := classify(err)
		c.logger.Error("gemini.extract.error",
			"req_id", rid, "error", cerr, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, cerr
	}

	content := collectText(resp)
	c.logger.Info("gemini.extract.ok",
		"req_id", rid, "bytes", len(content), "elapsed_ms", time.Since(start).Milliseconds())
	return json.RawMessage(content), nil
}

// collectText concatenates the text parts of the first candidate.
func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}

// classify maps Vertex AI transport errors onto service error kinds using
// their gRPC status codes.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return common.NewServiceError(common.KindTimeout, "gemini request timed out", err)
	}
	switch status.Code(err) {
	case codes.ResourceExhausted:
		return common.NewServiceError(common.KindRateLimited, "gemini quota exhausted", err)
	case codes.Unauthenticated, codes.PermissionDenied:
		return common.NewServiceError(common.KindAuthFailure, "gemini auth failure", err)
	case codes.DeadlineExceeded:
		return common.NewServiceError(common.KindTimeout, "gemini request timed out", err)
	case codes.InvalidArgument:
		return common.NewServiceError(common.KindUnsupportedContent, "gemini rejected request content", err)
	case codes.Unavailable:
		return common.NewServiceError(common.KindRateLimited, "gemini temporarily unavailable", err)
	default:
		return common.NewServiceError(common.KindMalformedResponse, "gemini request failed", err)
	}
}
