// Package app wires configuration into a ready-to-run pipeline. Mains stay
// thin: load env, call Build, run.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claimsight/claims-pipeline/internal/artifact"
	"github.com/claimsight/claims-pipeline/internal/claims"
	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/export"
	"github.com/claimsight/claims-pipeline/internal/ingest"
	"github.com/claimsight/claims-pipeline/internal/llm"
	"github.com/claimsight/claims-pipeline/internal/ocr"
	"github.com/claimsight/claims-pipeline/internal/pipeline"
	"github.com/claimsight/claims-pipeline/internal/provider/gemini"
	"github.com/claimsight/claims-pipeline/internal/provider/openai"
	"github.com/claimsight/claims-pipeline/internal/provider/tesseract"
)

// Runtime bundles the wired pipeline with everything a main needs to run and
// shut down cleanly.
type Runtime struct {
	Processor *pipeline.Processor
	Store     artifact.Store
	Export    *export.Service

	closers []func() error
}

// Close releases providers and the artifact store, last-opened first.
func (r *Runtime) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build constructs the full pipeline from configuration. The returned
// runtime must be closed by the caller.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt := &Runtime{}

	store, err := artifact.Open(ctx, cfg.Artifacts, logger)
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	rt.Store = store
	rt.closers = append(rt.closers, store.Close)

	rec, err := buildRecognizer(ctx, cfg, logger, rt)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	ext, err := buildExtractor(ctx, cfg, logger, rt)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	ocrClient := ocr.NewClient(rec, store, ocr.Config{
		MaxAttempts: cfg.OCR.MaxAttempts,
		BackoffBase: cfg.OCR.BackoffBase,
		Timeout:     cfg.OCR.Timeout,
	}, logger)

	llmClient := llm.NewClient(ext, llm.Config{
		MaxAttempts: cfg.LLM.MaxAttempts,
		BackoffBase: cfg.LLM.BackoffBase,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	structure := pipeline.NewStructureStage(store, llmClient, claims.NewValidator(logger), logger)
	rt.Processor = pipeline.NewProcessor(ingest.NewIngestor(logger), ocrClient, structure, logger)
	rt.Export = export.NewService(store, logger)
	return rt, nil
}

func buildRecognizer(ctx context.Context, cfg *common.Config, logger *slog.Logger, rt *Runtime) (ocr.Recognizer, error) {
	switch cfg.OCR.Provider {
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.OCR.Model,
			Timeout: cfg.OCR.Timeout,
		}, logger), nil
	case "gemini":
		gcp := common.LoadGCPConfig()
		c, err := gemini.NewClient(ctx, gemini.Config{
			ProjectID: gcp.ProjectID,
			Region:    gcp.Region,
			Model:     cfg.OCR.Model,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("gemini ocr provider: %w", err)
		}
		rt.closers = append(rt.closers, c.Close)
		return c, nil
	case "tesseract":
		return tesseract.NewRecognizer(nil, logger), nil
	default:
		return nil, common.NewValidationError("unknown ocr provider: %q", cfg.OCR.Provider)
	}
}

func buildExtractor(ctx context.Context, cfg *common.Config, logger *slog.Logger, rt *Runtime) (llm.ClaimExtractor, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger), nil
	case "gemini":
		gcp := common.LoadGCPConfig()
		c, err := gemini.NewClient(ctx, gemini.Config{
			ProjectID: gcp.ProjectID,
			Region:    gcp.Region,
			Model:     cfg.LLM.Model,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("gemini llm provider: %w", err)
		}
		rt.closers = append(rt.closers, c.Close)
		return c, nil
	default:
		return nil, common.NewValidationError("unknown llm provider: %q", cfg.LLM.Provider)
	}
}
