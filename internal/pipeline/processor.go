// Package pipeline orchestrates the two-stage claim pipeline: OCR a document
// into a persisted text artifact, then structure that artifact into a
// validated claim. The stages are independently invocable so OCR spend is
// never repeated when structuring is rerun.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/claimsight/claims-pipeline/constants"
	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
	"github.com/claimsight/claims-pipeline/internal/ingest"
	"github.com/claimsight/claims-pipeline/internal/metrics"
	"github.com/claimsight/claims-pipeline/internal/ocr"
)

// Processor runs the pipeline end to end for one document at a time. It owns
// no state across runs; every invocation produces a fresh PipelineRun record
// with a terminal status and, on failure, the stage that caused it.
type Processor struct {
	ingestor  *ingest.Ingestor
	ocrClient *ocr.Client
	structure *StructureStage
	logger    *slog.Logger
}

func NewProcessor(ingestor *ingest.Ingestor, ocrClient *ocr.Client, structure *StructureStage, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		ingestor:  ingestor,
		ocrClient: ocrClient,
		structure: structure,
		logger:    logger,
	}
}

// Process runs both stages for one document path. The returned run always
// carries a terminal status; the error return is reserved for cancellation
// and infrastructure failures where no status could be persisted.
func (p *Processor) Process(ctx context.Context, path string) (*entity.PipelineRun, error) {
	run := entity.NewPipelineRun(path)
	p.logger.Info("processor.run.start", "run_id", run.ID.String(), "path", path)

	res, doc, err := p.runOCR(ctx, run)
	if err != nil {
		return p.abort(ctx, run, constants.StageOCR, err)
	}
	if run.Status != constants.RunStatusRunning {
		return p.finish(run), nil
	}

	start := time.Now()
	claim, variant, err := p.structure.FromResult(ctx, doc.ID, res, path)
	metrics.StageDuration.WithLabelValues(constants.StageStructuring).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, common.ErrStoreUnavailable) {
			return p.abort(ctx, run, constants.StageStructuring, err)
		}
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			run.Fail(constants.RunStatusValidationFailed, constants.StageValidation, verr.Error())
		} else {
			run.Fail(constants.RunStatusStructuringFailed, constants.StageStructuring, err.Error())
		}
		return p.finish(run), nil
	}

	run.Variant = variant
	run.Claim = claim
	run.Finish(constants.RunStatusSucceeded)
	return p.finish(run), nil
}

// ProcessOCROnly runs ingest and OCR, persisting the text artifact but never
// touching the structuring stage.
func (p *Processor) ProcessOCROnly(ctx context.Context, path string) (*entity.PipelineRun, error) {
	run := entity.NewPipelineRun(path)
	p.logger.Info("processor.run.start", "run_id", run.ID.String(), "path", path, "mode", "ocr_only")

	if _, _, err := p.runOCR(ctx, run); err != nil {
		return p.abort(ctx, run, constants.StageOCR, err)
	}
	if run.Status == constants.RunStatusRunning {
		run.Finish(constants.RunStatusSucceeded)
	}
	return p.finish(run), nil
}

// ProcessFromArtifact runs structuring only, resuming from the persisted OCR
// artifact of an earlier run. The document is re-read solely to recover its
// content identity; no OCR call is made.
func (p *Processor) ProcessFromArtifact(ctx context.Context, path string) (*entity.PipelineRun, error) {
	run := entity.NewPipelineRun(path)
	p.logger.Info("processor.run.start", "run_id", run.ID.String(), "path", path, "mode", "from_artifact")

	doc, err := p.ingestor.Load(path)
	if err != nil {
		run.Fail(constants.RunStatusOCRFailed, constants.StageIngest, err.Error())
		return p.finish(run), nil
	}
	run.DocumentID = doc.ID

	start := time.Now()
	claim, variant, err := p.structure.FromArtifact(ctx, doc.ID, path)
	metrics.StageDuration.WithLabelValues(constants.StageStructuring).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, common.ErrStoreUnavailable) {
			return p.abort(ctx, run, constants.StageStructuring, err)
		}
		var verr *common.ValidationError
		switch {
		case errors.Is(err, ErrUpstreamOCR):
			run.Fail(constants.RunStatusOCRFailed, constants.StageOCR, err.Error())
		case errors.As(err, &verr):
			run.Fail(constants.RunStatusValidationFailed, constants.StageValidation, verr.Error())
		default:
			run.Fail(constants.RunStatusStructuringFailed, constants.StageStructuring, err.Error())
		}
		return p.finish(run), nil
	}

	run.Variant = variant
	run.Claim = claim
	run.Finish(constants.RunStatusSucceeded)
	return p.finish(run), nil
}

// runOCR performs ingest plus the OCR stage, recording any failure on the
// run. A persisted error artifact short-circuits the run as ocr_failed
// without being an infrastructure error.
func (p *Processor) runOCR(ctx context.Context, run *entity.PipelineRun) (entity.OCRResult, *entity.Document, error) {
	doc, err := p.ingestor.Load(run.SourcePath)
	if err != nil {
		run.Fail(constants.RunStatusOCRFailed, constants.StageIngest, err.Error())
		return entity.OCRResult{}, nil, nil
	}
	run.DocumentID = doc.ID

	start := time.Now()
	res, err := p.ocrClient.Invoke(ctx, doc)
	metrics.StageDuration.WithLabelValues(constants.StageOCR).Observe(time.Since(start).Seconds())
	if err != nil {
		return entity.OCRResult{}, nil, err
	}
	run.OCR = &res
	if !res.OK() {
		run.Fail(constants.RunStatusOCRFailed, constants.StageOCR, res.ErrorDetail.Message)
	}
	return res, doc, nil
}

// abort finalizes a run whose outcome is not a stage verdict: cancellation,
// or an artifact store that could not serve the stage. The error goes back
// to the caller; cancelled is stamped only when the context is actually done.
func (p *Processor) abort(ctx context.Context, run *entity.PipelineRun, stage string, err error) (*entity.PipelineRun, error) {
	status := constants.RunStatusAborted
	if ctx.Err() != nil {
		status = constants.RunStatusCancelled
	}
	run.Fail(status, stage, err.Error())
	p.finish(run)
	return run, err
}

func (p *Processor) finish(run *entity.PipelineRun) *entity.PipelineRun {
	metrics.RunsTotal.WithLabelValues(string(run.Status)).Inc()
	p.logger.Info("processor.run.done",
		"run_id", run.ID.String(),
		"doc_id", run.DocumentID,
		"status", string(run.Status),
		"failed_stage", run.FailedStage,
		"variant", string(run.Variant),
		"elapsed_ms", run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	)
	return run
}
