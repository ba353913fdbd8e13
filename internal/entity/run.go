package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/claimsight/claims-pipeline/constants"
)

// PipelineRun ties one document to its stage outputs and terminal status.
// Owned exclusively by the orchestrator; lives for one invocation only.
type PipelineRun struct {
	ID         uuid.UUID
	DocumentID string
	SourcePath string
	Variant    constants.Variant
	OCR        *OCRResult
	Claim      *StructuredClaim
	Status     constants.RunStatus
	// FailedStage and FailureDetail are set for any non-succeeded status so
	// the caller can name exactly which stage failed and why.
	FailedStage   string
	FailureDetail string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// NewPipelineRun starts a run record for one document invocation.
func NewPipelineRun(sourcePath string) *PipelineRun {
	return &PipelineRun{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		Status:     constants.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
}

// Finish records the terminal status.
func (r *PipelineRun) Finish(status constants.RunStatus) {
	r.Status = status
	r.FinishedAt = time.Now().UTC()
}

// Fail records a terminal failure attributed to one stage.
func (r *PipelineRun) Fail(status constants.RunStatus, stage, detail string) {
	r.FailedStage = stage
	r.FailureDetail = detail
	r.Finish(status)
}
