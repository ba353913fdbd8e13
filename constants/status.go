package constants

// RunStatus is the terminal status of one pipeline run.
type RunStatus string

// Stable values (persisted in artifacts; do not rename).
const (
	RunStatusRunning           RunStatus = "running"
	RunStatusSucceeded         RunStatus = "succeeded"
	RunStatusOCRFailed         RunStatus = "ocr_failed"
	RunStatusStructuringFailed RunStatus = "structuring_failed"
	RunStatusValidationFailed  RunStatus = "validation_failed"
	RunStatusCancelled         RunStatus = "cancelled"
	RunStatusAborted           RunStatus = "aborted"
)

// Stage names, used for logging and metrics labels.
const (
	StageIngest      = "ingest"
	StageOCR         = "ocr"
	StageDetect      = "detect"
	StageStructuring = "structuring"
	StageValidation  = "validation"
)
