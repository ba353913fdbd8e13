package entity

import (
	"time"

	"github.com/claimsight/claims-pipeline/internal/common"
)

// OCRStatus is the outcome of one OCR invocation.
type OCRStatus string

const (
	OCRStatusSuccess OCRStatus = "success"
	OCRStatusError   OCRStatus = "error"
)

// ErrorDetail describes why an OCR or structuring invocation failed.
type ErrorDetail struct {
	Kind    common.ErrorKind `json:"kind"`
	Message string           `json:"message,omitempty"`
}

// OCRResult is the persisted outcome of one OCR invocation. Created once,
// never mutated; passed by reference into the structuring stage.
//
// Invariants: Status==success implies ErrorDetail==nil; Status==error
// implies Text=="".
type OCRResult struct {
	Status      OCRStatus    `json:"status"`
	Text        string       `json:"text"`
	FilePath    string       `json:"file_path"`
	Timestamp   time.Time    `json:"timestamp"`
	ErrorDetail *ErrorDetail `json:"error_detail,omitempty"`
}

// NewOCRSuccess builds a success result; the invariants above hold by
// construction.
func NewOCRSuccess(text, filePath string) OCRResult {
	return OCRResult{
		Status:    OCRStatusSuccess,
		Text:      text,
		FilePath:  filePath,
		Timestamp: time.Now().UTC(),
	}
}

// NewOCRError builds an error result with an empty text.
func NewOCRError(kind common.ErrorKind, message, filePath string) OCRResult {
	return OCRResult{
		Status:      OCRStatusError,
		FilePath:    filePath,
		Timestamp:   time.Now().UTC(),
		ErrorDetail: &ErrorDetail{Kind: kind, Message: message},
	}
}

// OK reports whether the invocation extracted text.
func (r OCRResult) OK() bool {
	return r.Status == OCRStatusSuccess
}
