package entity

import "github.com/claimsight/claims-pipeline/constants"

// Document identifies one input artifact. Immutable once loaded: created by
// the ingestor, consumed by the OCR stage, discarded after encoding.
type Document struct {
	// ID is the hex SHA-256 of the raw bytes and keys every artifact
	// derived from this document.
	ID         string
	SourcePath string
	Kind       constants.MediaKind
	Bytes      []byte
	// Payload is the transport-safe base64 data URL of Bytes (possibly of a
	// downscaled rendition for oversized images).
	Payload string
	// Pages is set for PDF inputs, 1 for images.
	Pages int
}
