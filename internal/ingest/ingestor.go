package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/claimsight/claims-pipeline/constants"
	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
)

// MaxPayloadBytes is the transport ceiling for an encoded document. Images
// above it are downscaled before encoding; PDFs above it are rejected.
const MaxPayloadBytes = 20 << 20

// maxImageEdge bounds the longest edge of a downscaled image.
const maxImageEdge = 2000

// Ingestor loads claim documents from local storage and produces
// transport-ready payloads. Read-only; no retries.
type Ingestor struct {
	logger *slog.Logger
}

func NewIngestor(logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{logger: logger}
}

// Load resolves a storage locator into an immutable Document.
// Fails with common.ErrNotFound when the locator does not resolve and
// common.ErrUnsupportedType when the extension or content is not in the
// accepted set {jpeg, png, pdf}.
func (g *Ingestor) Load(path string) (*entity.Document, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: extension %q", common.ErrUnsupportedType, ext)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrNotFound, path)
		}
		return nil, fmt.Errorf("read document: %w", err)
	}

	kind := constants.MapExtToKind(ext)
	if err := sniffContent(raw, kind); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(raw)
	doc := &entity.Document{
		ID:         hex.EncodeToString(sum[:]),
		SourcePath: path,
		Kind:       kind,
		Bytes:      raw,
		Pages:      1,
	}

	if kind == constants.KindPDF {
		pages, err := api.PageCountFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: not a readable pdf: %v", common.ErrUnsupportedType, err)
		}
		doc.Pages = pages
		if len(raw) > MaxPayloadBytes {
			return nil, fmt.Errorf("%w: pdf exceeds %d bytes", common.ErrUnsupportedType, MaxPayloadBytes)
		}
	}

	payloadBytes := raw
	payloadKind := kind
	if kind.IsImage() && len(raw) > MaxPayloadBytes {
		scaled, err := downscale(raw, kind)
		if err != nil {
			return nil, fmt.Errorf("downscale image: %w", err)
		}
		g.logger.Info("ingest.image.downscaled",
			"path", path, "orig_bytes", len(raw), "scaled_bytes", len(scaled))
		payloadBytes = scaled
	}
	doc.Payload = encodeDataURL(payloadBytes, payloadKind)

	g.logger.Debug("ingest.loaded",
		"path", path, "kind", string(kind), "bytes", len(raw), "pages", doc.Pages, "doc_id", doc.ID)
	return doc, nil
}

// sniffContent cross-checks the extension against the actual content so a
// mislabelled file fails here rather than at the OCR service.
func sniffContent(raw []byte, kind constants.MediaKind) error {
	detected := http.DetectContentType(raw)
	want := kind.MIMEType()
	if kind == constants.KindPDF {
		// http.DetectContentType reports application/pdf for %PDF headers.
		if detected != "application/pdf" {
			return fmt.Errorf("%w: content is %s, expected pdf", common.ErrUnsupportedType, detected)
		}
		return nil
	}
	if detected != want {
		return fmt.Errorf("%w: content is %s, expected %s", common.ErrUnsupportedType, detected, want)
	}
	return nil
}

func downscale(raw []byte, kind constants.MediaKind) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	fitted := imaging.Fit(img, maxImageEdge, maxImageEdge, imaging.Lanczos)

	var buf bytes.Buffer
	switch kind {
	case constants.KindPNG:
		err = imaging.Encode(&buf, fitted, imaging.PNG)
	default:
		err = imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(85))
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeDataURL(raw []byte, kind constants.MediaKind) string {
	return "data:" + kind.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

// DecodePayload reverses encodeDataURL; used by providers that need raw bytes
// and by tests asserting the round-trip invariant.
func DecodePayload(payload string) ([]byte, string, error) {
	const marker = ";base64,"
	i := bytes.Index([]byte(payload), []byte(marker))
	if len(payload) < 5 || payload[:5] != "data:" || i < 0 {
		return nil, "", fmt.Errorf("not a data url")
	}
	mimeType := payload[5:i]
	raw, err := base64.StdEncoding.DecodeString(payload[i+len(marker):])
	if err != nil {
		return nil, "", fmt.Errorf("decode payload: %w", err)
	}
	return raw, mimeType, nil
}
