package constants

import "strings"

// MediaKind is the canonical media type of an input document.
type MediaKind string

const (
	KindJPEG    MediaKind = "image-jpeg"
	KindPNG     MediaKind = "image-png"
	KindPDF     MediaKind = "pdf"
	KindUnknown MediaKind = "unknown"
)

// AllowedExtensions holds the file extensions accepted for claim documents.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToKind maps a (normalized or raw) extension to its MediaKind.
func MapExtToKind(ext string) MediaKind {
	switch NormalizeExt(ext) {
	case "jpg", "jpeg":
		return KindJPEG
	case "png":
		return KindPNG
	case "pdf":
		return KindPDF
	default:
		return KindUnknown
	}
}

// MIMEType returns the transport MIME type for a media kind.
func (k MediaKind) MIMEType() string {
	switch k {
	case KindJPEG:
		return "image/jpeg"
	case KindPNG:
		return "image/png"
	case KindPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// IsImage reports whether the kind is a raster image.
func (k MediaKind) IsImage() bool {
	return k == KindJPEG || k == KindPNG
}
