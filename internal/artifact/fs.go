package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
)

// FSStore keeps artifacts as JSON files under one directory,
// <doc-id>.<stage>.json. The default backend.
type FSStore struct {
	dir    string
	logger *slog.Logger
}

func NewFSStore(dir string, logger *slog.Logger) (*FSStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FSStore{dir: dir, logger: logger}, nil
}

func (s *FSStore) path(docID, stage string) string {
	return filepath.Join(s.dir, docID+"."+stage+".json")
}

// write creates the artifact file exclusively; an existing file means an
// earlier run already produced this artifact and the write is skipped.
func (s *FSStore) write(docID, stage string, b []byte) error {
	path := s.path(docID, stage)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			s.logger.Debug("artifact.fs.exists", "doc_id", docID, "stage", stage)
			return nil
		}
		return fmt.Errorf("create artifact %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("artifact.fs.close", "path", path, "error", cerr)
		}
	}()
	if _, err := f.Write(b); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

func (s *FSStore) read(docID, stage string) ([]byte, error) {
	b, err := os.ReadFile(s.path(docID, stage))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", common.ErrArtifactNotFound, docID, stage)
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return b, nil
}

func (s *FSStore) SaveOCR(_ context.Context, docID string, res entity.OCRResult) error {
	b, err := marshalOCR(res)
	if err != nil {
		return err
	}
	return s.write(docID, StageKeyOCR, b)
}

func (s *FSStore) LoadOCR(_ context.Context, docID string) (entity.OCRResult, error) {
	b, err := s.read(docID, StageKeyOCR)
	if err != nil {
		return entity.OCRResult{}, err
	}
	return unmarshalOCR(b)
}

func (s *FSStore) SaveClaim(_ context.Context, docID string, claim *entity.StructuredClaim) error {
	b, err := marshalClaim(claim)
	if err != nil {
		return err
	}
	return s.write(docID, StageKeyClaim, b)
}

func (s *FSStore) LoadClaim(_ context.Context, docID string) (*entity.StructuredClaim, error) {
	b, err := s.read(docID, StageKeyClaim)
	if err != nil {
		return nil, err
	}
	return unmarshalClaim(b)
}

func (s *FSStore) Ping(_ context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

func (s *FSStore) Close() error { return nil }
