package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
)

// GCSStore keeps artifacts as objects under <doc-id>/<stage>.json. The
// DoesNotExist precondition gives the write-once contract server-side: a 412
// means another run already wrote the artifact, which is not a failure.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	logger *slog.Logger
}

func NewGCSStore(ctx context.Context, bucket string, logger *slog.Logger) (*GCSStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: client.Bucket(bucket), logger: logger}, nil
}

func objectName(docID, stage string) string {
	return docID + "/" + stage + ".json"
}

func (s *GCSStore) save(ctx context.Context, docID, stage string, payload []byte) error {
	name := objectName(docID, stage)
	w := s.bucket.Object(name).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if _, err := io.Copy(w, bytes.NewReader(payload)); err != nil {
		_ = w.Close()
		if isPreconditionFailed(err) {
			s.logger.Debug("artifact.gcs.exists", "object", name)
			return nil
		}
		return fmt.Errorf("write artifact %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		if isPreconditionFailed(err) {
			s.logger.Debug("artifact.gcs.exists", "object", name)
			return nil
		}
		return fmt.Errorf("finalize artifact %s: %w", name, err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == 412
}

func (s *GCSStore) load(ctx context.Context, docID, stage string) ([]byte, error) {
	name := objectName(docID, stage)
	r, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", common.ErrArtifactNotFound, name)
		}
		return nil, fmt.Errorf("open artifact %s: %w", name, err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			s.logger.Warn("artifact.gcs.close", "object", name, "error", cerr)
		}
	}()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", name, err)
	}
	return b, nil
}

func (s *GCSStore) SaveOCR(ctx context.Context, docID string, res entity.OCRResult) error {
	b, err := marshalOCR(res)
	if err != nil {
		return err
	}
	return s.save(ctx, docID, StageKeyOCR, b)
}

func (s *GCSStore) LoadOCR(ctx context.Context, docID string) (entity.OCRResult, error) {
	b, err := s.load(ctx, docID, StageKeyOCR)
	if err != nil {
		return entity.OCRResult{}, err
	}
	return unmarshalOCR(b)
}

func (s *GCSStore) SaveClaim(ctx context.Context, docID string, claim *entity.StructuredClaim) error {
	b, err := marshalClaim(claim)
	if err != nil {
		return err
	}
	return s.save(ctx, docID, StageKeyClaim, b)
}

func (s *GCSStore) LoadClaim(ctx context.Context, docID string) (*entity.StructuredClaim, error) {
	b, err := s.load(ctx, docID, StageKeyClaim)
	if err != nil {
		return nil, err
	}
	return unmarshalClaim(b)
}

// Ping verifies the bucket is reachable and accessible.
func (s *GCSStore) Ping(ctx context.Context) error {
	_, err := s.bucket.Attrs(ctx)
	return err
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
