package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS artifacts (
	doc_id     TEXT NOT NULL,
	stage      TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (doc_id, stage)
);`

// SQLiteStore keeps artifacts in a single-file database. Useful for local
// runs that want queryable history without a server.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	logger.Info("artifact.sqlite.opened", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// save relies on INSERT OR IGNORE for the write-once contract: the first
// writer wins and later identical-key writes are silent no-ops.
func (s *SQLiteStore) save(ctx context.Context, docID, stage string, payload []byte) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO artifacts (doc_id, stage, payload) VALUES (?, ?, ?)`,
		docID, stage, string(payload))
	if err != nil {
		return fmt.Errorf("save artifact %s/%s: %w", docID, stage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.logger.Debug("artifact.sqlite.exists", "doc_id", docID, "stage", stage)
	}
	return nil
}

func (s *SQLiteStore) load(ctx context.Context, docID, stage string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM artifacts WHERE doc_id = ? AND stage = ?`,
		docID, stage).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", common.ErrArtifactNotFound, docID, stage)
	}
	if err != nil {
		return nil, fmt.Errorf("load artifact %s/%s: %w", docID, stage, err)
	}
	return []byte(payload), nil
}

func (s *SQLiteStore) SaveOCR(ctx context.Context, docID string, res entity.OCRResult) error {
	b, err := marshalOCR(res)
	if err != nil {
		return err
	}
	return s.save(ctx, docID, StageKeyOCR, b)
}

func (s *SQLiteStore) LoadOCR(ctx context.Context, docID string) (entity.OCRResult, error) {
	b, err := s.load(ctx, docID, StageKeyOCR)
	if err != nil {
		return entity.OCRResult{}, err
	}
	return unmarshalOCR(b)
}

func (s *SQLiteStore) SaveClaim(ctx context.Context, docID string, claim *entity.StructuredClaim) error {
	b, err := marshalClaim(claim)
	if err != nil {
		return err
	}
	return s.save(ctx, docID, StageKeyClaim, b)
}

func (s *SQLiteStore) LoadClaim(ctx context.Context, docID string) (*entity.StructuredClaim, error) {
	b, err := s.load(ctx, docID, StageKeyClaim)
	if err != nil {
		return nil, err
	}
	return unmarshalClaim(b)
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
