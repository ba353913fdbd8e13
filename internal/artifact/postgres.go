package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS artifacts (
	doc_id     TEXT NOT NULL,
	stage      TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (doc_id, stage)
);`

// PostgresConfig tunes the pgx pool for the postgres backend.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// PostgresStore keeps artifacts in a shared server-side database so several
// workers can feed the same store.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresStore(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 10
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "claims-pipeline"

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init postgres schema: %w", err)
	}
	logger.Info("artifact.postgres.opened")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// save uses ON CONFLICT DO NOTHING for the write-once contract.
func (s *PostgresStore) save(ctx context.Context, docID, stage string, payload []byte) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO artifacts (doc_id, stage, payload) VALUES ($1, $2, $3)
		 ON CONFLICT (doc_id, stage) DO NOTHING`,
		docID, stage, payload)
	if err != nil {
		return fmt.Errorf("save artifact %s/%s: %w", docID, stage, err)
	}
	if tag.RowsAffected() == 0 {
		s.logger.Debug("artifact.postgres.exists", "doc_id", docID, "stage", stage)
	}
	return nil
}

func (s *PostgresStore) load(ctx context.Context, docID, stage string) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM artifacts WHERE doc_id = $1 AND stage = $2`,
		docID, stage).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", common.ErrArtifactNotFound, docID, stage)
	}
	if err != nil {
		return nil, fmt.Errorf("load artifact %s/%s: %w", docID, stage, err)
	}
	return payload, nil
}

func (s *PostgresStore) SaveOCR(ctx context.Context, docID string, res entity.OCRResult) error {
	b, err := marshalOCR(res)
	if err != nil {
		return err
	}
	return s.save(ctx, docID, StageKeyOCR, b)
}

func (s *PostgresStore) LoadOCR(ctx context.Context, docID string) (entity.OCRResult, error) {
	b, err := s.load(ctx, docID, StageKeyOCR)
	if err != nil {
		return entity.OCRResult{}, err
	}
	return unmarshalOCR(b)
}

func (s *PostgresStore) SaveClaim(ctx context.Context, docID string, claim *entity.StructuredClaim) error {
	b, err := marshalClaim(claim)
	if err != nil {
		return err
	}
	return s.save(ctx, docID, StageKeyClaim, b)
}

func (s *PostgresStore) LoadClaim(ctx context.Context, docID string) (*entity.StructuredClaim, error) {
	b, err := s.load(ctx, docID, StageKeyClaim)
	if err != nil {
		return nil, err
	}
	return unmarshalClaim(b)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
