package artifact

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claimsight/claims-pipeline/internal/common"
)

// Open builds the artifact store selected by configuration.
func Open(ctx context.Context, cfg common.ArtifactsConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "fs":
		return NewFSStore(cfg.Dir, logger)
	case "sqlite":
		return NewSQLiteStore(ctx, cfg.DSN, logger)
	case "postgres":
		return NewPostgresStore(ctx, PostgresConfig{DSN: cfg.DSN}, logger)
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket, logger)
	default:
		return nil, fmt.Errorf("unknown artifact backend: %q", cfg.Backend)
	}
}
