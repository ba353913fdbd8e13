package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/claimsight/claims-pipeline/constants"
	"github.com/claimsight/claims-pipeline/internal/app"
	"github.com/claimsight/claims-pipeline/internal/common"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "claims-pipeline <document-path>")
		os.Exit(2)
	}
	path := os.Args[1]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt, err := app.Build(ctx, common.LoadConfig(), logger)
	if err != nil {
		logger.Error("build pipeline", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.Error("close runtime", "error", cerr)
		}
	}()

	run, err := rt.Processor.Process(ctx, path)
	if err != nil {
		logger.Error("run aborted", "run_id", run.ID.String(), "error", err)
		os.Exit(1)
	}
	if run.Status != constants.RunStatusSucceeded {
		logger.Error("run failed",
			"run_id", run.ID.String(),
			"status", string(run.Status),
			"failed_stage", run.FailedStage,
			"detail", run.FailureDetail)
		os.Exit(1)
	}

	logger.Info("run succeeded",
		"run_id", run.ID.String(),
		"doc_id", run.DocumentID,
		"variant", string(run.Variant),
		"vehicle", run.Claim.VehicleInfo.Make+" "+run.Claim.VehicleInfo.Model)
}
