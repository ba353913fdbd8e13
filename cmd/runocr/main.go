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

// runocr runs only the first stage: it persists the OCR artifact and stops,
// leaving structuring to a later invocation.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <document-path>")
		os.Exit(2)
	}

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

	run, err := rt.Processor.ProcessOCROnly(ctx, os.Args[1])
	if err != nil {
		logger.Error("ocr aborted", "run_id", run.ID.String(), "error", err)
		os.Exit(1)
	}
	if run.Status != constants.RunStatusSucceeded {
		logger.Error("ocr failed",
			"run_id", run.ID.String(),
			"failed_stage", run.FailedStage,
			"detail", run.FailureDetail)
		os.Exit(1)
	}

	logger.Info("ocr OK",
		"run_id", run.ID.String(),
		"doc_id", run.DocumentID,
		"text_bytes", len(run.OCR.Text))
}
