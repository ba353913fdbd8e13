package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/claimsight/claims-pipeline/constants"
	"github.com/claimsight/claims-pipeline/internal/app"
	"github.com/claimsight/claims-pipeline/internal/common"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir         = flag.String("dir", "", "directory to process claim documents from (required)")
		out         = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		concurrency = flag.Int("concurrency", 4, "documents processed in parallel")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address while running (optional)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "claims.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("metrics server started", "addr", *metricsAddr)
	}

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

	paths, err := discover(*dir)
	if err != nil {
		logger.Error("scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("starting batch", "dir", *dir, "documents", len(paths), "concurrency", *concurrency)

	start := time.Now()
	var mu sync.Mutex
	var succeededIDs []string
	failures := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*concurrency)
	for _, path := range paths {
		g.Go(func() error {
			run, err := rt.Processor.Process(gctx, path)
			if err != nil {
				// Cancellation tears down the whole batch.
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if run.Status == constants.RunStatusSucceeded {
				succeededIDs = append(succeededIDs, run.DocumentID)
			} else {
				failures++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("batch aborted", "error", err)
		os.Exit(1)
	}

	sort.Strings(succeededIDs)
	xlsxBytes, err := rt.Export.ExportClaimsXLSX(ctx, succeededIDs)
	if err != nil {
		logger.Error("export claims", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("write output file", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"documents", len(paths),
		"succeeded", len(succeededIDs),
		"failed", failures,
		"output_file", *out,
		"elapsed_ms", time.Since(start).Milliseconds())

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Documents found: %d\n", len(paths))
	fmt.Printf("- Succeeded: %d\n", len(succeededIDs))
	fmt.Printf("- Failed: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
}

// discover walks dir and returns the paths whose extension is in the
// accepted set, in stable order.
func discover(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedExtensions[ext]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
