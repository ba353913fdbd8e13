package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/claimsight/claims-pipeline/internal/artifact"
	"github.com/claimsight/claims-pipeline/internal/common"
)

// storecheck verifies the configured artifact store is reachable and
// writable configuration-wise before a batch is pointed at it.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Println("ERROR: invalid configuration")
		log.Printf("  %v", err)
		log.Println("  set ARTIFACT_BACKEND to one of: fs, sqlite, postgres, gcs")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := artifact.Open(ctx, cfg.Artifacts, nil)
	if err != nil {
		log.Fatalf("opening artifact store: %v", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Printf("ERROR: closing store: %v", cerr)
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		log.Fatalf("store health: FAIL (%v)", err)
	}
	log.Printf("store health: OK (backend=%s)", cfg.Artifacts.Backend)
}
