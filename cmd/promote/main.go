package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pitchrank/pitchrank/internal/app"
	"github.com/pitchrank/pitchrank/internal/config"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
	"github.com/pitchrank/pitchrank/internal/usecase"
)

// promote drains staged observations into the production ledger, one batch
// per invocation. Schedulers re-run it until fetched comes back zero.
func main() {
	var (
		batchSize  = flag.Int("batch", 0, "observations per batch (0 uses PROMOTE_BATCH_SIZE)")
		maxWorkers = flag.Int("workers", 0, "resolution workers (0 uses PROMOTE_MAX_WORKERS)")
		dryRun     = flag.Bool("dry-run", false, "resolve and decide without writing")
		standings  = flag.Bool("standings", false, "promote staged standings instead of matches")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDB(cfg)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	services := app.BuildServices(cfg, db, logger)

	if *batchSize == 0 {
		*batchSize = cfg.PromoteBatchSize
	}
	if *maxWorkers == 0 {
		*maxWorkers = cfg.PromoteMaxWorkers
	}

	var result usecase.PromoteResult
	if *standings {
		result, err = services.Promotion.PromoteStandings(ctx, *batchSize, *dryRun)
	} else {
		result, err = services.Promotion.PromoteBatch(ctx, usecase.PromoteInput{
			BatchSize:  *batchSize,
			MaxWorkers: *maxWorkers,
			DryRun:     *dryRun,
		})
	}
	if err != nil {
		logger.Error("promotion failed", "error", err)
		os.Exit(1)
	}

	logger.Info("promotion finished",
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"rejected", result.Rejected,
		"unlinked", result.Unlinked,
		"transient", result.Transient,
		"dry_run", result.DryRun,
	)
}
