package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pitchrank/pitchrank/internal/app"
	"github.com/pitchrank/pitchrank/internal/config"
	"github.com/pitchrank/pitchrank/internal/domain/pipeline"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
	"github.com/pitchrank/pitchrank/internal/usecase"
)

// repair runs one surgical data fix per invocation. Every subcommand is a
// dry run unless -confirm and -actor are both given.
func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

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

	report, err := runSubcommand(ctx, services.Repair, os.Args[1], os.Args[2:])
	if err != nil {
		logger.Error("repair failed", "operation", os.Args[1], "error", err)
		os.Exit(1)
	}

	logger.Info("repair finished",
		"operation", report.Operation,
		"dry_run", report.DryRun,
		"matches_moved", report.MatchesMoved,
		"matches_deleted", report.MatchesDeleted,
		"mappings_updated", report.MappingsUpdated,
		"entities_deleted", report.EntitiesDeleted,
		"teams_deleted", report.TeamsDeleted,
		"stats_repaired", report.StatsRepaired,
		"skipped_missing", report.SkippedMissing,
		"conflicts", report.Conflicts,
	)
	for _, sample := range report.Samples {
		logger.Info("repair sample", "detail", sample)
	}
}

func runSubcommand(ctx context.Context, repair *usecase.RepairService, name string, args []string) (usecase.RepairReport, error) {
	switch name {
	case "reclassify":
		fs := flag.NewFlagSet("reclassify", flag.ExitOnError)
		platform := fs.String("platform", "", "source platform of the event")
		eventID := fs.String("event", "", "provider-native event id")
		fromKind := fs.String("from", "", "current kind (league or tournament)")
		toKind := fs.String("to", "", "target kind (league or tournament)")
		confirm, actor := confirmFlags(fs)
		_ = fs.Parse(args)

		return repair.ReclassifyEventKind(ctx, usecase.ReclassifyEventInput{
			SourcePlatform: *platform,
			SourceEventID:  *eventID,
			FromKind:       *fromKind,
			ToKind:         *toKind,
			Auth:           authFromFlags(*confirm, *actor),
		})

	case "relink":
		fs := flag.NewFlagSet("relink", flag.ExitOnError)
		wrong := fs.String("wrong", "", "team id whose matches are misassigned")
		correct := fs.String("correct", "", "team id the matches belong to")
		platform := fs.String("platform", "", "only move matches from this source platform")
		confirm, actor := confirmFlags(fs)
		_ = fs.Parse(args)

		return repair.RelinkMisassignedTeam(ctx, usecase.RelinkTeamInput{
			WrongTeamID:    *wrong,
			CorrectTeamID:  *correct,
			SourcePlatform: *platform,
			Auth:           authFromFlags(*confirm, *actor),
		})

	case "recompute":
		fs := flag.NewFlagSet("recompute", flag.ExitOnError)
		confirm, actor := confirmFlags(fs)
		_ = fs.Parse(args)

		return repair.RecomputeTeamAggregates(ctx, authFromFlags(*confirm, *actor))

	case "backfill":
		fs := flag.NewFlagSet("backfill", flag.ExitOnError)
		confirm, actor := confirmFlags(fs)
		_ = fs.Parse(args)

		return repair.BackfillFromLegacy(ctx, authFromFlags(*confirm, *actor))

	default:
		printUsage()
		return usecase.RepairReport{}, fmt.Errorf("unknown subcommand %q", name)
	}
}

func confirmFlags(fs *flag.FlagSet) (*bool, *string) {
	confirm := fs.Bool("confirm", false, "apply changes instead of a dry run")
	actor := fs.String("actor", "", "who is running the repair (required with -confirm)")
	return confirm, actor
}

func authFromFlags(confirm bool, actor string) pipeline.WriteAuthorization {
	if confirm && actor != "" {
		return pipeline.AuthorizeWrites(actor)
	}
	return pipeline.ReadOnly()
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: repair <subcommand> [flags]

subcommands:
  reclassify  move an event between league and tournament kinds
  relink      re-point matches from a misassigned team onto the correct one
  recompute   repair cached per-team match counts from the ledger
  backfill    import legacy provider-id links into the registry

every subcommand is a dry run unless -confirm and -actor are both set`)
}
