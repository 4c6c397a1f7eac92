package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/importer"
	"github.com/claude/liftlog/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	legacyPath := flag.String("path", "", "path to the app's SQLite database export (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *legacyPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml -path /path/to/SQLite.db [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	// Open source and destination
	src, err := storage.OpenLegacy(ctx, *legacyPath, log)
	if err != nil {
		log.Error("failed to open app database", "path", *legacyPath, "error", err)
		os.Exit(1)
	}
	defer src.Close()

	db, err := storage.Open(ctx, storage.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN(),
		MigrationURL: cfg.Database.MigrationURL(),
	}, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var logID int64
	if !*dryRun {
		logID, err = db.InsertImportLog(ctx, storage.ImportLog{Source: *legacyPath, Status: storage.ImportRunning})
		if err != nil {
			log.Warn("failed to create import log", "error", err)
		}
	}

	// Run import
	start := time.Now()
	imp := importer.New(db, log, *dryRun)
	stats, err := imp.Import(ctx, src)
	if logID != 0 {
		finishLog(ctx, db, logID, stats, time.Since(start), err, log)
	}
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func finishLog(ctx context.Context, db *storage.DB, id int64, stats *importer.Stats, elapsed time.Duration, importErr error, log *slog.Logger) {
	ms := int(elapsed.Milliseconds())
	entry := storage.ImportLog{
		Status:           storage.ImportSuccess,
		PlansRead:        stats.PlansRead,
		PlansInserted:    stats.PlansInserted,
		WorkoutsRead:     stats.WorkoutsRead,
		WorkoutsInserted: stats.WorkoutsInserted,
		DurationMs:       &ms,
	}
	if importErr != nil {
		msg := importErr.Error()
		entry.Status = storage.ImportError
		entry.ErrorMessage = &msg
	}
	if err := db.UpdateImportLog(ctx, id, entry); err != nil {
		log.Warn("failed to update import log", "id", id, "error", err)
	}
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"plans_read", stats.PlansRead,
		"plans_inserted", stats.PlansInserted,
		"plans_duplicated", stats.PlansDuplicated,
		"workouts_read", stats.WorkoutsRead,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_duplicated", stats.WorkoutsDuplicated,
		"invalid", stats.Invalid,
	)
}
