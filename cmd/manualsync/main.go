// Command manualsync runs sync tasks once, outside the worker's schedule.
// With -task all every task runs in dependency order.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"bigleague/stats/internal/client"
	"bigleague/stats/internal/config"
	"bigleague/stats/internal/ingest"
	"bigleague/stats/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	task := flag.String("task", "all", fmt.Sprintf("task to run: all or one of %v", ingest.InitialOrder))
	timeout := flag.Duration("timeout", 10*time.Minute, "overall deadline")
	flag.Parse()

	if *task != "all" && !slices.Contains(ingest.InitialOrder, *task) {
		fmt.Fprintf(os.Stderr, "unknown task %q\n", *task)
		os.Exit(2)
	}

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
		MaxConns: cfg.DatabaseMaxConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// 1. Validate database connectivity and schema
	log.Info().Msg("Validating service health...")
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}
	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}

	// 2. Run the requested tasks. The players guard is left off so a manual
	// refresh always goes through.
	syncer := ingest.NewSyncer(
		client.NewClient(cfg.SleeperBaseURL, cfg.SleeperTimeout, cfg.SleeperMaxRetries),
		ingest.StoreFor(db),
		ingest.Options{
			Leagues:         cfg.Leagues,
			DevMode:         cfg.DevMode,
			PlayersFile:     cfg.PlayersFile,
			PlayersInterval: cfg.PlayersInterval,
			LookbackWeeks:   cfg.MatchupsLookbackWeeks,
		},
	)

	names := ingest.InitialOrder
	if *task != "all" {
		names = []string{*task}
	}

	successCount := 0
	failureCount := 0
	for _, name := range names {
		logger := log.With().Str("task", name).Str("run_id", uuid.NewString()).Logger()
		start := time.Now()

		if err := syncer.Run(logger.WithContext(ctx), name); err != nil {
			logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Task failed")
			failureCount++
			continue
		}
		logger.Info().Dur("duration", time.Since(start)).Msg("Task complete")
		successCount++
	}

	log.Info().Int("successful", successCount).Int("failed", failureCount).Msg("Manual sync complete.")
	if failureCount > 0 {
		os.Exit(1)
	}
}
