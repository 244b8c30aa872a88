package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"bigleague/stats/internal/api"
	"bigleague/stats/internal/bracket"
	"bigleague/stats/internal/cache"
	"bigleague/stats/internal/client"
	"bigleague/stats/internal/config"
	"bigleague/stats/internal/ingest"
	"bigleague/stats/internal/metrics"
	"bigleague/stats/internal/repository"
	"bigleague/stats/internal/scheduler"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting Big League sync worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Strs("leagues", cfg.Leagues).
		Str("sync_mode", cfg.SyncMode).
		Bool("dev_mode", cfg.DevMode).
		Msg("Configuration loaded")

	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sleeper := client.NewClient(cfg.SleeperBaseURL, cfg.SleeperTimeout, cfg.SleeperMaxRetries)
	log.Info().Str("base_url", cfg.SleeperBaseURL).Msg("Sleeper client initialized")

	// Initialize database connection
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
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

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}
	log.Info().Msg("Database connection established")

	syncer := ingest.NewSyncer(sleeper, ingest.StoreFor(db), ingest.Options{
		Leagues:         cfg.Leagues,
		DevMode:         cfg.DevMode,
		PlayersFile:     cfg.PlayersFile,
		PlayersInterval: cfg.PlayersInterval,
		LookbackWeeks:   cfg.MatchupsLookbackWeeks,
	})

	// Redis is optional: without it the bracket is rebuilt per request and
	// the players refresh relies on its interval alone
	var bracketCache bracket.Cache
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer redisCache.Close()
		bracketCache = redisCache
		syncer.WithGuard(redisCache)
		log.Info().Msg("Redis cache connected")
	}

	sched, err := scheduler.NewScheduler(tasks(cfg, syncer), schedulerOptions(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}

	brackets := bracket.NewService(db.State, db.Ranks, bracketCache, bracket.Options{
		StartWeek: cfg.PlayoffsStartWeek,
		ChampWeek: cfg.PlayoffsChampionshipWeek,
		Bids:      cfg.PlayoffsBids,
		CacheTTL:  cfg.CacheTTLBracket,
	})

	server := api.NewServer(cfg.MetricsPort, api.Deps{
		DB:          db,
		Leagues:     db.Leagues,
		Standings:   db.Ranks,
		Bracket:     brackets,
		Sync:        sched,
		CORSOrigins: cfg.CORSAllowedOrigins,
	})
	go func() {
		if err := server.ListenAndServe(ctx); err != nil {
			log.Error().Err(err).Msg("Ops server failed")
		}
	}()

	go trackUptime(ctx, db)

	if err := sched.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Scheduler failed")
	}

	log.Info().Msg("Worker shutdown complete")
}

func tasks(cfg *config.Config, s *ingest.Syncer) []scheduler.Task {
	intervals := map[string]time.Duration{
		ingest.TaskState:    cfg.StateInterval,
		ingest.TaskLeagues:  cfg.LeaguesInterval,
		ingest.TaskUsers:    cfg.UsersInterval,
		ingest.TaskRosters:  cfg.RostersInterval,
		ingest.TaskPlayers:  cfg.PlayersInterval,
		ingest.TaskMatchups: cfg.MatchupsInterval,
	}

	funcs := s.Funcs()
	out := make([]scheduler.Task, 0, len(ingest.InitialOrder))
	for _, name := range ingest.InitialOrder {
		out = append(out, scheduler.Task{
			Name:     name,
			Interval: intervals[name],
			Run:      funcs[name],
		})
	}
	return out
}

func schedulerOptions(cfg *config.Config) scheduler.Options {
	opts := scheduler.Options{
		Mode:        cfg.SyncMode,
		TaskTimeout: cfg.TaskTimeout,
	}
	if cfg.InitialSyncEnabled {
		opts.InitialOrder = ingest.InitialOrder
	}
	if cfg.PlayersRefreshCron != "" {
		opts.Cron = map[string]string{ingest.TaskPlayers: cfg.PlayersRefreshCron}
	}
	return opts
}

// trackUptime updates the uptime gauge and pool stats every 10s
func trackUptime(ctx context.Context, db *repository.Database) {
	startTime := time.Now()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			db.PoolStats()
		case <-ctx.Done():
			return
		}
	}
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	// Contexts without a run logger fall back to the global one
	zerolog.DefaultContextLogger = &log.Logger

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}
