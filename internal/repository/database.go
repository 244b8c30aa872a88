package repository

import (
	"context"
	"fmt"
	"time"

	"bigleague/stats/internal/metrics"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Database holds the database connection pool and provides access to repositories
type Database struct {
	Pool *pgxpool.Pool

	// Repositories
	Leagues   *LeagueRepository
	Users     *UserRepository
	Rosters   *RosterRepository
	Ownership *OwnershipRepository
	Players   *PlayerRepository
	State     *StateRepository
	Matchups  *MatchupRepository
	Scores    *ScoreRepository
	Ranks     *RankRepository
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// DSN returns the PostgreSQL connection string
func (c Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

// NewDatabase creates a new database connection pool and initializes repositories
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	db, err := Connect(ctx, cfg.DSN(), cfg.MaxConns)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Successfully connected to database")

	return db, nil
}

// Connect opens a pool for dsn. maxConns <= 0 keeps the pgx default.
func Connect(ctx context.Context, dsn string, maxConns int32) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Set pool configuration
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newDatabase(pool), nil
}

func newDatabase(pool *pgxpool.Pool) *Database {
	db := &Database{
		Pool: pool,
	}

	db.Leagues = &LeagueRepository{db: db}
	db.Users = &UserRepository{db: db}
	db.Rosters = &RosterRepository{db: db}
	db.Ownership = &OwnershipRepository{db: db}
	db.Players = &PlayerRepository{db: db}
	db.State = &StateRepository{db: db}
	db.Matchups = &MatchupRepository{db: db}
	db.Scores = &ScoreRepository{db: db}
	db.Ranks = &RankRepository{db: db}

	return db
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// PoolStats returns database pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	metrics.UpdateDBConnectionStats(stat.AcquiredConns(), stat.IdleConns())
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}

// exec runs a write statement and records its metrics
func (db *Database) exec(ctx context.Context, operation, table, query string, args ...any) (pgconn.CommandTag, error) {
	start := time.Now()
	tag, err := db.Pool.Exec(ctx, query, args...)
	observe(operation, table, start, err)
	return tag, err
}

func observe(operation, table string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordDBQuery(operation, table, status, time.Since(start).Seconds())
}
