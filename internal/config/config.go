package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Sync modes
const (
	SyncModeSerial   = "serial"
	SyncModeParallel = "parallel"
)

// Config holds all application configuration
type Config struct {
	// Sleeper API
	SleeperBaseURL    string        `envconfig:"SLEEPER_BASE_URL" default:"https://api.sleeper.app/v1"`
	SleeperTimeout    time.Duration `envconfig:"SLEEPER_TIMEOUT" default:"30s"`
	SleeperMaxRetries int           `envconfig:"SLEEPER_MAX_RETRIES" default:"3"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"bigleague"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"bigleague"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"8"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	ConfigFile string `envconfig:"CONFIG_FILE" default:""`

	// Data sources
	DevMode     bool     `envconfig:"DEV_MODE" default:"false"`
	PlayersFile string   `envconfig:"PLAYERS_FILE" default:"players.json"`
	Leagues     []string `envconfig:"LEAGUES"`

	// Sync intervals
	RostersInterval  time.Duration `envconfig:"ROSTERS_INTERVAL" default:"5m"`
	UsersInterval    time.Duration `envconfig:"USERS_INTERVAL" default:"1h"`
	LeaguesInterval  time.Duration `envconfig:"LEAGUES_INTERVAL" default:"1h"`
	PlayersInterval  time.Duration `envconfig:"PLAYERS_INTERVAL" default:"24h"`
	StateInterval    time.Duration `envconfig:"STATE_INTERVAL" default:"10m"`
	MatchupsInterval time.Duration `envconfig:"MATCHUPS_INTERVAL" default:"2m"`

	// Scheduler
	InitialSyncEnabled    bool          `envconfig:"INITIAL_SYNC_ENABLED" default:"true"`
	SyncMode              string        `envconfig:"SYNC_MODE" default:"serial"`
	TaskTimeout           time.Duration `envconfig:"TASK_TIMEOUT" default:"5m"`
	PlayersRefreshCron    string        `envconfig:"PLAYERS_REFRESH_CRON" default:""`
	MatchupsLookbackWeeks int           `envconfig:"MATCHUPS_LOOKBACK_WEEKS" default:"1"`

	// Playoffs
	PlayoffsStartWeek        int `envconfig:"PLAYOFFS_START_WEEK" default:"15"`
	PlayoffsChampionshipWeek int `envconfig:"PLAYOFFS_CHAMPIONSHIP_WEEK" default:"17"`
	PlayoffsBids             int `envconfig:"PLAYOFFS_BIDS" default:"8"`

	// Caching
	CacheTTLBracket time.Duration `envconfig:"CACHE_TTL_BRACKET" default:"60s"`

	// Monitoring
	MetricsPort        int      `envconfig:"METRICS_PORT" default:"9090"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// fileConfig mirrors the optional YAML file. Only league membership and
// playoff parameters can be set there.
type fileConfig struct {
	Leagues  []string `yaml:"leagues"`
	Playoffs struct {
		StartWeek        *int `yaml:"start_week"`
		ChampionshipWeek *int `yaml:"championship_week"`
		AtLarge          struct {
			Bids *int `yaml:"bids"`
		} `yaml:"at_large"`
	} `yaml:"playoffs"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if cfg.ConfigFile != "" {
		if err := cfg.applyFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyFile overlays values from a YAML file onto c
func (c *Config) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if len(fc.Leagues) > 0 {
		c.Leagues = fc.Leagues
	}
	if fc.Playoffs.StartWeek != nil {
		c.PlayoffsStartWeek = *fc.Playoffs.StartWeek
	}
	if fc.Playoffs.ChampionshipWeek != nil {
		c.PlayoffsChampionshipWeek = *fc.Playoffs.ChampionshipWeek
	}
	if fc.Playoffs.AtLarge.Bids != nil {
		c.PlayoffsBids = *fc.Playoffs.AtLarge.Bids
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	c.Leagues = cleanLeagues(c.Leagues)
	if len(c.Leagues) == 0 {
		return fmt.Errorf("at least one league is required (LEAGUES or config file)")
	}

	intervals := map[string]time.Duration{
		"ROSTERS_INTERVAL":  c.RostersInterval,
		"USERS_INTERVAL":    c.UsersInterval,
		"LEAGUES_INTERVAL":  c.LeaguesInterval,
		"PLAYERS_INTERVAL":  c.PlayersInterval,
		"STATE_INTERVAL":    c.StateInterval,
		"MATCHUPS_INTERVAL": c.MatchupsInterval,
	}
	for name, d := range intervals {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}

	if c.TaskTimeout <= 0 {
		return fmt.Errorf("TASK_TIMEOUT must be positive, got %s", c.TaskTimeout)
	}

	if c.SyncMode != SyncModeSerial && c.SyncMode != SyncModeParallel {
		return fmt.Errorf("SYNC_MODE must be %q or %q, got %q", SyncModeSerial, SyncModeParallel, c.SyncMode)
	}

	if c.MatchupsLookbackWeeks < 0 {
		return fmt.Errorf("MATCHUPS_LOOKBACK_WEEKS must not be negative")
	}

	if c.PlayoffsBids < 2 || c.PlayoffsBids%2 != 0 {
		return fmt.Errorf("playoff bids must be an even number >= 2, got %d", c.PlayoffsBids)
	}

	if c.PlayoffsStartWeek > c.PlayoffsChampionshipWeek {
		return fmt.Errorf("playoff start week %d is after championship week %d",
			c.PlayoffsStartWeek, c.PlayoffsChampionshipWeek)
	}

	if c.DevMode && c.PlayersFile == "" {
		return fmt.Errorf("PLAYERS_FILE is required when DEV_MODE is set")
	}

	return nil
}

func cleanLeagues(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
