// Package ingest holds the sync tasks that reconcile Sleeper data into the store.
package ingest

import (
	"context"
	"fmt"
	"time"

	"bigleague/stats/internal/models"
	"bigleague/stats/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Task names, also used as metric labels
const (
	TaskState    = "state"
	TaskLeagues  = "leagues"
	TaskUsers    = "users"
	TaskRosters  = "rosters"
	TaskPlayers  = "players"
	TaskMatchups = "matchups"
)

// InitialOrder runs tasks so that each one finds the rows it depends on
var InitialOrder = []string{TaskState, TaskLeagues, TaskUsers, TaskRosters, TaskPlayers, TaskMatchups}

// Upstream is the subset of the Sleeper client used by the sync tasks
type Upstream interface {
	FetchLeague(ctx context.Context, leagueID string) (*models.LeagueInput, error)
	FetchRosters(ctx context.Context, leagueID string) ([]models.RosterInput, error)
	FetchUsers(ctx context.Context, leagueID string) ([]models.UserInput, error)
	FetchPlayers(ctx context.Context) (map[string]models.PlayerInput, error)
	FetchState(ctx context.Context) (*models.SeasonStateInput, error)
	FetchMatchups(ctx context.Context, leagueID string, week int) ([]models.MatchupInput, error)
}

type LeagueStore interface {
	Upsert(ctx context.Context, league *models.League) error
}

type UserStore interface {
	Upsert(ctx context.Context, user *models.User) error
}

type RosterStore interface {
	Upsert(ctx context.Context, roster *models.Roster) error
	SeatMap(ctx context.Context, leagueID string) (map[int]string, error)
}

type OwnershipStore interface {
	Upsert(ctx context.Context, o *models.Ownership) error
}

type PlayerStore interface {
	UpsertBatch(ctx context.Context, players []*models.Player) (int, error)
}

type StateStore interface {
	Upsert(ctx context.Context, s *models.SeasonState) error
	Current(ctx context.Context) (*models.SeasonState, error)
}

type MatchupStore interface {
	Upsert(ctx context.Context, m *models.Matchup) error
}

type ScoreStore interface {
	Upsert(ctx context.Context, s *models.Score) error
}

// Store groups the reconciliation targets of every task
type Store struct {
	Leagues   LeagueStore
	Users     UserStore
	Rosters   RosterStore
	Ownership OwnershipStore
	Players   PlayerStore
	State     StateStore
	Matchups  MatchupStore
	Scores    ScoreStore
}

// StoreFor wires a Store to the postgres repositories
func StoreFor(db *repository.Database) Store {
	return Store{
		Leagues:   db.Leagues,
		Users:     db.Users,
		Rosters:   db.Rosters,
		Ownership: db.Ownership,
		Players:   db.Players,
		State:     db.State,
		Matchups:  db.Matchups,
		Scores:    db.Scores,
	}
}

// Guard grants a named lease for ttl. Acquire reports false while
// another holder's lease is still live.
type Guard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Options configures a Syncer
type Options struct {
	Leagues         []string
	DevMode         bool
	PlayersFile     string
	PlayersInterval time.Duration
	LookbackWeeks   int
}

// Syncer runs the sync tasks. Its methods are safe to call one at a time
// per task; the store's upserts make concurrent tasks last-writer-wins.
type Syncer struct {
	client Upstream
	store  Store
	opts   Options
	guard  Guard
}

// NewSyncer creates a Syncer
func NewSyncer(client Upstream, store Store, opts Options) *Syncer {
	return &Syncer{
		client: client,
		store:  store,
		opts:   opts,
	}
}

// WithGuard rate-limits the players task through g
func (s *Syncer) WithGuard(g Guard) *Syncer {
	s.guard = g
	return s
}

// Funcs returns every task keyed by name
func (s *Syncer) Funcs() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		TaskState:    s.SyncState,
		TaskLeagues:  s.SyncLeagues,
		TaskUsers:    s.SyncUsers,
		TaskRosters:  s.SyncRosters,
		TaskPlayers:  s.SyncPlayers,
		TaskMatchups: s.SyncMatchups,
	}
}

// Run runs the named task once
func (s *Syncer) Run(ctx context.Context, name string) error {
	fn, ok := s.Funcs()[name]
	if !ok {
		return fmt.Errorf("unknown sync task %q", name)
	}
	return fn(ctx)
}

// logger returns the run-scoped logger if the scheduler attached one
func logger(ctx context.Context) *zerolog.Logger {
	if l := log.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

// saveErrors aggregates per-record failures into one task error
func saveErrors(kind string, failed, total int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("failed to save %d of %d %s", failed, total, kind)
}
