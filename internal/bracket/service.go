package bracket

import (
	"context"
	"fmt"
	"time"

	"bigleague/stats/internal/metrics"
	"bigleague/stats/internal/models"

	"github.com/rs/zerolog/log"
)

type StateReader interface {
	Current(ctx context.Context) (*models.SeasonState, error)
}

type RankReader interface {
	Top(ctx context.Context, n, week int) ([]models.PlayoffTeam, error)
	PlayoffWeeks(ctx context.Context, season, startWeek, bids int) ([]models.PlayoffTeam, error)
}

// Cache is optional; a nil Cache disables caching
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// Options holds the playoff parameters
type Options struct {
	StartWeek int
	ChampWeek int
	Bids      int
	CacheTTL  time.Duration
}

// Service loads bracket inputs from the store and resolves them
type Service struct {
	state StateReader
	ranks RankReader
	cache Cache
	opts  Options
}

// NewService creates a Service. cache may be nil.
func NewService(state StateReader, ranks RankReader, cache Cache, opts Options) *Service {
	return &Service{
		state: state,
		ranks: ranks,
		cache: cache,
		opts:  opts,
	}
}

// Bracket returns the bracket as of the current season week. An
// unresolvable bracket is returned with empty stages, not as an error.
func (s *Service) Bracket(ctx context.Context) (*models.Bracket, error) {
	state, err := s.state.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load season state: %w", err)
	}

	key := fmt.Sprintf("bigleague:bracket:%d:%d", state.Season, state.Week)
	if s.cache != nil {
		var cached models.Bracket
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Bracket cache read failed")
		} else if ok {
			return &cached, nil
		}
	}

	seeds, err := s.ranks.Top(ctx, s.opts.Bids, s.opts.StartWeek)
	if err != nil {
		return nil, err
	}
	rows, err := s.ranks.PlayoffWeeks(ctx, state.Season, s.opts.StartWeek, s.opts.Bids)
	if err != nil {
		return nil, err
	}

	b := Build(seeds, Samples(rows), s.opts.StartWeek, s.opts.ChampWeek, state.Week)
	metrics.RecordBracketResolution(b.Resolved())
	if !b.Resolved() {
		log.Error().
			Int("season", state.Season).
			Int("week", state.Week).
			Int("seeds", len(seeds)).
			Int("samples", len(rows)).
			Msg("Bracket could not be resolved, playoff scores are missing")
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, b, s.opts.CacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Bracket cache write failed")
		}
	}

	return b, nil
}
