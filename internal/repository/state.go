package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bigleague/stats/internal/models"

	"github.com/jackc/pgx/v5"
)

// ErrNoSeasonState is returned by Current before the state task has run
var ErrNoSeasonState = errors.New("no season state stored")

// StateRepository handles the NFL season state
type StateRepository struct {
	db *Database
}

// Upsert inserts or updates a state row keyed by (season, week)
func (r *StateRepository) Upsert(ctx context.Context, s *models.SeasonState) error {
	query := `
		INSERT INTO state (season, week, league_season, display_week, season_type)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (season, week) DO UPDATE SET
			league_season = EXCLUDED.league_season,
			display_week = EXCLUDED.display_week,
			season_type = EXCLUDED.season_type
	`

	_, err := r.db.exec(ctx, "upsert", "state", query,
		s.Season, s.Week, s.LeagueSeason, s.DisplayWeek, s.SeasonType)
	if err != nil {
		return fmt.Errorf("failed to upsert state: %w", err)
	}

	return nil
}

// Current returns the latest (season, week) row
func (r *StateRepository) Current(ctx context.Context) (*models.SeasonState, error) {
	query := `
		SELECT season, week, league_season, display_week, season_type
		FROM state
		ORDER BY season DESC, week DESC
		LIMIT 1
	`

	start := time.Now()
	var s models.SeasonState
	err := r.db.Pool.QueryRow(ctx, query).Scan(&s.Season, &s.Week, &s.LeagueSeason, &s.DisplayWeek, &s.SeasonType)
	if errors.Is(err, pgx.ErrNoRows) {
		observe("select", "state", start, nil)
		return nil, ErrNoSeasonState
	}
	observe("select", "state", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get current state: %w", err)
	}

	return &s, nil
}
