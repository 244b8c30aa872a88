package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bigleague/stats/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// LeagueRepository handles league database operations
type LeagueRepository struct {
	db *Database
}

// Upsert inserts or updates a league
func (r *LeagueRepository) Upsert(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues (id, name, avatar)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			avatar = EXCLUDED.avatar
	`

	if _, err := r.db.exec(ctx, "upsert", "leagues", query, league.ID, league.Name, league.Avatar); err != nil {
		return fmt.Errorf("failed to upsert league: %w", err)
	}

	log.Debug().
		Str("league_id", league.ID).
		Str("name", league.Name).
		Msg("League upserted")

	return nil
}

// GetByID retrieves a league by its Sleeper id
func (r *LeagueRepository) GetByID(ctx context.Context, id string) (*models.League, error) {
	query := `
		SELECT id, name, COALESCE(avatar, '')
		FROM leagues
		WHERE id = $1
	`

	var league models.League
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&league.ID, &league.Name, &league.Avatar)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("league not found: id=%s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}

	return &league, nil
}

// Count returns the number of stored leagues
func (r *LeagueRepository) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	var n int64
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM leagues`).Scan(&n)
	observe("count", "leagues", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count leagues: %w", err)
	}
	return n, nil
}
