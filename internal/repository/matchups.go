package repository

import (
	"context"
	"fmt"

	"bigleague/stats/internal/models"
)

// MatchupRepository handles head-to-head results
type MatchupRepository struct {
	db *Database
}

// Upsert inserts or updates a matchup row keyed by
// (season, week, league_id, user_id, opponent_id)
func (r *MatchupRepository) Upsert(ctx context.Context, m *models.Matchup) error {
	query := `
		INSERT INTO matchups (season, week, league_id, user_id, opponent_id, points)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (season, week, league_id, user_id, opponent_id) DO UPDATE SET
			points = EXCLUDED.points
	`

	_, err := r.db.exec(ctx, "upsert", "matchups", query,
		m.Season, m.Week, m.LeagueID, m.UserID, m.OpponentID, m.Points)
	if err != nil {
		return fmt.Errorf("failed to upsert matchup: %w", err)
	}

	return nil
}

// ListWeek returns one league week's matchups ordered by user
func (r *MatchupRepository) ListWeek(ctx context.Context, season, week int, leagueID string) ([]*models.Matchup, error) {
	query := `
		SELECT season, week, league_id, user_id, opponent_id, points
		FROM matchups
		WHERE season = $1 AND week = $2 AND league_id = $3
		ORDER BY user_id, opponent_id
	`

	rows, err := r.db.Pool.Query(ctx, query, season, week, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matchups: %w", err)
	}
	defer rows.Close()

	var matchups []*models.Matchup
	for rows.Next() {
		var m models.Matchup
		var points float32
		if err := rows.Scan(&m.Season, &m.Week, &m.LeagueID, &m.UserID, &m.OpponentID, &points); err != nil {
			return nil, fmt.Errorf("failed to scan matchup: %w", err)
		}
		m.Points = float64(points)
		matchups = append(matchups, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matchups: %w", err)
	}

	return matchups, nil
}

// ScoreRepository handles per-player weekly points
type ScoreRepository struct {
	db *Database
}

// Upsert inserts or updates a score keyed by (player_id, league_id, season, week)
func (r *ScoreRepository) Upsert(ctx context.Context, s *models.Score) error {
	query := `
		INSERT INTO scores (player_id, league_id, season, week, points)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id, league_id, season, week) DO UPDATE SET
			points = EXCLUDED.points
	`

	_, err := r.db.exec(ctx, "upsert", "scores", query, s.PlayerID, s.LeagueID, s.Season, s.Week, s.Points)
	if err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}

	return nil
}

// Get returns one player's points for a league week
func (r *ScoreRepository) Get(ctx context.Context, playerID, leagueID string, season, week int) (float64, error) {
	query := `
		SELECT points
		FROM scores
		WHERE player_id = $1 AND league_id = $2 AND season = $3 AND week = $4
	`

	var points float32
	if err := r.db.Pool.QueryRow(ctx, query, playerID, leagueID, season, week).Scan(&points); err != nil {
		return 0, fmt.Errorf("failed to get score: %w", err)
	}
	return float64(points), nil
}

// Count returns the number of score rows for a league week
func (r *ScoreRepository) Count(ctx context.Context, leagueID string, season, week int) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM scores WHERE league_id = $1 AND season = $2 AND week = $3`,
		leagueID, season, week,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count scores: %w", err)
	}
	return n, nil
}
