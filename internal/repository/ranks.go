package repository

import (
	"context"
	"fmt"
	"time"

	"bigleague/stats/internal/models"

	"github.com/jackc/pgx/v5"
)

// RankRepository reads the ranks view
type RankRepository struct {
	db *Database
}

// Standings returns every ranked roster with its record, best first
func (r *RankRepository) Standings(ctx context.Context) ([]*models.Standing, error) {
	query := `
		SELECT ranks.rank,
			ranks.league_id,
			ranks.user_id,
			users.name,
			rosters.wins,
			rosters.losses,
			rosters.ties,
			rosters.fpts + rosters.fpts_decimal / 100.0,
			rosters.fpts_against + rosters.fpts_against_decimal / 100.0
		FROM ranks
		JOIN rosters ON rosters.league_id = ranks.league_id AND rosters.user_id = ranks.user_id
		JOIN users ON users.id = ranks.user_id
		ORDER BY ranks.rank ASC
	`

	start := time.Now()
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		observe("select", "ranks", start, err)
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}

	standings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Standing, error) {
		var s models.Standing
		err := row.Scan(&s.Rank, &s.LeagueID, &s.UserID, &s.User,
			&s.Wins, &s.Losses, &s.Ties, &s.PointsFor, &s.PointsAgainst)
		return &s, err
	})
	observe("select", "ranks", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to scan standings: %w", err)
	}

	return standings, nil
}

// Top returns the n best ranked teams as playoff seeds for week.
// Points are left at zero.
func (r *RankRepository) Top(ctx context.Context, n, week int) ([]models.PlayoffTeam, error) {
	query := `
		SELECT ranks.rank, users.id, users.name
		FROM ranks
		JOIN users ON users.id = ranks.user_id
		WHERE ranks.rank <= $1
		ORDER BY ranks.rank ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query top ranks: %w", err)
	}

	teams, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PlayoffTeam, error) {
		t := models.PlayoffTeam{Week: week}
		err := row.Scan(&t.Rank, &t.UserID, &t.User)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan top ranks: %w", err)
	}

	return teams, nil
}

// PlayoffWeeks returns the weekly points of the top bids ranks for every
// week of season from startWeek on, ordered by week then rank.
func (r *RankRepository) PlayoffWeeks(ctx context.Context, season, startWeek, bids int) ([]models.PlayoffTeam, error) {
	query := `
		SELECT DISTINCT ON (matchups.week, ranks.rank)
			matchups.week,
			ranks.rank,
			users.id,
			users.name,
			matchups.points
		FROM matchups
		JOIN ranks ON ranks.league_id = matchups.league_id AND ranks.user_id = matchups.user_id
		JOIN users ON users.id = matchups.user_id
		WHERE matchups.week >= $1
			AND matchups.season = $2
			AND ranks.rank <= $3
		ORDER BY matchups.week ASC, ranks.rank ASC, matchups.opponent_id ASC
	`

	start := time.Now()
	rows, err := r.db.Pool.Query(ctx, query, startWeek, season, bids)
	if err != nil {
		observe("select", "matchups", start, err)
		return nil, fmt.Errorf("failed to query playoff weeks: %w", err)
	}

	weeks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PlayoffTeam, error) {
		var t models.PlayoffTeam
		var points float32
		err := row.Scan(&t.Week, &t.Rank, &t.UserID, &t.User, &points)
		t.Points = float64(points)
		return t, err
	})
	observe("select", "matchups", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to scan playoff weeks: %w", err)
	}

	return weeks, nil
}
