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

// RosterRepository handles roster database operations
type RosterRepository struct {
	db *Database
}

// Upsert inserts or updates a roster keyed by (league_id, user_id)
func (r *RosterRepository) Upsert(ctx context.Context, roster *models.Roster) error {
	query := `
		INSERT INTO rosters (
			user_id, league_id, wins, losses, ties, fpts, fpts_decimal,
			fpts_against, fpts_against_decimal, roster_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (league_id, user_id) DO UPDATE SET
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			ties = EXCLUDED.ties,
			fpts = EXCLUDED.fpts,
			fpts_decimal = EXCLUDED.fpts_decimal,
			fpts_against = EXCLUDED.fpts_against,
			fpts_against_decimal = EXCLUDED.fpts_against_decimal,
			roster_id = EXCLUDED.roster_id
	`

	_, err := r.db.exec(ctx, "upsert", "rosters", query,
		roster.UserID, roster.LeagueID, roster.Wins, roster.Losses, roster.Ties,
		roster.Fpts, roster.FptsDecimal, roster.FptsAgainst, roster.FptsAgainstDecimal,
		roster.RosterID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert roster: %w", err)
	}

	log.Debug().
		Str("league_id", roster.LeagueID).
		Str("user_id", roster.UserID).
		Int("roster_id", roster.RosterID).
		Msg("Roster upserted")

	return nil
}

// Get retrieves one roster
func (r *RosterRepository) Get(ctx context.Context, leagueID, userID string) (*models.Roster, error) {
	query := `
		SELECT user_id, league_id, roster_id, wins, losses, ties, fpts, fpts_decimal,
		       fpts_against, fpts_against_decimal
		FROM rosters
		WHERE league_id = $1 AND user_id = $2
	`

	var roster models.Roster
	err := r.db.Pool.QueryRow(ctx, query, leagueID, userID).Scan(
		&roster.UserID, &roster.LeagueID, &roster.RosterID,
		&roster.Wins, &roster.Losses, &roster.Ties,
		&roster.Fpts, &roster.FptsDecimal, &roster.FptsAgainst, &roster.FptsAgainstDecimal,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("roster not found: league_id=%s user_id=%s", leagueID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roster: %w", err)
	}

	return &roster, nil
}

// SeatMap maps a league's roster_id seats to their owning user ids
func (r *RosterRepository) SeatMap(ctx context.Context, leagueID string) (map[int]string, error) {
	start := time.Now()
	rows, err := r.db.Pool.Query(ctx, `SELECT roster_id, user_id FROM rosters WHERE league_id = $1`, leagueID)
	if err != nil {
		observe("select", "rosters", start, err)
		return nil, fmt.Errorf("failed to query seat map: %w", err)
	}
	defer rows.Close()

	seats := make(map[int]string)
	for rows.Next() {
		var seat int
		var userID string
		if err := rows.Scan(&seat, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats[seat] = userID
	}

	err = rows.Err()
	observe("select", "rosters", start, err)
	if err != nil {
		return nil, fmt.Errorf("error iterating seats: %w", err)
	}

	return seats, nil
}

// OwnershipRepository handles roster composition
type OwnershipRepository struct {
	db *Database
}

// Upsert inserts or updates an ownership row keyed by (user_id, league_id, player_id)
func (r *OwnershipRepository) Upsert(ctx context.Context, o *models.Ownership) error {
	query := `
		INSERT INTO ownership (user_id, league_id, player_id, starter)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, league_id, player_id) DO UPDATE SET
			starter = EXCLUDED.starter
	`

	if _, err := r.db.exec(ctx, "upsert", "ownership", query, o.UserID, o.LeagueID, o.PlayerID, o.Starter); err != nil {
		return fmt.Errorf("failed to upsert ownership: %w", err)
	}

	return nil
}

// ListForRoster returns the ownership rows of one roster ordered by player id
func (r *OwnershipRepository) ListForRoster(ctx context.Context, leagueID, userID string) ([]*models.Ownership, error) {
	query := `
		SELECT user_id, league_id, player_id, starter
		FROM ownership
		WHERE league_id = $1 AND user_id = $2
		ORDER BY player_id
	`

	rows, err := r.db.Pool.Query(ctx, query, leagueID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ownership: %w", err)
	}
	defer rows.Close()

	var owned []*models.Ownership
	for rows.Next() {
		var o models.Ownership
		if err := rows.Scan(&o.UserID, &o.LeagueID, &o.PlayerID, &o.Starter); err != nil {
			return nil, fmt.Errorf("failed to scan ownership: %w", err)
		}
		owned = append(owned, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ownership: %w", err)
	}

	return owned, nil
}
