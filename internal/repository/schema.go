package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// schema is applied in order by Migrate. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS leagues (
		id varchar(64) PRIMARY KEY,
		name varchar(64) NOT NULL,
		avatar varchar(64)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id varchar(64) PRIMARY KEY,
		name varchar(64) NOT NULL,
		avatar varchar(64)
	)`,
	`CREATE TABLE IF NOT EXISTS rosters (
		user_id varchar(64) NOT NULL,
		league_id varchar(64) NOT NULL,
		wins integer NOT NULL,
		losses integer NOT NULL,
		ties integer NOT NULL,
		fpts integer NOT NULL,
		fpts_decimal integer NOT NULL,
		fpts_against integer NOT NULL,
		fpts_against_decimal integer NOT NULL,
		roster_id integer NOT NULL,
		PRIMARY KEY (league_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id varchar(64) PRIMARY KEY,
		first_name varchar(64) NOT NULL,
		last_name varchar(64) NOT NULL,
		team varchar(64),
		position varchar(64),
		status varchar(64)
	)`,
	`CREATE TABLE IF NOT EXISTS ownership (
		user_id varchar(64) NOT NULL,
		league_id varchar(64) NOT NULL,
		player_id varchar(64) NOT NULL,
		starter integer NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, league_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS state (
		season integer NOT NULL,
		week integer NOT NULL,
		league_season integer NOT NULL,
		display_week integer NOT NULL,
		season_type varchar(64) NOT NULL,
		PRIMARY KEY (season, week)
	)`,
	`CREATE TABLE IF NOT EXISTS matchups (
		season integer NOT NULL,
		week integer NOT NULL,
		league_id varchar(64) NOT NULL,
		user_id varchar(64) NOT NULL,
		opponent_id varchar(64) NOT NULL,
		points real NOT NULL,
		PRIMARY KEY (season, week, league_id, user_id, opponent_id)
	)`,
	`CREATE TABLE IF NOT EXISTS scores (
		player_id varchar(64) NOT NULL,
		league_id varchar(64) NOT NULL,
		season integer NOT NULL,
		week integer NOT NULL,
		points real NOT NULL,
		PRIMARY KEY (player_id, league_id, season, week)
	)`,
	// Combined standings across every synced league. The trailing
	// league_id, user_id keys keep full ties stable.
	`CREATE OR REPLACE VIEW ranks AS
		SELECT rosters.league_id,
			rosters.user_id,
			ROW_NUMBER() OVER (
				ORDER BY wins DESC, fpts DESC, fpts_decimal DESC,
					fpts_against DESC, fpts_against_decimal DESC,
					rosters.league_id ASC, rosters.user_id ASC
			) AS rank
		FROM rosters
		JOIN users ON users.id = rosters.user_id`,
	`CREATE OR REPLACE VIEW league_ranks AS
		SELECT rosters.league_id,
			rosters.user_id,
			ROW_NUMBER() OVER (
				PARTITION BY rosters.league_id
				ORDER BY wins DESC, fpts DESC, fpts_decimal DESC,
					fpts_against DESC, fpts_against_decimal DESC,
					rosters.user_id ASC
			) AS rank
		FROM rosters
		JOIN users ON users.id = rosters.user_id`,
}

// Migrate creates the tables and views used by the sync worker
func (db *Database) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.exec(ctx, "migrate", "schema", stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}

	log.Info().Int("statements", len(schema)).Msg("Database schema is up to date")
	return nil
}
