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

// playerBatchSize bounds the statements queued per round trip
const playerBatchSize = 500

const upsertPlayerQuery = `
	INSERT INTO players (id, first_name, last_name, team, position, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		team = EXCLUDED.team,
		position = EXCLUDED.position,
		status = EXCLUDED.status
`

// PlayerRepository handles player catalog operations
type PlayerRepository struct {
	db *Database
}

// Upsert inserts or updates a single player
func (r *PlayerRepository) Upsert(ctx context.Context, p *models.Player) error {
	_, err := r.db.exec(ctx, "upsert", "players", upsertPlayerQuery,
		p.ID, p.FirstName, p.LastName, p.Team, p.Position, p.Status)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}
	return nil
}

// UpsertBatch upserts players in chunks of playerBatchSize, one round trip
// per chunk. It returns the number of rows written before any error.
func (r *PlayerRepository) UpsertBatch(ctx context.Context, players []*models.Player) (int, error) {
	written := 0
	for lo := 0; lo < len(players); lo += playerBatchSize {
		hi := min(lo+playerBatchSize, len(players))

		n, err := r.sendBatch(ctx, players[lo:hi])
		written += n
		if err != nil {
			return written, err
		}

		log.Debug().
			Int("batch_start", lo).
			Int("batch_size", hi-lo).
			Msg("Player batch upserted")
	}
	return written, nil
}

func (r *PlayerRepository) sendBatch(ctx context.Context, chunk []*models.Player) (n int, err error) {
	start := time.Now()
	defer func() { observe("upsert_batch", "players", start, err) }()

	batch := &pgx.Batch{}
	for _, p := range chunk {
		batch.Queue(upsertPlayerQuery, p.ID, p.FirstName, p.LastName, p.Team, p.Position, p.Status)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, p := range chunk {
		if _, err := br.Exec(); err != nil {
			return n, fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
		n++
	}
	return n, nil
}

// GetByID retrieves a player
func (r *PlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	query := `
		SELECT id, first_name, last_name, COALESCE(team, ''), COALESCE(position, ''), COALESCE(status, '')
		FROM players
		WHERE id = $1
	`

	var p models.Player
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Team, &p.Position, &p.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("player not found: id=%s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return &p, nil
}
