package repository

import (
	"context"
	"errors"
	"fmt"

	"bigleague/stats/internal/models"

	"github.com/jackc/pgx/v5"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *Database
}

// Upsert inserts or updates a user
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, avatar)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			avatar = EXCLUDED.avatar
	`

	if _, err := r.db.exec(ctx, "upsert", "users", query, user.ID, user.Name, user.Avatar); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by its Sleeper id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, name, COALESCE(avatar, '')
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&user.ID, &user.Name, &user.Avatar)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user not found: id=%s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// Count returns the number of stored users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
