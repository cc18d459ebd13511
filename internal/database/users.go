package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// User represents an AutoMate account, keyed by the identity provider's subject.
type User struct {
	ID           uuid.UUID
	AuthID       string
	Email        string
	MonthlyLimit *int // overrides the default quota when set
	CreatedAt    time.Time
}

const userColumns = `id, auth_id, email, monthly_limit, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.AuthID, &u.Email, &u.MonthlyLimit, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser creates a new user.
func (db *DB) CreateUser(ctx context.Context, authID, email string) (*User, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO users (auth_id, email)
		 VALUES ($1, $2)
		 RETURNING `+userColumns,
		authID, email,
	)
	return scanUser(row)
}

// GetUserByAuthID retrieves a user by their identity provider subject.
func (db *DB) GetUserByAuthID(ctx context.Context, authID string) (*User, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE auth_id = $1`,
		authID,
	)
	return scanUser(row)
}

// GetUserByID retrieves a user by their ID.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

// GetOrCreateUser returns the user with the given subject, creating one if
// necessary. Concurrent first requests for the same subject are resolved by
// the unique constraint.
func (db *DB) GetOrCreateUser(ctx context.Context, authID, email string) (*User, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO users (auth_id, email)
		 VALUES ($1, $2)
		 ON CONFLICT (auth_id) DO UPDATE SET auth_id = EXCLUDED.auth_id
		 RETURNING `+userColumns,
		authID, email,
	)
	return scanUser(row)
}

// UpdateUserEmail updates a user's email.
func (db *DB) UpdateUserEmail(ctx context.Context, id uuid.UUID, email string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE users SET email = $1 WHERE id = $2`,
		email, id,
	)
	return err
}

// SetUserMonthlyLimit sets or, with nil, clears a per-user quota override.
func (db *DB) SetUserMonthlyLimit(ctx context.Context, id uuid.UUID, limit *int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE users SET monthly_limit = $1 WHERE id = $2`,
		limit, id,
	)
	return err
}

// DeleteUser deletes a user and, by cascade, their diagnoses.
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	return err
}
