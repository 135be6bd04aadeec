package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"user-registry/internal/domain"
	"user-registry/internal/repository"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		password TEXT NOT NULL,
		email TEXT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	// Tables created by earlier deployments only carry id, username and password.
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS email TEXT NULL`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP`,
}

// UserRepository handles user persistence against a PostgreSQL pool.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init users table: %w", describe(err))
		}
	}
	return nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Create inserts the user and reads back the id assigned by the sequence.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	query := `
		INSERT INTO users (username, password, email, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	createdAt := time.Now().UTC()
	var email sql.NullString
	if user.Email != "" {
		email = sql.NullString{String: user.Email, Valid: true}
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Password, email, createdAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", describe(err))
	}

	user.ID = id
	user.CreatedAt = createdAt
	return id, nil
}

// List reads every user without ordering; the order is whatever the server returns.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, username FROM users`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", describe(err))
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// describe prefixes server-side failures with their SQLSTATE.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("sqlstate %s: %w", pgErr.Code, err)
	}
	return err
}
