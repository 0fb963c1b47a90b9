package db

import (
	"context"

	"github.com/inkwell/backend/internal/model"
)

func (db *Postgres) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL DEFAULT 'USER',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS terms (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL DEFAULT 'tag',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS posts (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			excerpt TEXT NOT NULL DEFAULT '',
			body JSONB NOT NULL DEFAULT '{}',
			status TEXT NOT NULL DEFAULT 'draft',
			author_id BIGINT NOT NULL REFERENCES users(id),
			published_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS post_terms (
			post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			term_id BIGINT NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
			PRIMARY KEY (post_id, term_id)
		)
		`,
		`CREATE INDEX IF NOT EXISTS posts_status_idx ON posts(status)`,
		`CREATE INDEX IF NOT EXISTS posts_author_id_idx ON posts(author_id)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (db *Postgres) CreateUser(ctx context.Context, username, email, role, passwordHash string) (*model.User, error) {
	query := `
		INSERT INTO users (username, email, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, username, email, role, password_hash, created_at, updated_at
	`
	var user model.User
	err := db.Pool.QueryRow(ctx, query, username, email, role, passwordHash).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `WHERE username = $1`, username)
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `WHERE email = $1`, email)
}

func (db *Postgres) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = $1`, userID)
}

func (db *Postgres) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	query := `
		SELECT id, username, email, role, password_hash, created_at, updated_at
		FROM users
	` + where
	var user model.User
	err := db.Pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
