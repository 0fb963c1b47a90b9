package db

import (
	"context"

	"github.com/inkwell/backend/internal/model"
)

func (db *Postgres) CreateTerm(ctx context.Context, name, slug, kind string) (*model.Term, error) {
	query := `
		INSERT INTO terms (name, slug, kind, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, name, slug, kind, created_at
	`
	var term model.Term
	err := db.Pool.QueryRow(ctx, query, name, slug, kind).Scan(
		&term.ID,
		&term.Name,
		&term.Slug,
		&term.Kind,
		&term.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (db *Postgres) ListTerms(ctx context.Context, kind string) ([]model.Term, error) {
	query := `
		SELECT id, name, slug, kind, created_at
		FROM terms
		WHERE ($1 = '' OR kind = $1)
		ORDER BY name
	`
	rows, err := db.Pool.Query(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := []model.Term{}
	for rows.Next() {
		var term model.Term
		if err := rows.Scan(&term.ID, &term.Name, &term.Slug, &term.Kind, &term.CreatedAt); err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

func (db *Postgres) DeleteTerm(ctx context.Context, termID int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM terms WHERE id = $1`, termID)
	return err
}
