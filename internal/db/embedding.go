package db

import (
	"context"

	"github.com/inkwell/backend/internal/model"
	"github.com/pgvector/pgvector-go"
)

func (db *Postgres) EnsureEmbeddingSchema(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`
		CREATE TABLE IF NOT EXISTS post_embeddings (
			id BIGSERIAL PRIMARY KEY,
			post_id BIGINT NOT NULL UNIQUE REFERENCES posts(id) ON DELETE CASCADE,
			embedding vector(768) NOT NULL,
			model TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
	}
	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (db *Postgres) UpsertPostEmbedding(ctx context.Context, postID int64, vector []float32, model string) (int64, error) {
	query := `
		INSERT INTO post_embeddings (post_id, embedding, model)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id) DO UPDATE SET embedding = $2, model = $3
		RETURNING id
	`
	var id int64
	err := db.Pool.QueryRow(ctx, query, postID, pgvector.NewVector(vector), model).Scan(&id)
	return id, err
}

func (db *Postgres) FindRelatedPosts(ctx context.Context, postID int64, limit int) ([]model.RelatedPost, error) {
	query := `
		SELECT p.id, p.title, p.slug, pe.embedding <=> ref.embedding AS distance
		FROM post_embeddings pe
		JOIN posts p ON p.id = pe.post_id
		JOIN post_embeddings ref ON ref.post_id = $1
		WHERE pe.post_id <> $1 AND p.status = 'published'
		ORDER BY distance
		LIMIT $2
	`
	rows, err := db.Pool.Query(ctx, query, postID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	related := []model.RelatedPost{}
	for rows.Next() {
		var rp model.RelatedPost
		if err := rows.Scan(&rp.ID, &rp.Title, &rp.Slug, &rp.Distance); err != nil {
			return nil, err
		}
		related = append(related, rp)
	}
	return related, rows.Err()
}
