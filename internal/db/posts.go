package db

import (
	"context"
	"encoding/json"

	"github.com/inkwell/backend/internal/model"
)

func (db *Postgres) CreatePost(ctx context.Context, post *model.Post) (*model.Post, error) {
	query := `
		INSERT INTO posts (title, slug, excerpt, body, status, author_id, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := db.Pool.QueryRow(ctx, query,
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Body,
		post.Status,
		post.AuthorID,
		post.PublishedAt,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (db *Postgres) GetPostByID(ctx context.Context, postID int64) (*model.Post, error) {
	return db.getPost(ctx, `WHERE id = $1`, postID)
}

func (db *Postgres) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	return db.getPost(ctx, `WHERE slug = $1`, slug)
}

func (db *Postgres) getPost(ctx context.Context, where string, arg any) (*model.Post, error) {
	query := `
		SELECT id, title, slug, excerpt, body, status, author_id, published_at, created_at, updated_at
		FROM posts
	` + where
	var post model.Post
	var body []byte
	err := db.Pool.QueryRow(ctx, query, arg).Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Excerpt,
		&body,
		&post.Status,
		&post.AuthorID,
		&post.PublishedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	post.Body = json.RawMessage(body)
	return &post, nil
}

func (db *Postgres) ListPosts(ctx context.Context, status string, limit, offset int) ([]model.Post, int, error) {
	query := `
		SELECT id, title, slug, excerpt, status, author_id, published_at, created_at, updated_at
		FROM posts
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := db.Pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Slug,
			&post.Excerpt,
			&post.Status,
			&post.AuthorID,
			&post.PublishedAt,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM posts WHERE ($1 = '' OR status = $1)`
	if err := db.Pool.QueryRow(ctx, countQuery, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (db *Postgres) UpdatePost(ctx context.Context, post *model.Post) error {
	query := `
		UPDATE posts
		SET title = $2, slug = $3, excerpt = $4, body = $5, status = $6, published_at = $7, updated_at = NOW()
		WHERE id = $1
	`
	_, err := db.Pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Body,
		post.Status,
		post.PublishedAt,
	)
	return err
}

func (db *Postgres) DeletePost(ctx context.Context, postID int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	return err
}

func (db *Postgres) SetPostTerms(ctx context.Context, postID int64, termIDs []int64) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM post_terms WHERE post_id = $1`, postID); err != nil {
		return err
	}
	for _, termID := range termIDs {
		if _, err = tx.Exec(ctx, `
			INSERT INTO post_terms (post_id, term_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, termID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (db *Postgres) GetPostTerms(ctx context.Context, postID int64) ([]model.Term, error) {
	query := `
		SELECT t.id, t.name, t.slug, t.kind, t.created_at
		FROM terms t
		JOIN post_terms pt ON pt.term_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name
	`
	rows, err := db.Pool.Query(ctx, query, postID)
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
