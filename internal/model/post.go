package model

import (
	"encoding/json"
	"time"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

type Post struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Excerpt     string          `json:"excerpt"`
	Body        json.RawMessage `json:"body" swaggertype:"object"`
	Status      string          `json:"status"`
	AuthorID    int64           `json:"authorId"`
	Terms       []Term          `json:"terms,omitempty"`
	PublishedAt *time.Time      `json:"publishedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type PostCreateRequest struct {
	Title   string          `json:"title"`
	Slug    string          `json:"slug"`
	Excerpt string          `json:"excerpt"`
	Body    json.RawMessage `json:"body" swaggertype:"object"`
	Status  string          `json:"status"`
	TermIDs []int64         `json:"termIds"`
}

type PostUpdateRequest struct {
	Title   *string         `json:"title"`
	Slug    *string         `json:"slug"`
	Excerpt *string         `json:"excerpt"`
	Body    json.RawMessage `json:"body" swaggertype:"object"`
	Status  *string         `json:"status"`
	TermIDs []int64         `json:"termIds"`
}

type PostListResponse struct {
	Posts []Post `json:"posts"`
	Total int    `json:"total"`
}

type RelatedPost struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Slug     string  `json:"slug"`
	Distance float64 `json:"distance"`
}
