package model

import "time"

const (
	TermKindCategory = "category"
	TermKindTag      = "tag"
)

type Term struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

type TermCreateRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Kind string `json:"kind"`
}
