package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/inkwell/backend/internal/db"
	"github.com/inkwell/backend/internal/model"
)

var ErrNotFound = errors.New("not found")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) (*model.Post, error)
	GetPostByID(ctx context.Context, postID int64) (*model.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*model.Post, error)
	ListPosts(ctx context.Context, status string, limit, offset int) ([]model.Post, int, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, postID int64) error
	SetPostTerms(ctx context.Context, postID int64, termIDs []int64) error
	GetPostTerms(ctx context.Context, postID int64) ([]model.Term, error)
}

type PostService struct {
	store   PostStore
	related *RelatedService
}

// NewPostService wires the post CRUD glue. related may be nil when the
// embedding backend is not configured.
func NewPostService(store PostStore, related *RelatedService) *PostService {
	return &PostService{store: store, related: related}
}

func (s *PostService) Create(ctx context.Context, authorID int64, req model.PostCreateRequest) (*model.Post, error) {
	if err := validatePostInput(req.Title, req.Slug); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.PostStatusDraft
	}
	if status != model.PostStatusDraft && status != model.PostStatusPublished {
		return nil, ErrInvalidInput
	}

	body := req.Body
	if len(body) == 0 {
		body = json.RawMessage(`{}`)
	}

	post := &model.Post{
		Title:    strings.TrimSpace(req.Title),
		Slug:     req.Slug,
		Excerpt:  strings.TrimSpace(req.Excerpt),
		Body:     body,
		Status:   status,
		AuthorID: authorID,
	}
	if status == model.PostStatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	post, err := s.store.CreatePost(ctx, post)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if len(req.TermIDs) > 0 {
		if err := s.store.SetPostTerms(ctx, post.ID, req.TermIDs); err != nil {
			return nil, err
		}
	}

	s.indexIfPublished(ctx, post)
	return post, nil
}

func (s *PostService) Get(ctx context.Context, postID int64) (*model.Post, error) {
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	terms, err := s.store.GetPostTerms(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Terms = terms
	return post, nil
}

func (s *PostService) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	post, err := s.store.GetPostBySlug(ctx, slug)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	terms, err := s.store.GetPostTerms(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Terms = terms
	return post, nil
}

func (s *PostService) List(ctx context.Context, status string, limit, offset int) ([]model.Post, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListPosts(ctx, status, limit, offset)
}

func (s *PostService) Update(ctx context.Context, postID int64, req model.PostUpdateRequest) (*model.Post, error) {
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Slug != nil {
		post.Slug = *req.Slug
	}
	if req.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	if len(req.Body) > 0 {
		post.Body = req.Body
	}
	if req.Status != nil {
		if *req.Status != model.PostStatusDraft && *req.Status != model.PostStatusPublished {
			return nil, ErrInvalidInput
		}
		if *req.Status == model.PostStatusPublished && post.Status != model.PostStatusPublished {
			now := time.Now()
			post.PublishedAt = &now
		}
		post.Status = *req.Status
	}
	if err := validatePostInput(post.Title, post.Slug); err != nil {
		return nil, err
	}

	if err := s.store.UpdatePost(ctx, post); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if req.TermIDs != nil {
		if err := s.store.SetPostTerms(ctx, post.ID, req.TermIDs); err != nil {
			return nil, err
		}
	}

	s.indexIfPublished(ctx, post)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, postID int64) error {
	if _, err := s.store.GetPostByID(ctx, postID); err != nil {
		if db.IsNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	return s.store.DeletePost(ctx, postID)
}

// indexIfPublished refreshes the post's embedding. Indexing is best effort:
// a failed embedding call must not fail the write that triggered it.
func (s *PostService) indexIfPublished(ctx context.Context, post *model.Post) {
	if s.related == nil || post.Status != model.PostStatusPublished {
		return
	}
	if err := s.related.IndexPost(ctx, post); err != nil {
		log.Printf("failed to index post %d: %v", post.ID, err)
	}
}

func validatePostInput(title, slug string) error {
	if strings.TrimSpace(title) == "" || len(title) > 200 {
		return ErrInvalidInput
	}
	if !slugPattern.MatchString(slug) || len(slug) > 200 {
		return ErrInvalidInput
	}
	return nil
}
