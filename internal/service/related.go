package service

import (
	"context"
	"fmt"

	"github.com/inkwell/backend/internal/model"
)

type EmbeddingStore interface {
	UpsertPostEmbedding(ctx context.Context, postID int64, vector []float32, model string) (int64, error)
	FindRelatedPosts(ctx context.Context, postID int64, limit int) ([]model.RelatedPost, error)
}

type EmbeddingClient interface {
	EmbedText(ctx context.Context, text string) ([]float32, string, error)
}

// RelatedService finds related posts by embedding distance. A post is
// indexed from its title and excerpt whenever it is published.
type RelatedService struct {
	store  EmbeddingStore
	client EmbeddingClient
}

func NewRelatedService(store EmbeddingStore, client EmbeddingClient) *RelatedService {
	return &RelatedService{store: store, client: client}
}

func (s *RelatedService) IndexPost(ctx context.Context, post *model.Post) error {
	text := post.Title
	if post.Excerpt != "" {
		text = fmt.Sprintf("%s\n%s", post.Title, post.Excerpt)
	}
	vector, modelName, err := s.client.EmbedText(ctx, text)
	if err != nil {
		return err
	}
	_, err = s.store.UpsertPostEmbedding(ctx, post.ID, vector, modelName)
	return err
}

func (s *RelatedService) Related(ctx context.Context, postID int64, limit int) ([]model.RelatedPost, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}
	return s.store.FindRelatedPosts(ctx, postID, limit)
}
