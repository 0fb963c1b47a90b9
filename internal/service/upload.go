package service

import (
	"context"

	"github.com/inkwell/backend/internal/model"
)

const maxUploadSize = 16 << 20 // 16 MiB

type BlobStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
	PresignedGetURL(ctx context.Context, key string) (string, error)
}

// UploadService forwards media buffers to the blob store. The editor posts
// whole files; nothing is persisted locally.
type UploadService struct {
	store BlobStore
}

func NewUploadService(store BlobStore) *UploadService {
	return &UploadService{store: store}
}

func (s *UploadService) Upload(ctx context.Context, data []byte, contentType string) (*model.UploadResponse, error) {
	if len(data) == 0 || len(data) > maxUploadSize {
		return nil, ErrInvalidInput
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, err := s.store.Upload(ctx, data, contentType)
	if err != nil {
		return nil, err
	}

	url, err := s.store.PresignedGetURL(ctx, key)
	if err != nil {
		return nil, err
	}

	return &model.UploadResponse{
		Key:         key,
		URL:         url,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *UploadService) ServeURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrInvalidInput
	}
	return s.store.PresignedGetURL(ctx, key)
}
