package service

import (
	"context"
	"strings"

	"github.com/inkwell/backend/internal/model"
)

type TermStore interface {
	CreateTerm(ctx context.Context, name, slug, kind string) (*model.Term, error)
	ListTerms(ctx context.Context, kind string) ([]model.Term, error)
	DeleteTerm(ctx context.Context, termID int64) error
}

type TermService struct {
	store TermStore
}

func NewTermService(store TermStore) *TermService {
	return &TermService{store: store}
}

func (s *TermService) Create(ctx context.Context, req model.TermCreateRequest) (*model.Term, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		return nil, ErrInvalidInput
	}
	if !slugPattern.MatchString(req.Slug) {
		return nil, ErrInvalidInput
	}

	kind := req.Kind
	if kind == "" {
		kind = model.TermKindTag
	}
	if kind != model.TermKindTag && kind != model.TermKindCategory {
		return nil, ErrInvalidInput
	}

	term, err := s.store.CreateTerm(ctx, name, req.Slug, kind)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return term, nil
}

func (s *TermService) List(ctx context.Context, kind string) ([]model.Term, error) {
	return s.store.ListTerms(ctx, kind)
}

func (s *TermService) Delete(ctx context.Context, termID int64) error {
	return s.store.DeleteTerm(ctx, termID)
}
