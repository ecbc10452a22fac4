package tags

import (
	"context"
	"errors"
	"strings"

	"foodgram/internal/domain"
	"foodgram/internal/pkg/validator"
	"foodgram/internal/repository"
)

type TagRepository interface {
	List(ctx context.Context) ([]domain.Tag, error)
	GetByID(ctx context.Context, id int64) (*domain.Tag, error)
	Create(ctx context.Context, t *domain.Tag) error
	Update(ctx context.Context, t *domain.Tag) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	tags TagRepository
}

func NewService(tags TagRepository) *Service {
	return &Service{tags: tags}
}

func (s *Service) List(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return tags, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Tag, error) {
	t, err := s.tags.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *Service) Create(ctx context.Context, req TagRequest) (*domain.Tag, error) {
	t, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.tags.Create(ctx, t); err != nil {
		return nil, mapWriteErr(err)
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, id int64, req TagRequest) (*domain.Tag, error) {
	t, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	t.ID = id
	if err := s.tags.Update(ctx, t); err != nil {
		return nil, mapWriteErr(err)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func fromRequest(req TagRequest) (*domain.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)
	req.Color = strings.ToUpper(strings.TrimSpace(req.Color))
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	return &domain.Tag{Name: req.Name, Color: req.Color, Slug: req.Slug}, nil
}

func mapWriteErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrAlreadyExists
	}
	return err
}
