package ingredients

import (
	"context"
	"errors"
	"strings"

	"foodgram/internal/domain"
	"foodgram/internal/pkg/validator"
	"foodgram/internal/repository"
)

type IngredientRepository interface {
	List(ctx context.Context, namePrefix string) ([]domain.Ingredient, error)
	GetByID(ctx context.Context, id int64) (*domain.Ingredient, error)
	Create(ctx context.Context, ing *domain.Ingredient) error
	Update(ctx context.Context, ing *domain.Ingredient) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	ingredients IngredientRepository
}

func NewService(ingredients IngredientRepository) *Service {
	return &Service{ingredients: ingredients}
}

// List ищет по началу названия (без учёта регистра); пустая строка: все.
func (s *Service) List(ctx context.Context, name string) ([]domain.Ingredient, error) {
	items, err := s.ingredients.List(ctx, name)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Ingredient{}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Ingredient, error) {
	ing, err := s.ingredients.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return ing, err
}

func (s *Service) Create(ctx context.Context, req IngredientRequest) (*domain.Ingredient, error) {
	ing, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.ingredients.Create(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

func (s *Service) Update(ctx context.Context, id int64, req IngredientRequest) (*domain.Ingredient, error) {
	ing, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	ing.ID = id
	if err := s.ingredients.Update(ctx, ing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ing, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.ingredients.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func fromRequest(req IngredientRequest) (*domain.Ingredient, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.MeasurementUnit = strings.TrimSpace(req.MeasurementUnit)
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	return &domain.Ingredient{Name: req.Name, MeasurementUnit: req.MeasurementUnit}, nil
}
