package repository

import (
	"context"

	"foodgram/internal/domain"

	"gorm.io/gorm"
)

// RecipeSetRepository хранит множество рецептов пользователя, ключ: уникальная
// пара (user_id, recipe_id). Избранное и корзина отличаются только таблицей.
type RecipeSetRepository struct {
	db     *gorm.DB
	newRow func(userID, recipeID int64) any
}

func NewFavoriteRepository(db *gorm.DB) *RecipeSetRepository {
	return &RecipeSetRepository{
		db: db,
		newRow: func(userID, recipeID int64) any {
			return &domain.Favorite{UserID: userID, RecipeID: recipeID}
		},
	}
}

func NewShoppingCartRepository(db *gorm.DB) *RecipeSetRepository {
	return &RecipeSetRepository{
		db: db,
		newRow: func(userID, recipeID int64) any {
			return &domain.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
		},
	}
}

// Add создаёт запись. Повтор пары возвращает ErrDuplicate (уникальный индекс).
func (r *RecipeSetRepository) Add(ctx context.Context, userID, recipeID int64) error {
	return translate(r.db.WithContext(ctx).Create(r.newRow(userID, recipeID)).Error)
}

// Remove удаляет запись; ErrNotFound, если её не было.
func (r *RecipeSetRepository) Remove(ctx context.Context, userID, recipeID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(r.newRow(0, 0))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RecipeSetRepository) Exists(ctx context.Context, userID, recipeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(r.newRow(0, 0)).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Contains отмечает, какие из recipeIDs есть в множестве пользователя.
func (r *RecipeSetRepository) Contains(ctx context.Context, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	found := make(map[int64]bool, len(recipeIDs))
	if userID <= 0 || len(recipeIDs) == 0 {
		return found, nil
	}

	var ids []int64
	err := r.db.WithContext(ctx).Model(r.newRow(0, 0)).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}
