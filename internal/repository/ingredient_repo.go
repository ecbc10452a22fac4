package repository

import (
	"context"
	"strings"

	"foodgram/internal/domain"

	"gorm.io/gorm"
)

type IngredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// List возвращает ингредиенты по алфавиту. Непустой namePrefix
// фильтрует по началу названия без учёта регистра.
func (r *IngredientRepository) List(ctx context.Context, namePrefix string) ([]domain.Ingredient, error) {
	q := r.db.WithContext(ctx).Order("name")
	if p := strings.TrimSpace(namePrefix); p != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(p))+"%")
	}

	var items []domain.Ingredient
	err := q.Find(&items).Error
	return items, err
}

func (r *IngredientRepository) GetByID(ctx context.Context, id int64) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	if err := r.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, translate(err)
	}
	return &ing, nil
}

func (r *IngredientRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Ingredient
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *IngredientRepository) Create(ctx context.Context, ing *domain.Ingredient) error {
	return translate(r.db.WithContext(ctx).Create(ing).Error)
}

// CreateBatch используется сидером.
func (r *IngredientRepository) CreateBatch(ctx context.Context, items []domain.Ingredient) error {
	if len(items) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(items, 500).Error)
}

func (r *IngredientRepository) Update(ctx context.Context, ing *domain.Ingredient) error {
	tx := r.db.WithContext(ctx).Model(&domain.Ingredient{}).
		Where("id = ?", ing.ID).
		Updates(map[string]any{"name": ing.Name, "measurement_unit": ing.MeasurementUnit})
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *IngredientRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", id).Delete(&domain.RecipeIngredient{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Ingredient{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
