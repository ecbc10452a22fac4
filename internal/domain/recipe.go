package domain

import "time"

// Границы для времени приготовления и количества ингредиента.
const (
	MinAmount = 1
	MaxAmount = 32000
)

type Recipe struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	AuthorID    *int64    `json:"author_id" gorm:"index"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	CookingTime int       `json:"cooking_time" gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1 AND cooking_time <= 32000"`
	Image       string    `json:"image" gorm:"size:500;not null"`
	CreatedAt   time.Time `json:"created_at"`

	Author      *User              `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Tags        []Tag              `json:"tags,omitempty" gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredient `json:"ingredients,omitempty" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// RecipeIngredient: строка связки рецепта и ингредиента с количеством.
type RecipeIngredient struct {
	ID           int64 `json:"id" gorm:"primaryKey"`
	RecipeID     int64 `json:"recipe_id" gorm:"not null;index"`
	IngredientID int64 `json:"ingredient_id" gorm:"not null;index"`
	Amount       int   `json:"amount" gorm:"not null;check:chk_recipe_ingredients_amount,amount >= 1 AND amount <= 32000"`

	Ingredient *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// ShoppingListItem: одна строка агрегированного списка покупок.
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int64  `json:"amount"`
}
