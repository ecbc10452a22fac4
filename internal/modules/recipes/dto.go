package recipes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"foodgram/internal/domain"
	"foodgram/internal/modules/common"
)

// FlexInt принимает и число, и строку с числом: фронтенд присылает
// количество и время приготовления строками.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	var raw json.Number
	if err := json.Unmarshal(b, &raw); err != nil {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("expected integer, got %s", b)
		}
		raw = json.Number(strings.TrimSpace(s))
	}
	v, err := strconv.Atoi(raw.String())
	if err != nil {
		return fmt.Errorf("expected integer, got %s", b)
	}
	*n = FlexInt(v)
	return nil
}

// IngredientInput: строка ингредиента в запросе на запись.
type IngredientInput struct {
	ID     int64   `json:"id" validate:"required,gt=0"`
	Amount FlexInt `json:"amount" validate:"min=1,max=32000"`
}

// RecipeWriteRequest: форма записи рецепта (создание и обновление).
type RecipeWriteRequest struct {
	Tags        []int64           `json:"tags" validate:"required,min=1,dive,gt=0"`
	Ingredients []IngredientInput `json:"ingredients" validate:"required,min=1,dive"`
	Image       string            `json:"image"`
	Name        string            `json:"name" validate:"required,max=200"`
	Text        string            `json:"text" validate:"required"`
	CookingTime FlexInt           `json:"cooking_time" validate:"min=1,max=32000"`
}

// ListQuery: фильтры списка рецептов из query string.
type ListQuery struct {
	AuthorID         *int64
	Tags             []string
	IsFavorited      bool
	IsInShoppingCart bool
}

type IngredientAmountResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse: форма чтения рецепта. Флаги и подписка на автора
// считаются относительно участника запроса.
type RecipeResponse struct {
	ID               int64                      `json:"id"`
	Tags             []domain.Tag               `json:"tags"`
	Author           *common.UserResponse       `json:"author"`
	Ingredients      []IngredientAmountResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}
