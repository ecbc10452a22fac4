// Package common содержит read-формы, общие для нескольких модулей.
package common

import "foodgram/internal/domain"

// UserResponse: публичное представление пользователя. IsSubscribed
// считается относительно участника запроса.
type UserResponse struct {
	Email        string `json:"email"`
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func NewUserResponse(u *domain.User, subscribed bool) UserResponse {
	return UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// ShortRecipeResponse: краткая карточка рецепта (избранное, корзина, подписки).
type ShortRecipeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func NewShortRecipeResponse(r *domain.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func NewShortRecipeList(recipes []domain.Recipe) []ShortRecipeResponse {
	out := make([]ShortRecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, NewShortRecipeResponse(&recipes[i]))
	}
	return out
}
