package users

import "foodgram/internal/modules/common"

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

// RegisterResponse: ответ регистрации, без is_subscribed.
type RegisterResponse struct {
	Email     string `json:"email"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

// SubscriptionResponse: автор с его рецептами в ленте подписок.
type SubscriptionResponse struct {
	common.UserResponse
	Recipes      []common.ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                        `json:"recipes_count"`
}
