package recipes

import "errors"

var (
	ErrNotFound          = errors.New("recipe not found")
	ErrAlreadyFavorited  = errors.New("recipe already in favorites")
	ErrAlreadyInCart     = errors.New("recipe already in shopping cart")
	ErrNotInFavorites    = errors.New("recipe is not in favorites")
	ErrNotInShoppingCart = errors.New("recipe is not in shopping cart")
)
