// Package permission содержит предикаты доступа к объектам. Все функции
// принимают участника явно и не зависят от HTTP слоя.
package permission

import (
	"errors"
	"net/http"

	"foodgram/internal/domain"
)

var (
	// ErrUnauthenticated: изменяющий запрос от анонима (401).
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden: участник известен, но прав не хватает (403).
	ErrForbidden = errors.New("permission denied")
)

// IsSafeMethod сообщает, является ли метод только читающим.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// AuthorOrReadOnly пропускает безопасные методы, остальные только автору объекта.
func AuthorOrReadOnly(method string, p domain.Principal, authorID *int64) bool {
	return IsSafeMethod(method) || p.Is(authorID)
}

// AdminOrReadOnly пропускает безопасные методы, остальные только администратору.
func AdminOrReadOnly(method string, p domain.Principal) bool {
	return IsSafeMethod(method) || p.IsAdmin()
}

// RecipeMutation: автор рецепта или администратор.
func RecipeMutation(method string, p domain.Principal, authorID *int64) bool {
	return AuthorOrReadOnly(method, p, authorID) || AdminOrReadOnly(method, p)
}

// Check переводит результат предиката в ошибку: аноним получает
// ErrUnauthenticated, аутентифицированный без прав получает ErrForbidden.
func Check(allowed bool, p domain.Principal) error {
	if allowed {
		return nil
	}
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	return ErrForbidden
}
