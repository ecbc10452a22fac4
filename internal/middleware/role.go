package middleware

import (
	"errors"
	"net/http"

	"foodgram/internal/permission"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireAuth пропускает только аутентифицированных участников.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !PrincipalFrom(c).Authenticated() {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication credentials were not provided")
			return
		}
		c.Next()
	}
}

// AdminOrReadOnly: чтение доступно всем, изменения только администратору.
func AdminOrReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		err := permission.Check(permission.AdminOrReadOnly(c.Request.Method, p), p)
		if err != nil {
			AbortWithPermissionError(c, err)
			return
		}
		c.Next()
	}
}

// AbortWithPermissionError отвечает 401 или 403 в зависимости от ошибки permission.Check.
func AbortWithPermissionError(c *gin.Context, err error) {
	if errors.Is(err, permission.ErrUnauthenticated) {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication credentials were not provided")
	} else {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action")
	}
	c.Abort()
}
