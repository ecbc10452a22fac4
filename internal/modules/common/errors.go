package common

import (
	"errors"
	"net/http"

	"foodgram/internal/permission"
	"foodgram/internal/pkg/response"
	"foodgram/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// WriteValidationError отвечает 400 с ошибками по полям.
func WriteValidationError(c *gin.Context, err error) bool {
	var verr *validator.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", verr.Fields)
	return true
}

// WritePermissionError отвечает 401/403 на ошибки permission.Check.
func WritePermissionError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, permission.ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication credentials were not provided")
	case errors.Is(err, permission.ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action")
	default:
		return false
	}
	return true
}

// WriteInternalError прикрепляет ошибку к контексту (её пишет ErrorLogger) и отвечает 500.
func WriteInternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal server error")
}

// BindJSON декодирует тело запроса; битый JSON: 400.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return false
	}
	return true
}
