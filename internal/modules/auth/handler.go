package auth

import (
	"errors"
	"net/http"

	"foodgram/internal/middleware"
	"foodgram/internal/modules/common"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	authGroup := api.Group("/auth/token")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", middleware.RequireAuth(), h.Logout)
	}
}

// Login выдаёт токен по email и паролю.
// @Summary		Получить токен
// @Tags		Аутентификация
// @Param		request	body	LoginRequest	true	"email и пароль"
// @Success		200	{object}	map[string]interface{} "auth_token"
// @Failure		400	{object}	map[string]interface{} "Неверные учётные данные"
// @Router		/auth/token/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !common.BindJSON(c, &req) {
		return
	}

	token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if common.WriteValidationError(c, err) {
			return
		}
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusBadRequest, "INVALID_CREDENTIALS", "Unable to log in with provided credentials")
			return
		}
		common.WriteInternalError(c, err)
		return
	}

	response.Success(c, http.StatusOK, TokenResponse{AuthToken: token})
}

// Logout завершает сессию. Токены не хранятся на сервере, клиент просто
// забывает свой токен.
// @Summary		Выйти
// @Tags		Аутентификация
// @Security	BearerAuth
// @Success		204
// @Router		/auth/token/logout [POST]
func (h *Handler) Logout(c *gin.Context) {
	response.NoContent(c)
}
