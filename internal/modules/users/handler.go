package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"foodgram/internal/middleware"
	"foodgram/internal/modules/common"
	"foodgram/internal/pkg/pagination"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service     *Service
	pageSize    int
	maxPageSize int
}

func NewHandler(service *Service, pageSize, maxPageSize int) *Handler {
	return &Handler{service: service, pageSize: pageSize, maxPageSize: maxPageSize}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	{
		users.GET("", h.List)
		users.POST("", h.Register)
		users.GET("/me", middleware.RequireAuth(), h.Me)
		users.POST("/set_password", middleware.RequireAuth(), h.SetPassword)
		users.GET("/subscriptions", middleware.RequireAuth(), h.Subscriptions)
		users.GET("/:id", h.Get)
		users.POST("/:id/subscribe", middleware.RequireAuth(), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.RequireAuth(), h.Unsubscribe)
	}
}

// Register регистрирует нового пользователя.
// @Summary		Регистрация пользователя
// @Tags		Пользователи
// @Param		request	body	RegisterRequest	true	"email, username, first_name, last_name, password"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{} "Ошибка валидации или email/username заняты"
// @Router		/users [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !common.BindJSON(c, &req) {
		return
	}

	u, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, RegisterResponse{
		Email:     u.Email,
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
}

// List возвращает пользователей постранично.
// @Summary		Список пользователей
// @Tags		Пользователи
// @Param		limit	query	int	false	"Размер страницы"
// @Param		offset	query	int	false	"Смещение"
// @Success		200	{object}	map[string]interface{} "count, next, previous, results"
// @Router		/users [GET]
func (h *Handler) List(c *gin.Context) {
	params, err := pagination.Parse(c, h.pageSize, h.maxPageSize)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid limit or offset")
		return
	}

	list, total, err := h.service.List(c.Request.Context(), middleware.PrincipalFrom(c), params.Limit, params.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.NewPage(c, params, total, list))
}

// @Summary		Профиль пользователя
// @Tags		Пользователи
// @Param		id	path	int	true	"ID пользователя"
// @Router		/users/{id} [GET]
func (h *Handler) Get(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	u, err := h.service.Get(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// @Summary		Текущий пользователь
// @Tags		Пользователи
// @Security	BearerAuth
// @Router		/users/me [GET]
func (h *Handler) Me(c *gin.Context) {
	u, err := h.service.Me(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// @Summary		Смена пароля
// @Tags		Пользователи
// @Security	BearerAuth
// @Param		request	body	SetPasswordRequest	true	"Текущий и новый пароль"
// @Success		204
// @Router		/users/set_password [POST]
func (h *Handler) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if !common.BindJSON(c, &req) {
		return
	}
	if err := h.service.SetPassword(c.Request.Context(), middleware.PrincipalFrom(c), req); err != nil {
		h.writeError(c, err)
		return
	}
	response.NoContent(c)
}

// Subscribe подписывает текущего пользователя на автора.
// @Summary		Подписаться на автора
// @Tags		Подписки
// @Security	BearerAuth
// @Param		id				path	int	true	"ID автора"
// @Param		recipes_limit	query	int	false	"Сколько рецептов автора вернуть"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{} "Подписка на себя или повторная подписка"
// @Failure		404	{object}	map[string]interface{}
// @Router		/users/{id}/subscribe [POST]
func (h *Handler) Subscribe(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	recipesLimit, ok := parseRecipesLimit(c)
	if !ok {
		return
	}

	sub, err := h.service.Subscribe(c.Request.Context(), middleware.PrincipalFrom(c), id, recipesLimit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, sub)
}

// @Summary		Отписаться от автора
// @Tags		Подписки
// @Security	BearerAuth
// @Param		id	path	int	true	"ID автора"
// @Success		204
// @Failure		404	{object}	map[string]interface{} "Подписки не было"
// @Router		/users/{id}/subscribe [DELETE]
func (h *Handler) Unsubscribe(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.Unsubscribe(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.NoContent(c)
}

// Subscriptions возвращает авторов, на которых подписан пользователь.
// @Summary		Мои подписки
// @Tags		Подписки
// @Security	BearerAuth
// @Param		limit			query	int	false	"Размер страницы"
// @Param		offset			query	int	false	"Смещение"
// @Param		recipes_limit	query	int	false	"Сколько рецептов каждого автора вернуть"
// @Router		/users/subscriptions [GET]
func (h *Handler) Subscriptions(c *gin.Context) {
	params, err := pagination.Parse(c, h.pageSize, h.maxPageSize)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid limit or offset")
		return
	}
	recipesLimit, ok := parseRecipesLimit(c)
	if !ok {
		return
	}

	list, total, err := h.service.Subscriptions(c.Request.Context(), middleware.PrincipalFrom(c), params.Limit, params.Offset, recipesLimit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.NewPage(c, params, total, list))
}

// parseRecipesLimit: отсутствует даёт -1 (без ограничения), не число или < 0 даёт 400.
func parseRecipesLimit(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("recipes_limit"))
	if raw == "" {
		return -1, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid recipes_limit",
			map[string]string{"recipes_limit": "must be a non-negative integer"})
		return 0, false
	}
	return n, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if common.WriteValidationError(c, err) {
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, ErrSubscriptionMissing):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Subscription not found")
	case errors.Is(err, ErrAlreadyExists):
		response.Error(c, http.StatusBadRequest, "ALREADY_EXISTS", "User with this email or username already exists")
	case errors.Is(err, ErrAlreadySubscribed):
		response.Error(c, http.StatusBadRequest, "ALREADY_EXISTS", "Subscription already exists")
	case errors.Is(err, ErrSelfSubscription):
		response.Error(c, http.StatusBadRequest, "SELF_SUBSCRIPTION", "Cannot subscribe to yourself")
	case errors.Is(err, ErrInvalidPassword):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data",
			map[string]string{"current_password": "incorrect"})
	case errors.Is(err, ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication credentials were not provided")
	default:
		common.WriteInternalError(c, err)
	}
}
