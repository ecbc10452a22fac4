package tags

import (
	"errors"
	"net/http"

	"foodgram/internal/middleware"
	"foodgram/internal/modules/common"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	tags := api.Group("/tags", middleware.AdminOrReadOnly())
	{
		tags.GET("", h.List)
		tags.POST("", h.Create)
		tags.GET("/:id", h.Get)
		tags.PUT("/:id", h.Update)
		tags.PATCH("/:id", h.Update)
		tags.DELETE("/:id", h.Delete)
	}
}

// List возвращает все теги без пагинации.
// @Summary		Список тегов
// @Tags		Теги
// @Success		200	{object}	map[string]interface{}
// @Router		/tags [GET]
func (h *Handler) List(c *gin.Context) {
	tags, err := h.service.List(c.Request.Context())
	if err != nil {
		common.WriteInternalError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tags)
}

// Get возвращает тег по id.
// @Summary		Получить тег
// @Tags		Теги
// @Param		id	path	int	true	"ID тега"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/tags/{id} [GET]
func (h *Handler) Get(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	tag, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tag)
}

// Create создаёт тег (только администратор).
// @Summary		Создать тег
// @Tags		Теги
// @Param		request	body	TagRequest	true	"Название, цвет (#RRGGBB) и slug"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{} "Ошибка валидации или slug занят"
// @Failure		401	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Router		/tags [POST]
func (h *Handler) Create(c *gin.Context) {
	var req TagRequest
	if !common.BindJSON(c, &req) {
		return
	}
	tag, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, tag)
}

// Update перезаписывает тег (только администратор).
// @Summary		Обновить тег
// @Tags		Теги
// @Param		id		path	int			true	"ID тега"
// @Param		request	body	TagRequest	true	"Новые значения"
// @Success		200	{object}	map[string]interface{}
// @Router		/tags/{id} [PUT]
func (h *Handler) Update(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	var req TagRequest
	if !common.BindJSON(c, &req) {
		return
	}
	tag, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tag)
}

// Delete удаляет тег и его связи с рецептами.
// @Summary		Удалить тег
// @Tags		Теги
// @Param		id	path	int	true	"ID тега"
// @Success		204
// @Router		/tags/{id} [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if common.WriteValidationError(c, err) {
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Tag not found")
	case errors.Is(err, ErrAlreadyExists):
		response.Error(c, http.StatusBadRequest, "ALREADY_EXISTS", "Tag with this slug already exists")
	default:
		common.WriteInternalError(c, err)
	}
}
