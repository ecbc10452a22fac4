package ingredients

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
	ingredients := api.Group("/ingredients", middleware.AdminOrReadOnly())
	{
		ingredients.GET("", h.List)
		ingredients.POST("", h.Create)
		ingredients.GET("/:id", h.Get)
		ingredients.PUT("/:id", h.Update)
		ingredients.PATCH("/:id", h.Update)
		ingredients.DELETE("/:id", h.Delete)
	}
}

// List возвращает ингредиенты, опционально отфильтрованные по началу названия.
// @Summary		Список ингредиентов
// @Description	Поиск по параметру name: совпадение с началом названия без учёта регистра. Без пагинации.
// @Tags		Ингредиенты
// @Param		name	query	string	false	"Начало названия"
// @Success		200	{object}	map[string]interface{}
// @Router		/ingredients [GET]
func (h *Handler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("name"))
	if err != nil {
		common.WriteInternalError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// @Summary		Получить ингредиент
// @Tags		Ингредиенты
// @Param		id	path	int	true	"ID ингредиента"
// @Router		/ingredients/{id} [GET]
func (h *Handler) Get(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	ing, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ing)
}

// @Summary		Создать ингредиент
// @Tags		Ингредиенты
// @Param		request	body	IngredientRequest	true	"Название и единица измерения"
// @Router		/ingredients [POST]
func (h *Handler) Create(c *gin.Context) {
	var req IngredientRequest
	if !common.BindJSON(c, &req) {
		return
	}
	ing, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, ing)
}

// @Summary		Обновить ингредиент
// @Tags		Ингредиенты
// @Router		/ingredients/{id} [PUT]
func (h *Handler) Update(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	var req IngredientRequest
	if !common.BindJSON(c, &req) {
		return
	}
	ing, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ing)
}

// @Summary		Удалить ингредиент
// @Tags		Ингредиенты
// @Router		/ingredients/{id} [DELETE]
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
	if errors.Is(err, ErrNotFound) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Ingredient not found")
		return
	}
	common.WriteInternalError(c, err)
}
