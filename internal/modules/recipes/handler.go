package recipes

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

const shoppingListFilename = "shopping_cart_list.txt"

type Handler struct {
	service     *Service
	pageSize    int
	maxPageSize int
}

func NewHandler(service *Service, pageSize, maxPageSize int) *Handler {
	return &Handler{service: service, pageSize: pageSize, maxPageSize: maxPageSize}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	recipes := api.Group("/recipes")
	{
		recipes.GET("", h.List)
		recipes.POST("", middleware.RequireAuth(), h.Create)
		recipes.GET("/download_shopping_cart", middleware.RequireAuth(), h.DownloadShoppingCart)
		recipes.GET("/:id", h.Get)
		recipes.PUT("/:id", middleware.RequireAuth(), h.Update)
		recipes.PATCH("/:id", middleware.RequireAuth(), h.Update)
		recipes.DELETE("/:id", middleware.RequireAuth(), h.Delete)
		recipes.POST("/:id/favorite", middleware.RequireAuth(), h.AddFavorite)
		recipes.DELETE("/:id/favorite", middleware.RequireAuth(), h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", middleware.RequireAuth(), h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", middleware.RequireAuth(), h.RemoveFromShoppingCart)
	}
}

// List возвращает рецепты с фильтрами и пагинацией.
// @Summary		Список рецептов
// @Description	Фильтры: author (id), tags (slug, можно несколько), is_favorited и is_in_shopping_cart (1/0, только для авторизованных). Новые рецепты первыми.
// @Tags		Рецепты
// @Param		author				query	int		false	"ID автора"
// @Param		tags				query	[]string	false	"Slug тега"
// @Param		is_favorited		query	int		false	"1: только избранное"
// @Param		is_in_shopping_cart	query	int		false	"1: только из корзины"
// @Param		limit				query	int		false	"Размер страницы"
// @Param		offset				query	int		false	"Смещение"
// @Success		200	{object}	map[string]interface{} "count, next, previous, results"
// @Failure		400	{object}	map[string]interface{}
// @Router		/recipes [GET]
func (h *Handler) List(c *gin.Context) {
	params, err := pagination.Parse(c, h.pageSize, h.maxPageSize)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid limit or offset")
		return
	}
	q, ok := parseListQuery(c)
	if !ok {
		return
	}

	list, total, err := h.service.List(c.Request.Context(), middleware.PrincipalFrom(c), q, params.Limit, params.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.NewPage(c, params, total, list))
}

// @Summary		Получить рецепт
// @Tags		Рецепты
// @Param		id	path	int	true	"ID рецепта"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/recipes/{id} [GET]
func (h *Handler) Get(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	recipe, err := h.service.Get(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, recipe)
}

// Create создаёт рецепт от имени текущего пользователя.
// @Summary		Создать рецепт
// @Description	Изображение передаётся строкой base64 data URI. Ингредиенты и теги не должны повторяться.
// @Tags		Рецепты
// @Security	BearerAuth
// @Param		request	body	RecipeWriteRequest	true	"tags, ingredients, image, name, text, cooking_time"
// @Success		201	{object}	map[string]interface{} "Рецепт в форме чтения"
// @Failure		400	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/recipes [POST]
func (h *Handler) Create(c *gin.Context) {
	var req RecipeWriteRequest
	if !common.BindJSON(c, &req) {
		return
	}
	recipe, err := h.service.Create(c.Request.Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, recipe)
}

// Update перезаписывает рецепт (автор или администратор).
// @Summary		Обновить рецепт
// @Tags		Рецепты
// @Security	BearerAuth
// @Param		id		path	int					true	"ID рецепта"
// @Param		request	body	RecipeWriteRequest	true	"Полная форма; image можно не передавать"
// @Success		200	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/recipes/{id} [PATCH]
func (h *Handler) Update(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	var req RecipeWriteRequest
	if !common.BindJSON(c, &req) {
		return
	}
	recipe, err := h.service.Update(c.Request.Context(), middleware.PrincipalFrom(c), c.Request.Method, id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, recipe)
}

// @Summary		Удалить рецепт
// @Tags		Рецепты
// @Security	BearerAuth
// @Param		id	path	int	true	"ID рецепта"
// @Success		204
// @Router		/recipes/{id} [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.NoContent(c)
}

// @Summary		Добавить в избранное
// @Tags		Избранное
// @Security	BearerAuth
// @Param		id	path	int	true	"ID рецепта"
// @Success		201	{object}	map[string]interface{} "Краткая карточка рецепта"
// @Failure		400	{object}	map[string]interface{} "Уже в избранном"
// @Failure		404	{object}	map[string]interface{}
// @Router		/recipes/{id}/favorite [POST]
func (h *Handler) AddFavorite(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	short, err := h.service.AddFavorite(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, short)
}

// @Summary		Убрать из избранного
// @Tags		Избранное
// @Security	BearerAuth
// @Param		id	path	int	true	"ID рецепта"
// @Success		204
// @Failure		404	{object}	map[string]interface{} "Рецепта нет в избранном"
// @Router		/recipes/{id}/favorite [DELETE]
func (h *Handler) RemoveFavorite(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.RemoveFavorite(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.NoContent(c)
}

// @Summary		Добавить в список покупок
// @Tags		Список покупок
// @Security	BearerAuth
// @Param		id	path	int	true	"ID рецепта"
// @Success		201	{object}	map[string]interface{}
// @Router		/recipes/{id}/shopping_cart [POST]
func (h *Handler) AddToShoppingCart(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	short, err := h.service.AddToShoppingCart(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, short)
}

// @Summary		Убрать из списка покупок
// @Tags		Список покупок
// @Security	BearerAuth
// @Param		id	path	int	true	"ID рецепта"
// @Success		204
// @Router		/recipes/{id}/shopping_cart [DELETE]
func (h *Handler) RemoveFromShoppingCart(c *gin.Context) {
	id, ok := common.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.RemoveFromShoppingCart(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.NoContent(c)
}

// DownloadShoppingCart отдаёт сводный список ингредиентов из корзины файлом.
// @Summary		Скачать список покупок
// @Tags		Список покупок
// @Security	BearerAuth
// @Produce		plain
// @Success		200	{string}	string	"<название> (<единица>) - <количество>"
// @Router		/recipes/download_shopping_cart [GET]
func (h *Handler) DownloadShoppingCart(c *gin.Context) {
	text, err := h.service.ShoppingList(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func parseListQuery(c *gin.Context) (ListQuery, bool) {
	var q ListQuery

	if raw := strings.TrimSpace(c.Query("author")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid filter",
				map[string]string{"author": "must be an integer"})
			return q, false
		}
		q.AuthorID = &id
	}

	for _, slug := range c.QueryArray("tags") {
		if slug = strings.TrimSpace(slug); slug != "" {
			q.Tags = append(q.Tags, slug)
		}
	}

	q.IsFavorited = isTruthy(c.Query("is_favorited"))
	q.IsInShoppingCart = isTruthy(c.Query("is_in_shopping_cart"))
	return q, true
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if common.WriteValidationError(c, err) || common.WritePermissionError(c, err) {
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Recipe not found")
	case errors.Is(err, ErrNotInFavorites):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Recipe is not in favorites")
	case errors.Is(err, ErrNotInShoppingCart):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Recipe is not in shopping cart")
	case errors.Is(err, ErrAlreadyFavorited):
		response.Error(c, http.StatusBadRequest, "ALREADY_EXISTS", "Recipe already added to favorites")
	case errors.Is(err, ErrAlreadyInCart):
		response.Error(c, http.StatusBadRequest, "ALREADY_EXISTS", "Recipe already added to shopping cart")
	default:
		common.WriteInternalError(c, err)
	}
}
