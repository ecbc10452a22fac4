package app

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodgram/internal/config"
	"foodgram/internal/domain"
	"foodgram/internal/storage"
	"foodgram/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type suite struct {
	t       *testing.T
	handler http.Handler
	db      *gorm.DB
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type page struct {
	Count    int64             `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
}

type recipeOut struct {
	ID   int64 `json:"id"`
	Tags []struct {
		ID   int64  `json:"id"`
		Slug string `json:"slug"`
	} `json:"tags"`
	Author struct {
		ID           int64 `json:"id"`
		IsSubscribed bool  `json:"is_subscribed"`
	} `json:"author"`
	Ingredients []struct {
		ID              int64  `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	} `json:"ingredients"`
	IsFavorited      bool   `json:"is_favorited"`
	IsInShoppingCart bool   `json:"is_in_shopping_cart"`
	Name             string `json:"name"`
	Image            string `json:"image"`
	Text             string `json:"text"`
	CookingTime      int    `json:"cooking_time"`
}

var pngDataURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString(
	append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 17)...))

func setupSuite(t *testing.T) *suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	mediaDir := t.TempDir()
	cfg := &config.Config{
		JWTSecret:   "test_secret_key_32_characters_min",
		JWTTTL:      time.Hour,
		MediaDir:    mediaDir,
		MediaURL:    "/media/",
		PageSize:    6,
		MaxPageSize: 100,
	}

	h := NewRouter(Deps{
		Config: cfg,
		DB:     db,
		Images: storage.NewLocalStore(mediaDir, cfg.MediaURL),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &suite{t: t, handler: h, db: db}
}

func (s *suite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *suite) decode(w *httptest.ResponseRecorder, dst any) envelope {
	s.t.Helper()
	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if dst != nil {
		require.NoError(s.t, json.Unmarshal(env.Data, dst))
	}
	return env
}

func (s *suite) register(username string) (int64, string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/users/", "", map[string]string{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": username,
		"last_name":  "Cook",
		"password":   "s3cret-pass",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var u struct {
		ID int64 `json:"id"`
	}
	s.decode(w, &u)

	w = s.do(http.MethodPost, "/api/auth/token/login/", "", map[string]string{
		"email":    username + "@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var tok struct {
		AuthToken string `json:"auth_token"`
	}
	s.decode(w, &tok)
	require.NotEmpty(s.t, tok.AuthToken)
	return u.ID, tok.AuthToken
}

func recipeBody(tags []int64, ingredients []map[string]any, name string) map[string]any {
	return map[string]any{
		"tags":         tags,
		"ingredients":  ingredients,
		"image":        pngDataURI,
		"name":         name,
		"text":         "Mix and bake",
		"cooking_time": 30,
	}
}

func (s *suite) createRecipe(token string, body map[string]any) recipeOut {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/recipes/", token, body)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var out recipeOut
	s.decode(w, &out)
	return out
}

func (s *suite) count(model any, where string, args ...any) int64 {
	s.t.Helper()
	var n int64
	require.NoError(s.t, s.db.Model(model).Where(where, args...).Count(&n).Error)
	return n
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestHealth(t *testing.T) {
	s := setupSuite(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRecipeLifecycle(t *testing.T) {
	s := setupSuite(t)

	aliceID, alice := s.register("alice")
	_, bob := s.register("bob")

	breakfast := testutil.CreateTag(t, s.db, "breakfast")
	lunch := testutil.CreateTag(t, s.db, "lunch")
	flour := testutil.CreateIngredient(t, s.db, "flour", "g")
	salt := testutil.CreateIngredient(t, s.db, "salt", "g")

	// запись и чтение совпадают
	a := s.createRecipe(alice, recipeBody([]int64{breakfast.ID}, []map[string]any{
		{"id": flour.ID, "amount": 200},
	}, "Pancakes"))
	assert.Equal(t, "Pancakes", a.Name)
	assert.Equal(t, 30, a.CookingTime)
	assert.Equal(t, aliceID, a.Author.ID)
	require.Len(t, a.Tags, 1)
	assert.Equal(t, "breakfast", a.Tags[0].Slug)
	require.Len(t, a.Ingredients, 1)
	assert.Equal(t, flour.ID, a.Ingredients[0].ID)
	assert.Equal(t, 200, a.Ingredients[0].Amount)

	w := s.do(http.MethodGet, a.Image, "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "image is served from the media dir")

	b := s.createRecipe(alice, recipeBody([]int64{breakfast.ID, lunch.ID}, []map[string]any{
		{"id": flour.ID, "amount": "100"},
		{"id": salt.ID, "amount": 5},
	}, "Bread"))

	w = s.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d", b.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got recipeOut
	s.decode(w, &got)
	assert.Len(t, got.Tags, 2)
	assert.Len(t, got.Ingredients, 2)
	assert.False(t, got.IsFavorited)

	// список: новые сверху, фильтр по тегу
	w = s.do(http.MethodGet, "/api/recipes?tags=lunch", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list page
	s.decode(w, &list)
	assert.Equal(t, int64(1), list.Count)

	w = s.do(http.MethodGet, "/api/recipes?limit=1", "", nil)
	s.decode(w, &list)
	assert.Equal(t, int64(2), list.Count)
	require.Len(t, list.Results, 1)
	require.NotNil(t, list.Next)
	var first recipeOut
	require.NoError(t, json.Unmarshal(list.Results[0], &first))
	assert.Equal(t, b.ID, first.ID)

	// чужой рецепт: 403, без токена: 401
	w = s.do(http.MethodPatch, fmt.Sprintf("/api/recipes/%d", a.ID), bob, recipeBody([]int64{lunch.ID}, []map[string]any{{"id": salt.ID, "amount": 1}}, "Hacked"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/recipes/%d", a.ID), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// обновление {flour} -> {salt} не оставляет старых строк
	body := recipeBody([]int64{lunch.ID}, []map[string]any{{"id": salt.ID, "amount": 7}}, "Salty pancakes")
	delete(body, "image")
	w = s.do(http.MethodPatch, fmt.Sprintf("/api/recipes/%d/", a.ID), alice, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated recipeOut
	s.decode(w, &updated)
	assert.Equal(t, "Salty pancakes", updated.Name)
	assert.Equal(t, a.Image, updated.Image)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, salt.ID, updated.Ingredients[0].ID)
	assert.Zero(t, s.count(&domain.RecipeIngredient{}, "recipe_id = ? AND ingredient_id = ?", a.ID, flour.ID))
	var staleTags int64
	require.NoError(t, s.db.Table("recipe_tags").Where("recipe_id = ? AND tag_id = ?", a.ID, breakfast.ID).Count(&staleTags).Error)
	assert.Zero(t, staleTags)

	// повторяющийся ингредиент отклоняется до записи
	before := s.count(&domain.Recipe{}, "1 = 1")
	w = s.do(http.MethodPost, "/api/recipes", alice, recipeBody([]int64{lunch.ID}, []map[string]any{
		{"id": salt.ID, "amount": 1},
		{"id": salt.ID, "amount": 2},
	}, "Twice salted"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := s.decode(w, nil)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "ingredients")
	assert.Equal(t, before, s.count(&domain.Recipe{}, "1 = 1"))

	// количество вне диапазона
	w = s.do(http.MethodPost, "/api/recipes", alice, recipeBody([]int64{lunch.ID}, []map[string]any{
		{"id": salt.ID, "amount": 32001},
	}, "Too much"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFavoritesCartAndExport(t *testing.T) {
	s := setupSuite(t)

	_, alice := s.register("alice")
	_, bob := s.register("bob")
	tag := testutil.CreateTag(t, s.db, "dinner")
	flour := testutil.CreateIngredient(t, s.db, "flour", "g")
	salt := testutil.CreateIngredient(t, s.db, "salt", "g")

	a := s.createRecipe(alice, recipeBody([]int64{tag.ID}, []map[string]any{{"id": flour.ID, "amount": 200}}, "A"))
	b := s.createRecipe(alice, recipeBody([]int64{tag.ID}, []map[string]any{
		{"id": flour.ID, "amount": 100},
		{"id": salt.ID, "amount": 5},
	}, "B"))

	favorite := fmt.Sprintf("/api/recipes/%d/favorite", a.ID)

	w := s.do(http.MethodPost, favorite, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, favorite, bob, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var short struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		CookingTime int    `json:"cooking_time"`
	}
	s.decode(w, &short)
	assert.Equal(t, a.ID, short.ID)
	assert.Equal(t, "A", short.Name)

	w = s.do(http.MethodPost, favorite, bob, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ALREADY_EXISTS", s.decode(w, nil).Error.Code)

	w = s.do(http.MethodGet, "/api/recipes?is_favorited=1", bob, nil)
	var list page
	s.decode(w, &list)
	assert.Equal(t, int64(1), list.Count)

	w = s.do(http.MethodDelete, favorite, bob, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodDelete, favorite, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/recipes/999999/favorite", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// пустая корзина: пустой файл
	w = s.do(http.MethodGet, "/api/recipes/download_shopping_cart", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	for _, id := range []int64{a.ID, b.ID} {
		w = s.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart", id), bob, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = s.do(http.MethodGet, "/api/recipes/download_shopping_cart/", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="shopping_cart_list.txt"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "flour (g) - 300\nsalt (g) - 5\n", w.Body.String())

	w = s.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d", b.ID), bob, nil)
	var got recipeOut
	s.decode(w, &got)
	assert.True(t, got.IsInShoppingCart)

	// удаление рецепта чистит избранное, корзины и связи
	s.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite", b.ID), bob, nil)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/recipes/%d", b.ID), alice, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Zero(t, s.count(&domain.Favorite{}, "recipe_id = ?", b.ID))
	assert.Zero(t, s.count(&domain.ShoppingCartEntry{}, "recipe_id = ?", b.ID))
	assert.Zero(t, s.count(&domain.RecipeIngredient{}, "recipe_id = ?", b.ID))

	w = s.do(http.MethodGet, "/api/recipes/download_shopping_cart", bob, nil)
	assert.Equal(t, "flour (g) - 200\n", w.Body.String())
}

func TestSubscriptions(t *testing.T) {
	s := setupSuite(t)

	aliceID, alice := s.register("alice")
	bobID, bob := s.register("bob")
	tag := testutil.CreateTag(t, s.db, "soup")
	water := testutil.CreateIngredient(t, s.db, "water", "ml")
	for _, name := range []string{"Borscht", "Shchi"} {
		s.createRecipe(alice, recipeBody([]int64{tag.ID}, []map[string]any{{"id": water.ID, "amount": 500}}, name))
	}

	subscribe := fmt.Sprintf("/api/users/%d/subscribe", aliceID)

	w := s.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", bobID), bob, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "self subscription")

	w = s.do(http.MethodDelete, subscribe, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, subscribe+"?recipes_limit=1", bob, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sub struct {
		ID           int64             `json:"id"`
		IsSubscribed bool              `json:"is_subscribed"`
		Recipes      []json.RawMessage `json:"recipes"`
		RecipesCount int64             `json:"recipes_count"`
	}
	s.decode(w, &sub)
	assert.Equal(t, aliceID, sub.ID)
	assert.True(t, sub.IsSubscribed)
	assert.Len(t, sub.Recipes, 1)
	assert.Equal(t, int64(2), sub.RecipesCount)

	w = s.do(http.MethodPost, subscribe, bob, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/users/subscriptions?recipes_limit=abc", bob, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/users/subscriptions", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var subs page
	s.decode(w, &subs)
	assert.Equal(t, int64(1), subs.Count)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), bob, nil)
	var profile struct {
		IsSubscribed bool `json:"is_subscribed"`
	}
	s.decode(w, &profile)
	assert.True(t, profile.IsSubscribed)

	w = s.do(http.MethodDelete, subscribe, bob, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodDelete, subscribe, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", bobID), bob, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "self subscription still rejected")
}

func TestAdminOnlyTagWrites(t *testing.T) {
	s := setupSuite(t)
	_, user := s.register("alice")

	body := map[string]string{"name": "Dessert", "color": "#aa00ff", "slug": "dessert"}
	w := s.do(http.MethodPost, "/api/tags", user, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := testutil.CreateAdmin(t, s.db, "root")
	require.NoError(t, s.db.Model(admin).Update("password_hash", mustHash(t, "s3cret-pass")).Error)
	w = s.do(http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email": "root@example.com", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tok struct {
		AuthToken string `json:"auth_token"`
	}
	s.decode(w, &tok)

	w = s.do(http.MethodPost, "/api/tags/", tok.AuthToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tags []struct {
		Color string `json:"color"`
	}
	s.decode(w, &tags)
	require.Len(t, tags, 1)
	assert.Equal(t, "#AA00FF", tags[0].Color)
}

func TestStripTrailingSlash(t *testing.T) {
	var seen string
	h := StripTrailingSlash(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path
	}))

	for in, want := range map[string]string{
		"/api/tags/":  "/api/tags",
		"/api/tags//": "/api/tags",
		"/api/tags":   "/api/tags",
		"/":           "/",
	} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, in, nil))
		assert.Equal(t, want, seen, in)
	}
}
