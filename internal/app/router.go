// Package app собирает HTTP-приложение: репозитории, сервисы, хендлеры и middleware.
package app

import (
	"log/slog"
	"net/http"
	"strings"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/middleware"
	"foodgram/internal/modules/auth"
	"foodgram/internal/modules/ingredients"
	"foodgram/internal/modules/recipes"
	"foodgram/internal/modules/tags"
	"foodgram/internal/modules/users"
	jwtsvc "foodgram/internal/pkg/jwt"
	"foodgram/internal/pkg/response"
	"foodgram/internal/repository"
	"foodgram/internal/storage"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Images storage.Store
	Logger *slog.Logger
}

// NewRouter возвращает готовый к запуску http.Handler. Все маршруты API
// доступны как со слэшем на конце, так и без него.
func NewRouter(d Deps) http.Handler {
	return StripTrailingSlash(NewEngine(d))
}

func NewEngine(d Deps) *gin.Engine {
	cfg := d.Config
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userRepo := repository.NewUserRepository(d.DB)
	tagRepo := repository.NewTagRepository(d.DB)
	ingredientRepo := repository.NewIngredientRepository(d.DB)
	recipeRepo := repository.NewRecipeRepository(d.DB)
	favoriteRepo := repository.NewFavoriteRepository(d.DB)
	cartRepo := repository.NewShoppingCartRepository(d.DB)
	subscriptionRepo := repository.NewSubscriptionRepository(d.DB)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))
	usersHandler := users.NewHandler(
		users.NewService(userRepo, subscriptionRepo, recipeRepo),
		cfg.PageSize, cfg.MaxPageSize,
	)
	tagsHandler := tags.NewHandler(tags.NewService(tagRepo))
	ingredientsHandler := ingredients.NewHandler(ingredients.NewService(ingredientRepo))
	recipesHandler := recipes.NewHandler(
		recipes.NewService(recipeRepo, tagRepo, ingredientRepo, favoriteRepo, cartRepo, subscriptionRepo, d.Images, logger),
		cfg.PageSize, cfg.MaxPageSize,
	)

	r := gin.New()
	r.RedirectTrailingSlash = false

	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger(logger))
	if cfg.SentryDSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		if err := database.Ping(d.DB); err != nil {
			logger.ErrorContext(c.Request.Context(), "health check failed", slog.Any("error", err))
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database is unavailable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	if _, ok := d.Images.(*storage.LocalStore); ok {
		r.Static(strings.TrimSuffix(cfg.MediaURL, "/"), cfg.MediaDir)
	}

	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(j))
	{
		authHandler.RegisterRoutes(api)
		usersHandler.RegisterRoutes(api)
		tagsHandler.RegisterRoutes(api)
		ingredientsHandler.RegisterRoutes(api)
		recipesHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	return r
}

// StripTrailingSlash убирает завершающий "/" из пути до маршрутизации.
func StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
			r.URL.Path = strings.TrimRight(p, "/")
			if r.URL.Path == "" {
				r.URL.Path = "/"
			}
			r.URL.RawPath = ""
		}
		next.ServeHTTP(w, r)
	})
}
