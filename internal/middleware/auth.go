package middleware

import (
	"net/http"
	"strings"

	"foodgram/internal/domain"
	"foodgram/internal/pkg/jwt"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// JWTAuth требует валидный токен в заголовке Authorization.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return authenticate(jwtService, true)
}

// OptionalAuth пропускает анонимные запросы, но отклоняет битый токен.
func OptionalAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return authenticate(jwtService, false)
}

func authenticate(jwtService *jwt.Service, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
				return
			}
			c.Set(principalKey, domain.Anonymous())
			c.Next()
			return
		}

		// "Token <jwt>" оставлен для совместимости со старым фронтендом
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !isAuthScheme(parts[0]) || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set(principalKey, domain.Principal{
			UserID:      claims.UserID,
			Role:        domain.UserRole(claims.Role),
			IsSuperuser: claims.Superuser,
		})
		c.Next()
	}
}

func isAuthScheme(s string) bool {
	s = strings.ToLower(s)
	return s == "bearer" || s == "token"
}

// PrincipalFrom возвращает участника запроса; без auth middleware: аноним.
func PrincipalFrom(c *gin.Context) domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Anonymous()
}
