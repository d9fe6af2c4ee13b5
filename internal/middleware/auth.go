package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/eduboard/notice-api/internal/handler"
	"github.com/eduboard/notice-api/internal/model"
	"github.com/eduboard/notice-api/internal/repository"
	"github.com/eduboard/notice-api/pkg/auth"
)

const (
	principalCacheTTL     = time.Minute
	principalCacheCleanup = 5 * time.Minute
)

type AuthMiddleware struct {
	jwtSvc auth.JWTService
	users  repository.UserRepository
	// cache avoids a user lookup on every request; entries expire after
	// principalCacheTTL so role and group changes take effect quickly.
	cache *gocache.Cache
}

func NewAuthMiddleware(jwtSvc auth.JWTService, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc: jwtSvc,
		users:  users,
		cache:  gocache.New(principalCacheTTL, principalCacheCleanup),
	}
}

// Authenticate verifies the bearer token and sets the full user record
// in the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		user, err := m.lookupUser(c, claims)
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("user not found"))
			c.Abort()
			return
		}

		c.Set(handler.ContextUserKey, user)
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the authenticated user is an admin.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := handler.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("admin access required"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) lookupUser(c *gin.Context, claims *auth.Claims) (*model.User, error) {
	key := claims.UserID.String()
	if cached, found := m.cache.Get(key); found {
		return cached.(*model.User), nil
	}

	user, err := m.users.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, err
	}

	m.cache.Set(key, user, gocache.DefaultExpiration)
	return user, nil
}
