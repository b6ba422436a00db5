package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/odalea-app/odalea-api/internal/config"
	"github.com/odalea-app/odalea-api/internal/pkg/response"
	"github.com/odalea-app/odalea-api/internal/pkg/token"
)

// NewAuthMiddleware creates a Gin middleware that validates the access token
// and loads the full user document into the context.
func NewAuthMiddleware(repo *Repository, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header required", "AUTH_REQUIRED")
			c.Abort()
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "Invalid authorization format", "INVALID_AUTH_FORMAT")
			c.Abort()
			return
		}

		claims, err := token.Validate(parts[1], cfg.JWTSecret)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token", "INVALID_TOKEN")
			c.Abort()
			return
		}

		user, err := repo.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Unauthorized(c, "User not found", "USER_NOT_FOUND")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// RequireAdmin gates the moderation console behind the admin email allowlist.
// Must run after the auth middleware.
func RequireAdmin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")
		if email == "" || !cfg.IsAdmin(email) {
			response.Forbidden(c, "Admin access required", "FORBIDDEN")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser extracts the authenticated user set by the auth middleware
func CurrentUser(c *gin.Context) (*User, bool) {
	val, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := val.(*User)
	return user, ok
}
