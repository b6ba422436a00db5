package ratelimit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/odalea-app/odalea-api/internal/pkg/response"
)

// Middleware creates a rate limiting middleware keyed by user id when
// authenticated, falling back to client IP.
func Middleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("userID")
		if key == "" {
			key = c.ClientIP()
		}

		if !limiter.Allow(key) {
			resetTime := limiter.GetResetTime(key)

			c.Header("Retry-After", "60")
			response.ErrorWithData(c, http.StatusTooManyRequests,
				"Rate limit exceeded. Try again later.",
				gin.H{
					"retry_after": "60s",
					"reset_time":  resetTime.Format(time.RFC3339),
				},
				"RATE_LIMITED")
			c.Abort()
			return
		}

		c.Next()
	}
}
