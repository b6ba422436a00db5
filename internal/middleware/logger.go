package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggerConfig controls request logging
type LoggerConfig struct {
	SkipPaths []string
}

// DefaultLoggerConfig skips health and docs noise
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		SkipPaths: []string{"/health", "/swagger"},
	}
}

func Logger() gin.HandlerFunc {
	return LoggerWithConfig(DefaultLoggerConfig())
}

func LoggerWithConfig(config LoggerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		for _, skipPath := range config.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		userID := c.GetString("userID")

		if userID != "" {
			log.Printf("%s %s -> %d (%v) user=%s", c.Request.Method, path, status, latency, userID)
		} else {
			log.Printf("%s %s -> %d (%v) ip=%s", c.Request.Method, path, status, latency, c.ClientIP())
		}
	}
}
