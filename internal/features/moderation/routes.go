package moderation

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odalea-app/odalea-api/internal/config"
	"github.com/odalea-app/odalea-api/internal/features/auth"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, repo *Repository, service *Service) {
	handler := NewHandler(service, repo)
	authMiddleware := auth.NewAuthMiddleware(auth.NewRepository(db), cfg)

	router.POST("/reports", authMiddleware, handler.CreateReport)

	// Moderation console, restricted to the admin allowlist
	console := router.Group("/moderation")
	console.Use(authMiddleware, auth.RequireAdmin(cfg))
	{
		console.GET("/reports", handler.ListReports)
		console.POST("/reports/:id/review", handler.ReviewReport)
		console.POST("/reports/:id/dismiss", handler.DismissReport)
		console.GET("/users/:id", handler.GetUserFlags)
		console.POST("/users/:id/ban", handler.BanUser)
		console.POST("/users/:id/unban", handler.UnbanUser)
	}
}
