package sitters

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odalea-app/odalea-api/internal/config"
	"github.com/odalea-app/odalea-api/internal/features/auth"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, repo *Repository) {
	handler := NewHandler(repo)
	authMiddleware := auth.NewAuthMiddleware(auth.NewRepository(db), cfg)

	sittersGroup := router.Group("/sitters")
	{
		sittersGroup.GET("", handler.List)
		sittersGroup.GET("/:id", handler.Get)
		sittersGroup.PUT("/me", authMiddleware, handler.Upsert)
	}
}
