package lostfound

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odalea-app/odalea-api/internal/config"
	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/pkg/storage"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, repo *Repository, storageService *storage.Service) {
	handler := NewHandler(repo, storageService)
	authMiddleware := auth.NewAuthMiddleware(auth.NewRepository(db), cfg)

	group := router.Group("/lost-found")
	{
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)

		group.Use(authMiddleware)
		group.POST("", handler.Create)
		group.DELETE("/:id", handler.Delete)
		group.POST("/:id/photo", handler.UploadPhoto)
		group.POST("/:id/resolve", handler.Resolve)
	}
}
