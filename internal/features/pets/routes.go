package pets

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odalea-app/odalea-api/internal/config"
	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/features/premium"
	"github.com/odalea-app/odalea-api/internal/pkg/storage"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, repo *Repository, quotas *premium.Service, storageService *storage.Service) {
	handler := NewHandler(repo, quotas, storageService)
	authMiddleware := auth.NewAuthMiddleware(auth.NewRepository(db), cfg)

	petsGroup := router.Group("/pets")
	{
		petsGroup.GET("/:id", handler.Get)

		petsGroup.Use(authMiddleware)
		petsGroup.POST("", handler.Create)
		petsGroup.GET("", handler.List)
		petsGroup.PATCH("/:id", handler.Update)
		petsGroup.DELETE("/:id", handler.Delete)
		petsGroup.POST("/:id/photo", handler.UploadPhoto)
		petsGroup.POST("/:id/gallery", handler.AddGalleryPhoto)
		petsGroup.DELETE("/:id/gallery/:publicId", handler.RemoveGalleryPhoto)
	}
}
