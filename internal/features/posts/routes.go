package posts

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odalea-app/odalea-api/internal/config"
	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/pkg/storage"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, repo *Repository, gate Gatekeeper, storageService *storage.Service) {
	handler := NewHandler(repo, gate, storageService)
	authMiddleware := auth.NewAuthMiddleware(auth.NewRepository(db), cfg)

	postsGroup := router.Group("/posts")
	{
		postsGroup.GET("", handler.Feed)
		postsGroup.GET("/:id", handler.Get)

		postsGroup.Use(authMiddleware)
		postsGroup.POST("", handler.Create)
		postsGroup.DELETE("/:id", handler.Delete)
		postsGroup.POST("/:id/like", handler.Like)
		postsGroup.DELETE("/:id/like", handler.Unlike)
		postsGroup.POST("/:id/comments", handler.AddComment)
		postsGroup.DELETE("/:id/comments/:commentId", handler.DeleteComment)
	}
}
