package auth

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odalea-app/odalea-api/internal/config"
	"github.com/odalea-app/odalea-api/internal/pkg/storage"
)

// RegisterRoutes registers the auth routes and initializes dependencies.
// The cleanup service is passed in as an interface because auth cannot import
// the feature packages it cascades into.
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, cleanup CleanupService) {
	repo := NewRepository(db)

	firebaseClient, err := InitFirebase(cfg)
	if err != nil {
		log.Printf("Failed to initialize Firebase: %v", err)
	}

	storageSvc, err := storage.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
	if err != nil {
		log.Printf("Failed to initialize storage service for auth: %v", err)
	}

	handler := NewHandler(repo, cfg, storageSvc, firebaseClient, cleanup)
	authMiddleware := NewAuthMiddleware(repo, cfg)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/google", handler.GoogleLogin)
	}

	users := router.Group("/users")
	{
		me := users.Group("/me")
		me.Use(authMiddleware)
		{
			me.GET("", handler.GetMe)
			me.PATCH("", handler.UpdateProfile)
			me.DELETE("", handler.DeleteAccount)
			me.POST("/profile-picture", handler.UploadProfilePicture)
		}

		users.GET("/:id", handler.GetPublicProfile)
	}
}
