package friends

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odalea-app/odalea-api/internal/config"
	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/features/chat"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, repo *Repository, chatRepo *chat.Repository) {
	users := auth.NewRepository(db)
	service := NewService(repo, users, chatRepo)
	handler := NewHandler(service, repo, users)
	authMiddleware := auth.NewAuthMiddleware(users, cfg)

	friendsGroup := router.Group("/friends")
	friendsGroup.Use(authMiddleware)
	{
		friendsGroup.GET("", handler.ListFriends)
		friendsGroup.DELETE("/:userId", handler.Unfriend)
		friendsGroup.POST("/requests", handler.SendRequest)
		friendsGroup.GET("/requests", handler.ListRequests)
		friendsGroup.POST("/requests/:userId/accept", handler.Accept)
		friendsGroup.POST("/requests/:userId/decline", handler.Decline)
	}
}
