package chat

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odalea-app/odalea-api/internal/config"
	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/features/premium"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, repo *Repository, quotas *premium.Service, bans BanChecker) {
	handler := NewHandler(repo, auth.NewRepository(db), quotas, bans)
	authMiddleware := auth.NewAuthMiddleware(auth.NewRepository(db), cfg)

	conversations := router.Group("/conversations")
	conversations.Use(authMiddleware)
	{
		conversations.POST("", handler.StartConversation)
		conversations.GET("", handler.ListConversations)
		conversations.POST("/:id/messages", handler.SendMessage)
		conversations.GET("/:id/messages", handler.ListMessages)
		conversations.POST("/:id/read", handler.MarkRead)
	}
}
