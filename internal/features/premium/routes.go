package premium

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odalea-app/odalea-api/internal/config"
	"github.com/odalea-app/odalea-api/internal/features/auth"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, service *Service) {
	handler := NewHandler(service)
	authMiddleware := auth.NewAuthMiddleware(auth.NewRepository(db), cfg)

	router.GET("/premium/quota", authMiddleware, handler.GetQuota)
	router.POST("/vet-assistant/questions", authMiddleware, handler.AskVetAssistant)
}
