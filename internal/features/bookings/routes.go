package bookings

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odalea-app/odalea-api/internal/config"
	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/features/sitters"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, repo *Repository, sittersRepo *sitters.Repository) {
	service := NewService(repo, sittersRepo)
	handler := NewHandler(service, repo)
	authMiddleware := auth.NewAuthMiddleware(auth.NewRepository(db), cfg)

	router.GET("/sitters/:id/reviews", handler.ListSitterReviews)

	bookingsGroup := router.Group("/bookings")
	bookingsGroup.Use(authMiddleware)
	{
		bookingsGroup.POST("", handler.Create)
		bookingsGroup.GET("", handler.List)
		bookingsGroup.GET("/:id", handler.Get)
		bookingsGroup.POST("/:id/accept", handler.Accept)
		bookingsGroup.POST("/:id/decline", handler.Decline)
		bookingsGroup.POST("/:id/cancel", handler.Cancel)
		bookingsGroup.POST("/:id/complete", handler.Complete)
		bookingsGroup.POST("/:id/review", handler.SubmitReview)
	}
}
