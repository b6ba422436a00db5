package routes

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odalea-app/odalea-api/internal/config"
	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/features/bookings"
	"github.com/odalea-app/odalea-api/internal/features/chat"
	"github.com/odalea-app/odalea-api/internal/features/friends"
	"github.com/odalea-app/odalea-api/internal/features/lostfound"
	"github.com/odalea-app/odalea-api/internal/features/moderation"
	"github.com/odalea-app/odalea-api/internal/features/pets"
	"github.com/odalea-app/odalea-api/internal/features/posts"
	"github.com/odalea-app/odalea-api/internal/features/premium"
	"github.com/odalea-app/odalea-api/internal/features/sitters"
	"github.com/odalea-app/odalea-api/internal/pkg/storage"
)

// accountCleanupAdapter implements auth.CleanupService by cascading an
// account deletion through every feature that stores user data, plus the
// Cloudinary assets those features reference.
type accountCleanupAdapter struct {
	users     *auth.Repository
	pets      *pets.Repository
	bookings  *bookings.Repository
	sitters   *sitters.Repository
	posts     *posts.Repository
	lostfound *lostfound.Repository
	friends   *friends.Repository
	chat      *chat.Repository
	storage   *storage.Service
}

func (a *accountCleanupAdapter) DeleteAllUserData(ctx context.Context, userID primitive.ObjectID) error {
	petAssets, err := a.pets.DeleteAllByOwner(ctx, userID)
	if err != nil {
		return err
	}
	postAssets, err := a.posts.DeleteAllByAuthor(ctx, userID)
	if err != nil {
		return err
	}
	alertAssets, err := a.lostfound.DeleteAllByAuthor(ctx, userID)
	if err != nil {
		return err
	}

	if err := a.bookings.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	if err := a.sitters.DeleteByUserID(ctx, userID); err != nil {
		return err
	}
	if err := a.friends.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	if err := a.chat.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	if err := a.users.RemoveFriendFromAll(ctx, userID); err != nil {
		return err
	}

	// Asset cleanup is best-effort; orphaned uploads are harmless
	if a.storage != nil {
		assets := append(append(petAssets, postAssets...), alertAssets...)
		a.storage.DeleteAll(ctx, assets)
	}

	return nil
}

func SetupRoutes(router *gin.Engine, db *mongo.Database, cfg *config.Config) {
	api := router.Group("/api/v1")

	// Shared repositories: these cross feature boundaries (quota counters,
	// conversation bootstrap, account deletion cascade).
	usersRepo := auth.NewRepository(db)
	petsRepo := pets.NewRepository(db)
	sittersRepo := sitters.NewRepository(db)
	bookingsRepo := bookings.NewRepository(db)
	chatRepo := chat.NewRepository(db)
	friendsRepo := friends.NewRepository(db)
	postsRepo := posts.NewRepository(db)
	lostfoundRepo := lostfound.NewRepository(db)
	moderationRepo := moderation.NewRepository(db)

	moderationSvc := moderation.NewService(moderationRepo)

	// The pets and chat repositories double as the quota counters
	quotaSvc := premium.NewService(usersRepo, petsRepo, chatRepo, premium.DefaultLimits())

	storageSvc, err := storage.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
	if err != nil {
		log.Printf("Failed to initialize storage service: %v", err)
	}

	cleanup := &accountCleanupAdapter{
		users:     usersRepo,
		pets:      petsRepo,
		bookings:  bookingsRepo,
		sitters:   sittersRepo,
		posts:     postsRepo,
		lostfound: lostfoundRepo,
		friends:   friendsRepo,
		chat:      chatRepo,
		storage:   storageSvc,
	}

	auth.RegisterRoutes(api, db, cfg, cleanup)
	pets.RegisterRoutes(api, db, cfg, petsRepo, quotaSvc, storageSvc)
	sitters.RegisterRoutes(api, db, cfg, sittersRepo)
	bookings.RegisterRoutes(api, db, cfg, bookingsRepo, sittersRepo)
	chat.RegisterRoutes(api, db, cfg, chatRepo, quotaSvc, moderationSvc)
	friends.RegisterRoutes(api, db, cfg, friendsRepo, chatRepo)
	posts.RegisterRoutes(api, db, cfg, postsRepo, moderationSvc, storageSvc)
	moderation.RegisterRoutes(api, db, cfg, moderationRepo, moderationSvc)
	premium.RegisterRoutes(api, db, cfg, quotaSvc)
	lostfound.RegisterRoutes(api, db, cfg, lostfoundRepo, storageSvc)
}
