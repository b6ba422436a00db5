package posts

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/features/moderation"
	"github.com/odalea-app/odalea-api/internal/pkg/response"
	"github.com/odalea-app/odalea-api/internal/pkg/storage"
	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

// Gatekeeper checks a user's standing before they publish content.
// Implemented by the moderation service.
type Gatekeeper interface {
	IsUserBanned(ctx context.Context, userID primitive.ObjectID) (bool, error)
	CheckRateLimit(ctx context.Context, userID primitive.ObjectID, action string, limitPerHour int) (bool, error)
}

type Handler struct {
	repo    *Repository
	gate    Gatekeeper
	storage *storage.Service
}

func NewHandler(repo *Repository, gate Gatekeeper, storageService *storage.Service) *Handler {
	return &Handler{repo: repo, gate: gate, storage: storageService}
}

func (h *Handler) checkStanding(c *gin.Context, userID primitive.ObjectID, rateLimited bool) bool {
	if h.gate == nil {
		return true
	}

	banned, err := h.gate.IsUserBanned(c.Request.Context(), userID)
	if err != nil {
		response.DatabaseError(c, "Failed to check account status")
		return false
	}
	if banned {
		response.Forbidden(c, "Your account is suspended", "ACCOUNT_BANNED")
		return false
	}

	if rateLimited {
		allowed, err := h.gate.CheckRateLimit(c.Request.Context(), userID,
			moderation.RateLimitActionPost, moderation.RateLimitMaxPosts)
		if err != nil {
			response.DatabaseError(c, "Failed to check posting rate")
			return false
		}
		if !allowed {
			response.TooManyRequests(c, "You are posting too fast. Try again later.", "POST_RATE_LIMITED")
			return false
		}
	}

	return true
}

// Create godoc
// @Summary Publish a post
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param text formData string true "Post text"
// @Param photo formData file false "Optional image (max 10MB)"
// @Success 201 {object} response.APIResponse{data=Post}
// @Failure 403 {object} response.APIResponse "Account suspended"
// @Failure 429 {object} response.APIResponse "Posting too fast"
// @Router /posts [post]
func (h *Handler) Create(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}
	if !h.checkStanding(c, user.ID, true) {
		return
	}

	text := c.PostForm("text")
	if text == "" || len(text) > 2000 {
		response.BadRequest(c, "Post text must be between 1 and 2000 characters", "INVALID_TEXT")
		return
	}

	post := &Post{
		AuthorID: user.ID,
		Text:     text,
	}

	if file, err := c.FormFile("photo"); err == nil {
		if h.storage == nil {
			response.InternalServerError(c, "Image uploads are not available", "STORAGE_UNAVAILABLE")
			return
		}
		if err := storage.ValidateImageFile(file); err != nil {
			response.BadRequest(c, err.Error(), "INVALID_FILE")
			return
		}

		src, err := file.Open()
		if err != nil {
			response.BadRequest(c, "Failed to read photo file", "INVALID_FILE")
			return
		}
		defer src.Close()

		result, err := h.storage.UploadImage(c.Request.Context(),
			src, h.storage.UserFolder(user.ID.Hex(), "posts"))
		if err != nil {
			response.InternalServerError(c, "Failed to upload photo", "UPLOAD_FAILED")
			return
		}
		post.PhotoURL = result.URL
		post.PhotoPublicID = result.PublicID
	}

	if err := h.repo.Create(c.Request.Context(), post); err != nil {
		response.DatabaseError(c, "Failed to create post")
		return
	}

	response.Created(c, post, "Post published")
}

// Feed godoc
// @Summary Browse the feed
// @Tags posts
// @Produce json
// @Param author query string false "Filter by author user ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page (max 50)"
// @Success 200 {object} response.APIResponse
// @Router /posts [get]
func (h *Handler) Feed(c *gin.Context) {
	var query FeedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	var authorID *primitive.ObjectID
	if query.Author != "" {
		id, err := primitive.ObjectIDFromHex(query.Author)
		if err != nil {
			response.BadRequest(c, "Invalid author ID", "INVALID_ID")
			return
		}
		authorID = &id
	}

	posts, total, err := h.repo.Feed(c.Request.Context(), authorID, query.Page, query.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch feed")
		return
	}

	response.Paginated(c, posts, total, query.Limit, query.Page)
}

// Get godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.APIResponse{data=Post}
// @Failure 404 {object} response.APIResponse
// @Router /posts/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID", "INVALID_ID")
		return
	}

	post, err := h.repo.GetByID(c.Request.Context(), postID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Post not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to fetch post")
		return
	}

	// Hidden posts stay visible to their author only
	if post.Hidden {
		user, ok := auth.CurrentUser(c)
		if !ok || user.ID != post.AuthorID {
			response.NotFound(c, "Post not found", "NOT_FOUND")
			return
		}
	}

	response.Success(c, post)
}

// Delete godoc
// @Summary Delete the caller's post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /posts/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID", "INVALID_ID")
		return
	}

	post, err := h.repo.GetByID(c.Request.Context(), postID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Post not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to fetch post")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), postID, user.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Post not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to delete post")
		return
	}

	if h.storage != nil && post.PhotoPublicID != "" {
		if err := h.storage.Delete(c.Request.Context(), post.PhotoPublicID); err != nil {
			log.Printf("posts: failed to delete asset %s: %v", post.PhotoPublicID, err)
		}
	}

	response.Success(c, nil, "Post deleted")
}

// Like godoc
// @Summary Like a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} response.APIResponse
// @Router /posts/{id}/like [post]
func (h *Handler) Like(c *gin.Context) {
	h.toggleLike(c, true)
}

// Unlike godoc
// @Summary Remove a like from a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} response.APIResponse
// @Router /posts/{id}/like [delete]
func (h *Handler) Unlike(c *gin.Context) {
	h.toggleLike(c, false)
}

func (h *Handler) toggleLike(c *gin.Context, like bool) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID", "INVALID_ID")
		return
	}

	if like {
		err = h.repo.Like(c.Request.Context(), postID, user.ID)
	} else {
		err = h.repo.Unlike(c.Request.Context(), postID, user.ID)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Post not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to update like")
		return
	}

	if like {
		response.Success(c, nil, "Post liked")
	} else {
		response.Success(c, nil, "Like removed")
	}
}

// AddComment godoc
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body AddCommentRequest true "Comment text"
// @Success 201 {object} response.APIResponse{data=Comment}
// @Failure 403 {object} response.APIResponse "Account suspended"
// @Router /posts/{id}/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}
	if !h.checkStanding(c, user.ID, false) {
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID", "INVALID_ID")
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	comment := Comment{
		ID:        primitive.NewObjectID(),
		AuthorID:  user.ID,
		Text:      req.Text,
		CreatedAt: time.Now(),
	}

	if err := h.repo.AddComment(c.Request.Context(), postID, comment); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Post not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to add comment")
		return
	}

	response.Created(c, comment, "Comment added")
}

// DeleteComment godoc
// @Summary Delete the caller's comment
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} response.APIResponse
// @Router /posts/{id}/comments/{commentId} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID", "INVALID_ID")
		return
	}
	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		response.BadRequest(c, "Invalid comment ID", "INVALID_ID")
		return
	}

	if err := h.repo.DeleteComment(c.Request.Context(), postID, commentID, user.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Comment not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to delete comment")
		return
	}

	response.Success(c, nil, "Comment deleted")
}
