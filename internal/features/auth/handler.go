package auth

import (
	"context"
	"fmt"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odalea-app/odalea-api/internal/config"
	"github.com/odalea-app/odalea-api/internal/pkg/response"
	"github.com/odalea-app/odalea-api/internal/pkg/storage"
	"github.com/odalea-app/odalea-api/internal/pkg/token"
)

// CleanupService cascades an account deletion into the user's owned data.
// Implemented by an adapter in routes wiring because auth cannot import the
// feature packages that own that data (import cycle).
type CleanupService interface {
	DeleteAllUserData(ctx context.Context, userID primitive.ObjectID) error
}

type Handler struct {
	repo     *Repository
	cfg      *config.Config
	storage  *storage.Service
	firebase *firebaseauth.Client
	cleanup  CleanupService
}

func NewHandler(repo *Repository, cfg *config.Config, storageSvc *storage.Service, firebaseClient *firebaseauth.Client, cleanup CleanupService) *Handler {
	return &Handler{
		repo:     repo,
		cfg:      cfg,
		storage:  storageSvc,
		firebase: firebaseClient,
		cleanup:  cleanup,
	}
}

// GoogleLogin godoc
// @Summary Sign in with Google
// @Description Verifies a Google ID token and returns an access token, creating the account on first login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleAuthRequest true "Google ID token"
// @Success 200 {object} response.APIResponse{data=AuthResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/google [post]
func (h *Handler) GoogleLogin(c *gin.Context) {
	var req GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	googleUser, err := VerifyGoogleToken(c.Request.Context(), req.GoogleIDToken, h.cfg.GoogleClientID)
	if err != nil {
		response.Unauthorized(c, "Invalid Google token", "INVALID_GOOGLE_TOKEN")
		return
	}

	user, err := h.repo.GetUserByGoogleID(c.Request.Context(), googleUser.UID)
	if err != nil {
		response.DatabaseError(c, "Failed to look up user")
		return
	}

	if user == nil {
		user, err = h.createUserFromGoogle(c.Request.Context(), googleUser)
		if err != nil {
			response.DatabaseError(c, "Failed to create user")
			return
		}
	}

	accessToken, err := token.Generate(user.ID.Hex(), user.Email, h.cfg.JWTSecret, h.cfg.JWTExpireHours)
	if err != nil {
		response.InternalServerError(c, "Failed to generate token", "TOKEN_ERROR")
		return
	}

	response.Success(c, AuthResponse{
		User:        user,
		AccessToken: accessToken,
	})
}

func (h *Handler) createUserFromGoogle(ctx context.Context, googleUser *GoogleUser) (*User, error) {
	base := GenerateUniqueUsername(googleUser.Name)

	// Probe for a free username; suffix with a counter on collision
	username := base
	for i := 1; ; i++ {
		existing, err := h.repo.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			break
		}
		username = fmt.Sprintf("%s%d", base, i)
	}

	user := &User{
		GoogleID:          googleUser.UID,
		Email:             googleUser.Email,
		Username:          username,
		DisplayName:       googleUser.Name,
		ProfilePictureURL: googleUser.Picture,
	}

	if err := h.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetMe godoc
// @Summary Get current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=User}
// @Failure 401 {object} response.APIResponse
// @Router /users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	response.Success(c, user)
}

// UpdateProfile godoc
// @Summary Update profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.APIResponse{data=User}
// @Failure 400 {object} response.APIResponse
// @Router /users/me [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	updates := bson.M{}
	if req.DisplayName != "" {
		if err := ValidateDisplayName(req.DisplayName); err != nil {
			response.ValidationFailed(c, err.Error())
			return
		}
		updates["displayName"] = req.DisplayName
	}
	if req.Bio != "" {
		if err := ValidateBio(req.Bio); err != nil {
			response.ValidationFailed(c, err.Error())
			return
		}
		updates["bio"] = req.Bio
	}

	if len(updates) == 0 {
		response.BadRequest(c, "No fields to update", "NO_FIELDS")
		return
	}

	if err := h.repo.UpdateUser(c.Request.Context(), user.ID, updates); err != nil {
		response.DatabaseError(c, "Failed to update profile")
		return
	}

	updated, err := h.repo.GetUserByID(c.Request.Context(), user.ID.Hex())
	if err != nil {
		response.InternalServerError(c, "Failed to retrieve updated profile", "INTERNAL_ERROR")
		return
	}

	response.Success(c, updated)
}

// UploadProfilePicture godoc
// @Summary Upload profile picture
// @Tags auth
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param photo formData file true "Profile picture"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /users/me/profile-picture [post]
func (h *Handler) UploadProfilePicture(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	header, err := c.FormFile("photo")
	if err != nil {
		response.BadRequest(c, "Photo file is required", "MISSING_FILE")
		return
	}

	if err := storage.ValidateImageFile(header); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, "Failed to read uploaded file", "BAD_FILE")
		return
	}
	defer file.Close()

	result, err := h.storage.UploadImage(c.Request.Context(),
		file, h.storage.UserFolder(user.ID.Hex(), "profile"))
	if err != nil {
		response.InternalServerError(c, "Failed to upload photo", "STORAGE_ERROR")
		return
	}

	if err := h.repo.UpdateUser(c.Request.Context(), user.ID, bson.M{
		"profilePictureUrl": result.URL,
	}); err != nil {
		response.DatabaseError(c, "Failed to save profile picture")
		return
	}

	response.Success(c, gin.H{"profilePictureUrl": result.URL})
}

// GetPublicProfile godoc
// @Summary Get a user's public profile
// @Tags auth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /users/{id} [get]
func (h *Handler) GetPublicProfile(c *gin.Context) {
	user, err := h.repo.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.NotFound(c, "User not found", "USER_NOT_FOUND")
		return
	}

	response.Success(c, user.ToPublicUser())
}

// DeleteAccount godoc
// @Summary Delete account
// @Description Deletes the account and cascades into pets, bookings, and stored photos
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /users/me [delete]
func (h *Handler) DeleteAccount(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	if h.cleanup != nil {
		if err := h.cleanup.DeleteAllUserData(c.Request.Context(), user.ID); err != nil {
			response.InternalServerError(c, "Failed to delete account data", "CLEANUP_ERROR")
			return
		}
	}

	if err := h.repo.DeleteUser(c.Request.Context(), user.ID); err != nil {
		response.DatabaseError(c, "Failed to delete account")
		return
	}

	// Best-effort removal of the identity provider record
	if h.firebase != nil && user.GoogleID != "" {
		_ = h.firebase.DeleteUser(c.Request.Context(), user.GoogleID)
	}

	response.Success(c, gin.H{"message": "Account deleted"})
}
