package lostfound

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/pkg/response"
	"github.com/odalea-app/odalea-api/internal/pkg/storage"
	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

type Handler struct {
	repo    *Repository
	storage *storage.Service
}

func NewHandler(repo *Repository, storageService *storage.Service) *Handler {
	return &Handler{repo: repo, storage: storageService}
}

// Create godoc
// @Summary Post a lost or found pet alert
// @Tags lostfound
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAlertRequest true "Alert details"
// @Success 201 {object} response.APIResponse{data=Alert}
// @Router /lost-found [post]
func (h *Handler) Create(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	if !req.Type.Valid() {
		response.BadRequest(c, "Alert type must be lost or found", "INVALID_TYPE")
		return
	}

	alert := &Alert{
		AuthorID:    user.ID,
		Type:        req.Type,
		PetName:     req.PetName,
		Species:     req.Species,
		Description: req.Description,
		City:        req.City,
		LastSeenAt:  req.LastSeenAt,
		ContactInfo: req.ContactInfo,
	}

	if err := h.repo.Create(c.Request.Context(), alert); err != nil {
		response.DatabaseError(c, "Failed to create alert")
		return
	}

	response.Created(c, alert, "Alert posted")
}

// List godoc
// @Summary Browse open lost and found alerts
// @Tags lostfound
// @Produce json
// @Param type query string false "Filter by type (lost|found)"
// @Param city query string false "Filter by city"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page (max 50)"
// @Success 200 {object} response.APIResponse
// @Router /lost-found [get]
func (h *Handler) List(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	alerts, total, err := h.repo.List(c.Request.Context(), query.Type, query.City, query.Page, query.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch alerts")
		return
	}

	response.Paginated(c, alerts, total, query.Limit, query.Page)
}

// Get godoc
// @Summary Get an alert
// @Tags lostfound
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} response.APIResponse{data=Alert}
// @Failure 404 {object} response.APIResponse
// @Router /lost-found/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	alertID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid alert ID", "INVALID_ID")
		return
	}

	alert, err := h.repo.GetByID(c.Request.Context(), alertID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Alert not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to fetch alert")
		return
	}

	response.Success(c, alert)
}

// UploadPhoto godoc
// @Summary Attach a photo to the caller's alert
// @Tags lostfound
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Param photo formData file true "Image file (max 10MB)"
// @Success 200 {object} response.APIResponse{data=Alert}
// @Router /lost-found/{id}/photo [post]
func (h *Handler) UploadPhoto(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}
	if h.storage == nil {
		response.InternalServerError(c, "Image uploads are not available", "STORAGE_UNAVAILABLE")
		return
	}

	alertID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid alert ID", "INVALID_ID")
		return
	}

	alert, err := h.repo.GetByID(c.Request.Context(), alertID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Alert not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to fetch alert")
		return
	}
	if alert.AuthorID != user.ID {
		response.Forbidden(c, "You can only update your own alerts", "NOT_AUTHOR")
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		response.BadRequest(c, "Photo file is required", "MISSING_FILE")
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
		src, h.storage.UserFolder(user.ID.Hex(), "lostfound"))
	if err != nil {
		response.InternalServerError(c, "Failed to upload photo", "UPLOAD_FAILED")
		return
	}

	if alert.PhotoPublicID != "" {
		if err := h.storage.Delete(c.Request.Context(), alert.PhotoPublicID); err != nil {
			log.Printf("lostfound: failed to delete old photo %s: %v", alert.PhotoPublicID, err)
		}
	}

	if err := h.repo.SetPhoto(c.Request.Context(), alertID, result.URL, result.PublicID); err != nil {
		response.DatabaseError(c, "Failed to save photo")
		return
	}
	alert.PhotoURL = result.URL
	alert.PhotoPublicID = result.PublicID

	response.Success(c, alert, "Photo uploaded")
}

// Resolve godoc
// @Summary Mark the caller's alert as resolved
// @Tags lostfound
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} response.APIResponse{data=Alert}
// @Failure 404 {object} response.APIResponse "Alert not found or already resolved"
// @Router /lost-found/{id}/resolve [post]
func (h *Handler) Resolve(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	alertID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid alert ID", "INVALID_ID")
		return
	}

	alert, err := h.repo.Resolve(c.Request.Context(), alertID, user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Alert not found or already resolved", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to resolve alert")
		return
	}

	response.Success(c, alert, "Alert resolved")
}

// Delete godoc
// @Summary Delete the caller's alert
// @Tags lostfound
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} response.APIResponse
// @Router /lost-found/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	alertID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid alert ID", "INVALID_ID")
		return
	}

	alert, err := h.repo.GetByID(c.Request.Context(), alertID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Alert not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to fetch alert")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), alertID, user.ID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Alert not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to delete alert")
		return
	}

	if h.storage != nil && alert.PhotoPublicID != "" {
		if err := h.storage.Delete(c.Request.Context(), alert.PhotoPublicID); err != nil {
			log.Printf("lostfound: failed to delete asset %s: %v", alert.PhotoPublicID, err)
		}
	}

	response.Success(c, nil, "Alert deleted")
}
