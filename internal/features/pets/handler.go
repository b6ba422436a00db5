package pets

import (
	"errors"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/features/premium"
	"github.com/odalea-app/odalea-api/internal/pkg/response"
	"github.com/odalea-app/odalea-api/internal/pkg/storage"
	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

type Handler struct {
	repo    *Repository
	quotas  *premium.Service
	storage *storage.Service
}

func NewHandler(repo *Repository, quotas *premium.Service, storageService *storage.Service) *Handler {
	return &Handler{
		repo:    repo,
		quotas:  quotas,
		storage: storageService,
	}
}

// Create godoc
// @Summary Register a new pet
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePetRequest true "Pet details"
// @Success 201 {object} response.APIResponse{data=Pet}
// @Failure 403 {object} response.APIResponse "Free tier pet limit reached"
// @Router /pets [post]
func (h *Handler) Create(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	var req CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	allowed, err := h.quotas.CheckPetLimit(c.Request.Context(), user)
	if err != nil {
		response.DatabaseError(c, "Failed to check pet limit")
		return
	}
	if !allowed {
		response.Forbidden(c, "Free accounts can register 1 pet. Upgrade to premium for unlimited pets.", "PET_LIMIT_REACHED")
		return
	}

	pet := &Pet{
		OwnerID:     user.ID,
		Name:        req.Name,
		Species:     req.Species,
		Breed:       req.Breed,
		BirthDate:   req.BirthDate,
		Description: req.Description,
	}

	if err := h.repo.Create(c.Request.Context(), pet); err != nil {
		response.DatabaseError(c, "Failed to create pet")
		return
	}

	response.Created(c, pet, "Pet registered")
}

// List godoc
// @Summary List the caller's pets
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=[]Pet}
// @Router /pets [get]
func (h *Handler) List(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	pets, err := h.repo.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch pets")
		return
	}

	response.Success(c, pets)
}

// Get godoc
// @Summary Get a pet profile
// @Tags pets
// @Produce json
// @Param id path string true "Pet ID"
// @Success 200 {object} response.APIResponse{data=Pet}
// @Failure 404 {object} response.APIResponse
// @Router /pets/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	petID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid pet ID", "INVALID_ID")
		return
	}

	pet, err := h.repo.GetByID(c.Request.Context(), petID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Pet not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to fetch pet")
		return
	}

	response.Success(c, pet)
}

// Update godoc
// @Summary Update a pet profile
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pet ID"
// @Param request body UpdatePetRequest true "Fields to update"
// @Success 200 {object} response.APIResponse{data=Pet}
// @Failure 404 {object} response.APIResponse
// @Router /pets/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	petID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid pet ID", "INVALID_ID")
		return
	}

	var req UpdatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	updates := bson.M{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Species != nil {
		updates["species"] = *req.Species
	}
	if req.Breed != nil {
		updates["breed"] = *req.Breed
	}
	if req.BirthDate != nil {
		updates["birthDate"] = *req.BirthDate
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		response.BadRequest(c, "No fields to update", "EMPTY_UPDATE")
		return
	}

	pet, err := h.repo.Update(c.Request.Context(), petID, user.ID, updates)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Pet not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to update pet")
		return
	}

	response.Success(c, pet, "Pet updated")
}

// Delete godoc
// @Summary Delete a pet profile
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pet ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /pets/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	petID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid pet ID", "INVALID_ID")
		return
	}

	pet, err := h.repo.GetByID(c.Request.Context(), petID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Pet not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to fetch pet")
		return
	}
	if pet.OwnerID != user.ID {
		response.Forbidden(c, "You can only delete your own pets", "NOT_OWNER")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), petID, user.ID); err != nil {
		response.DatabaseError(c, "Failed to delete pet")
		return
	}

	// Best-effort asset cleanup
	if h.storage != nil {
		var publicIDs []string
		if pet.PhotoPublicID != "" {
			publicIDs = append(publicIDs, pet.PhotoPublicID)
		}
		for _, photo := range pet.Gallery {
			publicIDs = append(publicIDs, photo.PublicID)
		}
		h.storage.DeleteAll(c.Request.Context(), publicIDs)
	}

	response.Success(c, nil, "Pet deleted")
}

// UploadPhoto godoc
// @Summary Upload or replace a pet's primary photo
// @Tags pets
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pet ID"
// @Param photo formData file true "Image file (max 10MB)"
// @Success 200 {object} response.APIResponse{data=Pet}
// @Router /pets/{id}/photo [post]
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

	petID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid pet ID", "INVALID_ID")
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

	pet, err := h.repo.GetByID(c.Request.Context(), petID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Pet not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to fetch pet")
		return
	}
	if pet.OwnerID != user.ID {
		response.Forbidden(c, "You can only update your own pets", "NOT_OWNER")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "Failed to read photo file", "INVALID_FILE")
		return
	}
	defer src.Close()

	folder := h.storage.UserFolder(user.ID.Hex(), "pets")
	result, err := h.storage.UploadImage(c.Request.Context(), src, folder)
	if err != nil {
		response.InternalServerError(c, "Failed to upload photo", "UPLOAD_FAILED")
		return
	}

	// Replace the old primary photo after the new one is stored
	if pet.PhotoPublicID != "" {
		if err := h.storage.Delete(c.Request.Context(), pet.PhotoPublicID); err != nil {
			log.Printf("pets: failed to delete old photo %s: %v", pet.PhotoPublicID, err)
		}
	}

	updated, err := h.repo.Update(c.Request.Context(), petID, user.ID, bson.M{
		"photoUrl":      result.URL,
		"photoPublicId": result.PublicID,
	})
	if err != nil {
		response.DatabaseError(c, "Failed to save photo")
		return
	}

	response.Success(c, updated, "Photo uploaded")
}

// AddGalleryPhoto godoc
// @Summary Add a photo to a pet's gallery
// @Tags pets
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pet ID"
// @Param photo formData file true "Image file (max 10MB)"
// @Success 200 {object} response.APIResponse{data=Pet}
// @Failure 403 {object} response.APIResponse "Free tier gallery limit reached"
// @Router /pets/{id}/gallery [post]
func (h *Handler) AddGalleryPhoto(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}
	if h.storage == nil {
		response.InternalServerError(c, "Image uploads are not available", "STORAGE_UNAVAILABLE")
		return
	}

	petID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid pet ID", "INVALID_ID")
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

	allowed, err := h.quotas.CheckGalleryLimit(c.Request.Context(), user)
	if err != nil {
		response.DatabaseError(c, "Failed to check gallery limit")
		return
	}
	if !allowed {
		response.Forbidden(c, "Free accounts can store 3 gallery photos. Upgrade to premium for unlimited photos.", "GALLERY_LIMIT_REACHED")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "Failed to read photo file", "INVALID_FILE")
		return
	}
	defer src.Close()

	folder := h.storage.UserFolder(user.ID.Hex(), "gallery")
	result, err := h.storage.UploadImage(c.Request.Context(), src, folder)
	if err != nil {
		response.InternalServerError(c, "Failed to upload photo", "UPLOAD_FAILED")
		return
	}

	photo := GalleryPhoto{
		URL:        result.URL,
		PublicID:   result.PublicID,
		UploadedAt: time.Now(),
	}

	pet, err := h.repo.AddGalleryPhoto(c.Request.Context(), petID, user.ID, photo)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Pet not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to save photo")
		return
	}

	response.Success(c, pet, "Photo added to gallery")
}

// RemoveGalleryPhoto godoc
// @Summary Remove a photo from a pet's gallery
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pet ID"
// @Param publicId path string true "Photo public ID"
// @Success 200 {object} response.APIResponse
// @Router /pets/{id}/gallery/{publicId} [delete]
func (h *Handler) RemoveGalleryPhoto(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	petID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid pet ID", "INVALID_ID")
		return
	}

	publicID := c.Param("publicId")
	if publicID == "" {
		response.BadRequest(c, "Photo public ID is required", "MISSING_PUBLIC_ID")
		return
	}

	if err := h.repo.RemoveGalleryPhoto(c.Request.Context(), petID, user.ID, publicID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Pet not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to remove photo")
		return
	}

	if h.storage != nil {
		if err := h.storage.Delete(c.Request.Context(), publicID); err != nil {
			log.Printf("pets: failed to delete gallery asset %s: %v", publicID, err)
		}
	}

	response.Success(c, nil, "Photo removed")
}
