package sitters

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/pkg/response"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Upsert godoc
// @Summary Create or update the caller's sitter listing
// @Tags sitters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpsertProfileRequest true "Listing fields"
// @Success 200 {object} response.APIResponse{data=Profile}
// @Failure 400 {object} response.APIResponse
// @Router /sitters/me [put]
func (h *Handler) Upsert(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	var req UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	updates := bson.M{
		"headline":    req.Headline,
		"description": req.Description,
		"hourlyRate":  req.HourlyRate,
		"city":        req.City,
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	} else {
		updates["active"] = true
	}

	profile, err := h.repo.Upsert(c.Request.Context(), user.ID, updates)
	if err != nil {
		response.DatabaseError(c, "Failed to save sitter listing")
		return
	}

	response.Success(c, profile)
}

// Get godoc
// @Summary Get a sitter's listing
// @Tags sitters
// @Produce json
// @Param id path string true "Sitter user ID"
// @Success 200 {object} response.APIResponse{data=Profile}
// @Failure 404 {object} response.APIResponse
// @Router /sitters/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID", "INVALID_ID")
		return
	}

	profile, err := h.repo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch sitter listing")
		return
	}
	if profile == nil {
		response.NotFound(c, "Sitter listing not found", "NOT_FOUND")
		return
	}

	response.Success(c, profile)
}

// List godoc
// @Summary Browse sitter listings
// @Tags sitters
// @Produce json
// @Param city query string false "Filter by city"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page (max 50)"
// @Success 200 {object} response.APIResponse
// @Router /sitters [get]
func (h *Handler) List(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	profiles, total, err := h.repo.List(c.Request.Context(), query.City, query.Page, query.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch sitters")
		return
	}

	response.Paginated(c, profiles, total, query.Limit, query.Page)
}
