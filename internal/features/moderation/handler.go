package moderation

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/pkg/response"
	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

type Handler struct {
	service *Service
	repo    *Repository
}

func NewHandler(service *Service, repo *Repository) *Handler {
	return &Handler{service: service, repo: repo}
}

// CreateReport godoc
// @Summary Report a post, comment or user
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReportRequest true "Report details"
// @Success 200 {object} response.APIResponse{data=Report} "Existing open report"
// @Success 201 {object} response.APIResponse{data=Report}
// @Failure 429 {object} response.APIResponse "Reporting too fast"
// @Router /reports [post]
func (h *Handler) CreateReport(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	if !req.TargetType.Valid() {
		response.BadRequest(c, "Invalid target type", "INVALID_TARGET_TYPE")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(req.TargetID)
	if err != nil {
		response.BadRequest(c, "Invalid target ID", "INVALID_ID")
		return
	}

	allowed, err := h.service.CheckRateLimit(c.Request.Context(), user.ID, RateLimitActionReport, RateLimitMaxReports)
	if err != nil {
		response.DatabaseError(c, "Failed to check reporting rate")
		return
	}
	if !allowed {
		response.TooManyRequests(c, "You are reporting too fast. Try again later.", "REPORT_RATE_LIMITED")
		return
	}

	authorID, err := h.repo.GetContentAuthor(c.Request.Context(), req.TargetType, targetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Reported content not found", "TARGET_NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to resolve report target")
		return
	}

	report, created, err := h.service.CreateReport(c.Request.Context(), user.ID, req, authorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			response.BadRequest(c, err.Error(), "VALIDATION_ERROR")
			return
		}
		response.DatabaseError(c, "Failed to create report")
		return
	}

	if !created {
		response.Success(c, report, "You have already reported this")
		return
	}
	response.Created(c, report, "Report submitted")
}

// ListReports godoc
// @Summary List reports (moderators)
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page (max 50)"
// @Success 200 {object} response.APIResponse
// @Router /moderation/reports [get]
func (h *Handler) ListReports(c *gin.Context) {
	var query ListReportsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	reports, total, err := h.repo.ListReports(c.Request.Context(), query.Status, query.Page, query.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch reports")
		return
	}

	response.Paginated(c, reports, total, query.Limit, query.Page)
}

// ReviewReport godoc
// @Summary Mark a report as reviewed (moderators)
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.APIResponse{data=Report}
// @Failure 404 {object} response.APIResponse "No pending report with this ID"
// @Router /moderation/reports/{id}/review [post]
func (h *Handler) ReviewReport(c *gin.Context) {
	h.closeReport(c, false)
}

// DismissReport godoc
// @Summary Dismiss a report (moderators)
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.APIResponse{data=Report}
// @Failure 404 {object} response.APIResponse "No pending report with this ID"
// @Router /moderation/reports/{id}/dismiss [post]
func (h *Handler) DismissReport(c *gin.Context) {
	h.closeReport(c, true)
}

func (h *Handler) closeReport(c *gin.Context, dismiss bool) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	reportID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid report ID", "INVALID_ID")
		return
	}

	report, err := h.service.CloseReport(c.Request.Context(), user.ID, reportID, dismiss)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "No pending report with this ID", "REPORT_NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to close report")
		return
	}

	response.Success(c, report, "Report "+string(report.Status))
}

// BanUser godoc
// @Summary Ban a user (moderators)
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body BanUserRequest true "Ban reason and duration"
// @Success 200 {object} response.APIResponse
// @Router /moderation/users/{id}/ban [post]
func (h *Handler) BanUser(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID", "INVALID_ID")
		return
	}
	if userID == user.ID {
		response.BadRequest(c, "Cannot ban yourself", "SELF_BAN")
		return
	}

	var req BanUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := h.service.BanUser(c.Request.Context(), user.ID, userID, req.Reason, req.Days); err != nil {
		response.DatabaseError(c, "Failed to ban user")
		return
	}

	response.Success(c, nil, "User banned")
}

// UnbanUser godoc
// @Summary Lift a user's ban (moderators)
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.APIResponse
// @Router /moderation/users/{id}/unban [post]
func (h *Handler) UnbanUser(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID", "INVALID_ID")
		return
	}

	if err := h.service.UnbanUser(c.Request.Context(), user.ID, userID); err != nil {
		response.DatabaseError(c, "Failed to unban user")
		return
	}

	response.Success(c, nil, "User unbanned")
}

// GetUserFlags godoc
// @Summary Get a user's moderation state and audit trail (moderators)
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.APIResponse
// @Router /moderation/users/{id} [get]
func (h *Handler) GetUserFlags(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID", "INVALID_ID")
		return
	}

	flags, err := h.repo.GetUserFlags(c.Request.Context(), userID)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch user flags")
		return
	}
	if flags == nil {
		flags = &UserFlags{UserID: userID}
	}

	actions, err := h.repo.ListActions(c.Request.Context(), TargetUser, userID)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch moderation history")
		return
	}

	response.Success(c, gin.H{
		"flags":   flags,
		"actions": actions,
	})
}
