package bookings

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

// Create godoc
// @Summary Request a booking with a sitter
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBookingRequest true "Booking details"
// @Success 201 {object} response.APIResponse{data=Booking}
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse "Sitter has no active listing"
// @Router /bookings [post]
func (h *Handler) Create(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	booking, err := h.service.CreateBooking(c.Request.Context(), user.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			response.BadRequest(c, err.Error(), "VALIDATION_ERROR")
		case errors.Is(err, apperrors.ErrNotFound):
			response.NotFound(c, "Sitter has no active listing", "SITTER_NOT_FOUND")
		default:
			response.DatabaseError(c, "Failed to create booking")
		}
		return
	}

	response.Created(c, booking, "Booking requested")
}

// List godoc
// @Summary List the caller's bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by side (owner|sitter)"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page (max 50)"
// @Success 200 {object} response.APIResponse
// @Router /bookings [get]
func (h *Handler) List(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	bookings, total, err := h.repo.ListForUser(c.Request.Context(), user.ID, query.Role, query.Status, query.Page, query.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch bookings")
		return
	}

	response.Paginated(c, bookings, total, query.Limit, query.Page)
}

// Get godoc
// @Summary Get a booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} response.APIResponse{data=Booking}
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /bookings/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid booking ID", "INVALID_ID")
		return
	}

	booking, err := h.repo.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Booking not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to fetch booking")
		return
	}

	if booking.RoleOf(user.ID) == "" {
		response.Forbidden(c, "You are not a party to this booking", "NOT_BOOKING_PARTY")
		return
	}

	response.Success(c, booking)
}

// Accept godoc
// @Summary Accept a pending booking (sitter)
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} response.APIResponse{data=Booking}
// @Failure 409 {object} response.APIResponse "Booking already decided"
// @Router /bookings/{id}/accept [post]
func (h *Handler) Accept(c *gin.Context) {
	h.applyAction(c, ActionAccept)
}

// Decline godoc
// @Summary Decline a pending booking (sitter)
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} response.APIResponse{data=Booking}
// @Failure 409 {object} response.APIResponse "Booking already decided"
// @Router /bookings/{id}/decline [post]
func (h *Handler) Decline(c *gin.Context) {
	h.applyAction(c, ActionDecline)
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} response.APIResponse{data=Booking}
// @Failure 409 {object} response.APIResponse "Booking already finished"
// @Router /bookings/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	h.applyAction(c, ActionCancel)
}

// Complete godoc
// @Summary Mark an accepted booking as completed (sitter)
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} response.APIResponse{data=Booking}
// @Failure 409 {object} response.APIResponse
// @Router /bookings/{id}/complete [post]
func (h *Handler) Complete(c *gin.Context) {
	h.applyAction(c, ActionComplete)
}

func (h *Handler) applyAction(c *gin.Context, action Action) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid booking ID", "INVALID_ID")
		return
	}

	booking, err := h.service.ApplyAction(c.Request.Context(), user.ID, bookingID, action)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			response.NotFound(c, "Booking not found", "NOT_FOUND")
		case errors.Is(err, apperrors.ErrNotBookingParty):
			response.Forbidden(c, err.Error(), "NOT_BOOKING_PARTY")
		case errors.Is(err, apperrors.ErrInvalidTransition):
			response.Conflict(c, err.Error(), "INVALID_TRANSITION")
		default:
			response.DatabaseError(c, "Failed to update booking")
		}
		return
	}

	response.Success(c, booking, "Booking "+string(booking.Status))
}

// SubmitReview godoc
// @Summary Review a completed booking (owner)
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body SubmitReviewRequest true "Rating and comment"
// @Success 201 {object} response.APIResponse{data=Review}
// @Failure 409 {object} response.APIResponse "Already reviewed or not completed"
// @Router /bookings/{id}/review [post]
func (h *Handler) SubmitReview(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid booking ID", "INVALID_ID")
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	review, err := h.service.SubmitReview(c.Request.Context(), user.ID, bookingID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			response.NotFound(c, "Booking not found", "NOT_FOUND")
		case errors.Is(err, apperrors.ErrNotBookingParty):
			response.Forbidden(c, err.Error(), "NOT_BOOKING_PARTY")
		case errors.Is(err, apperrors.ErrAlreadyReviewed):
			response.Conflict(c, "This booking has already been reviewed", "ALREADY_REVIEWED")
		case errors.Is(err, apperrors.ErrInvalidTransition):
			response.Conflict(c, err.Error(), "NOT_COMPLETED")
		default:
			response.DatabaseError(c, "Failed to submit review")
		}
		return
	}

	response.Created(c, review, "Review submitted")
}

// ListSitterReviews godoc
// @Summary List reviews for a sitter
// @Tags bookings
// @Produce json
// @Param id path string true "Sitter user ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page (max 50)"
// @Success 200 {object} response.APIResponse
// @Router /sitters/{id}/reviews [get]
func (h *Handler) ListSitterReviews(c *gin.Context) {
	sitterID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sitter ID", "INVALID_ID")
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	reviews, total, err := h.repo.ListReviewsForSitter(c.Request.Context(), sitterID, query.Page, query.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch reviews")
		return
	}

	response.Paginated(c, reviews, total, query.Limit, query.Page)
}
