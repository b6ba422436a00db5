package friends

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/pkg/response"
	"github.com/odalea-app/odalea-api/internal/pkg/validator"
	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

type Handler struct {
	service *Service
	repo    *Repository
	users   *auth.Repository
}

func NewHandler(service *Service, repo *Repository, users *auth.Repository) *Handler {
	return &Handler{service: service, repo: repo, users: users}
}

// SendRequest godoc
// @Summary Send a friend request
// @Tags friends
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SendRequestRequest true "Target user"
// @Success 201 {object} response.APIResponse{data=FriendRequest}
// @Failure 409 {object} response.APIResponse "Request already sent or already friends"
// @Router /friends/requests [post]
func (h *Handler) SendRequest(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	var req SendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	// Seed/demo keys from fixtures are never real accounts
	if !validator.IsValidAccountID(req.UserID) {
		response.BadRequest(c, "Invalid user ID", "INVALID_ID")
		return
	}
	toID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		response.BadRequest(c, "Invalid user ID", "INVALID_ID")
		return
	}

	request, err := h.service.SendRequest(c.Request.Context(), user, toID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			response.BadRequest(c, err.Error(), "VALIDATION_ERROR")
		case errors.Is(err, apperrors.ErrNotFound):
			response.NotFound(c, "User not found", "USER_NOT_FOUND")
		case errors.Is(err, apperrors.ErrDuplicate):
			response.Conflict(c, err.Error(), "DUPLICATE_REQUEST")
		default:
			response.DatabaseError(c, "Failed to send friend request")
		}
		return
	}

	if request.Status == StatusAccepted {
		response.Success(c, request, "You are now friends")
		return
	}
	response.Created(c, request, "Friend request sent")
}

// ListRequests godoc
// @Summary List pending friend requests
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param direction query string false "incoming (default) or outgoing"
// @Success 200 {object} response.APIResponse{data=[]FriendRequest}
// @Router /friends/requests [get]
func (h *Handler) ListRequests(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	var (
		requests []FriendRequest
		err      error
	)
	if c.Query("direction") == "outgoing" {
		requests, err = h.repo.ListOutgoing(c.Request.Context(), user.ID)
	} else {
		requests, err = h.repo.ListIncoming(c.Request.Context(), user.ID)
	}
	if err != nil {
		response.DatabaseError(c, "Failed to fetch friend requests")
		return
	}

	response.Success(c, requests)
}

// Accept godoc
// @Summary Accept a friend request
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Requester's user ID"
// @Success 200 {object} response.APIResponse{data=FriendRequest}
// @Failure 404 {object} response.APIResponse "No pending request from this user"
// @Router /friends/requests/{userId}/accept [post]
func (h *Handler) Accept(c *gin.Context) {
	h.respond(c, true)
}

// Decline godoc
// @Summary Decline a friend request
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Requester's user ID"
// @Success 200 {object} response.APIResponse{data=FriendRequest}
// @Failure 404 {object} response.APIResponse "No pending request from this user"
// @Router /friends/requests/{userId}/decline [post]
func (h *Handler) Decline(c *gin.Context) {
	h.respond(c, false)
}

func (h *Handler) respond(c *gin.Context, accept bool) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	otherID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID", "INVALID_ID")
		return
	}

	var request *FriendRequest
	if accept {
		request, err = h.service.Accept(c.Request.Context(), user, otherID)
	} else {
		request, err = h.service.Decline(c.Request.Context(), user, otherID)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "No pending request from this user", "REQUEST_NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to respond to friend request")
		return
	}

	if accept {
		response.Success(c, request, "Friend request accepted")
	} else {
		response.Success(c, request, "Friend request declined")
	}
}

// ListFriends godoc
// @Summary List the caller's friends
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /friends [get]
func (h *Handler) ListFriends(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	friends, err := h.users.GetUsersByIDs(c.Request.Context(), user.Friends)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch friends")
		return
	}

	public := make([]interface{}, 0, len(friends))
	for i := range friends {
		public = append(public, friends[i].ToPublicUser())
	}

	response.Success(c, public)
}

// Unfriend godoc
// @Summary Remove a friend
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Friend's user ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /friends/{userId} [delete]
func (h *Handler) Unfriend(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	otherID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID", "INVALID_ID")
		return
	}

	if err := h.service.Unfriend(c.Request.Context(), user, otherID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "This user is not in your friends", "NOT_FRIENDS")
			return
		}
		response.DatabaseError(c, "Failed to remove friend")
		return
	}

	response.Success(c, nil, "Friend removed")
}
