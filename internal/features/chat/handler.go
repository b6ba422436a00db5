package chat

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/features/premium"
	"github.com/odalea-app/odalea-api/internal/pkg/response"
	"github.com/odalea-app/odalea-api/internal/pkg/validator"
	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

// BanChecker gates messaging for banned users. Implemented by the moderation
// service; an interface here keeps moderation free of chat imports.
type BanChecker interface {
	IsUserBanned(ctx context.Context, userID primitive.ObjectID) (bool, error)
}

type Handler struct {
	repo   *Repository
	users  *auth.Repository
	quotas *premium.Service
	bans   BanChecker
}

func NewHandler(repo *Repository, users *auth.Repository, quotas *premium.Service, bans BanChecker) *Handler {
	return &Handler{
		repo:   repo,
		users:  users,
		quotas: quotas,
		bans:   bans,
	}
}

func (h *Handler) rejectIfBanned(c *gin.Context, userID primitive.ObjectID) bool {
	if h.bans == nil {
		return false
	}
	banned, err := h.bans.IsUserBanned(c.Request.Context(), userID)
	if err != nil {
		response.DatabaseError(c, "Failed to check account status")
		return true
	}
	if banned {
		response.Forbidden(c, "Your account is suspended", "ACCOUNT_BANNED")
		return true
	}
	return false
}

// StartConversation godoc
// @Summary Start (or reopen) a conversation with another user
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StartConversationRequest true "Recipient"
// @Success 200 {object} response.APIResponse{data=Conversation} "Existing conversation"
// @Success 201 {object} response.APIResponse{data=Conversation} "New conversation"
// @Failure 403 {object} response.APIResponse "Monthly conversation limit reached"
// @Router /conversations [post]
func (h *Handler) StartConversation(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}
	if h.rejectIfBanned(c, user.ID) {
		return
	}

	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	// Seed/demo keys from fixtures are never real accounts
	if !validator.IsValidAccountID(req.RecipientID) {
		response.BadRequest(c, "Invalid recipient ID", "INVALID_ID")
		return
	}
	recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		response.BadRequest(c, "Invalid recipient ID", "INVALID_ID")
		return
	}
	if recipientID == user.ID {
		response.BadRequest(c, "Cannot start a conversation with yourself", "SELF_CONVERSATION")
		return
	}

	recipient, err := h.users.GetUser(c.Request.Context(), recipientID)
	if err != nil {
		response.DatabaseError(c, "Failed to look up user")
		return
	}
	if recipient == nil {
		response.NotFound(c, "User not found", "USER_NOT_FOUND")
		return
	}

	// Reopening an existing thread never counts against the monthly quota
	existing, err := h.repo.GetByPairKey(c.Request.Context(), PairKey(user.ID, recipientID))
	if err != nil {
		response.DatabaseError(c, "Failed to check conversation")
		return
	}
	if existing != nil {
		response.Success(c, existing)
		return
	}

	allowed, err := h.quotas.CheckMessageLimit(c.Request.Context(), user)
	if err != nil {
		response.DatabaseError(c, "Failed to check conversation limit")
		return
	}
	if !allowed {
		response.Forbidden(c, "Free accounts can start 3 conversations per month. Upgrade to premium for unlimited messaging.", "CONVERSATION_LIMIT_REACHED")
		return
	}

	conv, created, err := h.repo.GetOrCreate(c.Request.Context(), user.ID, recipientID, user.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to start conversation")
		return
	}

	if created {
		response.Created(c, conv, "Conversation started")
		return
	}
	response.Success(c, conv)
}

// ListConversations godoc
// @Summary List the caller's conversations
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=[]Conversation}
// @Router /conversations [get]
func (h *Handler) ListConversations(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	conversations, err := h.repo.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch conversations")
		return
	}

	response.Success(c, conversations)
}

// SendMessage godoc
// @Summary Send a message in a conversation
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param request body SendMessageRequest true "Message text"
// @Success 201 {object} response.APIResponse{data=Message}
// @Failure 403 {object} response.APIResponse
// @Router /conversations/{id}/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}
	if h.rejectIfBanned(c, user.ID) {
		return
	}

	conversationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid conversation ID", "INVALID_ID")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	conv, err := h.repo.GetByID(c.Request.Context(), conversationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Conversation not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to fetch conversation")
		return
	}
	if !conv.HasParticipant(user.ID) {
		response.Forbidden(c, "You are not part of this conversation", "NOT_PARTICIPANT")
		return
	}

	msg, err := h.repo.SendMessage(c.Request.Context(), conv, user.ID, req.Text)
	if err != nil {
		response.DatabaseError(c, "Failed to send message")
		return
	}

	response.Created(c, msg, "Message sent")
}

// ListMessages godoc
// @Summary List messages in a conversation
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page (max 100)"
// @Success 200 {object} response.APIResponse
// @Router /conversations/{id}/messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	conversationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid conversation ID", "INVALID_ID")
		return
	}

	var query ListMessagesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	conv, err := h.repo.GetByID(c.Request.Context(), conversationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Conversation not found", "NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to fetch conversation")
		return
	}
	if !conv.HasParticipant(user.ID) {
		response.Forbidden(c, "You are not part of this conversation", "NOT_PARTICIPANT")
		return
	}

	messages, total, err := h.repo.ListMessages(c.Request.Context(), conversationID, query.Page, query.Limit)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch messages")
		return
	}

	response.Paginated(c, messages, total, query.Limit, query.Page)
}

// MarkRead godoc
// @Summary Mark a conversation as read
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} response.APIResponse
// @Router /conversations/{id}/read [post]
func (h *Handler) MarkRead(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	conversationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid conversation ID", "INVALID_ID")
		return
	}

	if err := h.repo.MarkRead(c.Request.Context(), conversationID, user.ID); err != nil {
		response.DatabaseError(c, "Failed to mark conversation as read")
		return
	}

	response.Success(c, nil, "Conversation marked as read")
}
