package premium

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/pkg/response"
	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type quotaStatus struct {
	IsPremium bool `json:"isPremium"`

	PetsUsed     int64 `json:"petsUsed"`
	PetsLimit    int   `json:"petsLimit"`
	GalleryUsed  int64 `json:"galleryUsed"`
	GalleryLimit int   `json:"galleryLimit"`

	ConversationsStarted int `json:"conversationsStartedThisMonth"`
	ConversationsLimit   int `json:"conversationsLimit"`

	VetQuestionsRemaining int `json:"vetQuestionsRemainingToday"`
	VetQuestionsLimit     int `json:"vetQuestionsLimit"`
}

// GetQuota godoc
// @Summary Get the caller's quota usage
// @Tags premium
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=quotaStatus}
// @Router /premium/quota [get]
func (h *Handler) GetQuota(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	ctx := c.Request.Context()
	now := time.Now()
	limits := h.service.Limits()

	pets, err := h.service.pets.CountByOwner(ctx, user.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch quota usage")
		return
	}
	gallery, err := h.service.pets.CountGalleryPhotos(ctx, user.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch quota usage")
		return
	}
	conversations, err := h.service.conversations.CountStartedSince(ctx, user.ID, monthStartUTC(now))
	if err != nil {
		response.DatabaseError(c, "Failed to fetch quota usage")
		return
	}

	response.Success(c, quotaStatus{
		IsPremium:             IsPremium(user, now),
		PetsUsed:              pets,
		PetsLimit:             limits.FreePets,
		GalleryUsed:           gallery,
		GalleryLimit:          limits.FreeGalleryPhotos,
		ConversationsStarted:  int(conversations),
		ConversationsLimit:    limits.FreeMonthlyConversations,
		VetQuestionsRemaining: h.service.RemainingVetAssistantQuestions(user, now),
		VetQuestionsLimit:     limits.FreeDailyVetQuestions,
	})
}

type askVetRequest struct {
	Question string `json:"question" binding:"required,min=5,max=1000"`
}

// AskVetAssistant godoc
// @Summary Consume a vet assistant question
// @Tags premium
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body askVetRequest true "The question"
// @Success 200 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse "Daily question limit reached"
// @Router /vet-assistant/questions [post]
func (h *Handler) AskVetAssistant(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	var req askVetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	remaining, err := h.service.IncrementVetAssistantCount(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, apperrors.ErrQuotaExceeded) {
			response.Forbidden(c, "Free accounts can ask 3 questions per day. Upgrade to premium for unlimited questions.", "VET_LIMIT_REACHED")
			return
		}
		response.DatabaseError(c, "Failed to record question")
		return
	}

	response.Success(c, gin.H{"remainingToday": remaining}, "Question accepted")
}
