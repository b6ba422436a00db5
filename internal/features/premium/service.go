package premium

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odalea-app/odalea-api/internal/features/auth"
	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

// Limits holds the free-tier quotas. Premium accounts bypass all of them.
type Limits struct {
	FreePets                 int
	FreeGalleryPhotos        int
	FreeMonthlyConversations int
	FreeDailyVetQuestions    int
}

// DefaultLimits returns the free-tier quota table
func DefaultLimits() Limits {
	return Limits{
		FreePets:                 1,
		FreeGalleryPhotos:        3,
		FreeMonthlyConversations: 3,
		FreeDailyVetQuestions:    3,
	}
}

// PetCounter is implemented by the pets repository
type PetCounter interface {
	CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
	CountGalleryPhotos(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
}

// ConversationCounter is implemented by the chat repository
type ConversationCounter interface {
	CountStartedSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error)
}

// Service owns the quota decisions for gated features. It holds no counters
// itself beyond what lives on the user document; per-feature counts are read
// through the store on each check.
type Service struct {
	users         *auth.Repository
	pets          PetCounter
	conversations ConversationCounter
	limits        Limits
}

func NewService(users *auth.Repository, pets PetCounter, conversations ConversationCounter, limits Limits) *Service {
	return &Service{
		users:         users,
		pets:          pets,
		conversations: conversations,
		limits:        limits,
	}
}

func (s *Service) Limits() Limits {
	return s.limits
}

// IsPremium reports whether the user currently has an active entitlement
func IsPremium(user *auth.User, now time.Time) bool {
	if !user.IsPremium {
		return false
	}
	if user.PremiumUntil != nil && user.PremiumUntil.Before(now) {
		return false
	}
	return true
}

// CheckPetLimit reports whether the user may register another pet
func (s *Service) CheckPetLimit(ctx context.Context, user *auth.User) (bool, error) {
	if IsPremium(user, time.Now()) {
		return true, nil
	}

	count, err := s.pets.CountByOwner(ctx, user.ID)
	if err != nil {
		return false, err
	}
	return count < int64(s.limits.FreePets), nil
}

// CheckGalleryLimit reports whether the user may add another gallery photo
func (s *Service) CheckGalleryLimit(ctx context.Context, user *auth.User) (bool, error) {
	if IsPremium(user, time.Now()) {
		return true, nil
	}

	count, err := s.pets.CountGalleryPhotos(ctx, user.ID)
	if err != nil {
		return false, err
	}
	return count < int64(s.limits.FreeGalleryPhotos), nil
}

// CheckMessageLimit reports whether the user may start another conversation
// this calendar month
func (s *Service) CheckMessageLimit(ctx context.Context, user *auth.User) (bool, error) {
	now := time.Now()
	if IsPremium(user, now) {
		return true, nil
	}

	count, err := s.conversations.CountStartedSince(ctx, user.ID, monthStartUTC(now))
	if err != nil {
		return false, err
	}
	return count < int64(s.limits.FreeMonthlyConversations), nil
}

// RemainingVetAssistantQuestions returns how many vet assistant questions the
// user has left today. The stored counter is treated as zero whenever its
// lastResetAt falls on a different UTC day than now; the reset itself is only
// materialized on the next increment.
func (s *Service) RemainingVetAssistantQuestions(user *auth.User, now time.Time) int {
	if IsPremium(user, now) {
		return -1 // unlimited
	}

	used := effectiveVetCount(user.VetAssistant, now)
	remaining := s.limits.FreeDailyVetQuestions - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// CheckVetAssistantLimit reports whether the user may ask another question today
func (s *Service) CheckVetAssistantLimit(user *auth.User, now time.Time) bool {
	if IsPremium(user, now) {
		return true
	}
	return effectiveVetCount(user.VetAssistant, now) < s.limits.FreeDailyVetQuestions
}

// IncrementVetAssistantCount consumes one vet assistant question, materializing
// the day rollover if needed. Returns the remaining count for today.
func (s *Service) IncrementVetAssistantCount(ctx context.Context, user *auth.User) (int, error) {
	now := time.Now()

	if !s.CheckVetAssistantLimit(user, now) {
		return 0, apperrors.ErrQuotaExceeded
	}

	usage := auth.VetAssistantUsage{
		Count:       effectiveVetCount(user.VetAssistant, now) + 1,
		LastResetAt: user.VetAssistant.LastResetAt,
	}
	if !sameUTCDay(user.VetAssistant.LastResetAt, now) {
		usage.LastResetAt = now
	}

	if err := s.users.SetVetAssistantUsage(ctx, user.ID, usage); err != nil {
		return 0, err
	}
	user.VetAssistant = usage

	return s.RemainingVetAssistantQuestions(user, now), nil
}

// effectiveVetCount applies the lazy day rollover without persisting it
func effectiveVetCount(usage auth.VetAssistantUsage, now time.Time) int {
	if !sameUTCDay(usage.LastResetAt, now) {
		return 0
	}
	return usage.Count
}

// sameUTCDay compares the server-side UTC calendar day of two instants.
// Client-local date strings are deliberately not used here.
func sameUTCDay(a, b time.Time) bool {
	return a.UTC().Format("2006-01-02") == b.UTC().Format("2006-01-02")
}

func monthStartUTC(now time.Time) time.Time {
	y, m, _ := now.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
