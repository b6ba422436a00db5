package premium

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odalea-app/odalea-api/internal/features/auth"
)

type fakePetCounter struct {
	pets    int64
	gallery int64
}

func (f *fakePetCounter) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	return f.pets, nil
}

func (f *fakePetCounter) CountGalleryPhotos(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	return f.gallery, nil
}

type fakeConversationCounter struct {
	started int64
}

func (f *fakeConversationCounter) CountStartedSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	return f.started, nil
}

func freeUser() *auth.User {
	return &auth.User{ID: primitive.NewObjectID()}
}

func premiumUser() *auth.User {
	return &auth.User{ID: primitive.NewObjectID(), IsPremium: true}
}

func TestCheckMessageLimit(t *testing.T) {
	convos := &fakeConversationCounter{started: 3}
	svc := NewService(nil, &fakePetCounter{}, convos, DefaultLimits())

	// Free user at the monthly cap is denied
	ok, err := svc.CheckMessageLimit(context.Background(), freeUser())
	require.NoError(t, err)
	require.False(t, ok)

	// Premium bypasses the cap regardless of count
	ok, err = svc.CheckMessageLimit(context.Background(), premiumUser())
	require.NoError(t, err)
	require.True(t, ok)

	// Under the cap passes
	convos.started = 2
	ok, err = svc.CheckMessageLimit(context.Background(), freeUser())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCheckPetAndGalleryLimits(t *testing.T) {
	pets := &fakePetCounter{pets: 1, gallery: 3}
	svc := NewService(nil, pets, &fakeConversationCounter{}, DefaultLimits())

	ok, err := svc.CheckPetLimit(context.Background(), freeUser())
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.CheckGalleryLimit(context.Background(), freeUser())
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.CheckPetLimit(context.Background(), premiumUser())
	require.NoError(t, err)
	require.True(t, ok)

	pets.pets = 0
	pets.gallery = 2
	ok, err = svc.CheckPetLimit(context.Background(), freeUser())
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.CheckGalleryLimit(context.Background(), freeUser())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVetAssistantDayRollover(t *testing.T) {
	svc := NewService(nil, &fakePetCounter{}, &fakeConversationCounter{}, DefaultLimits())

	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)

	// Counter exhausted yesterday: a new UTC day restores the full quota
	// regardless of the stored count.
	user := freeUser()
	user.VetAssistant = auth.VetAssistantUsage{Count: 3, LastResetAt: yesterday}
	require.Equal(t, 3, svc.RemainingVetAssistantQuestions(user, now))
	require.True(t, svc.CheckVetAssistantLimit(user, now))

	// Same day: stored count applies
	user.VetAssistant = auth.VetAssistantUsage{Count: 3, LastResetAt: now.Add(-time.Hour)}
	require.Equal(t, 0, svc.RemainingVetAssistantQuestions(user, now))
	require.False(t, svc.CheckVetAssistantLimit(user, now))

	user.VetAssistant = auth.VetAssistantUsage{Count: 2, LastResetAt: now.Add(-time.Hour)}
	require.Equal(t, 1, svc.RemainingVetAssistantQuestions(user, now))
	require.True(t, svc.CheckVetAssistantLimit(user, now))
}

func TestVetAssistantPremiumUnlimited(t *testing.T) {
	svc := NewService(nil, &fakePetCounter{}, &fakeConversationCounter{}, DefaultLimits())

	user := premiumUser()
	user.VetAssistant = auth.VetAssistantUsage{Count: 99, LastResetAt: time.Now()}
	require.True(t, svc.CheckVetAssistantLimit(user, time.Now()))
	require.Equal(t, -1, svc.RemainingVetAssistantQuestions(user, time.Now()))
}

func TestIsPremiumExpiry(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	user := premiumUser()
	require.True(t, IsPremium(user, now))

	user.PremiumUntil = &future
	require.True(t, IsPremium(user, now))

	user.PremiumUntil = &past
	require.False(t, IsPremium(user, now))
}

func TestSameUTCDay(t *testing.T) {
	// 23:30 UTC and 00:30 UTC the next day are different days even though
	// they are an hour apart.
	a := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	b := time.Date(2025, 6, 2, 0, 30, 0, 0, time.UTC)
	require.False(t, sameUTCDay(a, b))

	// A non-UTC zone normalizes to the same UTC day
	loc := time.FixedZone("UTC+2", 2*3600)
	c := time.Date(2025, 6, 2, 1, 0, 0, 0, loc) // 23:00 UTC on June 1
	require.True(t, sameUTCDay(a, c))
}
