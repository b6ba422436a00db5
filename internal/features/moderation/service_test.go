package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIsSevereReason(t *testing.T) {
	assert.True(t, IsSevereReason(ReasonChildSafety))
	assert.True(t, IsSevereReason(ReasonViolence))
	assert.True(t, IsSevereReason(ReasonSelfHarm))

	assert.False(t, IsSevereReason(ReasonSpam))
	assert.False(t, IsSevereReason(ReasonHarassment))
	assert.False(t, IsSevereReason(ReasonHateSpeech))
	assert.False(t, IsSevereReason(ReasonOther))
	assert.False(t, IsSevereReason(""))
}

func TestShouldAutoHide(t *testing.T) {
	// Below the threshold, ordinary reasons do nothing
	assert.False(t, ShouldAutoHide(1, ReasonSpam))
	assert.False(t, ShouldAutoHide(2, ReasonHarassment))

	// The third open report hides regardless of reason
	assert.True(t, ShouldAutoHide(3, ReasonSpam))
	assert.True(t, ShouldAutoHide(5, ReasonOther))

	// Severe reasons hide on the very first report
	assert.True(t, ShouldAutoHide(1, ReasonChildSafety))
	assert.True(t, ShouldAutoHide(1, ReasonViolence))
	assert.True(t, ShouldAutoHide(1, ReasonSelfHarm))
}

func TestIsBanActive(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, IsBanActive(nil, now), "no flags means no ban")
	assert.False(t, IsBanActive(&UserFlags{Banned: false}, now))

	// Permanent ban: banned with no expiry
	assert.True(t, IsBanActive(&UserFlags{Banned: true}, now))

	// Timed ban still in force
	assert.True(t, IsBanActive(&UserFlags{Banned: true, BanExpiresAt: &future}, now))

	// Expired ban is no longer active
	assert.False(t, IsBanActive(&UserFlags{Banned: true, BanExpiresAt: &past}, now))

	// Expiry exactly now counts as expired
	assert.False(t, IsBanActive(&UserFlags{Banned: true, BanExpiresAt: &now}, now))
}

func TestValidReason(t *testing.T) {
	for _, reason := range []string{
		ReasonSpam, ReasonHarassment, ReasonChildSafety,
		ReasonViolence, ReasonSelfHarm, ReasonHateSpeech, ReasonOther,
	} {
		assert.True(t, ValidReason(reason), reason)
	}

	assert.False(t, ValidReason("rudeness"))
	assert.False(t, ValidReason(""))
}

func TestTargetTypeValid(t *testing.T) {
	assert.True(t, TargetPost.Valid())
	assert.True(t, TargetComment.Valid())
	assert.True(t, TargetUser.Valid())
	assert.False(t, TargetType("pet").Valid())
}

func TestAutoBanConstants(t *testing.T) {
	assert.Equal(t, "Auto-ban: 3 strikes", AutoBanReason)
	assert.Equal(t, 7*24*time.Hour, AutoBanDuration)
	assert.Equal(t, 3, StrikeBanThreshold)
	assert.Equal(t, 3, AutoHideThreshold)
}

// fakeStore drives the escalation rules without a database. Hides flip at
// most once, mirroring the conditional writes in the repository.
type fakeStore struct {
	openReport    *Report
	pending       int64
	postHidden    bool
	commentHidden bool
	strikes       int
	flags         *UserFlags
	recentPosts   int64
	recentReports int64

	created     []*Report
	actions     []ActionType
	banReasons  []string
	banExpiries []*time.Time
	clears      int
}

func (f *fakeStore) CreateReport(ctx context.Context, report *Report) error {
	report.ID = primitive.NewObjectID()
	f.created = append(f.created, report)
	return nil
}

func (f *fakeStore) GetOpenReport(ctx context.Context, reporterID, targetID primitive.ObjectID, targetType TargetType) (*Report, error) {
	return f.openReport, nil
}

func (f *fakeStore) CountPendingReports(ctx context.Context, targetType TargetType, targetID primitive.ObjectID) (int64, error) {
	return f.pending, nil
}

func (f *fakeStore) MarkTargetReportsReviewed(ctx context.Context, targetType TargetType, targetID primitive.ObjectID) (int64, error) {
	swept := f.pending
	f.pending = 0
	return swept, nil
}

func (f *fakeStore) CloseReport(ctx context.Context, reportID, reviewerID primitive.ObjectID, status ReportStatus) (*Report, error) {
	return &Report{ID: reportID, Status: status}, nil
}

func (f *fakeStore) CountRecentPosts(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	return f.recentPosts, nil
}

func (f *fakeStore) CountRecentReports(ctx context.Context, reporterID primitive.ObjectID, since time.Time) (int64, error) {
	return f.recentReports, nil
}

func (f *fakeStore) HidePost(ctx context.Context, postID primitive.ObjectID) (bool, error) {
	if f.postHidden {
		return false, nil
	}
	f.postHidden = true
	return true, nil
}

func (f *fakeStore) HideComment(ctx context.Context, commentID primitive.ObjectID) (bool, error) {
	if f.commentHidden {
		return false, nil
	}
	f.commentHidden = true
	return true, nil
}

func (f *fakeStore) AddStrike(ctx context.Context, userID primitive.ObjectID) (int, error) {
	f.strikes++
	return f.strikes, nil
}

func (f *fakeStore) GetUserFlags(ctx context.Context, userID primitive.ObjectID) (*UserFlags, error) {
	return f.flags, nil
}

func (f *fakeStore) SetBan(ctx context.Context, userID primitive.ObjectID, reason string, expiresAt *time.Time) error {
	f.banReasons = append(f.banReasons, reason)
	f.banExpiries = append(f.banExpiries, expiresAt)
	return nil
}

func (f *fakeStore) ClearBan(ctx context.Context, userID primitive.ObjectID) error {
	f.clears++
	return nil
}

func (f *fakeStore) LogAction(ctx context.Context, action *ModerationAction) error {
	f.actions = append(f.actions, action.Action)
	return nil
}

func (f *fakeStore) countActions(t ActionType) int {
	n := 0
	for _, a := range f.actions {
		if a == t {
			n++
		}
	}
	return n
}

func TestStrikeBanBoundary(t *testing.T) {
	userID := primitive.NewObjectID()
	f := &fakeStore{strikes: 1}
	svc := NewService(f)

	// Second strike stays below the threshold
	require.NoError(t, svc.AddStrike(context.Background(), userID, ReasonSpam))
	require.Equal(t, 2, f.strikes)
	require.Empty(t, f.banReasons)

	// Third strike bans for exactly the auto-ban duration
	require.NoError(t, svc.AddStrike(context.Background(), userID, ReasonSpam))
	require.Equal(t, 3, f.strikes)
	require.Equal(t, []string{AutoBanReason}, f.banReasons)
	require.NotNil(t, f.banExpiries[0])
	require.WithinDuration(t, time.Now().Add(AutoBanDuration), *f.banExpiries[0], time.Minute)
	require.Equal(t, 1, f.countActions(ActionUserBanned))

	// Fourth strike does not re-ban
	require.NoError(t, svc.AddStrike(context.Background(), userID, ReasonSpam))
	require.Equal(t, 4, f.strikes)
	require.Len(t, f.banReasons, 1)
	require.Equal(t, 1, f.countActions(ActionUserBanned))
}

func TestRepeatReportReturnsExisting(t *testing.T) {
	existing := &Report{ID: primitive.NewObjectID(), Status: ReportPending}
	f := &fakeStore{openReport: existing}
	svc := NewService(f)

	req := CreateReportRequest{
		TargetType: TargetPost,
		TargetID:   primitive.NewObjectID().Hex(),
		Reason:     ReasonSpam,
	}
	report, created, err := svc.CreateReport(context.Background(), primitive.NewObjectID(), req, primitive.NewObjectID())
	require.NoError(t, err)
	require.False(t, created)
	require.Same(t, existing, report)
	require.Empty(t, f.created)
	require.Zero(t, f.strikes)
}

func TestEscalationBelowThreshold(t *testing.T) {
	for _, target := range []TargetType{TargetPost, TargetComment, TargetUser} {
		f := &fakeStore{pending: 2}
		svc := NewService(f)

		req := CreateReportRequest{
			TargetType: target,
			TargetID:   primitive.NewObjectID().Hex(),
			Reason:     ReasonHarassment,
		}
		_, created, err := svc.CreateReport(context.Background(), primitive.NewObjectID(), req, primitive.NewObjectID())
		require.NoError(t, err)
		require.True(t, created)

		require.False(t, f.postHidden, "%s", target)
		require.False(t, f.commentHidden, "%s", target)
		require.Zero(t, f.strikes, "%s", target)
	}
}

func TestPostEscalationAtThreshold(t *testing.T) {
	f := &fakeStore{pending: AutoHideThreshold}
	svc := NewService(f)

	req := CreateReportRequest{
		TargetType: TargetPost,
		TargetID:   primitive.NewObjectID().Hex(),
		Reason:     ReasonSpam,
	}
	_, created, err := svc.CreateReport(context.Background(), primitive.NewObjectID(), req, primitive.NewObjectID())
	require.NoError(t, err)
	require.True(t, created)

	require.True(t, f.postHidden)
	require.Equal(t, 1, f.strikes)
	require.Equal(t, 1, f.countActions(ActionPostHidden))
	require.Equal(t, 1, f.countActions(ActionStrikeAdded))
}

func TestCommentEscalationAtThreshold(t *testing.T) {
	f := &fakeStore{pending: AutoHideThreshold}
	svc := NewService(f)

	req := CreateReportRequest{
		TargetType: TargetComment,
		TargetID:   primitive.NewObjectID().Hex(),
		Reason:     ReasonSpam,
	}
	_, created, err := svc.CreateReport(context.Background(), primitive.NewObjectID(), req, primitive.NewObjectID())
	require.NoError(t, err)
	require.True(t, created)

	require.True(t, f.commentHidden)
	require.False(t, f.postHidden)
	require.Equal(t, 1, f.strikes)
	require.Equal(t, 1, f.countActions(ActionCommentHidden))
	require.Equal(t, 1, f.countActions(ActionStrikeAdded))
}

func TestPostEscalationAlreadyHidden(t *testing.T) {
	// Hidden content no longer strikes: the conditional write lost
	f := &fakeStore{pending: AutoHideThreshold, postHidden: true}
	svc := NewService(f)

	req := CreateReportRequest{
		TargetType: TargetPost,
		TargetID:   primitive.NewObjectID().Hex(),
		Reason:     ReasonSpam,
	}
	_, _, err := svc.CreateReport(context.Background(), primitive.NewObjectID(), req, primitive.NewObjectID())
	require.NoError(t, err)
	require.Zero(t, f.strikes)
	require.Empty(t, f.actions)
}

func TestUserReportEscalation(t *testing.T) {
	target := primitive.NewObjectID()
	f := &fakeStore{pending: 1}
	svc := NewService(f)

	req := CreateReportRequest{
		TargetType: TargetUser,
		TargetID:   target.Hex(),
		Reason:     ReasonChildSafety,
	}
	_, created, err := svc.CreateReport(context.Background(), primitive.NewObjectID(), req, target)
	require.NoError(t, err)
	require.True(t, created)

	// A severe user report strikes without hiding anything
	require.Equal(t, 1, f.strikes)
	require.False(t, f.postHidden)
	require.False(t, f.commentHidden)

	// A second escalation finds the reports already consumed and adds nothing
	_, created, err = svc.CreateReport(context.Background(), primitive.NewObjectID(), req, target)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, 1, f.strikes)
}

func TestCheckRateLimitActions(t *testing.T) {
	f := &fakeStore{recentPosts: RateLimitMaxPosts, recentReports: RateLimitMaxReports - 1}
	svc := NewService(f)
	userID := primitive.NewObjectID()

	allowed, err := svc.CheckRateLimit(context.Background(), userID, RateLimitActionPost, RateLimitMaxPosts)
	require.NoError(t, err)
	require.False(t, allowed)

	allowed, err = svc.CheckRateLimit(context.Background(), userID, RateLimitActionReport, RateLimitMaxReports)
	require.NoError(t, err)
	require.True(t, allowed)

	_, err = svc.CheckRateLimit(context.Background(), userID, "login", 10)
	require.Error(t, err)
}

func TestIsUserBannedLazyExpiry(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	f := &fakeStore{flags: &UserFlags{Banned: true, BanExpiresAt: &past}}
	svc := NewService(f)

	banned, err := svc.IsUserBanned(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	require.False(t, banned)
	require.Equal(t, 1, f.clears)
}
