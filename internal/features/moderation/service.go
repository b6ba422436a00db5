package moderation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

const (
	// AutoHideThreshold is the number of open reports that hides content
	// without moderator involvement
	AutoHideThreshold = 3

	// StrikeBanThreshold is the strike count that triggers an automatic ban
	StrikeBanThreshold = 3

	// AutoBanDuration is how long an automatic three-strikes ban lasts
	AutoBanDuration = 7 * 24 * time.Hour

	// AutoBanReason is the recorded reason for an automatic ban
	AutoBanReason = "Auto-ban: 3 strikes"

	// RateLimitMaxPosts and RateLimitMaxReports are the advisory per-user
	// caps per trailing hour
	RateLimitMaxPosts   = 10
	RateLimitMaxReports = 10

	// Action kinds counted by CheckRateLimit
	RateLimitActionPost   = "post"
	RateLimitActionReport = "report"
)

// severeReasons hide content on the first report instead of waiting for the
// threshold
var severeReasons = map[string]bool{
	ReasonChildSafety: true,
	ReasonViolence:    true,
	ReasonSelfHarm:    true,
}

// IsSevereReason reports whether the reason escalates immediately
func IsSevereReason(reason string) bool {
	return severeReasons[reason]
}

// ShouldAutoHide decides whether content with the given open report count and
// latest reason should be hidden
func ShouldAutoHide(pendingReports int64, reason string) bool {
	return pendingReports >= AutoHideThreshold || IsSevereReason(reason)
}

// IsBanActive reports whether the flags describe a ban in force at the given
// instant. A nil expiry is a permanent ban.
func IsBanActive(flags *UserFlags, now time.Time) bool {
	if flags == nil || !flags.Banned {
		return false
	}
	if flags.BanExpiresAt != nil && !flags.BanExpiresAt.After(now) {
		return false
	}
	return true
}

// Store is the persistence surface the escalation rules run against.
// *Repository implements it.
type Store interface {
	CreateReport(ctx context.Context, report *Report) error
	GetOpenReport(ctx context.Context, reporterID, targetID primitive.ObjectID, targetType TargetType) (*Report, error)
	CountPendingReports(ctx context.Context, targetType TargetType, targetID primitive.ObjectID) (int64, error)
	MarkTargetReportsReviewed(ctx context.Context, targetType TargetType, targetID primitive.ObjectID) (int64, error)
	CloseReport(ctx context.Context, reportID, reviewerID primitive.ObjectID, status ReportStatus) (*Report, error)
	CountRecentPosts(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error)
	CountRecentReports(ctx context.Context, reporterID primitive.ObjectID, since time.Time) (int64, error)
	HidePost(ctx context.Context, postID primitive.ObjectID) (bool, error)
	HideComment(ctx context.Context, commentID primitive.ObjectID) (bool, error)
	AddStrike(ctx context.Context, userID primitive.ObjectID) (int, error)
	GetUserFlags(ctx context.Context, userID primitive.ObjectID) (*UserFlags, error)
	SetBan(ctx context.Context, userID primitive.ObjectID, reason string, expiresAt *time.Time) error
	ClearBan(ctx context.Context, userID primitive.ObjectID) error
	LogAction(ctx context.Context, action *ModerationAction) error
}

// Service owns report intake, the escalation rules and the ban lifecycle
type Service struct {
	repo Store
}

func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// CreateReport files a report and runs the auto-moderation rules against the
// target. A reporter keeps at most one open report per target; re-reporting
// returns the existing report instead of creating another. The bool result
// tells whether a new report was filed.
func (s *Service) CreateReport(ctx context.Context, reporterID primitive.ObjectID, req CreateReportRequest, authorID primitive.ObjectID) (*Report, bool, error) {
	if !req.TargetType.Valid() {
		return nil, false, fmt.Errorf("%w: invalid target type %q", apperrors.ErrValidation, req.TargetType)
	}
	if !ValidReason(req.Reason) {
		return nil, false, fmt.Errorf("%w: invalid report reason %q", apperrors.ErrValidation, req.Reason)
	}

	targetID, err := primitive.ObjectIDFromHex(req.TargetID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: invalid target ID", apperrors.ErrValidation)
	}
	if authorID == reporterID {
		return nil, false, fmt.Errorf("%w: cannot report your own content", apperrors.ErrValidation)
	}

	existing, err := s.repo.GetOpenReport(ctx, reporterID, targetID, req.TargetType)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	report := &Report{
		ReporterID: reporterID,
		TargetType: req.TargetType,
		TargetID:   targetID,
		AuthorID:   authorID,
		Reason:     req.Reason,
		Details:    req.Details,
		Status:     ReportPending,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.CreateReport(ctx, report); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost an insert race against a double-submit; surface the winner
			if winner, lookupErr := s.repo.GetOpenReport(ctx, reporterID, targetID, req.TargetType); lookupErr == nil && winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, err
	}

	// Escalation failures never fail the report itself
	if err := s.checkAutoModeration(ctx, report); err != nil {
		log.Printf("moderation: auto-moderation for %s %s failed: %v",
			report.TargetType, report.TargetID.Hex(), err)
	}

	return report, true, nil
}

// checkAutoModeration applies the escalation rules after a new report: hide
// the content when the report volume or severity warrants it, strike the
// author, and ban the author at three strikes.
func (s *Service) checkAutoModeration(ctx context.Context, report *Report) error {
	pending, err := s.repo.CountPendingReports(ctx, report.TargetType, report.TargetID)
	if err != nil {
		return err
	}
	if !ShouldAutoHide(pending, report.Reason) {
		return nil
	}

	// The conditional hide makes the post and comment paths single-shot:
	// only the escalation that actually flips the flag proceeds to strike
	// the author. User targets have nothing to hide; there the pending-report
	// sweep below is the gate instead.
	switch report.TargetType {
	case TargetPost:
		hidden, err := s.repo.HidePost(ctx, report.TargetID)
		if err != nil {
			return err
		}
		if !hidden {
			return nil
		}
		if err := s.logAutoHide(ctx, ActionPostHidden, report); err != nil {
			return err
		}

	case TargetComment:
		hidden, err := s.repo.HideComment(ctx, report.TargetID)
		if err != nil {
			return err
		}
		if !hidden {
			return nil
		}
		if err := s.logAutoHide(ctx, ActionCommentHidden, report); err != nil {
			return err
		}
	}

	swept, err := s.repo.MarkTargetReportsReviewed(ctx, report.TargetType, report.TargetID)
	if err != nil {
		return err
	}
	if report.TargetType == TargetUser && swept == 0 {
		// A concurrent escalation already consumed these reports
		return nil
	}

	return s.AddStrike(ctx, report.AuthorID, report.Reason)
}

func (s *Service) logAutoHide(ctx context.Context, action ActionType, report *Report) error {
	return s.repo.LogAction(ctx, &ModerationAction{
		Action:     action,
		TargetType: report.TargetType,
		TargetID:   report.TargetID,
		Reason:     report.Reason,
		Automated:  true,
	})
}

// AddStrike increments the author's strike count and bans them when the
// total reaches the threshold. The increment returns the post-update count,
// so of two concurrent strikes exactly one observes the threshold and issues
// the ban.
func (s *Service) AddStrike(ctx context.Context, userID primitive.ObjectID, reason string) error {
	strikes, err := s.repo.AddStrike(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.LogAction(ctx, &ModerationAction{
		Action:     ActionStrikeAdded,
		TargetType: TargetUser,
		TargetID:   userID,
		Reason:     reason,
		Automated:  true,
	}); err != nil {
		return err
	}

	if strikes != StrikeBanThreshold {
		return nil
	}

	expires := time.Now().Add(AutoBanDuration)
	if err := s.repo.SetBan(ctx, userID, AutoBanReason, &expires); err != nil {
		return err
	}

	return s.repo.LogAction(ctx, &ModerationAction{
		Action:     ActionUserBanned,
		TargetType: TargetUser,
		TargetID:   userID,
		Reason:     AutoBanReason,
		Automated:  true,
	})
}

// IsUserBanned reports whether the user is currently banned. Expired bans are
// lifted lazily on first read past their expiry.
func (s *Service) IsUserBanned(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	flags, err := s.repo.GetUserFlags(ctx, userID)
	if err != nil {
		return false, err
	}
	if flags == nil || !flags.Banned {
		return false, nil
	}

	if !IsBanActive(flags, time.Now()) {
		if err := s.repo.ClearBan(ctx, userID); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// CheckRateLimit reports whether the user may perform another action of the
// given kind right now, counting their posts or reports created in the
// trailing hour. The check is advisory: it reads the count without reserving
// a slot.
func (s *Service) CheckRateLimit(ctx context.Context, userID primitive.ObjectID, action string, limitPerHour int) (bool, error) {
	since := time.Now().Add(-time.Hour)

	var (
		count int64
		err   error
	)
	switch action {
	case RateLimitActionPost:
		count, err = s.repo.CountRecentPosts(ctx, userID, since)
	case RateLimitActionReport:
		count, err = s.repo.CountRecentReports(ctx, userID, since)
	default:
		return false, fmt.Errorf("%w: unknown rate limit action %q", apperrors.ErrValidation, action)
	}
	if err != nil {
		return false, err
	}
	return count < int64(limitPerHour), nil
}

// BanUser issues a manual ban and records it in the audit log
func (s *Service) BanUser(ctx context.Context, actorID, userID primitive.ObjectID, reason string, days int) error {
	var expires *time.Time
	if days > 0 {
		t := time.Now().AddDate(0, 0, days)
		expires = &t
	}

	if err := s.repo.SetBan(ctx, userID, reason, expires); err != nil {
		return err
	}

	return s.repo.LogAction(ctx, &ModerationAction{
		ActorID:    &actorID,
		Action:     ActionUserBanned,
		TargetType: TargetUser,
		TargetID:   userID,
		Reason:     reason,
		Automated:  false,
	})
}

// UnbanUser lifts a ban and records it in the audit log
func (s *Service) UnbanUser(ctx context.Context, actorID, userID primitive.ObjectID) error {
	if err := s.repo.ClearBan(ctx, userID); err != nil {
		return err
	}

	return s.repo.LogAction(ctx, &ModerationAction{
		ActorID:    &actorID,
		Action:     ActionUserUnbanned,
		TargetType: TargetUser,
		TargetID:   userID,
		Automated:  false,
	})
}

// CloseReport resolves a report from the moderation console
func (s *Service) CloseReport(ctx context.Context, reviewerID, reportID primitive.ObjectID, dismiss bool) (*Report, error) {
	status := ReportReviewed
	if dismiss {
		status = ReportDismissed
	}

	report, err := s.repo.CloseReport(ctx, reportID, reviewerID, status)
	if err != nil {
		return nil, err
	}

	if err := s.repo.LogAction(ctx, &ModerationAction{
		ActorID:    &reviewerID,
		Action:     ActionReportClosed,
		TargetType: report.TargetType,
		TargetID:   report.TargetID,
		Reason:     string(status),
		Automated:  false,
	}); err != nil {
		return nil, err
	}

	return report, nil
}
