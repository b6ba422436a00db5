package moderation

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportDismissed ReportStatus = "dismissed"
)

type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
	TargetUser    TargetType = "user"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetPost, TargetComment, TargetUser:
		return true
	}
	return false
}

// Report reasons. The severe ones trigger auto-moderation on the first report.
const (
	ReasonSpam        = "spam"
	ReasonHarassment  = "harassment"
	ReasonChildSafety = "child_safety"
	ReasonViolence    = "violence"
	ReasonSelfHarm    = "self_harm"
	ReasonHateSpeech  = "hate_speech"
	ReasonOther       = "other"
)

var validReasons = map[string]bool{
	ReasonSpam:        true,
	ReasonHarassment:  true,
	ReasonChildSafety: true,
	ReasonViolence:    true,
	ReasonSelfHarm:    true,
	ReasonHateSpeech:  true,
	ReasonOther:       true,
}

func ValidReason(reason string) bool {
	return validReasons[reason]
}

// Report is a user's complaint about a piece of content or another user
type Report struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReporterID primitive.ObjectID `bson:"reporterId" json:"reporterId"`
	TargetType TargetType         `bson:"targetType" json:"targetType"`
	TargetID   primitive.ObjectID `bson:"targetId" json:"targetId"`

	// AuthorID is the user who owns the reported content (the target itself
	// for user reports). Strikes land here.
	AuthorID primitive.ObjectID `bson:"authorId" json:"authorId"`

	Reason  string       `bson:"reason" json:"reason"`
	Details string       `bson:"details,omitempty" json:"details,omitempty"`
	Status  ReportStatus `bson:"status" json:"status"`

	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	ReviewedAt *time.Time          `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	ReviewedBy *primitive.ObjectID `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
}

// UserFlags is the per-user moderation state: strike count and ban status.
// One document per user, created on first strike or ban.
type UserFlags struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Strikes      int                `bson:"strikes" json:"strikes"`
	Banned       bool               `bson:"banned" json:"banned"`
	BanReason    string             `bson:"banReason,omitempty" json:"banReason,omitempty"`
	BanExpiresAt *time.Time         `bson:"banExpiresAt,omitempty" json:"banExpiresAt,omitempty"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Moderation action types for the audit log
type ActionType string

const (
	ActionPostHidden    ActionType = "post_hidden"
	ActionCommentHidden ActionType = "comment_hidden"
	ActionStrikeAdded   ActionType = "strike_added"
	ActionUserBanned    ActionType = "user_banned"
	ActionUserUnbanned  ActionType = "user_unbanned"
	ActionReportClosed  ActionType = "report_closed"
)

// ModerationAction is one entry in the append-only audit log. Automated
// entries have no actor.
type ModerationAction struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ActorID    *primitive.ObjectID `bson:"actorId,omitempty" json:"actorId,omitempty"`
	Action     ActionType          `bson:"action" json:"action"`
	TargetType TargetType          `bson:"targetType" json:"targetType"`
	TargetID   primitive.ObjectID  `bson:"targetId" json:"targetId"`
	Reason     string              `bson:"reason,omitempty" json:"reason,omitempty"`
	Automated  bool                `bson:"automated" json:"automated"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
}

type CreateReportRequest struct {
	TargetType TargetType `json:"targetType" binding:"required"`
	TargetID   string     `json:"targetId" binding:"required"`
	Reason     string     `json:"reason" binding:"required"`
	Details    string     `json:"details" binding:"omitempty,max=1000"`
}

type BanUserRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=200"`
	// Days of 0 means a permanent ban
	Days int `json:"days" binding:"min=0,max=365"`
}

type ListReportsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending reviewed dismissed"`
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=50"`
}
