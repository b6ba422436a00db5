package friends

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusDeclined RequestStatus = "declined"
)

// FriendRequest tracks the friendship state between two users. Its _id is the
// canonical pair key (both hex IDs sorted, colon-joined), so two users sending
// each other requests at the same time land on the same document and the
// duplicate insert loses.
type FriendRequest struct {
	PairID string `bson:"_id" json:"id"`

	FromID primitive.ObjectID `bson:"fromId" json:"fromId"`
	ToID   primitive.ObjectID `bson:"toId" json:"toId"`
	Status RequestStatus      `bson:"status" json:"status"`

	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	RespondedAt *time.Time `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
}

type SendRequestRequest struct {
	UserID string `json:"userId" binding:"required"`
}
