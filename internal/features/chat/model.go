package chat

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is a two-person message thread. PairKey is the sorted
// participant pair, unique-indexed so concurrent creates collapse into one
// thread per pair.
type Conversation struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	PairKey      string               `bson:"pairKey" json:"-"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	CreatedBy    primitive.ObjectID   `bson:"createdBy" json:"createdBy"`

	LastMessage *MessagePreview `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`

	// UnreadCount maps participant hex ID to their unread message count
	UnreadCount map[string]int `bson:"unreadCount" json:"unreadCount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OtherParticipant returns the participant that is not the given user
func (c *Conversation) OtherParticipant(userID primitive.ObjectID) primitive.ObjectID {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return primitive.NilObjectID
}

// HasParticipant reports whether the user is part of the conversation
func (c *Conversation) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// MessagePreview is the denormalized last message stored on the conversation
type MessagePreview struct {
	SenderID primitive.ObjectID `bson:"senderId" json:"senderId"`
	Text     string             `bson:"text" json:"text"`
	SentAt   time.Time          `bson:"sentAt" json:"sentAt"`
}

// Message is a single chat message
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID primitive.ObjectID `bson:"conversationId" json:"conversationId"`
	SenderID       primitive.ObjectID `bson:"senderId" json:"senderId"`
	Text           string             `bson:"text" json:"text"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// PairKey returns the canonical key for an unordered user pair: both hex IDs
// sorted and joined with a colon. Both orderings of the same pair produce the
// same key.
func PairKey(a, b primitive.ObjectID) string {
	x, y := a.Hex(), b.Hex()
	if x > y {
		x, y = y, x
	}
	return x + ":" + y
}

// ParsePairKey splits a pair key back into its two hex IDs
func ParsePairKey(key string) (string, string, bool) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

type StartConversationRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}

type ListMessagesQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=50" binding:"min=1,max=100"`
}
