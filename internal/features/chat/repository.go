package chat

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

// Repository handles database interactions for conversations and messages
type Repository struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	conversations := db.Collection("conversations")
	messages := db.Collection("messages")

	_, _ = conversations.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			// One conversation per user pair
			Keys:    bson.D{{Key: "pairKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "updatedAt", Value: -1}}},
	})

	_, _ = messages.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})

	return &Repository{conversations: conversations, messages: messages}
}

// GetOrCreate returns the conversation for the pair, creating it if missing.
// The unique pairKey index makes concurrent creates converge on a single
// document: the loser's insert fails with a duplicate key error and we
// re-read the winner's document.
func (r *Repository) GetOrCreate(ctx context.Context, a, b, createdBy primitive.ObjectID) (*Conversation, bool, error) {
	key := PairKey(a, b)

	existing, err := r.GetByPairKey(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now()
	conv := &Conversation{
		PairKey:      key,
		Participants: []primitive.ObjectID{a, b},
		CreatedBy:    createdBy,
		UnreadCount:  map[string]int{a.Hex(): 0, b.Hex(): 0},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	result, err := r.conversations.InsertOne(ctx, conv)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			winner, getErr := r.GetByPairKey(ctx, key)
			if getErr != nil {
				return nil, false, getErr
			}
			if winner == nil {
				return nil, false, err
			}
			return winner, false, nil
		}
		return nil, false, err
	}

	conv.ID = result.InsertedID.(primitive.ObjectID)
	return conv, true, nil
}

func (r *Repository) GetByPairKey(ctx context.Context, key string) (*Conversation, error) {
	var conv Conversation
	err := r.conversations.FindOne(ctx, bson.M{"pairKey": key}).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (r *Repository) GetByID(ctx context.Context, conversationID primitive.ObjectID) (*Conversation, error) {
	var conv Conversation
	err := r.conversations.FindOne(ctx, bson.M{"_id": conversationID}).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// ListForUser returns the user's conversations, most recently active first
func (r *Repository) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.conversations.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conversations []Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	if conversations == nil {
		conversations = []Conversation{}
	}
	return conversations, nil
}

// CountStartedSince returns how many conversations the user has started since
// the given instant. Used by the monthly quota check; only threads the user
// created count against their quota.
func (r *Repository) CountStartedSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	return r.conversations.CountDocuments(ctx, bson.M{
		"createdBy": userID,
		"createdAt": bson.M{"$gte": since},
	})
}

// SendMessage stores the message, then updates the conversation's preview and
// bumps the recipient's unread counter.
func (r *Repository) SendMessage(ctx context.Context, conv *Conversation, senderID primitive.ObjectID, text string) (*Message, error) {
	now := time.Now()
	msg := &Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      now,
	}

	result, err := r.messages.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.ID = result.InsertedID.(primitive.ObjectID)

	recipient := conv.OtherParticipant(senderID)
	_, err = r.conversations.UpdateOne(ctx,
		bson.M{"_id": conv.ID},
		bson.M{
			"$set": bson.M{
				"lastMessage": MessagePreview{SenderID: senderID, Text: text, SentAt: now},
				"updatedAt":   now,
			},
			"$inc": bson.M{"unreadCount." + recipient.Hex(): 1},
		},
	)
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// ListMessages returns a page of messages, newest first
func (r *Repository) ListMessages(ctx context.Context, conversationID primitive.ObjectID, page, limit int) ([]Message, int64, error) {
	filter := bson.M{"conversationId": conversationID}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var messages []Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, 0, err
	}
	if messages == nil {
		messages = []Message{}
	}

	total, err := r.messages.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// MarkRead zeroes the user's unread counter on the conversation
func (r *Repository) MarkRead(ctx context.Context, conversationID, userID primitive.ObjectID) error {
	_, err := r.conversations.UpdateOne(ctx,
		bson.M{"_id": conversationID, "participants": userID},
		bson.M{"$set": bson.M{"unreadCount." + userID.Hex(): 0}},
	)
	return err
}

// DeleteAllForUser removes the user's conversations and their messages
// (account deletion cascade)
func (r *Repository) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	conversations, err := r.ListForUser(ctx, userID)
	if err != nil {
		return err
	}

	ids := make([]primitive.ObjectID, 0, len(conversations))
	for _, conv := range conversations {
		ids = append(ids, conv.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	if _, err := r.messages.DeleteMany(ctx, bson.M{"conversationId": bson.M{"$in": ids}}); err != nil {
		return err
	}
	_, err = r.conversations.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}
