package friends

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

// Repository handles database interactions for friend requests
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("friendRequests")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "toId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "fromId", Value: 1}, {Key: "status", Value: 1}}},
	})

	return &Repository{collection: collection}
}

// Get returns the request document for a pair, or nil if none exists
func (r *Repository) Get(ctx context.Context, pairID string) (*FriendRequest, error) {
	var req FriendRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": pairID}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// Create inserts a new pending request. The pair key is the document _id, so
// a concurrent request for the same pair fails with ErrDuplicate.
func (r *Repository) Create(ctx context.Context, req *FriendRequest) error {
	_, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrDuplicate
		}
		return err
	}
	return nil
}

// Reopen flips a declined request back to pending with a new sender. The
// filter pins the declined status so it cannot clobber a pending or accepted
// document.
func (r *Repository) Reopen(ctx context.Context, pairID string, fromID, toID primitive.ObjectID) (*FriendRequest, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req FriendRequest
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": pairID, "status": StatusDeclined},
		bson.M{"$set": bson.M{
			"fromId":      fromID,
			"toId":        toID,
			"status":      StatusPending,
			"createdAt":   time.Now(),
			"respondedAt": nil,
		}},
		opts,
	).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrDuplicate
		}
		return nil, err
	}
	return &req, nil
}

// Resolve moves a pending request to accepted or declined. The responder must
// be the request's recipient and the status must still be pending, so only
// one response wins.
func (r *Repository) Resolve(ctx context.Context, pairID string, responderID primitive.ObjectID, status RequestStatus) (*FriendRequest, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req FriendRequest
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": pairID, "toId": responderID, "status": StatusPending},
		bson.M{"$set": bson.M{"status": status, "respondedAt": now}},
		opts,
	).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ListIncoming returns pending requests addressed to the user
func (r *Repository) ListIncoming(ctx context.Context, userID primitive.ObjectID) ([]FriendRequest, error) {
	return r.list(ctx, bson.M{"toId": userID, "status": StatusPending})
}

// ListOutgoing returns pending requests the user has sent
func (r *Repository) ListOutgoing(ctx context.Context, userID primitive.ObjectID) ([]FriendRequest, error) {
	return r.list(ctx, bson.M{"fromId": userID, "status": StatusPending})
}

func (r *Repository) list(ctx context.Context, filter bson.M) ([]FriendRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []FriendRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []FriendRequest{}
	}
	return requests, nil
}

// Delete removes the request document for a pair (unfriending)
func (r *Repository) Delete(ctx context.Context, pairID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": pairID})
	return err
}

// DeleteAllForUser removes all request documents involving the user
// (account deletion cascade)
func (r *Repository) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"$or": []bson.M{{"fromId": userID}, {"toId": userID}}})
	return err
}
