package sitters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository handles database interactions for sitter profiles
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("sitterProfiles")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			// One listing per user
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "rating", Value: -1}}},
	})

	return &Repository{collection: collection}
}

// Upsert creates or updates the sitter listing for the given user
func (r *Repository) Upsert(ctx context.Context, userID primitive.ObjectID, updates bson.M) (*Profile, error) {
	now := time.Now()
	updates["updatedAt"] = now

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var profile Profile
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$set":         updates,
			"$setOnInsert": bson.M{"userId": userID, "createdAt": now},
		},
		opts,
	).Decode(&profile)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// GetByUserID returns the sitter listing for a user, or nil if none exists
func (r *Repository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*Profile, error) {
	var profile Profile
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// List returns active sitter listings, optionally filtered by city
func (r *Repository) List(ctx context.Context, city string, page, limit int) ([]Profile, int64, error) {
	filter := bson.M{"active": true}
	if city != "" {
		filter["city"] = city
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "reviewCount", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var profiles []Profile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, 0, err
	}
	if profiles == nil {
		profiles = []Profile{}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

// UpdateRating overwrites the rating aggregate for a sitter
func (r *Repository) UpdateRating(ctx context.Context, userID primitive.ObjectID, rating float64, reviewCount int) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{
			"rating":      rating,
			"reviewCount": reviewCount,
			"updatedAt":   time.Now(),
		}},
	)
	return err
}

// DeleteByUserID removes a user's listing (account deletion cascade)
func (r *Repository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}
