package lostfound

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

// Repository handles database interactions for lost and found alerts
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("lostFoundAlerts")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "resolved", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "authorId", Value: 1}}},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, alert *Alert) error {
	now := time.Now()
	alert.Resolved = false
	alert.CreatedAt = now
	alert.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, alert)
	if err != nil {
		return err
	}
	alert.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *Repository) GetByID(ctx context.Context, alertID primitive.ObjectID) (*Alert, error) {
	var alert Alert
	err := r.collection.FindOne(ctx, bson.M{"_id": alertID}).Decode(&alert)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// List returns open alerts, newest first, optionally filtered by type and city
func (r *Repository) List(ctx context.Context, alertType, city string, page, limit int) ([]Alert, int64, error) {
	filter := bson.M{"resolved": false}
	if alertType != "" {
		filter["type"] = alertType
	}
	if city != "" {
		filter["city"] = city
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var alerts []Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, 0, err
	}
	if alerts == nil {
		alerts = []Alert{}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

// Resolve closes the author's alert. The resolved:false filter makes the
// close idempotent.
func (r *Repository) Resolve(ctx context.Context, alertID, authorID primitive.ObjectID) (*Alert, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var alert Alert
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": alertID, "authorId": authorID, "resolved": false},
		bson.M{"$set": bson.M{
			"resolved":   true,
			"resolvedAt": now,
			"updatedAt":  now,
		}},
		opts,
	).Decode(&alert)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// SetPhoto stores the alert's photo reference
func (r *Repository) SetPhoto(ctx context.Context, alertID primitive.ObjectID, url, publicID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": alertID},
		bson.M{"$set": bson.M{
			"photoUrl":      url,
			"photoPublicId": publicID,
			"updatedAt":     time.Now(),
		}},
	)
	return err
}

func (r *Repository) Delete(ctx context.Context, alertID, authorID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": alertID, "authorId": authorID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteAllByAuthor removes the user's alerts (account deletion cascade) and
// returns their photo public IDs for asset cleanup
func (r *Repository) DeleteAllByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]string, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"authorId": authorID},
		options.Find().SetProjection(bson.M{"photoPublicId": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		PhotoPublicID string `bson:"photoPublicId"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	var publicIDs []string
	for _, doc := range docs {
		if doc.PhotoPublicID != "" {
			publicIDs = append(publicIDs, doc.PhotoPublicID)
		}
	}

	if _, err := r.collection.DeleteMany(ctx, bson.M{"authorId": authorID}); err != nil {
		return nil, err
	}
	return publicIDs, nil
}
