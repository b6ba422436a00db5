package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

// Repository handles database interactions for bookings and reviews
type Repository struct {
	bookings *mongo.Collection
	reviews  *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	bookings := db.Collection("bookings")
	reviews := db.Collection("reviews")

	_, _ = bookings.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "sitterId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})

	_, _ = reviews.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			// One review per booking
			Keys:    bson.D{{Key: "bookingId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "sitterId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})

	return &Repository{bookings: bookings, reviews: reviews}
}

func (r *Repository) Create(ctx context.Context, booking *Booking) error {
	result, err := r.bookings.InsertOne(ctx, booking)
	if err != nil {
		return err
	}
	booking.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *Repository) GetByID(ctx context.Context, bookingID primitive.ObjectID) (*Booking, error) {
	var booking Booking
	err := r.bookings.FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// ListForUser returns bookings where the user is a party, optionally narrowed
// to one role or one status
func (r *Repository) ListForUser(ctx context.Context, userID primitive.ObjectID, role, status string, page, limit int) ([]Booking, int64, error) {
	var filter bson.M
	switch role {
	case "owner":
		filter = bson.M{"ownerId": userID}
	case "sitter":
		filter = bson.M{"sitterId": userID}
	default:
		filter = bson.M{"$or": []bson.M{{"ownerId": userID}, {"sitterId": userID}}}
	}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.bookings.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var bookings []Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, err
	}
	if bookings == nil {
		bookings = []Booking{}
	}

	total, err := r.bookings.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// TransitionStatus moves a booking from one status to another. The filter
// includes the expected current status, so a booking that has already moved
// on (e.g. a concurrent accept and cancel) matches nothing and the losing
// transition fails instead of overwriting the winner.
func (r *Repository) TransitionStatus(ctx context.Context, bookingID primitive.ObjectID, from, to Status) (*Booking, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking Booking
	err := r.bookings.FindOneAndUpdate(ctx,
		bson.M{"_id": bookingID, "status": from},
		bson.M{"$set": bson.M{
			"status":          to,
			"statusChangedAt": now,
			"updatedAt":       now,
		}},
		opts,
	).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the booking is gone or another transition won the race
			current, getErr := r.GetByID(ctx, bookingID)
			if getErr != nil {
				return nil, getErr
			}
			return nil, fmt.Errorf("%w: booking is now %s", apperrors.ErrInvalidTransition, current.Status)
		}
		return nil, err
	}
	return &booking, nil
}

func (r *Repository) MarkReviewed(ctx context.Context, bookingID primitive.ObjectID) error {
	_, err := r.bookings.UpdateOne(ctx,
		bson.M{"_id": bookingID},
		bson.M{"$set": bson.M{"reviewed": true, "updatedAt": time.Now()}},
	)
	return err
}

// CreateReview inserts a review; the unique bookingId index turns a double
// submit into ErrAlreadyReviewed
func (r *Repository) CreateReview(ctx context.Context, review *Review) error {
	result, err := r.reviews.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrAlreadyReviewed
		}
		return err
	}
	review.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// ListReviewsForSitter returns a sitter's reviews, newest first
func (r *Repository) ListReviewsForSitter(ctx context.Context, sitterID primitive.ObjectID, page, limit int) ([]Review, int64, error) {
	filter := bson.M{"sitterId": sitterID}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.reviews.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var reviews []Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, err
	}
	if reviews == nil {
		reviews = []Review{}
	}

	total, err := r.reviews.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// SitterRatingAggregate computes the average rating and review count for a sitter
func (r *Repository) SitterRatingAggregate(ctx context.Context, sitterID primitive.ObjectID) (float64, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"sitterId": sitterID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}

	avg := math.Round(results[0].Avg*10) / 10
	return avg, results[0].Count, nil
}

// DeleteAllForUser removes bookings and reviews where the user is a party
// (account deletion cascade)
func (r *Repository) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := r.bookings.DeleteMany(ctx, bson.M{"$or": []bson.M{{"ownerId": userID}, {"sitterId": userID}}}); err != nil {
		return err
	}
	_, err := r.reviews.DeleteMany(ctx, bson.M{"ownerId": userID})
	return err
}
