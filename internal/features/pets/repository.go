package pets

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

// Repository handles database interactions for pets
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("pets")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, pet *Pet) error {
	now := time.Now()
	pet.CreatedAt = now
	pet.UpdatedAt = now
	if pet.Gallery == nil {
		pet.Gallery = []GalleryPhoto{}
	}

	result, err := r.collection.InsertOne(ctx, pet)
	if err != nil {
		return err
	}
	pet.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *Repository) GetByID(ctx context.Context, petID primitive.ObjectID) (*Pet, error) {
	var pet Pet
	err := r.collection.FindOne(ctx, bson.M{"_id": petID}).Decode(&pet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &pet, nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]Pet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pets []Pet
	if err := cursor.All(ctx, &pets); err != nil {
		return nil, err
	}
	if pets == nil {
		pets = []Pet{}
	}
	return pets, nil
}

// Update applies field updates to a pet owned by the given user
func (r *Repository) Update(ctx context.Context, petID, ownerID primitive.ObjectID, updates bson.M) (*Pet, error) {
	updates["updatedAt"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var pet Pet
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": petID, "ownerId": ownerID},
		bson.M{"$set": updates},
		opts,
	).Decode(&pet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &pet, nil
}

func (r *Repository) Delete(ctx context.Context, petID, ownerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": petID, "ownerId": ownerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountByOwner returns the number of pets a user has registered
func (r *Repository) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"ownerId": ownerID})
}

// CountGalleryPhotos returns the total gallery photos across all of a user's pets
func (r *Repository) CountGalleryPhotos(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ownerId": ownerID}}},
		{{Key: "$project", Value: bson.M{"count": bson.M{"$size": bson.M{"$ifNull": bson.A{"$gallery", bson.A{}}}}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$count"}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// AddGalleryPhoto appends a photo to the pet's gallery
func (r *Repository) AddGalleryPhoto(ctx context.Context, petID, ownerID primitive.ObjectID, photo GalleryPhoto) (*Pet, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var pet Pet
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": petID, "ownerId": ownerID},
		bson.M{
			"$push": bson.M{"gallery": photo},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
		opts,
	).Decode(&pet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &pet, nil
}

// RemoveGalleryPhoto removes a photo from the pet's gallery by public ID
func (r *Repository) RemoveGalleryPhoto(ctx context.Context, petID, ownerID primitive.ObjectID, publicID string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": petID, "ownerId": ownerID},
		bson.M{
			"$pull": bson.M{"gallery": bson.M{"publicId": publicID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteAllByOwner removes all pets for a user and returns the Cloudinary
// public IDs of their photos so the assets can be cleaned up.
func (r *Repository) DeleteAllByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]string, error) {
	pets, err := r.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var publicIDs []string
	for _, pet := range pets {
		if pet.PhotoPublicID != "" {
			publicIDs = append(publicIDs, pet.PhotoPublicID)
		}
		for _, photo := range pet.Gallery {
			if photo.PublicID != "" {
				publicIDs = append(publicIDs, photo.PublicID)
			}
		}
	}

	if _, err := r.collection.DeleteMany(ctx, bson.M{"ownerId": ownerID}); err != nil {
		return nil, err
	}
	return publicIDs, nil
}
