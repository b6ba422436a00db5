package posts

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

// Repository handles database interactions for posts
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("posts")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "hidden", Value: 1}, {Key: "createdAt", Value: -1}}},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, post *Post) error {
	now := time.Now()
	post.Hidden = false
	post.Likes = []primitive.ObjectID{}
	post.Comments = []Comment{}
	post.CreatedAt = now
	post.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, post)
	if err != nil {
		return err
	}
	post.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *Repository) GetByID(ctx context.Context, postID primitive.ObjectID) (*Post, error) {
	var post Post
	err := r.collection.FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	post.LikeCount = len(post.Likes)
	post.Comments = visibleComments(post.Comments)
	return &post, nil
}

// Feed returns visible posts, newest first, optionally narrowed to one author
func (r *Repository) Feed(ctx context.Context, authorID *primitive.ObjectID, page, limit int) ([]Post, int64, error) {
	filter := bson.M{"hidden": false}
	if authorID != nil {
		filter["authorId"] = *authorID
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

	var posts []Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	if posts == nil {
		posts = []Post{}
	}
	for i := range posts {
		posts[i].LikeCount = len(posts[i].Likes)
		posts[i].Comments = visibleComments(posts[i].Comments)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *Repository) Delete(ctx context.Context, postID, authorID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": postID, "authorId": authorID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Like adds the user to the post's like set; liking twice is a no-op
func (r *Repository) Like(ctx context.Context, postID, userID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$addToSet": bson.M{"likes": userID}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *Repository) Unlike(ctx context.Context, postID, userID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"likes": userID}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AddComment appends a comment to the post
func (r *Repository) AddComment(ctx context.Context, postID primitive.ObjectID, comment Comment) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{
			"$push": bson.M{"comments": comment},
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

// DeleteComment removes the author's own comment from a post
func (r *Repository) DeleteComment(ctx context.Context, postID, commentID, authorID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID, "authorId": authorID}}},
	)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteAllByAuthor removes the user's posts (account deletion cascade) and
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
