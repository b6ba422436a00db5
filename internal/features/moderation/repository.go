package moderation

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

// Repository handles database interactions for reports, user flags, the
// moderation audit log and the content collections moderation acts on.
type Repository struct {
	reports   *mongo.Collection
	userFlags *mongo.Collection
	actions   *mongo.Collection
	posts     *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	reports := db.Collection("reports")
	userFlags := db.Collection("userFlags")
	actions := db.Collection("moderationActions")

	_, _ = reports.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			// One open report per reporter and target; a dismissed report
			// frees the slot so the reporter can file again.
			Keys: bson.D{
				{Key: "reporterId", Value: 1},
				{Key: "targetType", Value: 1},
				{Key: "targetId", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": ReportPending}),
		},
		{Keys: bson.D{{Key: "targetType", Value: 1}, {Key: "targetId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	})

	_, _ = userFlags.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})

	_, _ = actions.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "targetType", Value: 1}, {Key: "targetId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})

	return &Repository{
		reports:   reports,
		userFlags: userFlags,
		actions:   actions,
		posts:     db.Collection("posts"),
	}
}

// CreateReport inserts a report. A still-open duplicate from the same
// reporter trips the partial unique index and returns ErrDuplicate.
func (r *Repository) CreateReport(ctx context.Context, report *Report) error {
	result, err := r.reports.InsertOne(ctx, report)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrDuplicate
		}
		return err
	}
	report.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *Repository) GetReport(ctx context.Context, reportID primitive.ObjectID) (*Report, error) {
	var report Report
	err := r.reports.FindOne(ctx, bson.M{"_id": reportID}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// GetOpenReport returns the reporter's pending or reviewed report on the
// target, or nil if they have none
func (r *Repository) GetOpenReport(ctx context.Context, reporterID, targetID primitive.ObjectID, targetType TargetType) (*Report, error) {
	var report Report
	err := r.reports.FindOne(ctx, bson.M{
		"reporterId": reporterID,
		"targetType": targetType,
		"targetId":   targetID,
		"status":     bson.M{"$ne": ReportDismissed},
	}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// CountPendingReports returns the number of open reports on a target
func (r *Repository) CountPendingReports(ctx context.Context, targetType TargetType, targetID primitive.ObjectID) (int64, error) {
	return r.reports.CountDocuments(ctx, bson.M{
		"targetType": targetType,
		"targetId":   targetID,
		"status":     ReportPending,
	})
}

// ListReports returns reports for the moderation console, newest first
func (r *Repository) ListReports(ctx context.Context, status string, page, limit int) ([]Report, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.reports.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var reports []Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, 0, err
	}
	if reports == nil {
		reports = []Report{}
	}

	total, err := r.reports.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

// CloseReport marks a pending report reviewed or dismissed. The filter pins
// the pending status so a report is closed at most once.
func (r *Repository) CloseReport(ctx context.Context, reportID, reviewerID primitive.ObjectID, status ReportStatus) (*Report, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var report Report
	err := r.reports.FindOneAndUpdate(ctx,
		bson.M{"_id": reportID, "status": ReportPending},
		bson.M{"$set": bson.M{
			"status":     status,
			"reviewedAt": now,
			"reviewedBy": reviewerID,
		}},
		opts,
	).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// MarkTargetReportsReviewed closes every pending report on a target and
// returns how many it closed. Used after auto-moderation escalates; a zero
// count means another escalation already consumed the reports.
func (r *Repository) MarkTargetReportsReviewed(ctx context.Context, targetType TargetType, targetID primitive.ObjectID) (int64, error) {
	result, err := r.reports.UpdateMany(ctx,
		bson.M{"targetType": targetType, "targetId": targetID, "status": ReportPending},
		bson.M{"$set": bson.M{"status": ReportReviewed, "reviewedAt": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// HidePost hides a post exactly once: the hidden:false filter means only the
// first caller matches, so concurrent escalations add a single strike.
func (r *Repository) HidePost(ctx context.Context, postID primitive.ObjectID) (bool, error) {
	result, err := r.posts.UpdateOne(ctx,
		bson.M{"_id": postID, "hidden": false},
		bson.M{"$set": bson.M{"hidden": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// HideComment hides an embedded comment exactly once. The $elemMatch filter
// only matches while the comment is still visible, so concurrent escalations
// add a single strike.
func (r *Repository) HideComment(ctx context.Context, commentID primitive.ObjectID) (bool, error) {
	result, err := r.posts.UpdateOne(ctx,
		bson.M{"comments": bson.M{"$elemMatch": bson.M{"_id": commentID, "hidden": bson.M{"$ne": true}}}},
		bson.M{"$set": bson.M{"comments.$.hidden": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// GetContentAuthor resolves the user who owns the reported target. For user
// reports the target is its own author.
func (r *Repository) GetContentAuthor(ctx context.Context, targetType TargetType, targetID primitive.ObjectID) (primitive.ObjectID, error) {
	switch targetType {
	case TargetUser:
		return targetID, nil

	case TargetPost:
		var post struct {
			AuthorID primitive.ObjectID `bson:"authorId"`
		}
		err := r.posts.FindOne(ctx, bson.M{"_id": targetID}).Decode(&post)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return primitive.NilObjectID, apperrors.ErrNotFound
			}
			return primitive.NilObjectID, err
		}
		return post.AuthorID, nil

	case TargetComment:
		var post struct {
			Comments []struct {
				ID       primitive.ObjectID `bson:"_id"`
				AuthorID primitive.ObjectID `bson:"authorId"`
			} `bson:"comments"`
		}
		err := r.posts.FindOne(ctx, bson.M{"comments._id": targetID}).Decode(&post)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return primitive.NilObjectID, apperrors.ErrNotFound
			}
			return primitive.NilObjectID, err
		}
		for _, comment := range post.Comments {
			if comment.ID == targetID {
				return comment.AuthorID, nil
			}
		}
		return primitive.NilObjectID, apperrors.ErrNotFound
	}

	return primitive.NilObjectID, apperrors.ErrBadRequest
}

// CountRecentPosts returns the user's post count in the trailing window
func (r *Repository) CountRecentPosts(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	return r.posts.CountDocuments(ctx, bson.M{
		"authorId":  userID,
		"createdAt": bson.M{"$gte": since},
	})
}

// CountRecentReports returns the user's report count in the trailing window
func (r *Repository) CountRecentReports(ctx context.Context, reporterID primitive.ObjectID, since time.Time) (int64, error) {
	return r.reports.CountDocuments(ctx, bson.M{
		"reporterId": reporterID,
		"createdAt":  bson.M{"$gte": since},
	})
}

// AddStrike atomically increments the user's strike counter and returns the
// new total. The upsert creates the flags document on first strike.
func (r *Repository) AddStrike(ctx context.Context, userID primitive.ObjectID) (int, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var flags UserFlags
	err := r.userFlags.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$inc":         bson.M{"strikes": 1},
			"$set":         bson.M{"updatedAt": now},
			"$setOnInsert": bson.M{"userId": userID, "banned": false},
		},
		opts,
	).Decode(&flags)
	if err != nil {
		return 0, err
	}
	return flags.Strikes, nil
}

// GetUserFlags returns the user's moderation state, or nil if they have none
func (r *Repository) GetUserFlags(ctx context.Context, userID primitive.ObjectID) (*UserFlags, error) {
	var flags UserFlags
	err := r.userFlags.FindOne(ctx, bson.M{"userId": userID}).Decode(&flags)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &flags, nil
}

// SetBan writes the user's ban state. Upserts so a ban works even for users
// with no prior flags.
func (r *Repository) SetBan(ctx context.Context, userID primitive.ObjectID, reason string, expiresAt *time.Time) error {
	_, err := r.userFlags.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$set": bson.M{
				"banned":       true,
				"banReason":    reason,
				"banExpiresAt": expiresAt,
				"updatedAt":    time.Now(),
			},
			"$setOnInsert": bson.M{"userId": userID},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// ClearBan lifts the user's ban, keeping their strike count
func (r *Repository) ClearBan(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.userFlags.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$set":   bson.M{"banned": false, "updatedAt": time.Now()},
			"$unset": bson.M{"banReason": "", "banExpiresAt": ""},
		},
	)
	return err
}

// LogAction appends an entry to the audit log. Entries are never updated or
// deleted.
func (r *Repository) LogAction(ctx context.Context, action *ModerationAction) error {
	action.CreatedAt = time.Now()
	result, err := r.actions.InsertOne(ctx, action)
	if err != nil {
		return err
	}
	action.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// ListActions returns the audit trail for a target, newest first
func (r *Repository) ListActions(ctx context.Context, targetType TargetType, targetID primitive.ObjectID) ([]ModerationAction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.actions.Find(ctx, bson.M{"targetType": targetType, "targetId": targetID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var actions []ModerationAction
	if err := cursor.All(ctx, &actions); err != nil {
		return nil, err
	}
	if actions == nil {
		actions = []ModerationAction{}
	}
	return actions, nil
}
