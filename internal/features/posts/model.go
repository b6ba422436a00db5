package posts

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a feed entry. Hidden posts stay in the collection but are excluded
// from every feed query; only moderation sets the flag.
type Post struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthorID primitive.ObjectID `bson:"authorId" json:"authorId"`

	Text          string `bson:"text" json:"text"`
	PhotoURL      string `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	PhotoPublicID string `bson:"photoPublicId,omitempty" json:"-"`

	Hidden   bool                 `bson:"hidden" json:"-"`
	Likes    []primitive.ObjectID `bson:"likes" json:"-"`
	Comments []Comment            `bson:"comments" json:"comments"`

	LikeCount int `bson:"-" json:"likeCount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Comment is embedded in its post. Hidden comments stay in the array but are
// stripped before the post is served; only moderation sets the flag.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID  primitive.ObjectID `bson:"authorId" json:"authorId"`
	Text      string             `bson:"text" json:"text"`
	Hidden    bool               `bson:"hidden" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// visibleComments strips comments hidden by moderation
func visibleComments(comments []Comment) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

type AddCommentRequest struct {
	Text string `json:"text" binding:"required,min=1,max=500"`
}

type FeedQuery struct {
	Author string `form:"author" binding:"omitempty,len=24"`
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=50"`
}
