package lostfound

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AlertType string

const (
	AlertLost  AlertType = "lost"
	AlertFound AlertType = "found"
)

func (t AlertType) Valid() bool {
	return t == AlertLost || t == AlertFound
}

// Alert is a lost-or-found pet notice
type Alert struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthorID primitive.ObjectID `bson:"authorId" json:"authorId"`
	Type     AlertType          `bson:"type" json:"type"`

	PetName     string `bson:"petName,omitempty" json:"petName,omitempty"`
	Species     string `bson:"species" json:"species"`
	Description string `bson:"description" json:"description"`
	City        string `bson:"city" json:"city"`
	LastSeenAt  string `bson:"lastSeenAt,omitempty" json:"lastSeenAt,omitempty"`
	ContactInfo string `bson:"contactInfo,omitempty" json:"contactInfo,omitempty"`

	PhotoURL      string `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	PhotoPublicID string `bson:"photoPublicId,omitempty" json:"-"`

	Resolved   bool       `bson:"resolved" json:"resolved"`
	ResolvedAt *time.Time `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type CreateAlertRequest struct {
	Type        AlertType `json:"type" binding:"required"`
	PetName     string    `json:"petName" binding:"omitempty,max=50"`
	Species     string    `json:"species" binding:"required,min=2,max=30"`
	Description string    `json:"description" binding:"required,min=10,max=1000"`
	City        string    `json:"city" binding:"required,min=2,max=60"`
	LastSeenAt  string    `json:"lastSeenAt" binding:"omitempty,max=120"`
	ContactInfo string    `json:"contactInfo" binding:"omitempty,max=120"`
}

type ListQuery struct {
	Type  string `form:"type" binding:"omitempty,oneof=lost found"`
	City  string `form:"city" binding:"omitempty,max=60"`
	Page  int    `form:"page,default=1" binding:"min=1"`
	Limit int    `form:"limit,default=20" binding:"min=1,max=50"`
}
