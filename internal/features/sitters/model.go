package sitters

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile represents a cat sitter's marketplace listing. One per user,
// keyed by the owning user id.
type Profile struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Headline    string             `bson:"headline" json:"headline"`
	Description string             `bson:"description" json:"description"`
	HourlyRate  float64            `bson:"hourlyRate" json:"hourlyRate"`
	City        string             `bson:"city" json:"city"`
	// Aggregates maintained by the review flow
	Rating      float64   `bson:"rating" json:"rating"`
	ReviewCount int       `bson:"reviewCount" json:"reviewCount"`
	Active      bool      `bson:"active" json:"active"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UpsertProfileRequest creates or updates the caller's sitter listing
type UpsertProfileRequest struct {
	Headline    string  `json:"headline" binding:"required,min=3,max=80"`
	Description string  `json:"description" binding:"omitempty,max=1000"`
	HourlyRate  float64 `json:"hourlyRate" binding:"required,gt=0"`
	City        string  `json:"city" binding:"omitempty,max=80"`
	Active      *bool   `json:"active"`
}

// ListQuery filters the sitter browse endpoint
type ListQuery struct {
	City  string `form:"city"`
	Page  int    `form:"page,default=1" binding:"min=1"`
	Limit int    `form:"limit,default=20" binding:"min=1,max=50"`
}
