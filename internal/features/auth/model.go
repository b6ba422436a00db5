package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VetAssistantUsage is the daily counter for AI vet assistant questions,
// embedded in the user document. The counter is treated as reset whenever
// LastResetAt falls on a different UTC day than "now"; the reset is only
// materialized on the next increment.
type VetAssistantUsage struct {
	Count       int       `bson:"count" json:"count"`
	LastResetAt time.Time `bson:"lastResetAt" json:"lastResetAt"`
}

// User represents a registered pet owner (and possibly sitter) in the system
type User struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	GoogleID          string               `bson:"googleId" json:"googleId"`
	Email             string               `bson:"email" json:"email"`
	Username          string               `bson:"username" json:"username"`
	DisplayName       string               `bson:"displayName" json:"displayName"`
	Bio               string               `bson:"bio" json:"bio"`
	ProfilePictureURL string               `bson:"profilePictureUrl" json:"profilePictureUrl"`
	IsPremium         bool                 `bson:"isPremium" json:"isPremium"`
	PremiumUntil      *time.Time           `bson:"premiumUntil,omitempty" json:"premiumUntil,omitempty"`
	Friends           []primitive.ObjectID `bson:"friends" json:"friends"`
	VetAssistant      VetAssistantUsage    `bson:"vetAssistant" json:"vetAssistant"`
	JoinedAt          time.Time            `bson:"joinedAt" json:"joinedAt"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// GoogleAuthRequest represents the payload for Google OAuth login
type GoogleAuthRequest struct {
	GoogleIDToken string `json:"googleIdToken" binding:"required"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}

// UpdateProfileRequest represents the payload for updating user profile
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" binding:"omitempty,min=3,max=50"`
	Bio         string `json:"bio" binding:"omitempty,max=160"`
}

// ToPublicUser returns the fields safe for public display
func (u *User) ToPublicUser() map[string]interface{} {
	return map[string]interface{}{
		"id":                u.ID,
		"username":          u.Username,
		"displayName":       u.DisplayName,
		"bio":               u.Bio,
		"profilePictureUrl": u.ProfilePictureURL,
		"isPremium":         u.IsPremium,
		"joinedAt":          u.JoinedAt,
	}
}

// HasFriend reports whether the given user id is already in the friend list
func (u *User) HasFriend(id primitive.ObjectID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}
