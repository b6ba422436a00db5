package pets

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pet is a pet profile owned by a user
type Pet struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Name        string             `bson:"name" json:"name"`
	Species     string             `bson:"species" json:"species"`
	Breed       string             `bson:"breed,omitempty" json:"breed,omitempty"`
	BirthDate   *time.Time         `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	PhotoURL      string `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	PhotoPublicID string `bson:"photoPublicId,omitempty" json:"-"`

	Gallery []GalleryPhoto `bson:"gallery" json:"gallery"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// GalleryPhoto is a single photo in a pet's gallery. The Cloudinary public ID
// is kept so the asset can be removed when the photo or pet is deleted.
type GalleryPhoto struct {
	URL        string    `bson:"url" json:"url"`
	PublicID   string    `bson:"publicId" json:"publicId"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

type CreatePetRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=50"`
	Species     string     `json:"species" binding:"required,min=2,max=30"`
	Breed       string     `json:"breed" binding:"omitempty,max=50"`
	BirthDate   *time.Time `json:"birthDate"`
	Description string     `json:"description" binding:"omitempty,max=500"`
}

type UpdatePetRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=50"`
	Species     *string    `json:"species" binding:"omitempty,min=2,max=30"`
	Breed       *string    `json:"breed" binding:"omitempty,max=50"`
	BirthDate   *time.Time `json:"birthDate"`
	Description *string    `json:"description" binding:"omitempty,max=500"`
}
