package bookings

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the lifecycle state of a booking
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed from s
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDeclined, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TimeSlot is the part of day a booking covers. Evening and overnight slots
// carry a price surcharge.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
	SlotOvernight TimeSlot = "overnight"
)

func (t TimeSlot) Valid() bool {
	switch t {
	case SlotMorning, SlotAfternoon, SlotEvening, SlotOvernight:
		return true
	}
	return false
}

// Multiplier returns the price multiplier for the slot
func (t TimeSlot) Multiplier() float64 {
	switch t {
	case SlotEvening:
		return 1.2
	case SlotOvernight:
		return 1.5
	default:
		return 1.0
	}
}

// Booking is a sitting appointment between a pet owner and a sitter.
// HourlyRate is snapshotted from the sitter's listing at creation time so
// later rate changes never reprice an existing booking.
type Booking struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OwnerID  primitive.ObjectID   `bson:"ownerId" json:"ownerId"`
	SitterID primitive.ObjectID   `bson:"sitterId" json:"sitterId"`
	PetIDs   []primitive.ObjectID `bson:"petIds" json:"petIds"`

	Date          time.Time `bson:"date" json:"date"`
	TimeSlot      TimeSlot  `bson:"timeSlot" json:"timeSlot"`
	DurationHours float64   `bson:"durationHours" json:"durationHours"`
	HourlyRate    float64   `bson:"hourlyRate" json:"hourlyRate"`
	TotalPrice    float64   `bson:"totalPrice" json:"totalPrice"`

	Status   Status `bson:"status" json:"status"`
	Notes    string `bson:"notes,omitempty" json:"notes,omitempty"`
	Reviewed bool   `bson:"reviewed" json:"reviewed"`

	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
	StatusChangedAt time.Time `bson:"statusChangedAt" json:"statusChangedAt"`
}

// PartyRole identifies which side of a booking the caller is on
type PartyRole string

const (
	RoleOwner  PartyRole = "owner"
	RoleSitter PartyRole = "sitter"
)

// RoleOf returns the caller's role on the booking, or "" if they are not a party
func (b *Booking) RoleOf(userID primitive.ObjectID) PartyRole {
	switch userID {
	case b.OwnerID:
		return RoleOwner
	case b.SitterID:
		return RoleSitter
	}
	return ""
}

// Review is a pet owner's rating of a sitter after a completed booking.
// One review per booking, enforced by a unique index.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookingID primitive.ObjectID `bson:"bookingId" json:"bookingId"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	SitterID  primitive.ObjectID `bson:"sitterId" json:"sitterId"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type CreateBookingRequest struct {
	SitterID      string    `json:"sitterId" binding:"required"`
	PetIDs        []string  `json:"petIds" binding:"required,min=1,max=10"`
	Date          time.Time `json:"date" binding:"required"`
	TimeSlot      TimeSlot  `json:"timeSlot" binding:"required"`
	DurationHours float64   `json:"durationHours" binding:"required,gt=0,lte=24"`
	Notes         string    `json:"notes" binding:"omitempty,max=500"`
}

type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=1000"`
}

type ListQuery struct {
	Role   string `form:"role" binding:"omitempty,oneof=owner sitter"`
	Status string `form:"status" binding:"omitempty,oneof=pending accepted declined completed cancelled"`
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=50"`
}
