package bookings

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odalea-app/odalea-api/internal/features/sitters"
	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

// Action is a requested booking transition
type Action string

const (
	ActionAccept   Action = "accept"
	ActionDecline  Action = "decline"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

// transitionTarget maps an action to the status it produces
func (a Action) target() Status {
	switch a {
	case ActionAccept:
		return StatusAccepted
	case ActionDecline:
		return StatusDeclined
	case ActionCancel:
		return StatusCancelled
	case ActionComplete:
		return StatusCompleted
	}
	return ""
}

// CanTransition decides whether the given party may apply the action to a
// booking in the given status. Rules:
//
//	pending  -> accepted / declined   (sitter only)
//	pending  -> cancelled             (owner only)
//	accepted -> completed             (sitter only)
//	accepted -> cancelled             (either party)
//
// Declined, completed and cancelled are terminal.
func CanTransition(from Status, action Action, role PartyRole) error {
	if from.IsTerminal() {
		return fmt.Errorf("%w: booking is already %s", apperrors.ErrInvalidTransition, from)
	}

	switch action {
	case ActionAccept, ActionDecline:
		if from != StatusPending {
			return fmt.Errorf("%w: cannot %s a booking that is %s", apperrors.ErrInvalidTransition, action, from)
		}
		if role != RoleSitter {
			return fmt.Errorf("%w: only the sitter can %s a booking", apperrors.ErrNotBookingParty, action)
		}
	case ActionComplete:
		if from != StatusAccepted {
			return fmt.Errorf("%w: cannot complete a booking that is %s", apperrors.ErrInvalidTransition, from)
		}
		if role != RoleSitter {
			return fmt.Errorf("%w: only the sitter can complete a booking", apperrors.ErrNotBookingParty)
		}
	case ActionCancel:
		if from == StatusPending && role != RoleOwner {
			return fmt.Errorf("%w: only the owner can cancel a pending booking", apperrors.ErrNotBookingParty)
		}
		if role != RoleOwner && role != RoleSitter {
			return apperrors.ErrNotBookingParty
		}
	default:
		return fmt.Errorf("%w: unknown action %q", apperrors.ErrBadRequest, action)
	}

	return nil
}

// parsePetIDs converts the request's pet id strings, rejecting malformed
// values and duplicates. A booking covers one or more pets.
func parsePetIDs(raw []string) ([]primitive.ObjectID, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: at least one pet is required", apperrors.ErrValidation)
	}

	ids := make([]primitive.ObjectID, 0, len(raw))
	seen := make(map[primitive.ObjectID]bool, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid pet ID %q", apperrors.ErrValidation, s)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate pet ID %q", apperrors.ErrValidation, s)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// ComputePrice returns hourlyRate * hours * slot multiplier, rounded to cents
func ComputePrice(hourlyRate, hours float64, slot TimeSlot) float64 {
	price := hourlyRate * hours * slot.Multiplier()
	return math.Round(price*100) / 100
}

// Service owns booking lifecycle decisions
type Service struct {
	repo    *Repository
	sitters *sitters.Repository
}

func NewService(repo *Repository, sittersRepo *sitters.Repository) *Service {
	return &Service{repo: repo, sitters: sittersRepo}
}

// CreateBooking validates the request against the sitter's listing, snapshots
// the rate, prices the booking and stores it as pending.
func (s *Service) CreateBooking(ctx context.Context, ownerID primitive.ObjectID, req CreateBookingRequest) (*Booking, error) {
	if !req.TimeSlot.Valid() {
		return nil, fmt.Errorf("%w: invalid time slot %q", apperrors.ErrValidation, req.TimeSlot)
	}

	sitterID, err := primitive.ObjectIDFromHex(req.SitterID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid sitter ID", apperrors.ErrValidation)
	}
	petIDs, err := parsePetIDs(req.PetIDs)
	if err != nil {
		return nil, err
	}

	if sitterID == ownerID {
		return nil, fmt.Errorf("%w: cannot book yourself as a sitter", apperrors.ErrValidation)
	}

	profile, err := s.sitters.GetByUserID(ctx, sitterID)
	if err != nil {
		return nil, err
	}
	if profile == nil || !profile.Active {
		return nil, fmt.Errorf("%w: sitter has no active listing", apperrors.ErrNotFound)
	}

	now := time.Now()
	booking := &Booking{
		OwnerID:         ownerID,
		SitterID:        sitterID,
		PetIDs:          petIDs,
		Date:            req.Date,
		TimeSlot:        req.TimeSlot,
		DurationHours:   req.DurationHours,
		HourlyRate:      profile.HourlyRate,
		TotalPrice:      ComputePrice(profile.HourlyRate, req.DurationHours, req.TimeSlot),
		Status:          StatusPending,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
		StatusChangedAt: now,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ApplyAction transitions a booking on behalf of the caller. The status write
// is conditional on the current status, so two concurrent decisions on the
// same booking resolve to exactly one winner.
func (s *Service) ApplyAction(ctx context.Context, userID, bookingID primitive.ObjectID, action Action) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	role := booking.RoleOf(userID)
	if role == "" {
		return nil, apperrors.ErrNotBookingParty
	}

	if err := CanTransition(booking.Status, action, role); err != nil {
		return nil, err
	}

	updated, err := s.repo.TransitionStatus(ctx, bookingID, booking.Status, action.target())
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SubmitReview records the owner's rating for a completed booking and
// refreshes the sitter's rating aggregate. A booking can be reviewed once.
func (s *Service) SubmitReview(ctx context.Context, ownerID, bookingID primitive.ObjectID, req SubmitReviewRequest) (*Review, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: only the pet owner can review a booking", apperrors.ErrNotBookingParty)
	}
	if booking.Status != StatusCompleted {
		return nil, fmt.Errorf("%w: only completed bookings can be reviewed", apperrors.ErrInvalidTransition)
	}

	review := &Review{
		BookingID: bookingID,
		OwnerID:   ownerID,
		SitterID:  booking.SitterID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	_ = s.repo.MarkReviewed(ctx, bookingID)

	// Refresh the listing's aggregate; a failure here leaves a stale average
	// that the next review corrects.
	if avg, count, err := s.repo.SitterRatingAggregate(ctx, booking.SitterID); err == nil {
		_ = s.sitters.UpdateRating(ctx, booking.SitterID, avg, count)
	}

	return review, nil
}
