package errors

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrInternal     = errors.New("internal server error")
	ErrDuplicate    = errors.New("resource already exists")
	ErrValidation   = errors.New("validation failed")

	// Booking lifecycle
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrAlreadyReviewed   = errors.New("booking already reviewed")
	ErrNotBookingParty   = errors.New("user is not a party to this booking")

	// Moderation
	ErrBanned = errors.New("user is banned")

	// Premium quotas
	ErrQuotaExceeded = errors.New("free tier quota exceeded")
)
