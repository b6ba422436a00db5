package bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

func TestComputePrice(t *testing.T) {
	tests := []struct {
		name  string
		rate  float64
		hours float64
		slot  TimeSlot
		want  float64
	}{
		{"morning has no surcharge", 10, 2, SlotMorning, 20},
		{"afternoon has no surcharge", 10, 2, SlotAfternoon, 20},
		{"evening adds 20 percent", 15, 2, SlotEvening, 36},
		{"overnight adds 50 percent", 10, 8, SlotOvernight, 120},
		{"fractional hours", 12, 1.5, SlotMorning, 18},
		{"rounds to cents", 9.99, 3, SlotEvening, 35.96},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputePrice(tt.rate, tt.hours, tt.slot))
		})
	}
}

func TestCanTransitionAllowed(t *testing.T) {
	allowed := []struct {
		from   Status
		action Action
		role   PartyRole
	}{
		{StatusPending, ActionAccept, RoleSitter},
		{StatusPending, ActionDecline, RoleSitter},
		{StatusPending, ActionCancel, RoleOwner},
		{StatusAccepted, ActionComplete, RoleSitter},
		{StatusAccepted, ActionCancel, RoleOwner},
		{StatusAccepted, ActionCancel, RoleSitter},
	}

	for _, tt := range allowed {
		assert.NoError(t, CanTransition(tt.from, tt.action, tt.role),
			"%s %s as %s should be allowed", tt.action, tt.from, tt.role)
	}
}

func TestCanTransitionRejected(t *testing.T) {
	// Terminal statuses reject everything
	for _, from := range []Status{StatusDeclined, StatusCompleted, StatusCancelled} {
		for _, action := range []Action{ActionAccept, ActionDecline, ActionCancel, ActionComplete} {
			err := CanTransition(from, action, RoleSitter)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidTransition,
				"%s on %s booking", action, from)
		}
	}

	// Accepted bookings cannot be accepted or declined again
	assert.ErrorIs(t, CanTransition(StatusAccepted, ActionAccept, RoleSitter), apperrors.ErrInvalidTransition)
	assert.ErrorIs(t, CanTransition(StatusAccepted, ActionDecline, RoleSitter), apperrors.ErrInvalidTransition)

	// Pending bookings cannot be completed
	assert.ErrorIs(t, CanTransition(StatusPending, ActionComplete, RoleSitter), apperrors.ErrInvalidTransition)
}

func TestCanTransitionRoleRules(t *testing.T) {
	// Only the sitter decides a pending request
	assert.ErrorIs(t, CanTransition(StatusPending, ActionAccept, RoleOwner), apperrors.ErrNotBookingParty)
	assert.ErrorIs(t, CanTransition(StatusPending, ActionDecline, RoleOwner), apperrors.ErrNotBookingParty)

	// Only the owner withdraws a pending request
	assert.ErrorIs(t, CanTransition(StatusPending, ActionCancel, RoleSitter), apperrors.ErrNotBookingParty)

	// Only the sitter marks a booking complete
	assert.ErrorIs(t, CanTransition(StatusAccepted, ActionComplete, RoleOwner), apperrors.ErrNotBookingParty)
}

func TestParsePetIDs(t *testing.T) {
	a := "000000000000000000000001"
	b := "000000000000000000000002"

	ids, err := parsePetIDs([]string{a, b})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, a, ids[0].Hex())
	assert.Equal(t, b, ids[1].Hex())

	// A booking can cover a single pet
	ids, err = parsePetIDs([]string{a})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	_, err = parsePetIDs(nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = parsePetIDs([]string{"not-hex"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = parsePetIDs([]string{a, a})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestActionTargets(t *testing.T) {
	assert.Equal(t, StatusAccepted, ActionAccept.target())
	assert.Equal(t, StatusDeclined, ActionDecline.target())
	assert.Equal(t, StatusCancelled, ActionCancel.target())
	assert.Equal(t, StatusCompleted, ActionComplete.target())
}

func TestTimeSlotMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, SlotMorning.Multiplier())
	assert.Equal(t, 1.0, SlotAfternoon.Multiplier())
	assert.Equal(t, 1.2, SlotEvening.Multiplier())
	assert.Equal(t, 1.5, SlotOvernight.Multiplier())
}
