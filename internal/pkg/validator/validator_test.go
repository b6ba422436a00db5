package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidAccountID(t *testing.T) {
	require.True(t, IsValidAccountID("507f1f77bcf86cd799439011"))
	require.True(t, IsValidAccountID("65AF0E3B9C2D4F0012345678")) // case-insensitive hex

	require.False(t, IsValidAccountID(""))
	require.False(t, IsValidAccountID("not-an-id"))
	require.False(t, IsValidAccountID("507f1f77bcf86cd79943901"))   // too short
	require.False(t, IsValidAccountID("507f1f77bcf86cd7994390111")) // too long
	require.False(t, IsValidAccountID("seed_507f1f77bcf86cd79943"))
	require.False(t, IsValidAccountID("test_user_1"))
}

func TestIsSeedKey(t *testing.T) {
	require.True(t, IsSeedKey("seed_user_42"))
	require.True(t, IsSeedKey("TEST_abc"))
	require.True(t, IsSeedKey("  demo_cat  "))

	require.False(t, IsSeedKey("507f1f77bcf86cd799439011"))
	require.False(t, IsSeedKey("alice"))
}

func TestIsValidDate(t *testing.T) {
	require.True(t, IsValidDate("2025-06-01"))
	require.False(t, IsValidDate("01-06-2025"))
	require.False(t, IsValidDate("2025/06/01"))
}
