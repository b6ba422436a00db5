package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateUniqueUsername(t *testing.T) {
	require.Equal(t, "janedoe", GenerateUniqueUsername("Jane Doe"))
	require.Equal(t, "user42cats", GenerateUniqueUsername("42 Cats"))
	require.Equal(t, "jopet", GenerateUniqueUsername("Jo"))

	long := GenerateUniqueUsername("A Very Long Display Name Indeed")
	require.LessOrEqual(t, len(long), 15)
}

func TestValidateDisplayName(t *testing.T) {
	require.NoError(t, ValidateDisplayName("Jane Doe"))
	require.Error(t, ValidateDisplayName("Jo"))
	require.Error(t, ValidateDisplayName(""))
}
