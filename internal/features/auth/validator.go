package auth

import (
	"errors"
	"regexp"
	"strings"
)

// ValidateDisplayName checks if the display name is valid
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < 3 || len(name) > 50 {
		return errors.New("display name must be between 3 and 50 characters")
	}

	return nil
}

// ValidateBio checks if the bio length is valid
func ValidateBio(bio string) error {
	if len(strings.TrimSpace(bio)) > 160 {
		return errors.New("bio cannot exceed 160 characters")
	}

	return nil
}

// GenerateUniqueUsername creates a base username from a name string.
// Uniqueness is not guaranteed by this function alone, it just formats the string.
func GenerateUniqueUsername(name string) string {
	reg := regexp.MustCompile(`[^a-zA-Z0-9]+`)
	username := reg.ReplaceAllString(name, "")

	username = strings.ToLower(username)

	// Ensure it's not empty and doesn't start with a number
	if username == "" || (username[0] >= '0' && username[0] <= '9') {
		username = "user" + username
	}

	// Leave room for suffix numbers if needed
	if len(username) > 15 {
		username = username[:15]
	}

	if len(username) < 3 {
		username = username + "pet"
	}

	return username
}
