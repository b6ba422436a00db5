package validator

import (
	"regexp"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	objectIDRegex = regexp.MustCompile(`^[0-9a-f]{24}$`)

	// Prefixes used by fixtures and demo data that must never be accepted
	// as a real account identifier (e.g. as a friend request receiver).
	seedKeyPrefixes = []string{"seed_", "test_", "demo_", "mock_"}
)

// IsValidEmail checks if the email format is valid
func IsValidEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidUsername checks if the username format is valid
func IsValidUsername(username string) bool {
	if strings.TrimSpace(username) == "" {
		return false
	}
	return usernameRegex.MatchString(username)
}

// IsValidAccountID checks that a value looks like a real account identifier:
// a 24-char hex object id that is not a seed/test key.
func IsValidAccountID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if IsSeedKey(id) {
		return false
	}
	return objectIDRegex.MatchString(strings.ToLower(id))
}

// IsSeedKey reports whether the value looks like a fixture key rather than
// a real account identifier.
func IsSeedKey(id string) bool {
	lower := strings.ToLower(strings.TrimSpace(id))
	for _, prefix := range seedKeyPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// IsValidDate checks if the date string is in YYYY-MM-DD format
func IsValidDate(date string) bool {
	dateRegex := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	return dateRegex.MatchString(date)
}
