package validation

import (
	"errors"
	"strings"
)

// ValidatePassword checks a role password before it is hashed.
// Minimum 12 characters per NIST guidance; bcrypt truncates past 72 bytes.
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}

	if len(password) > 72 {
		return errors.New("password must not exceed 72 bytes")
	}

	lower := strings.ToLower(password)
	commonPatterns := []string{
		"password", "123456", "qwerty", "letmein", "welcome",
		"contractor", "admin", "northwind", "sales",
	}

	for _, pattern := range commonPatterns {
		if strings.Contains(lower, pattern) {
			return errors.New("password is too common, please choose a stronger one")
		}
	}

	return nil
}
