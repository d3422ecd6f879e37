package utils

import (
	"regexp"
	"time"
	"unicode"

	"github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
)

var (
	// EmailRegex validates email addresses
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// UUIDRegex validates UUID strings
	UUIDRegex = regexp.MustCompile(`^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{12}$`)

	// DateRegex validates ISO 8601 date strings (YYYY-MM-DD)
	DateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !EmailRegex.MatchString(email) {
		return errors.NewValidationError("invalid email format")
	}
	return nil
}

// ValidateUUID validates a UUID string
func ValidateUUID(id string) error {
	if !UUIDRegex.MatchString(id) {
		return errors.NewValidationError("invalid UUID format")
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date string into a UTC timestamp
func ParseDate(s string) (time.Time, error) {
	if !DateRegex.MatchString(s) {
		return time.Time{}, errors.NewValidationError("date must be in YYYY-MM-DD format")
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, errors.NewValidationError("invalid calendar date")
	}
	return t, nil
}

// ValidatePassword enforces the account password policy: at least 8
// characters with an upper-case letter, a lower-case letter and a digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.NewValidationError("password must be at least 8 characters")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.NewValidationError("password must contain upper-case, lower-case and numeric characters")
	}
	return nil
}
