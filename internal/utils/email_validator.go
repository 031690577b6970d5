package utils

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/lindell/go-burner-email-providers/burner"
)

// EmailValidationError represents an error during email validation
type EmailValidationError struct {
	Message string
	Code    string
}

func (e EmailValidationError) Error() string {
	return e.Message
}

// ValidateEmailAddress checks the syntactic form of an email address.
// It says nothing about deliverability.
func ValidateEmailAddress(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return &EmailValidationError{
			Message: "Invalid email format",
			Code:    "INVALID_FORMAT",
		}
	}
	return nil
}

// IsDisposableEmail checks the address domain against the known burner
// email providers list. Addresses without a domain part are not
// classified as disposable; they fail ValidateEmailAddress instead.
func IsDisposableEmail(email string) bool {
	domain, err := extractDomain(email)
	if err != nil {
		return false
	}
	return burner.IsBurnerDomain(domain)
}

// extractDomain extracts the domain part from an email address
func extractDomain(email string) (string, error) {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid email format")
	}
	return strings.ToLower(parts[1]), nil
}
