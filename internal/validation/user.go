// Package validation holds input rules shared by services and handlers.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Login length bounds.
const (
	LoginMin = 3
	LoginMax = 10
)

var (
	loginRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]*$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidateLogin checks login length (3-10) and charset.
func ValidateLogin(login string) error {
	n := utf8.RuneCountInString(login)
	if n < LoginMin || n > LoginMax {
		return fmt.Errorf("login must be between %d and %d characters", LoginMin, LoginMax)
	}
	if !loginRegex.MatchString(login) {
		return fmt.Errorf("login can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

// ValidatePassword checks password length (6-20).
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}
	if n > 20 {
		return fmt.Errorf("password must not exceed 20 characters")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateBanReason requires a reason of at least 20 characters.
func ValidateBanReason(reason string) error {
	if utf8.RuneCountInString(strings.TrimSpace(reason)) < 20 {
		return fmt.Errorf("ban reason must be at least 20 characters long")
	}
	return nil
}
