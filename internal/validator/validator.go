// Package validator provides input validation and sanitization functions
// for the briefing backend security layer.
package validator

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidDate     = errors.New("invalid date format")
	ErrInvalidProvider = errors.New("unsupported provider")
	ErrInputTooLong    = errors.New("input exceeds maximum length")
	ErrEmptyInput      = errors.New("input cannot be empty")
)

// MaxGuidanceLength bounds a per-account briefing guidance note.
const MaxGuidanceLength = 2000

// dateRegex matches the YYYY-MM-DD briefing date parameter.
var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateEmail validates email address format according to RFC 5322.
// Returns nil if valid, or an appropriate error.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" {
		return ErrEmptyInput
	}

	// RFC 5321 specifies max email length of 254 characters
	if utf8.RuneCountInString(email) > 254 {
		return ErrInputTooLong
	}

	// Use Go's mail package for RFC 5322 validation
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}

	return nil
}

// ValidateDate checks that a briefing date parameter is well-formed
// YYYY-MM-DD. It does not check the calendar range; the briefing
// service owns the retention and future-date rules.
func ValidateDate(date string) error {
	date = strings.TrimSpace(date)

	if date == "" {
		return ErrEmptyInput
	}

	if !dateRegex.MatchString(date) {
		return ErrInvalidDate
	}

	return nil
}

// ValidateProvider checks that a provider path parameter names a
// supported mail provider.
func ValidateProvider(provider string) error {
	switch strings.TrimSpace(strings.ToLower(provider)) {
	case "google", "microsoft":
		return nil
	default:
		return ErrInvalidProvider
	}
}

// ValidateGuidance checks a guidance note's length. Nil guidance is
// valid and means fall back to the default.
func ValidateGuidance(guidance *string) error {
	if guidance == nil {
		return nil
	}

	if utf8.RuneCountInString(*guidance) > MaxGuidanceLength {
		return ErrInputTooLong
	}

	return nil
}
