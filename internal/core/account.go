package core

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

// MinPasswordLength is the shortest password accepted at registration and reset.
const MinPasswordLength = 6

var (
	ErrUsernameInvalid    = errors.New("username should only contain alphanumeric characters")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailInvalid       = errors.New("email is invalid")
	ErrEmailTaken         = errors.New("email already registered")
	ErrEmailNotRegistered = errors.New("email not registered")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is not active")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCurrency    = errors.New("invalid currency code")
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateUsername requires a non-empty, purely alphanumeric username.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameInvalid
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ErrUsernameInvalid
		}
	}
	return nil
}

// ValidateEmail accepts a bare address (no display name).
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailInvalid
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@")+1:], ".") {
		return ErrEmailInvalid
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// NormalizeCurrency upper-cases and validates a three-letter currency code.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currencyPattern.MatchString(code) {
		return "", ErrInvalidCurrency
	}
	return code, nil
}
