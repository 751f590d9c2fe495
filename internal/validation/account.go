// Package validation holds input rules shared by services and tooling.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 150
	EmailMaxLength    = 254
	BioMaxLength      = 1024
	PasswordMinLength = 12
	PasswordMaxLength = 128
)

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_.-]*[a-z0-9])?$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@.]+$`)
)

// ValidateUsername checks a username after lowercasing: letters, digits, and
// inner "_", "-" or ".".
func ValidateUsername(username string) error {
	u := strings.ToLower(strings.TrimSpace(username))
	n := utf8.RuneCountInString(u)
	if n < UsernameMinLength || n > UsernameMaxLength {
		return fmt.Errorf("username must be %d-%d characters", UsernameMinLength, UsernameMaxLength)
	}
	if !usernameRegex.MatchString(u) {
		return errors.New("username may contain letters, digits, '_', '-' and '.', and must start and end with a letter or digit")
	}
	return nil
}

// ValidateEmail performs a structural check of an email address.
func ValidateEmail(email string) error {
	if len(email) > EmailMaxLength {
		return fmt.Errorf("email must be at most %d characters", EmailMaxLength)
	}
	if !emailRegex.MatchString(email) {
		return errors.New("email address is invalid")
	}
	if local, _, _ := strings.Cut(email, "@"); len(local) > 64 {
		return errors.New("email local part is too long")
	}
	return nil
}

// ValidatePassword requires PasswordMinLength-PasswordMaxLength runes with an
// upper case letter, a lower case letter, a digit and a symbol.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength || n > PasswordMaxLength {
		return fmt.Errorf("password must be %d-%d characters", PasswordMinLength, PasswordMaxLength)
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return errors.New("password needs an upper case letter, a lower case letter, a digit and a symbol")
	}
	return nil
}
