package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Field limits for tickets and reviews, counted in runes.
const (
	TicketTitleMaxLength       = 128
	TicketDescriptionMaxLength = 2048
	ReviewHeadlineMaxLength    = 128
	ReviewBodyMaxLength        = 8192
)

// Required trims value and rejects it when empty or longer than max runes.
func Required(field, value string, max int) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(v) > max {
		return "", fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return v, nil
}

// Optional trims value and rejects it when longer than max runes.
func Optional(field, value string, max int) (string, error) {
	v := strings.TrimSpace(value)
	if utf8.RuneCountInString(v) > max {
		return "", fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return v, nil
}

// Rating rejects values outside [min, max].
func Rating(rating, min, max int) error {
	if rating < min || rating > max {
		return fmt.Errorf("rating must be between %d and %d", min, max)
	}
	return nil
}
