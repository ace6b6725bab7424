package repositories

import (
	"regexp"
	"strconv"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// requireNonEmpty rejects missing or whitespace-only values with a
// validation error naming the field.
func requireNonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return validationError(field, field+" must not be empty")
	}
	return nil
}

// requireMaxLength rejects values longer than max runes.
func requireMaxLength(field, value string, max int) error {
	if len([]rune(value)) > max {
		return validationError(field, field+" must not exceed "+strconv.Itoa(max)+" characters")
	}
	return nil
}

func validateEmailFormat(field, value string) error {
	if !emailRegex.MatchString(value) {
		return validationError(field, "invalid email address")
	}
	return nil
}

func validatePhoneFormat(field, value string) error {
	if !phoneRegex.MatchString(value) {
		return validationError(field, "invalid phone number")
	}
	return nil
}
