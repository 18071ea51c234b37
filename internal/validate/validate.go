// Package validate checks and normalizes the phone and email fields of a contact.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidPhone is returned for phone numbers that do not consist of exactly ten digits.
	ErrInvalidPhone = errors.New("invalid phone number, please enter 10 digits")

	// ErrInvalidEmail is returned for email addresses that do not have the local@domain.tld shape.
	ErrInvalidEmail = errors.New("invalid email address format")

	// ErrReservedCharacter is returned for field values that contain the file delimiter or a
	// line break.
	ErrReservedCharacter = errors.New("contains a reserved character ('|' or line break)")

	// ErrFieldTooLong is returned for field values longer than MaxFieldLength bytes.
	ErrFieldTooLong = fmt.Errorf("is longer than %d bytes", MaxFieldLength)
)

// Reserved lists the characters that may not appear in any field of a contact.
const Reserved = "|\r\n"

// MaxFieldLength is the maximum length of a single field in bytes. Five fields of this
// length plus their delimiters still fit into one line of the contacts file.
const MaxFieldLength = 200 * 1024

var phonePattern = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidatePhone returns true if raw is a phone number in the canonical DDD-DDD-DDDD form.
func ValidatePhone(raw string) bool {
	return phonePattern.MatchString(raw)
}

// NormalizePhone strips every non-digit character from raw. If exactly ten digits remain, they
// are returned in the canonical DDD-DDD-DDDD form. Otherwise the second return value is false.
func NormalizePhone(raw string) (string, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) != 10 {
		return "", false
	}
	return d[:3] + "-" + d[3:6] + "-" + d[6:], true
}

// ValidateEmail returns true if raw fully matches the local@domain.tld shape. There is no further
// check whether the domain exists.
func ValidateEmail(raw string) bool {
	return emailPattern.MatchString(raw)
}

// Phone is the error returning variant of NormalizePhone.
func Phone(raw string) (string, error) {
	phone, ok := NormalizePhone(raw)
	if !ok {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

// Email is the error returning variant of ValidateEmail.
func Email(raw string) error {
	if !ValidateEmail(raw) {
		return ErrInvalidEmail
	}
	return nil
}

// Field checks that value can be stored in the contacts file without breaking its line format.
func Field(name string, value string) error {
	if strings.ContainsAny(value, Reserved) {
		return fmt.Errorf("%s %w", name, ErrReservedCharacter)
	}
	if len(value) > MaxFieldLength {
		return fmt.Errorf("%s %w", name, ErrFieldTooLong)
	}
	return nil
}
