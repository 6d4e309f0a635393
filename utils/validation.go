// utils/validation.go
package utils

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// CleanPhone drops every non-digit character from a phone number.
func CleanPhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(phone))
}

// ValidatePhone checks the phone is exactly 10 digits after cleaning.
// Decimal points are rejected outright.
func ValidatePhone(phone string) bool {
	if strings.Contains(phone, ".") {
		return false
	}
	return phonePattern.MatchString(CleanPhone(phone))
}

// ValidateDate checks s is a zero-padded YYYY-MM-DD calendar date.
func ValidateDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
