package utils

import (
	"regexp"
	"unicode"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9 ().-]{7,20}$`)
)

func IsValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// IsStrongPassword requires at least one lowercase letter, one uppercase
// letter and one digit. Length is checked separately.
func IsStrongPassword(password string) bool {
	var hasUpper, hasLower, hasNumber bool

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	return hasUpper && hasLower && hasNumber
}

func IsValidPhone(phone string) bool {
	if !phoneRegex.MatchString(phone) {
		return false
	}

	digits := 0
	for _, char := range phone {
		if unicode.IsDigit(char) {
			digits++
		}
	}
	return digits >= 7
}
