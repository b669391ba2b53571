package utils

import (
	"fmt"
	"regexp"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._\-]{1,31}$`)
	colorRegex    = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateUsername accepts 2-32 lowercase letters, digits, dots, dashes and underscores
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("invalid username: %s", username)
	}
	return nil
}

// ValidateColor validates a CSS hex color such as #a00 or #aa0000
func ValidateColor(color string) error {
	if !colorRegex.MatchString(color) {
		return fmt.Errorf("invalid color: %s", color)
	}
	return nil
}

// ValidateProgress validates a completion percentage
func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100: %d", progress)
	}
	return nil
}
