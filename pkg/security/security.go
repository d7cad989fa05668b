// Package security provides validation, sanitization, and limits for the zap package.
package security

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cpiprint/zap-notify/pkg/core"
)

// Limits
const (
	// MaxNotificationNameLength is the maximum length for registered notification names
	MaxNotificationNameLength = 255

	// MaxRetries is the hard limit for delivery retry attempts
	MaxRetries = 100

	// MaxConcurrency is the hard limit for tick and delivery concurrency
	MaxConcurrency = 1000

	// MaxErrorMessageLength is the maximum length for error messages handed to notifications
	MaxErrorMessageLength = 4096

	// MaxOffsetMinutes bounds a single notification offset to one week
	MaxOffsetMinutes = 7 * 24 * 60
)

// validNotificationName matches alphanumeric, hyphens, underscores, and dots
var validNotificationName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_\-\.]*$`)

// ValidateNotificationName validates a notification registry name
func ValidateNotificationName(name string) error {
	if name == "" || len(name) > MaxNotificationNameLength {
		return core.ErrInvalidNotification
	}
	if !validNotificationName.MatchString(name) {
		return core.ErrInvalidNotification
	}
	return nil
}

// SanitizeErrorMessage truncates and strips control characters from error messages
func SanitizeErrorMessage(msg string) string {
	if msg == "" {
		return ""
	}

	var sanitized strings.Builder
	sanitized.Grow(len(msg))

	for _, r := range msg {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			sanitized.WriteRune(r)
		}
	}

	result := sanitized.String()

	if utf8.RuneCountInString(result) > MaxErrorMessageLength {
		runes := []rune(result)
		result = string(runes[:MaxErrorMessageLength-3]) + "..."
	}

	return result
}

// ClampRetries ensures retry count is within limits
func ClampRetries(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxRetries {
		return MaxRetries
	}
	return n
}

// ClampConcurrency ensures concurrency is within limits
func ClampConcurrency(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}

// ValidOffset reports whether a minute offset is usable.
func ValidOffset(m int) bool {
	return m >= 0 && m <= MaxOffsetMinutes
}
