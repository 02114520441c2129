package errors

import (
	"strings"
	"unicode"
)

const (
	maxCoordinateLen = 512
	maxPatternLen    = 512
)

// ValidateCoordinateInput validates a raw coordinate string received from an
// untrusted source (HTTP query parameters) before it reaches the parser.
//
// The validation rules are intentionally conservative:
//   - No empty input
//   - No control characters or whitespace
//   - No path traversal sequences (the coordinate ends up in repository URLs)
//   - Maximum length of 512 characters
func ValidateCoordinateInput(s string) error {
	if s == "" {
		return New(ErrCodeInvalidCoordinate, "coordinate cannot be empty")
	}
	if len(s) > maxCoordinateLen {
		return New(ErrCodeInvalidCoordinate, "coordinate too long (max %d characters)", maxCoordinateLen)
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidCoordinate, "coordinate contains invalid characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(s, pattern) {
			return New(ErrCodeInvalidCoordinate, "coordinate contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidatePatternInput validates a raw filter pattern received from an
// untrusted source. Patterns may contain '*' and '!' but never control
// characters or whitespace.
func ValidatePatternInput(s string) error {
	if len(s) > maxPatternLen {
		return New(ErrCodeInvalidPattern, "pattern too long (max %d characters)", maxPatternLen)
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidPattern, "pattern contains invalid characters")
		}
	}
	return nil
}
