package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxIDLength bounds card and board identifiers.
const maxIDLength = 128

// ValidateCardID validates an opaque card identifier.
//
// Card IDs come from the event collaborator and are treated as opaque, but
// they end up in URLs, cache keys and SQL parameters, so the rules reject
// anything that could be used for traversal or injection:
//   - No empty IDs
//   - No control characters or whitespace
//   - No path separators
//   - Maximum length of 128 characters
func ValidateCardID(id string) error {
	return validateID(ErrCodeInvalidCardID, "card id", id)
}

// ValidateBoardID validates a board identifier with the same rules as card IDs.
func ValidateBoardID(id string) error {
	return validateID(ErrCodeInvalidBoardID, "board id", id)
}

func validateID(code Code, what, id string) error {
	if id == "" {
		return New(code, "%s cannot be empty", what)
	}
	if len(id) > maxIDLength {
		return New(code, "%s too long (max %d characters)", what, maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(code, "%s contains invalid characters", what)
		}
	}
	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return New(code, "%s cannot contain path separators", what)
	}
	return nil
}

// ValidateCanvas validates canvas pixel dimensions.
// Both dimensions must be finite and strictly positive.
func ValidateCanvas(width, height float64) error {
	if !finite(width) || width <= 0 {
		return New(ErrCodeInvalidCanvas, "canvas width must be positive, got %v", width)
	}
	if !finite(height) || height <= 0 {
		return New(ErrCodeInvalidCanvas, "canvas height must be positive, got %v", height)
	}
	return nil
}

// ValidatePercent validates a canvas-relative percentage in [0, 100].
func ValidatePercent(name string, v float64) error {
	if !finite(v) {
		return New(ErrCodeInvalidPosition, "%s must be a finite number", name)
	}
	if v < 0 || v > 100 {
		return New(ErrCodeInvalidPosition, "%s must be within [0, 100], got %v", name, v)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
