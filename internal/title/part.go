package title

import (
	"fmt"

	apperrors "github.com/louisbranch/pagetitle/internal/platform/errors"
)

// OverrideLevel is the reserved level for a standalone title that bypasses the
// cascade.
const OverrideLevel = -1

// DefaultSeparator joins cascade parts when no separator was configured.
const DefaultSeparator = " • "

// Part is one view's contribution to the page title.
type Part struct {
	Level int    `json:"level"`
	Title string `json:"title"`
}

// IsOverride reports whether the part bypasses the cascade.
func (p Part) IsOverride() bool {
	return p.Level == OverrideLevel
}

// ValidateLevel rejects negative levels other than OverrideLevel.
func ValidateLevel(level int) error {
	if level >= 0 || level == OverrideLevel {
		return nil
	}
	return apperrors.WithMetadata(
		apperrors.CodeInvalidArgument,
		fmt.Sprintf("title level %d is negative and not the override level", level),
		map[string]string{"level": fmt.Sprint(level)},
	)
}

// ValidateSeparator rejects the empty separator.
func ValidateSeparator(separator string) error {
	if separator == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "title separator must not be empty")
	}
	return nil
}
