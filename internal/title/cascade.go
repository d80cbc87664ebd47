package title

import (
	"cmp"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"slices"
	"strings"

	apperrors "github.com/louisbranch/pagetitle/internal/platform/errors"
)

// Build joins parts into the cascade, most specific level first.
//
// An override part wins outright; when several are present the last one is
// used. Parts with other negative levels are ignored. An empty separator falls
// back to DefaultSeparator.
func Build(parts []Part, separator string) string {
	if separator == "" {
		separator = DefaultSeparator
	}

	var (
		override    string
		hasOverride bool
	)
	ordered := make([]Part, 0, len(parts))
	for _, part := range parts {
		if part.IsOverride() {
			override = part.Title
			hasOverride = true
			continue
		}
		if part.Level >= 0 {
			ordered = append(ordered, part)
		}
	}
	if hasOverride {
		return override
	}
	if len(ordered) == 0 {
		return ""
	}

	slices.SortStableFunc(ordered, func(a, b Part) int {
		return cmp.Compare(b.Level, a.Level)
	})
	titles := make([]string, len(ordered))
	for idx, part := range ordered {
		titles[idx] = part.Title
	}
	return strings.Join(titles, separator)
}

// BuildRaw builds the cascade from loosely typed input such as decoded JSON.
//
// parts must be a slice or array; anything else fails with
// CodeInvalidArgument. Entries may be Part, *Part or objects with a numeric
// "level" and a string "title". Malformed entries are dropped and reported to
// logger; they never fail the build. A nil logger uses slog.Default.
func BuildRaw(parts any, separator string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if typed, ok := parts.([]Part); ok {
		return Build(typed, separator), nil
	}

	value := reflect.ValueOf(parts)
	if !value.IsValid() || (value.Kind() != reflect.Slice && value.Kind() != reflect.Array) {
		return "", apperrors.WithMetadata(
			apperrors.CodeInvalidArgument,
			fmt.Sprintf("title parts must be a sequence, got %T", parts),
			map[string]string{"type": fmt.Sprintf("%T", parts)},
		)
	}

	valid := make([]Part, 0, value.Len())
	for idx := 0; idx < value.Len(); idx++ {
		part, err := normalizePart(value.Index(idx).Interface())
		if err != nil {
			logger.Warn("dropping malformed title part",
				slog.String("code", string(apperrors.CodeMalformedPart)),
				slog.Int("index", idx),
				slog.String("reason", err.Error()),
			)
			continue
		}
		valid = append(valid, part)
	}
	return Build(valid, separator), nil
}

func normalizePart(entry any) (Part, error) {
	switch typed := entry.(type) {
	case Part:
		return typed, nil
	case *Part:
		if typed == nil {
			return Part{}, fmt.Errorf("nil part")
		}
		return *typed, nil
	case map[string]any:
		return partFromFields(typed)
	case nil:
		return Part{}, fmt.Errorf("nil entry")
	default:
		return Part{}, fmt.Errorf("unsupported entry type %T", entry)
	}
}

func partFromFields(fields map[string]any) (Part, error) {
	rawLevel, ok := fields["level"]
	if !ok {
		return Part{}, fmt.Errorf("missing level")
	}
	level, err := integerLevel(rawLevel)
	if err != nil {
		return Part{}, err
	}
	rawTitle, ok := fields["title"]
	if !ok {
		return Part{}, fmt.Errorf("missing title")
	}
	text, ok := rawTitle.(string)
	if !ok {
		return Part{}, fmt.Errorf("title is %T, want string", rawTitle)
	}
	return Part{Level: level, Title: text}, nil
}

func integerLevel(raw any) (int, error) {
	switch typed := raw.(type) {
	case int:
		return typed, nil
	case int32:
		return int(typed), nil
	case int64:
		if typed < math.MinInt || typed > math.MaxInt {
			return 0, fmt.Errorf("level %d out of range", typed)
		}
		return int(typed), nil
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) || typed != math.Trunc(typed) {
			return 0, fmt.Errorf("level %v is not an integer", typed)
		}
		if typed < math.MinInt32 || typed > math.MaxInt32 {
			return 0, fmt.Errorf("level %v out of range", typed)
		}
		return int(typed), nil
	case json.Number:
		n, err := typed.Int64()
		if err != nil {
			return 0, fmt.Errorf("level %q is not an integer", typed.String())
		}
		return integerLevel(n)
	default:
		return 0, fmt.Errorf("level is %T, want number", raw)
	}
}
