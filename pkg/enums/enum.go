package enums

import (
	"fmt"
	"strings"
)

// parse matches raw input against a closed set of values, ignoring case and
// surrounding whitespace.
func parse[T ~string](kind string, valid []T, value string) (T, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range valid {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, value)
}

func contains[T ~string](valid []T, value T) bool {
	for _, candidate := range valid {
		if candidate == value {
			return true
		}
	}
	return false
}
