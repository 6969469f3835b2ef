package enums

import (
	"fmt"
	"slices"
)

// oneOf reports whether v is a member of set.
func oneOf[T ~string](v T, set []T) bool {
	return slices.Contains(set, v)
}

// parseOneOf matches raw exactly against set; kind names the enum in the error.
func parseOneOf[T ~string](kind, raw string, set []T) (T, error) {
	if v := T(raw); oneOf(v, set) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, raw)
}
