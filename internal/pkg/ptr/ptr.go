package ptr

import "strings"

func Of[T any](v T) *T {
	return &v
}

// Deref returns the zero value for nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Equal reports whether both are nil or both point to equal values.
func Equal[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// NonEmpty returns nil for an empty string.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Trimmed trims a copy of *s and returns nil when nothing is left.
func Trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return NonEmpty(strings.TrimSpace(*s))
}
