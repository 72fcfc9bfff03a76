// Package slug derives URL-safe identifiers for catalog tools.
package slug

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// Fallback is used when a name contains no letters or digits.
const Fallback = "tool"

// MaxAttempts bounds the suffix search in Unique.
const MaxAttempts = 1000

// ErrExhausted is returned when no free slug was found within MaxAttempts.
var ErrExhausted = errors.New("slug: no free slug within attempt limit")

// Make lowercases name, keeps ASCII letters and digits, and collapses every
// other run of characters to a single "-".
func Make(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	if b.Len() == 0 {
		return Fallback
	}
	return b.String()
}

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Unique returns base if it is free, otherwise the first free of base-2, base-3, ...
func Unique(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	candidate := base
	for i := 1; i <= MaxAttempts; i++ {
		if i > 1 {
			candidate = base + "-" + strconv.Itoa(i)
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrExhausted
}
