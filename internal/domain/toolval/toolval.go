// Package toolval checks a candidate tool record against the catalog's
// field rules. It is pure: no I/O, no clock, no shared state.
package toolval

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dalemusser/stratatools/internal/app/system/normalize"
	"github.com/dalemusser/stratatools/internal/domain/models"
)

// Description length bounds, in whitespace-separated words.
const (
	MinDescriptionWords = 18
	MaxDescriptionWords = 25
)

// Result is the outcome of Validate. Errors is empty exactly when Valid is true.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks every rule independently and accumulates messages in a fixed order.
func Validate(f models.ToolFields) Result {
	errs := make([]string, 0)

	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, "Tool name is required")
	}
	if !IsAbsoluteURL(f.IconURL) {
		errs = append(errs, "Valid icon URL is required")
	}
	if n := WordCount(f.Description); n < MinDescriptionWords || n > MaxDescriptionWords {
		errs = append(errs, fmt.Sprintf("Description must be %d-%d words (current: %d)",
			MinDescriptionWords, MaxDescriptionWords, n))
	}
	if !models.IsValidCategory(f.Category) {
		errs = append(errs, "Category must be one of: "+strings.Join(models.AllCategoryValues(), ", "))
	}
	if !models.IsValidPricingTag(f.PricingTag) {
		errs = append(errs, "Pricing tag must be one of: "+strings.Join(models.AllPricingTagValues(), ", "))
	}
	if !IsAbsoluteURL(f.OfficialLink) {
		errs = append(errs, "Valid official link is required")
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// WordCount counts whitespace-separated tokens. Blank text has zero words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// IsAbsoluteURL reports whether s parses as a URL with both a scheme and a host.
// Opaque forms such as "mailto:x@y" have no host and are rejected.
func IsAbsoluteURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// NormalizeName returns the duplicate-detection key for a tool name.
func NormalizeName(s string) string { return normalize.ToolName(s) }

// NormalizeURL returns the duplicate-detection key for a link.
func NormalizeURL(s string) string { return normalize.URL(s) }
