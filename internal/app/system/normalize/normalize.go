// Package normalize provides helper functions for consistent string normalization
// across the application. Use these helpers instead of scattered strings.ToLower
// and strings.TrimSpace calls to ensure consistent behavior.
package normalize

import (
	"net/url"
	"strings"
)

// Email normalizes an email address by trimming whitespace and converting to lowercase.
// This is the canonical way to normalize emails before storage or comparison.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name normalizes a display name by trimming whitespace.
// Use ToolName for comparison keys.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// ToolName produces the duplicate-detection key for a tool name:
// lowercase, trimmed, with runs of internal whitespace collapsed to one space.
func ToolName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// URL produces the duplicate-detection key for a link: scheme://host plus the
// path with one trailing slash removed, all lowercased. Query and fragment are
// dropped. Input that is not an absolute URL falls back to the trimmed,
// lowercased raw string.
func URL(s string) string {
	raw := strings.TrimSpace(s)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(raw)
	}
	path := strings.TrimSuffix(u.EscapedPath(), "/")
	return strings.ToLower(u.Scheme + "://" + u.Host + path)
}

// Status normalizes a status value by trimming whitespace and converting to lowercase.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
