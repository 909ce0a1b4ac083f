// Package util provides utility functions for the application.
package util

import (
	"regexp"
	"strings"
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-:.@()+,=;$!*'%]{1,254}$`)

// NormalizeOrgName ensures org names are always trimmed
// Use this function whenever accepting org names from external sources
func NormalizeOrgName(org string) string {
	return strings.Join(strings.Fields(org), " ")
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidKey reports whether s is usable as an ArangoDB document key
func IsValidKey(s string) bool {
	return keyPattern.MatchString(s)
}
