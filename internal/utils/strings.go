// Package utils holds small helpers shared across packages.
package utils

import "strings"

// ParseList splits a comma-separated string into trimmed, non-empty values.
// It never returns nil so that empty lists encode as [] rather than null.
func ParseList(s string) []string {
	out := []string{}
	for _, v := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// JoinList is the inverse of ParseList for values without commas
func JoinList(values []string) string {
	return strings.Join(values, ",")
}
