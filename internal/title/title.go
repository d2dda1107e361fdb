// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package title compares paper titles for equality under case and
// punctuation noise.
package title

import (
	"strings"
	"unicode"
)

// Normalize lower-cases s, drops every rune that is not a letter, digit, or
// whitespace, and collapses whitespace runs to single spaces.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Matches reports whether a and b name the same paper. Titles that
// normalize to the empty string never match.
func Matches(a, b string) bool {
	na := Normalize(a)
	if na == "" {
		return false
	}
	return na == Normalize(b)
}
