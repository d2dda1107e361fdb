// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup merges candidate pools by canonical identifier and assigns
// citation keys.
package dedup

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// UnknownAuthor is the family name used when a record lists no authors.
const UnknownAuthor = "Unknown"

// Merge concatenates pools and keeps the first record seen for each
// canonical ID. Later duplicates are discarded whole; fields are never
// merged across records.
func Merge(pools ...[]types.ValidatedRecord) []types.ValidatedRecord {
	var out []types.ValidatedRecord
	seen := make(map[string]bool)
	for _, pool := range pools {
		for _, r := range pool {
			if seen[r.CanonicalID] {
				continue
			}
			seen[r.CanonicalID] = true
			out = append(out, r)
		}
	}
	return out
}

// FamilyName returns the last whitespace-separated token of the first
// author, reduced to letters and digits, or UnknownAuthor.
func FamilyName(authors []string) string {
	if len(authors) == 0 {
		return UnknownAuthor
	}
	fields := strings.Fields(authors[0])
	if len(fields) == 0 {
		return UnknownAuthor
	}
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, fields[len(fields)-1])
	if name == "" {
		return UnknownAuthor
	}
	return name
}

// BaseKey derives the uncollided key {FamilyName}{year} for a record. The
// year is omitted when unknown.
func BaseKey(r types.ValidatedRecord) string {
	key := FamilyName(r.Authors)
	if y := r.EffectiveYear(); y > 0 {
		key += strconv.Itoa(y)
	}
	return key
}

// AssignKeys returns a copy of entries with Key set. Entries whose base key
// is unique keep it bare; every entry sharing a base key gets a suffix a,
// b, ... z, aa, ab, ... in entry order.
func AssignKeys(entries []types.CitationEntry) []types.CitationEntry {
	out := make([]types.CitationEntry, len(entries))
	base := make([]string, len(entries))
	counts := make(map[string]int)
	for i, e := range entries {
		base[i] = BaseKey(e.Record)
		counts[base[i]]++
	}

	used := make(map[string]bool)
	next := make(map[string]int)
	for i, e := range entries {
		out[i] = e
		if counts[base[i]] == 1 && !used[base[i]] {
			out[i].Key = base[i]
			used[base[i]] = true
			continue
		}
		for {
			key := base[i] + suffix(next[base[i]])
			next[base[i]]++
			if !used[key] {
				out[i].Key = key
				used[key] = true
				break
			}
		}
	}
	return out
}

// suffix renders n in bijective base 26: 0 -> "a", 25 -> "z", 26 -> "aa".
func suffix(n int) string {
	var b []byte
	for n++; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('a' + (n-1)%26)}, b...)
	}
	return string(b)
}
