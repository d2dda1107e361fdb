// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"regexp"
	"strings"
)

// listMarker matches a leading bullet or enumeration ("- ", "* ", "• ", "1. ", "2) ").
var listMarker = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)

// parenthetical matches a trailing annotation such as "(first author)".
var parenthetical = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// Names parses a one-name-per-line response. List markers, role prefixes
// ("Last author: ..."), and trailing parentheticals are stripped; blank
// lines are dropped; repeats (case-insensitive) keep their first position.
func Names(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for line := range strings.Lines(text) {
		name := listMarker.ReplaceAllString(strings.TrimSpace(line), "")
		if _, after, ok := strings.Cut(name, ":"); ok {
			name = after
		}
		name = strings.Trim(parenthetical.ReplaceAllString(name, ""), " \t*_")
		if name == "" {
			continue
		}
		k := strings.ToLower(name)
		if seen[k] {
			continue
		}
		seen[k] = true
		names = append(names, name)
	}
	return names
}

// Ranking response labels.
const (
	LabelSelectID     = "ID:"
	LabelSelectURL    = "URL:"
	LabelSelectReason = "Reason:"
)

// Selection is one record picked by the ranking step.
type Selection struct {
	ID     string
	Reason string
}

// Selections parses a ranking response into selections in response order.
// An ID (or URL) line opens a selection and a Reason line annotates it. A
// bare line that resolve accepts as an identifier also opens a selection.
// resolve canonicalizes identifiers; values it rejects are kept verbatim
// when they come from an explicit ID line.
func Selections(text string, resolve func(string) (string, bool)) []Selection {
	var (
		out []Selection
		cur *Selection
	)
	open := func(raw string, explicit bool) {
		raw = strings.TrimSpace(raw)
		id, ok := resolve(raw)
		if !ok {
			if !explicit || raw == "" {
				return
			}
			id = raw
		}
		if cur != nil {
			out = append(out, *cur)
		}
		cur = &Selection{ID: id}
	}
	for line := range strings.Lines(text) {
		line = listMarker.ReplaceAllString(strings.TrimSpace(line), "")
		switch {
		case line == "":
		case strings.HasPrefix(line, LabelSelectID):
			open(line[len(LabelSelectID):], true)
		case strings.HasPrefix(line, LabelSelectURL):
			open(line[len(LabelSelectURL):], true)
		case strings.HasPrefix(line, LabelSelectReason):
			if cur != nil {
				cur.Reason = strings.TrimSpace(line[len(LabelSelectReason):])
			}
		default:
			open(line, false)
		}
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}
