// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cite

import (
	"context"
	"regexp"
	"strings"

	"github.com/pdiddy/citation-engine/internal/llm"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// Annotate returns text with \cite{key} markers placed by the generative
// service. With no entries the text is returned unchanged and no call is
// made. Placement is not verified.
func Annotate(ctx context.Context, b llm.Backend, text string, entries []types.CitationEntry) (string, error) {
	if len(entries) == 0 {
		return text, nil
	}
	return llm.Ask(ctx, b, llm.PlaceCitations, llm.PlaceData{Text: text, Entries: entries})
}

// citePattern matches \cite{a}, \cite{a,b} and the natbib variants.
var citePattern = regexp.MustCompile(`\\cite[a-zA-Z]*\*?(?:\[[^\]]*\])*\{([^{}]*)\}`)

// Keys returns the keys referenced by \cite commands in text, in order of
// first appearance.
func Keys(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range citePattern.FindAllStringSubmatch(text, -1) {
		for _, k := range strings.Split(m[1], ",") {
			k = strings.TrimSpace(k)
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// UnknownKeys returns the keys cited in text that name no entry.
func UnknownKeys(text string, entries []types.CitationEntry) []string {
	known := make(map[string]bool, len(entries))
	for _, e := range entries {
		known[e.Key] = true
	}
	var out []string
	for _, k := range Keys(text) {
		if !known[k] {
			out = append(out, k)
		}
	}
	return out
}
