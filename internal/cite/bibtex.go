// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite renders keyed citation entries as BibTeX and asks the
// generative service to place \cite markers in the source text.
package cite

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/citation-engine/pkg/types"
)

var titleEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"{", `\{`,
	"}", `\}`,
	"\r\n", " ",
	"\n", " ",
)

// EscapeTitle folds newlines to spaces and escapes backslashes and braces
// in one pass.
func EscapeTitle(s string) string {
	return titleEscaper.Replace(s)
}

// BibTeX renders one entry as an @article record. Field order is fixed:
// title, author, year, eprint, archivePrefix, primaryClass (when known), url.
func BibTeX(e types.CitationEntry) string {
	r := e.Record
	var b strings.Builder

	fmt.Fprintf(&b, "@article{%s,\n", e.Key)
	field(&b, "title", EscapeTitle(r.Title))
	field(&b, "author", strings.Join(r.Authors, " and "))

	year := ""
	if y := r.EffectiveYear(); y > 0 {
		year = strconv.Itoa(y)
	}
	field(&b, "year", year)
	field(&b, "eprint", r.CanonicalID)
	field(&b, "archivePrefix", "arXiv")
	if r.PrimaryCategory != "" {
		field(&b, "primaryClass", r.PrimaryCategory)
	}
	fmt.Fprintf(&b, "  url={%s}\n}", r.AbsLocator)

	return b.String()
}

func field(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "  %s={%s},\n", name, value)
}

// Entries renders each entry in order.
func Entries(entries []types.CitationEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = BibTeX(e)
	}
	return out
}

// Document joins all entries with a blank line, as written to references.bib.
func Document(entries []types.CitationEntry) string {
	if len(entries) == 0 {
		return ""
	}
	return strings.Join(Entries(entries), "\n\n") + "\n"
}
