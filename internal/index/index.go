// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index queries the bibliographic search index that confirms
// candidate citations. The Arxiv implementation speaks the arXiv Atom API.
package index

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Index is the read-only bibliographic index the pipeline validates and
// expands against. Results of the search methods are in relevance order.
type Index interface {
	// LookupID returns the records stored under an exact identifier.
	LookupID(ctx context.Context, id string) ([]types.IndexRecord, error)

	// SearchTitle runs a phrase query on titles, returning at most limit records.
	SearchTitle(ctx context.Context, title string, limit int) ([]types.IndexRecord, error)

	// SearchAuthor returns at most limit records by the named author.
	SearchAuthor(ctx context.Context, author string, limit int) ([]types.IndexRecord, error)
}

// arxivIDPattern matches new-style ("1706.03762", "arXiv:1706.03762v5") and
// old-style ("hep-th/9901001v1") arXiv identifiers. The version suffix is
// matched but not captured.
var arxivIDPattern = regexp.MustCompile(`^(?i:arxiv:)?(\d{4}\.\d{4,5}|[a-z][a-z\-]*(?:\.[A-Z]{2})?/\d{7})(?:v\d+)?$`)

// ResolveID extracts the canonical arXiv identifier from a bare identifier or
// an arxiv.org abs/pdf URL. It reports false for anything else.
func ResolveID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if m := arxivIDPattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}

	raw := s
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.") {
	case "arxiv.org", "export.arxiv.org":
	default:
		return "", false
	}

	path := strings.Trim(u.Path, "/")
	for _, prefix := range []string{"abs/", "pdf/"} {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			rest = strings.TrimSuffix(rest, ".pdf")
			if m := arxivIDPattern.FindStringSubmatch(rest); m != nil {
				return m[1], true
			}
		}
	}
	return "", false
}

// phraseReplacer widens recall of title phrase queries: colons and hyphens
// become spaces and embedded quotes are dropped.
var phraseReplacer = strings.NewReplacer(":", " ", "-", " ", `"`, "")

// TitlePhrase prepares a title for a phrase query.
func TitlePhrase(title string) string {
	return strings.Join(strings.Fields(phraseReplacer.Replace(title)), " ")
}
