// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package indextest provides an in-memory index.Index for tests.
package indextest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/citation-engine/internal/title"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// Index answers lookups from fixtures. Titles are keyed by their
// normalized form and authors case-insensitively. Calls are recorded as
// "id:<id>", "title:<title>" and "author:<name>".
type Index struct {
	mu       sync.Mutex
	byID     map[string][]types.IndexRecord
	byTitle  map[string][]types.IndexRecord
	byAuthor map[string][]types.IndexRecord
	errs     map[string]error
	calls    []string
}

// New returns an empty fixture index.
func New() *Index {
	return &Index{
		byID:     make(map[string][]types.IndexRecord),
		byTitle:  make(map[string][]types.IndexRecord),
		byAuthor: make(map[string][]types.IndexRecord),
		errs:     make(map[string]error),
	}
}

// Add registers r under its canonical ID and title.
func (x *Index) Add(rs ...types.IndexRecord) *Index {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, r := range rs {
		x.byID[r.CanonicalID] = []types.IndexRecord{r}
		k := title.Normalize(r.Title)
		x.byTitle[k] = append(x.byTitle[k], r)
	}
	return x
}

// Author sets the results of an author search.
func (x *Index) Author(name string, rs ...types.IndexRecord) *Index {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.byAuthor[strings.ToLower(name)] = rs
	return x
}

// Fail makes the call recorded as key ("author:Jane Doe") return err.
func (x *Index) Fail(key string, err error) *Index {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.errs[key] = err
	return x
}

// Calls returns the recorded calls in order.
func (x *Index) Calls() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.calls...)
}

// CallsWithPrefix returns the recorded calls starting with prefix.
func (x *Index) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range x.Calls() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (x *Index) answer(ctx context.Context, key string, rs []types.IndexRecord, limit int) ([]types.IndexRecord, error) {
	x.calls = append(x.calls, key)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := x.errs[key]; err != nil {
		return nil, err
	}
	if limit > 0 && len(rs) > limit {
		rs = rs[:limit]
	}
	return append([]types.IndexRecord(nil), rs...), nil
}

// LookupID implements index.Index.
func (x *Index) LookupID(ctx context.Context, id string) ([]types.IndexRecord, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.answer(ctx, "id:"+id, x.byID[id], 0)
}

// SearchTitle implements index.Index.
func (x *Index) SearchTitle(ctx context.Context, t string, limit int) ([]types.IndexRecord, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.answer(ctx, "title:"+t, x.byTitle[title.Normalize(t)], limit)
}

// SearchAuthor implements index.Index.
func (x *Index) SearchAuthor(ctx context.Context, author string, limit int) ([]types.IndexRecord, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.answer(ctx, "author:"+author, x.byAuthor[strings.ToLower(author)], limit)
}

// Record builds an arXiv-shaped fixture record.
func Record(id, t string, year int, authors ...string) types.IndexRecord {
	return types.IndexRecord{
		CanonicalID:     id,
		Title:           t,
		Authors:         authors,
		Published:       time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC),
		Abstract:        "Abstract of " + t + ".",
		PDFLocator:      "https://arxiv.org/pdf/" + id,
		AbsLocator:      "https://arxiv.org/abs/" + id,
		PrimaryCategory: "cs.CL",
	}
}
