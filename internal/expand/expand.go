// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package expand grows the validated set through the authors of each
// record, then asks the generative service to keep the records most
// relevant to the source text.
package expand

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citation-engine/internal/dedup"
	"github.com/pdiddy/citation-engine/internal/index"
	"github.com/pdiddy/citation-engine/internal/llm"
	"github.com/pdiddy/citation-engine/internal/parse"
	"github.com/pdiddy/citation-engine/pkg/types"
)

const (
	defaultMaxKeyAuthors = 3
	defaultAuthorResults = 20
)

// Expander runs author-network expansion and relevance ranking.
type Expander struct {
	Index  index.Index
	LLM    llm.Backend
	Logger *zap.Logger

	// MaxKeyAuthors caps the key authors taken per record (default 3).
	MaxKeyAuthors int

	// AuthorResults bounds each author search (default 20).
	AuthorResults int

	// Concurrency bounds parallel key-author calls and author searches (default 1).
	Concurrency int
}

// New creates an Expander. A nil logger is replaced with a no-op logger.
func New(idx index.Index, b llm.Backend, cfg types.IndexConfig, pcfg types.PipelineConfig, logger *zap.Logger) *Expander {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Expander{
		Index:         idx,
		LLM:           b,
		Logger:        logger,
		MaxKeyAuthors: pcfg.MaxKeyAuthors,
		AuthorResults: cfg.AuthorResults,
		Concurrency:   pcfg.Concurrency,
	}
}

// Expand returns the ranked citation entries for validated. Empty input
// yields no entries and makes no external calls. Only a failed ranking call
// is an error; key-author and author-search failures drop that unit.
func (e *Expander) Expand(ctx context.Context, validated []types.ValidatedRecord, text string) ([]types.CitationEntry, error) {
	if len(validated) == 0 {
		return nil, nil
	}
	pool, err := e.Pool(ctx, validated)
	if err != nil {
		return nil, err
	}
	return e.Rank(ctx, text, pool)
}

// authorQuery is one author search together with the record that
// nominated the author.
type authorQuery struct {
	author string
	origin string
}

// Pool returns validated followed by the records found through their key
// authors, deduplicated by canonical ID with the first occurrence kept.
func (e *Expander) Pool(ctx context.Context, validated []types.ValidatedRecord) ([]types.ValidatedRecord, error) {
	if len(validated) == 0 {
		return nil, nil
	}

	nominated, err := e.keyAuthors(ctx, validated)
	if err != nil {
		return nil, err
	}

	// Frontier of author queries in record order; an author already queued
	// for an earlier record is not searched again.
	var queue []authorQuery
	visited := make(map[string]bool)
	for i, authors := range nominated {
		for _, a := range authors {
			k := strings.ToLower(a)
			if visited[k] {
				continue
			}
			visited[k] = true
			queue = append(queue, authorQuery{author: a, origin: validated[i].CanonicalID})
		}
	}

	found, err := e.searchAuthors(ctx, queue)
	if err != nil {
		return nil, err
	}
	var expansion []types.ValidatedRecord
	for _, recs := range found {
		expansion = append(expansion, recs...)
	}

	pool := dedup.Merge(validated, expansion)
	expansionRecords.WithLabelValues("validated").Add(float64(len(validated)))
	expansionRecords.WithLabelValues("expansion").Add(float64(len(expansion)))
	expansionRecords.WithLabelValues("pool").Add(float64(len(pool)))
	e.Logger.Info("author expansion complete",
		zap.Int("validated", len(validated)),
		zap.Int("authors", len(queue)),
		zap.Int("found", len(expansion)),
		zap.Int("pool", len(pool)))
	return pool, nil
}

func (e *Expander) keyAuthors(ctx context.Context, validated []types.ValidatedRecord) ([][]string, error) {
	limit := e.MaxKeyAuthors
	if limit <= 0 {
		limit = defaultMaxKeyAuthors
	}
	out := make([][]string, len(validated))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.Concurrency, 1))
	for i, r := range validated {
		g.Go(func() error {
			reply, err := llm.Ask(gctx, e.LLM, llm.KeyAuthors, r)
			if err != nil {
				e.Logger.Warn("key authors unavailable",
					zap.String("canonical_id", r.CanonicalID), zap.Error(err))
				return gctx.Err()
			}
			names := parse.Names(reply)
			if len(names) > limit {
				names = names[:limit]
			}
			e.Logger.Debug("key authors",
				zap.String("canonical_id", r.CanonicalID), zap.Strings("authors", names))
			out[i] = names
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, ctx.Err()
}

func (e *Expander) searchAuthors(ctx context.Context, queue []authorQuery) ([][]types.ValidatedRecord, error) {
	limit := e.AuthorResults
	if limit <= 0 {
		limit = defaultAuthorResults
	}
	out := make([][]types.ValidatedRecord, len(queue))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.Concurrency, 1))
	for i, q := range queue {
		g.Go(func() error {
			records, err := e.Index.SearchAuthor(gctx, q.author, limit)
			if err != nil {
				e.Logger.Warn("author search failed", zap.String("author", q.author), zap.Error(err))
				return gctx.Err()
			}
			recs := make([]types.ValidatedRecord, 0, len(records))
			for _, r := range records {
				v := types.NewValidatedRecord(types.CandidateRecord{}, r, types.ProvenanceAuthorExpansion)
				v.FromAuthor, v.Origin = q.author, q.origin
				recs = append(recs, v)
			}
			e.Logger.Debug("author search", zap.String("author", q.author), zap.Int("results", len(recs)))
			out[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, ctx.Err()
}

// Rank asks the generative service to select and order the pooled records
// by relevance to text. Only selected records are returned, in selection
// order, each carrying the stated reason as its relevance note. Unknown and
// repeated identifiers are ignored. An empty pool makes no call.
func (e *Expander) Rank(ctx context.Context, text string, pool []types.ValidatedRecord) ([]types.CitationEntry, error) {
	if len(pool) == 0 {
		return nil, nil
	}
	reply, err := llm.Ask(ctx, e.LLM, llm.RankPapers, llm.RankData{Text: text, Records: pool})
	if err != nil {
		return nil, fmt.Errorf("ranking %d records: %w", len(pool), err)
	}

	byID := make(map[string]types.ValidatedRecord, len(pool))
	for _, r := range pool {
		byID[r.CanonicalID] = r
	}
	var entries []types.CitationEntry
	used := make(map[string]bool)
	for _, s := range parse.Selections(reply, index.ResolveID) {
		r, ok := byID[s.ID]
		if !ok || used[s.ID] {
			e.Logger.Debug("ignoring ranked id", zap.String("id", s.ID), zap.Bool("repeated", ok))
			continue
		}
		used[s.ID] = true
		note := s.Reason
		if note == "" {
			note = r.Relevance
		}
		entries = append(entries, types.CitationEntry{Record: r, RelevanceNote: note})
	}

	expansionRecords.WithLabelValues("selected").Add(float64(len(entries)))
	e.Logger.Info("ranking complete", zap.Int("pool", len(pool)), zap.Int("selected", len(entries)))
	return entries, nil
}
