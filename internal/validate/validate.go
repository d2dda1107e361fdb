// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate confirms candidate citations against the bibliographic
// index. Each candidate is tried first by its locator, then by a fuzzy title
// search; a candidate neither path confirms is dropped.
package validate

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citation-engine/internal/index"
	"github.com/pdiddy/citation-engine/internal/title"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// Outcome tags how a candidate left validation.
type Outcome int

const (
	Rejected Outcome = iota
	AcceptedByID
	AcceptedByTitle
)

func (o Outcome) String() string {
	switch o {
	case AcceptedByID:
		return "accepted_by_id"
	case AcceptedByTitle:
		return "accepted_by_title"
	default:
		return "rejected"
	}
}

// Result is the validation outcome for one candidate. Record is set only
// when the candidate was accepted. Err records a swallowed index failure.
type Result struct {
	Candidate types.CandidateRecord
	Outcome   Outcome
	Record    *types.ValidatedRecord
	Err       error
}

const defaultTitleResults = 10

// Validator checks candidates against an index.
type Validator struct {
	Index  index.Index
	Logger *zap.Logger

	// TitleResults bounds the fuzzy title search (default 10).
	TitleResults int

	// Concurrency bounds how many candidates are checked at once (default 1).
	Concurrency int
}

// New creates a Validator. A nil logger is replaced with a no-op logger.
func New(idx index.Index, cfg types.IndexConfig, pcfg types.PipelineConfig, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		Index:        idx,
		Logger:       logger,
		TitleResults: cfg.TitleResults,
		Concurrency:  pcfg.Concurrency,
	}
}

// Validate returns the confirmed candidates in input order. A candidate
// resolving to a canonical ID already accepted earlier in the sequence is
// dropped. Index failures only affect the candidate they occurred on.
func (v *Validator) Validate(ctx context.Context, candidates []types.CandidateRecord) ([]types.ValidatedRecord, error) {
	results, err := v.Each(ctx, candidates)
	if err != nil {
		return nil, err
	}
	return Accepted(results), nil
}

// Each validates every candidate and returns one Result per candidate, in
// input order. It fails only when ctx is done.
func (v *Validator) Each(ctx context.Context, candidates []types.CandidateRecord) ([]Result, error) {
	results := make([]Result, len(candidates))
	if len(candidates) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(v.Concurrency, 1))
	for i, c := range candidates {
		g.Go(func() error {
			results[i] = v.one(gctx, c)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, r := range results {
		outcomes.WithLabelValues(r.Outcome.String()).Inc()
	}
	return results, nil
}

// Accepted extracts the accepted records from results in order, keeping the
// first record per canonical ID.
func Accepted(results []Result) []types.ValidatedRecord {
	var out []types.ValidatedRecord
	seen := make(map[string]bool)
	for _, r := range results {
		if r.Record == nil || seen[r.Record.CanonicalID] {
			continue
		}
		seen[r.Record.CanonicalID] = true
		out = append(out, *r.Record)
	}
	return out
}

func (v *Validator) one(ctx context.Context, c types.CandidateRecord) Result {
	log := v.Logger.With(zap.String("title", c.Title))
	res := Result{Candidate: c}

	if id, ok := index.ResolveID(c.SourceURL); ok {
		records, err := v.Index.LookupID(ctx, id)
		switch {
		case err != nil:
			log.Warn("id lookup failed", zap.String("id", id), zap.Error(err))
			res.Err = err
		case len(records) == 1 && title.Matches(c.Title, records[0].Title):
			rec := types.NewValidatedRecord(c, records[0], types.ProvenanceDirect)
			log.Debug("accepted by id", zap.String("canonical_id", rec.CanonicalID))
			res.Outcome, res.Record = AcceptedByID, &rec
			return res
		default:
			log.Debug("id lookup did not confirm title", zap.String("id", id), zap.Int("results", len(records)))
		}
	}

	limit := v.TitleResults
	if limit <= 0 {
		limit = defaultTitleResults
	}
	records, err := v.Index.SearchTitle(ctx, c.Title, limit)
	if err != nil {
		log.Warn("title search failed", zap.Error(err))
		res.Err = err
		return res
	}
	for _, r := range records {
		if title.Matches(c.Title, r.Title) {
			rec := types.NewValidatedRecord(c, r, types.ProvenanceDirect)
			log.Debug("accepted by title", zap.String("canonical_id", rec.CanonicalID))
			res.Outcome, res.Record, res.Err = AcceptedByTitle, &rec, nil
			return res
		}
	}
	log.Debug("rejected", zap.Int("results", len(records)))
	return res
}
