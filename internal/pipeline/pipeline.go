// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline turns a passage of text into ranked, keyed citation
// entries and a copy of the passage with \cite markers. Candidates are
// suggested by the generative service, confirmed against the index,
// expanded through their authors, ranked, keyed, and formatted.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citation-engine/internal/cite"
	"github.com/pdiddy/citation-engine/internal/dedup"
	"github.com/pdiddy/citation-engine/internal/expand"
	"github.com/pdiddy/citation-engine/internal/index"
	"github.com/pdiddy/citation-engine/internal/llm"
	"github.com/pdiddy/citation-engine/internal/parse"
	"github.com/pdiddy/citation-engine/internal/validate"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// Staged file names within a run directory.
const (
	ReferencesFile = "references.bib"
	CitedTextFile  = "cited_text.tex"
)

// Stager receives intermediate results as each phase completes.
type Stager interface {
	StagePhase(ctx context.Context, runID, phase string, v any) error
	StageFile(ctx context.Context, runID, name string, data []byte) error
}

// Archive records finished runs.
type Archive interface {
	SaveRun(ctx context.Context, run *types.Run) error
}

// Pipeline runs the citation phases. Stager and Archive are optional.
type Pipeline struct {
	LLM       llm.Backend
	Validator *validate.Validator
	Expander  *expand.Expander
	Stager    Stager
	Archive   Archive
	Logger    *zap.Logger

	// Concurrency bounds per-claim suggestion calls in claims mode (default 1).
	Concurrency int

	now   func() time.Time
	newID func() string
}

// New wires a Pipeline over idx and b. A nil logger is replaced with a
// no-op logger.
func New(cfg types.Config, idx index.Index, b llm.Backend, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		LLM:         b,
		Validator:   validate.New(idx, cfg.Index, cfg.Pipeline, logger.Named("validate")),
		Expander:    expand.New(idx, b, cfg.Index, cfg.Pipeline, logger.Named("expand")),
		Logger:      logger,
		Concurrency: cfg.Pipeline.Concurrency,
	}
}

func (p *Pipeline) start(mode types.RunMode, text string) *types.Run {
	now, newID := time.Now, uuid.NewString
	if p.now != nil {
		now = p.now
	}
	if p.newID != nil {
		newID = p.newID
	}
	return &types.Run{ID: newID(), StartedAt: now().UTC(), Mode: mode, Text: text}
}

// Run asks for candidate papers for the whole text, then runs the shared
// downstream phases. A phase that yields no records ends the run early with
// the text unchanged; that is not an error. Only whole-phase generative
// failures and cancellation are returned as errors.
func (p *Pipeline) Run(ctx context.Context, text string) (*types.Run, error) {
	run := p.start(types.ModeSuggest, text)
	log := p.Logger.With(zap.String("run_id", run.ID), zap.String("mode", string(run.Mode)))
	log.Info("run started", zap.Int("text_length", len(text)))

	done := timePhase(types.PhaseSuggestions)
	reply, err := llm.Ask(ctx, p.LLM, llm.SuggestPapers, text)
	if err != nil {
		return nil, p.fail(run, log, fmt.Errorf("phase 1 suggestions: %w", err))
	}
	run.Candidates = parse.Records(reply)
	done()
	log.Info("suggestions parsed", zap.Int("candidates", len(run.Candidates)))
	p.stagePhase(ctx, log, run, types.PhaseSuggestions, run.Candidates)
	if len(run.Candidates) == 0 {
		return p.stop(ctx, log, run, types.PhaseSuggestions), nil
	}

	return p.downstream(ctx, log, run)
}

// RunClaims first identifies the claims in text that need support, asks
// for candidates per claim, then runs the shared downstream phases. A
// failed per-claim call drops that claim's candidates only.
func (p *Pipeline) RunClaims(ctx context.Context, text string) (*types.Run, error) {
	run := p.start(types.ModeClaims, text)
	log := p.Logger.With(zap.String("run_id", run.ID), zap.String("mode", string(run.Mode)))
	log.Info("run started", zap.Int("text_length", len(text)))

	done := timePhase(types.PhaseTargets)
	reply, err := llm.Ask(ctx, p.LLM, llm.IdentifyClaims, text)
	if err != nil {
		return nil, p.fail(run, log, fmt.Errorf("identifying claims: %w", err))
	}
	run.Targets = parse.Targets(reply)
	done()
	log.Info("claims identified", zap.Int("targets", len(run.Targets)))
	if len(run.Targets) == 0 {
		p.stagePhase(ctx, log, run, types.PhaseTargets, run.Targets)
		return p.stop(ctx, log, run, types.PhaseTargets), nil
	}

	done = timePhase(types.PhaseSuggestions)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Concurrency, 1))
	for i := range run.Targets {
		g.Go(func() error {
			t := &run.Targets[i]
			reply, err := llm.Ask(gctx, p.LLM, llm.PapersForClaim, *t)
			if err != nil {
				log.Warn("claim suggestions unavailable", zap.String("claim", t.Claim), zap.Error(err))
				return gctx.Err()
			}
			t.Candidates = parse.Records(reply)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, p.fail(run, log, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, p.fail(run, log, err)
	}
	for _, t := range run.Targets {
		run.Candidates = append(run.Candidates, t.Candidates...)
	}
	done()
	log.Info("suggestions parsed", zap.Int("candidates", len(run.Candidates)))
	p.stagePhase(ctx, log, run, types.PhaseTargets, run.Targets)
	p.stagePhase(ctx, log, run, types.PhaseSuggestions, run.Candidates)
	if len(run.Candidates) == 0 {
		return p.stop(ctx, log, run, types.PhaseSuggestions), nil
	}

	return p.downstream(ctx, log, run)
}

func (p *Pipeline) downstream(ctx context.Context, log *zap.Logger, run *types.Run) (*types.Run, error) {
	done := timePhase(types.PhaseValidated)
	validated, err := p.Validator.Validate(ctx, run.Candidates)
	if err != nil {
		return nil, p.fail(run, log, fmt.Errorf("phase 2 validation: %w", err))
	}
	run.Validated = validated
	done()
	log.Info("candidates validated",
		zap.Int("candidates", len(run.Candidates)), zap.Int("validated", len(validated)))
	p.stagePhase(ctx, log, run, types.PhaseValidated, run.Validated)
	if len(validated) == 0 {
		return p.stop(ctx, log, run, types.PhaseValidated), nil
	}

	done = timePhase(types.PhaseFinal)
	entries, err := p.Expander.Expand(ctx, validated, run.Text)
	if err != nil {
		return nil, p.fail(run, log, fmt.Errorf("phase 3 expansion: %w", err))
	}
	run.Entries = dedup.AssignKeys(entries)
	done()
	log.Info("entries ranked", zap.Int("entries", len(run.Entries)))
	p.stagePhase(ctx, log, run, types.PhaseFinal, run.Entries)
	if len(run.Entries) == 0 {
		return p.stop(ctx, log, run, types.PhaseFinal), nil
	}

	run.BibTeX = cite.Entries(run.Entries)
	p.stageFile(ctx, log, run, ReferencesFile, []byte(cite.Document(run.Entries)))

	done = timePhase(types.PhaseAnnotate)
	cited, err := cite.Annotate(ctx, p.LLM, run.Text, run.Entries)
	if err != nil {
		return nil, p.fail(run, log, fmt.Errorf("placing citations: %w", err))
	}
	run.CitedText = cited
	done()
	if run.UnknownKeys = cite.UnknownKeys(cited, run.Entries); len(run.UnknownKeys) > 0 {
		log.Warn("cited text references unknown keys", zap.Strings("keys", run.UnknownKeys))
	}
	p.stageFile(ctx, log, run, CitedTextFile, []byte(cited))

	p.finish(ctx, log, run, "ok")
	return run, nil
}

// stop ends a run whose phase produced nothing. The text is returned as is.
func (p *Pipeline) stop(ctx context.Context, log *zap.Logger, run *types.Run, phase string) *types.Run {
	run.StoppedAt = phase
	run.CitedText = run.Text
	log.Info("no records, stopping", zap.String("phase", phase))
	p.finish(ctx, log, run, "stopped")
	return run
}

func (p *Pipeline) fail(run *types.Run, log *zap.Logger, err error) error {
	runs.WithLabelValues(string(run.Mode), "error").Inc()
	log.Error("run failed", zap.Error(err))
	return err
}

func (p *Pipeline) finish(ctx context.Context, log *zap.Logger, run *types.Run, result string) {
	runs.WithLabelValues(string(run.Mode), result).Inc()
	if p.Archive != nil {
		if err := p.Archive.SaveRun(ctx, run); err != nil {
			log.Warn("archiving run failed", zap.Error(err))
		}
	}
	log.Info("run finished",
		zap.String("result", result),
		zap.Int("entries", len(run.Entries)),
		zap.Duration("elapsed", time.Since(run.StartedAt)))
}

func (p *Pipeline) stagePhase(ctx context.Context, log *zap.Logger, run *types.Run, phase string, v any) {
	if p.Stager == nil {
		return
	}
	if err := p.Stager.StagePhase(ctx, run.ID, phase, v); err != nil {
		log.Warn("staging phase failed", zap.String("phase", phase), zap.Error(err))
	}
}

func (p *Pipeline) stageFile(ctx context.Context, log *zap.Logger, run *types.Run, name string, data []byte) {
	if p.Stager == nil {
		return
	}
	if err := p.Stager.StageFile(ctx, run.ID, name, data); err != nil {
		log.Warn("staging file failed", zap.String("file", name), zap.Error(err))
	}
}
