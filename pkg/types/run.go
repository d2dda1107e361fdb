// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunMode selects the candidate-generation flavour of a pipeline run.
type RunMode string

const (
	// ModeSuggest asks for candidate papers for the whole text in one call.
	ModeSuggest RunMode = "suggest"

	// ModeClaims first identifies claims needing citation, then asks for
	// candidates per claim.
	ModeClaims RunMode = "claims"
)

// Pipeline phase names, used for staging files, log fields, and metrics.
const (
	PhaseTargets     = "targets"
	PhaseSuggestions = "phase1_suggestions"
	PhaseValidated   = "phase2_validated"
	PhaseFinal       = "phase3_final_papers"
	PhaseAnnotate    = "annotate"
)

// Run is the structured result of one pipeline invocation.
type Run struct {
	// ID is a UUID assigned when the run starts.
	ID string `json:"id" yaml:"id"`

	// StartedAt is the wall-clock start of the run.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Mode is the candidate-generation flavour.
	Mode RunMode `json:"mode" yaml:"mode"`

	// Text is the source passage.
	Text string `json:"text" yaml:"text"`

	// Targets holds the identified claims (claims mode only).
	Targets []CitationTarget `json:"targets,omitempty" yaml:"targets,omitempty"`

	// Candidates are the parsed suggestions before validation.
	Candidates []CandidateRecord `json:"candidates" yaml:"candidates"`

	// Validated are the candidates confirmed against the index.
	Validated []ValidatedRecord `json:"validated" yaml:"validated"`

	// Entries are the ranked, keyed citation entries.
	Entries []CitationEntry `json:"entries" yaml:"entries"`

	// BibTeX holds one formatted entry per element of Entries, in the same order.
	BibTeX []string `json:"bibtex_entries" yaml:"bibtex_entries"`

	// CitedText is the source text with citation markers inserted.
	CitedText string `json:"cited_text" yaml:"cited_text"`

	// StoppedAt names the phase that produced no records, when the run ended early.
	StoppedAt string `json:"stopped_at,omitempty" yaml:"stopped_at,omitempty"`

	// UnknownKeys lists citation keys in CitedText that name no entry.
	UnknownKeys []string `json:"unknown_keys,omitempty" yaml:"unknown_keys,omitempty"`
}

// Stopped reports whether the run ended before producing entries.
func (r *Run) Stopped() bool {
	return r.StoppedAt != ""
}
