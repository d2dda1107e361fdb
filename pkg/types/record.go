// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Provenance records how a validated record entered the candidate pool.
type Provenance string

const (
	ProvenanceDirect          Provenance = "direct"
	ProvenanceAuthorExpansion Provenance = "author_expansion"
)

// CandidateRecord is a proposed citation before validation. The Record
// Parser creates it from generative-service output.
type CandidateRecord struct {
	// Title is the proposed paper title. Always non-empty.
	Title string `json:"title" yaml:"title"`

	// Authors lists the proposed authors; possibly empty.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the proposed publication year, or zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// SourceURL is a locator into the index supplied with the suggestion.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// Relevance is the suggester's stated reason for proposing the paper.
	Relevance string `json:"relevance,omitempty" yaml:"relevance,omitempty"`
}

// ValidatedRecord is a candidate confirmed to exist in the index and
// enriched with the index's authoritative metadata.
type ValidatedRecord struct {
	CandidateRecord `yaml:",inline"`

	// CanonicalID is the index identifier and the deduplication key.
	CanonicalID string `json:"canonical_id" yaml:"canonical_id"`

	// PDFLocator is the URL of the paper's PDF.
	PDFLocator string `json:"pdf_locator,omitempty" yaml:"pdf_locator,omitempty"`

	// AbsLocator is the URL of the abstract page, emitted as the BibTeX url.
	AbsLocator string `json:"abs_locator,omitempty" yaml:"abs_locator,omitempty"`

	// Abstract is the index abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// PublishedYear is the authoritative year; it overrides Year when set.
	PublishedYear int `json:"published_year,omitempty" yaml:"published_year,omitempty"`

	// PrimaryCategory is the index subject class, emitted as primaryClass.
	PrimaryCategory string `json:"primary_category,omitempty" yaml:"primary_category,omitempty"`

	// Provenance is direct for validated suggestions and author_expansion for
	// records discovered through a key author.
	Provenance Provenance `json:"provenance" yaml:"provenance"`

	// FromAuthor is the key author whose search produced this record.
	FromAuthor string `json:"from_author,omitempty" yaml:"from_author,omitempty"`

	// Origin is the canonical ID of the validated record that nominated FromAuthor.
	Origin string `json:"origin,omitempty" yaml:"origin,omitempty"`
}

// EffectiveYear returns PublishedYear when known, otherwise the candidate Year.
func (r ValidatedRecord) EffectiveYear() int {
	if r.PublishedYear > 0 {
		return r.PublishedYear
	}
	return r.Year
}

// NewValidatedRecord builds a ValidatedRecord from an index result. Title,
// authors, and year come from the index; the candidate's locator and stated
// relevance are kept.
func NewValidatedRecord(c CandidateRecord, r IndexRecord, p Provenance) ValidatedRecord {
	v := ValidatedRecord{
		CandidateRecord: CandidateRecord{
			Title:     r.Title,
			Authors:   append([]string(nil), r.Authors...),
			Year:      c.Year,
			SourceURL: c.SourceURL,
			Relevance: c.Relevance,
		},
		CanonicalID:     r.CanonicalID,
		PDFLocator:      r.PDFLocator,
		AbsLocator:      r.AbsLocator,
		Abstract:        r.Abstract,
		PublishedYear:   r.Year(),
		PrimaryCategory: r.PrimaryCategory,
		Provenance:      p,
	}
	if v.PublishedYear > 0 {
		v.Year = v.PublishedYear
	}
	return v
}

// CitationEntry is the final, keyed unit handed to the formatter.
type CitationEntry struct {
	// Key is the citation key (e.g. "Vaswani2017" or "Smith2023b").
	Key string `json:"key" yaml:"key"`

	// Record is the validated paper.
	Record ValidatedRecord `json:"record" yaml:"record"`

	// RelevanceNote explains why the paper supports the source text.
	RelevanceNote string `json:"relevance_note,omitempty" yaml:"relevance_note,omitempty"`
}

// CitationTarget is a claim in the source text that needs support, with the
// suggester's rationale and the candidates proposed for it.
type CitationTarget struct {
	// Claim is the span of source text requiring a citation.
	Claim string `json:"claim" yaml:"claim"`

	// Reason explains why the claim needs a citation.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// IdealPapers describes the kind of paper that would support the claim.
	IdealPapers string `json:"ideal_papers,omitempty" yaml:"ideal_papers,omitempty"`

	// Candidates are the papers proposed for this claim.
	Candidates []CandidateRecord `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}
