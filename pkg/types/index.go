// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citation-engine pipeline:
// the records that flow between parsing, validation, expansion, key assignment,
// and formatting, plus the configuration for each stage.
package types

import "time"

// IndexRecord is one paper returned by the bibliographic index. Every lookup
// or search the index supports yields records of this shape.
type IndexRecord struct {
	// CanonicalID is the index's identifier for the paper with any version
	// suffix removed (e.g. "1706.03762").
	CanonicalID string `json:"canonical_id" yaml:"canonical_id"`

	// Title is the paper title as returned by the index.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in index order.
	Authors []string `json:"authors" yaml:"authors"`

	// Published is the first-version submission date.
	Published time.Time `json:"published" yaml:"published"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// PDFLocator is the URL of the paper's PDF.
	PDFLocator string `json:"pdf_locator,omitempty" yaml:"pdf_locator,omitempty"`

	// AbsLocator is the URL of the paper's abstract page.
	AbsLocator string `json:"abs_locator,omitempty" yaml:"abs_locator,omitempty"`

	// PrimaryCategory is the index's subject class (e.g. "cs.CL").
	PrimaryCategory string `json:"primary_category,omitempty" yaml:"primary_category,omitempty"`
}

// Year returns the publication year, or zero when the date is unknown.
func (r IndexRecord) Year() int {
	if r.Published.IsZero() {
		return 0
	}
	return r.Published.Year()
}
