// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse turns the labeled free text returned by the generative
// service into typed records. Every parser here is lenient: unrecognized
// lines are ignored, malformed fields are skipped, and no input is an error.
package parse

import (
	"strconv"
	"strings"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Record block labels. Matching is prefix-based and case-sensitive.
const (
	LabelTitle     = "Title:"
	LabelYear      = "Year:"
	LabelAuthors   = "Authors:"
	LabelArxivURL  = "Arxiv URL:"
	LabelRelevance = "Relevance:"
)

// recordFields maps each non-title label to the setter applied to the
// record under construction.
var recordFields = []struct {
	label string
	set   func(*types.CandidateRecord, string)
}{
	{LabelYear, func(r *types.CandidateRecord, v string) {
		if y, err := strconv.Atoi(v); err == nil {
			r.Year = y
		}
	}},
	{LabelAuthors, func(r *types.CandidateRecord, v string) {
		r.Authors = SplitAuthors(v)
	}},
	{LabelArxivURL, func(r *types.CandidateRecord, v string) {
		r.SourceURL = v
	}},
	{LabelRelevance, func(r *types.CandidateRecord, v string) {
		r.Relevance = v
	}},
}

type recordState int

const (
	awaitingTitle recordState = iota
	accumulating
)

type recordParser struct {
	state recordState
	cur   types.CandidateRecord
	out   []types.CandidateRecord
}

// flush emits the record under construction, if it has a title, and
// returns to awaitingTitle.
func (p *recordParser) flush() {
	if p.state == accumulating && p.cur.Title != "" {
		p.out = append(p.out, p.cur)
	}
	p.cur = types.CandidateRecord{}
	p.state = awaitingTitle
}

func (p *recordParser) line(line string) {
	if line == "" {
		p.flush()
		return
	}
	if rest, ok := strings.CutPrefix(line, LabelTitle); ok {
		p.flush()
		if t := strings.TrimSpace(rest); t != "" {
			p.cur.Title = t
			p.state = accumulating
		}
		return
	}
	if p.state != accumulating {
		return
	}
	for _, f := range recordFields {
		if rest, ok := strings.CutPrefix(line, f.label); ok {
			f.set(&p.cur, strings.TrimSpace(rest))
			return
		}
	}
}

// Records parses blocks of Title/Year/Authors/Arxiv URL/Relevance lines into
// candidate records, in input order. A block ends at a blank line or at the
// next Title line. Fields seen before a block's title are ignored, and a
// block without a non-empty title produces nothing.
func Records(text string) []types.CandidateRecord {
	var p recordParser
	for line := range strings.Lines(text) {
		p.line(strings.TrimSpace(line))
	}
	p.flush()
	return p.out
}

// SplitAuthors splits a comma-separated author list, trimming each name and
// dropping empty ones.
func SplitAuthors(s string) []string {
	var authors []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	return authors
}
