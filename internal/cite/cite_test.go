// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-engine/internal/llm"
	"github.com/pdiddy/citation-engine/internal/llm/llmtest"
	"github.com/pdiddy/citation-engine/pkg/types"
)

func attention() types.CitationEntry {
	return types.CitationEntry{
		Key: "Vaswani2017",
		Record: types.ValidatedRecord{
			CandidateRecord: types.CandidateRecord{
				Title:   "Attention Is All You Need",
				Authors: []string{"Ashish Vaswani", "Noam Shazeer"},
			},
			CanonicalID:     "1706.03762",
			AbsLocator:      "http://arxiv.org/abs/1706.03762v7",
			Abstract:        "The dominant sequence transduction models...",
			PublishedYear:   2017,
			PrimaryCategory: "cs.CL",
		},
		RelevanceNote: "Introduces the Transformer.",
	}
}

func TestBibTeX(t *testing.T) {
	want := `@article{Vaswani2017,
  title={Attention Is All You Need},
  author={Ashish Vaswani and Noam Shazeer},
  year={2017},
  eprint={1706.03762},
  archivePrefix={arXiv},
  primaryClass={cs.CL},
  url={http://arxiv.org/abs/1706.03762v7}
}`
	assert.Equal(t, want, BibTeX(attention()))
}

func TestBibTeXOptionalFields(t *testing.T) {
	e := attention()
	e.Record.PrimaryCategory = ""
	e.Record.PublishedYear = 0
	e.Record.Year = 0
	e.Record.Authors = nil

	got := BibTeX(e)
	assert.NotContains(t, got, "primaryClass")
	assert.Contains(t, got, "  year={},\n")
	assert.Contains(t, got, "  author={},\n")
}

func TestBibTeXFieldOrder(t *testing.T) {
	got := BibTeX(attention())
	order := []string{"title=", "author=", "year=", "eprint=", "archivePrefix=", "primaryClass=", "url="}
	last := -1
	for _, f := range order {
		i := strings.Index(got, f)
		require.Greater(t, i, last, "field %s out of order", f)
		last = i
	}
}

func TestEscapeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Plain Title", "Plain Title"},
		{"Line one\nline two", "Line one line two"},
		{"CRLF\r\nbreak", "CRLF break"},
		{"Sets {x}", `Sets \{x\}`},
		{`A \ B`, `A \textbackslash{} B`},
		{`\{`, `\textbackslash{}\{`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeTitle(tt.in), "EscapeTitle(%q)", tt.in)
	}
}

func TestBibTeXEscapesTitle(t *testing.T) {
	e := attention()
	e.Record.Title = "Learning {Sparse}\nModels"
	assert.Contains(t, BibTeX(e), `  title={Learning \{Sparse\} Models},`)
}

func TestDocument(t *testing.T) {
	assert.Empty(t, Document(nil))

	a, b := attention(), attention()
	b.Key = "Devlin2018"
	doc := Document([]types.CitationEntry{a, b})
	assert.Equal(t, 2, strings.Count(doc, "@article{"))
	assert.Contains(t, doc, "}\n\n@article{Devlin2018,")
	assert.True(t, strings.HasSuffix(doc, "}\n"))
	assert.Len(t, Entries([]types.CitationEntry{a, b}), 2)
}

func TestAnnotate(t *testing.T) {
	text := "Transformers rely on attention."
	fake := llmtest.New().On(llm.PlaceCitations, func(user string) (string, error) {
		assert.Contains(t, user, text)
		assert.Contains(t, user, "Key: Vaswani2017")
		assert.Contains(t, user, "Relevance: Introduces the Transformer.")
		return `Transformers rely on attention \cite{Vaswani2017}.`, nil
	})

	got, err := Annotate(context.Background(), fake, text, []types.CitationEntry{attention()})
	require.NoError(t, err)
	assert.Equal(t, `Transformers rely on attention \cite{Vaswani2017}.`, got)
	assert.Len(t, fake.Calls(), 1)
}

func TestAnnotateNoEntriesSkipsCall(t *testing.T) {
	fake := llmtest.New()
	got, err := Annotate(context.Background(), fake, "unchanged", nil)
	require.NoError(t, err)
	assert.Equal(t, "unchanged", got)
	assert.Empty(t, fake.Calls())
}

func TestAnnotateError(t *testing.T) {
	fake := llmtest.New().Fail(llm.PlaceCitations, errors.New("boom"))
	_, err := Annotate(context.Background(), fake, "text", []types.CitationEntry{attention()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "place citations")
}

func TestKeys(t *testing.T) {
	text := `A \cite{Vaswani2017}. B \cite{Devlin2018, Vaswani2017}. C \citep[p.~3]{Smith2023a}. D \cite{}.`
	assert.Equal(t, []string{"Vaswani2017", "Devlin2018", "Smith2023a"}, Keys(text))
	assert.Empty(t, Keys("no markers"))
}

func TestUnknownKeys(t *testing.T) {
	text := `A \cite{Vaswani2017,Ghost2020}. B \cite{Ghost2020}.`
	assert.Equal(t, []string{"Ghost2020"}, UnknownKeys(text, []types.CitationEntry{attention()}))
	assert.Empty(t, UnknownKeys(`\cite{Vaswani2017}`, []types.CitationEntry{attention()}))
}
