// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paragraphs

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manuscript = `\documentclass{article}
\begin{document}
\section{Introduction}
% This whole line is a comment.
Large language models are trained on vast corpora and exhibit \emph{emergent} abilities
% another comment line
that were not explicitly \textbf{\textit{programmed}} into them, which raises questions about
evaluation, 50\% of which remain open~\cite{Wei2022}. % trailing comment

\begin{figure}
\includegraphics{plot.png}
\caption{This caption has many words that should never appear in any extracted paragraph at all.}
\end{figure}

\begin{equation*}
E = mc^2
\end{equation*}

Short paragraph here.

\begin{abstract}
Prose environments keep their bodies so that this abstract text with more than twenty words
is returned as a paragraph like any other block of ordinary running text in the document.
\end{abstract}
\end{document}
`

func TestExtract(t *testing.T) {
	got := Extract(manuscript, DefaultMinWords)
	require.Len(t, got, 2)

	first := got[0]
	assert.True(t, strings.HasPrefix(first, "Large language models are trained"), first)
	assert.Contains(t, first, "exhibit emergent abilities that were not explicitly programmed into them")
	assert.Contains(t, first, "50% of which remain open .")
	assert.NotContains(t, first, "comment")
	assert.NotContains(t, first, `\`)
	assert.NotContains(t, first, "Wei2022")

	assert.True(t, strings.HasPrefix(got[1], "Prose environments keep their bodies"), got[1])
	for _, p := range got {
		assert.NotContains(t, p, "caption")
		assert.NotContains(t, p, "mc^2")
	}
}

func TestExtractMinWords(t *testing.T) {
	text := "one two three\n\nfour five six seven"
	assert.Equal(t, []string{"four five six seven"}, Extract(text, 3))
	assert.Equal(t, []string{"one two three", "four five six seven"}, Extract(text, 0))
	assert.Empty(t, Extract(text, 4))
}

func TestParseAndFormat(t *testing.T) {
	paras := []string{"First paragraph.", "Second paragraph."}
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.\n\n", Format(paras))
	assert.Equal(t, paras, Parse(Format(paras)))
	assert.Equal(t, paras, Parse("\n\n  First paragraph.  \r\n\r\n\n Second paragraph.\n"))
	assert.Empty(t, Parse("  \n\n"))
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper"+Ext)
	paras := []string{"Alpha beta gamma.", "Delta epsilon."}
	require.NoError(t, Write(path, paras))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, paras, got)

	_, err = Read(filepath.Join(t.TempDir(), "missing"+Ext))
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	paras := []string{"a", "b", "c"}

	got, err := Select(paras, nil)
	require.NoError(t, err)
	assert.Equal(t, paras, got)

	got, err = Select(paras, []int{3, 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, got)

	_, err = Select(paras, []int{4})
	assert.ErrorContains(t, err, "out of range")
	_, err = Select(paras, []int{0})
	assert.Error(t, err)
}
