// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package paragraphs splits a LaTeX manuscript into plain-text paragraphs
// and reads and writes them as .paragraphs files, one paragraph per
// blank-line separated block.
package paragraphs

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// DefaultMinWords is the word count a paragraph must exceed to be kept.
const DefaultMinWords = 20

// Ext is the extension of paragraph files.
const Ext = ".paragraphs"

// nonProse lists environments whose bodies are dropped entirely.
var nonProse = []string{
	"figure", "table", "equation", "align", "verbatim", "lstlisting", "tikzpicture",
}

var (
	commentLine    = regexp.MustCompile(`(?m)^[ \t]*%.*\n`)
	comment        = regexp.MustCompile(`(?m)(^|[^\\])%.*$`)
	envMarker      = regexp.MustCompile(`\\(?:begin|end)\{[^{}]*\}(?:\[[^\]]*\])?`)
	formatting     = regexp.MustCompile(`\\(?:emph|textbf|textit|underline|texttt|textsc)\{([^{}]*)\}`)
	command        = regexp.MustCompile(`\\[a-zA-Z]+\*?(?:\[[^\]]*\])?(?:\{[^{}]*\})?`)
	escapedChar    = regexp.MustCompile(`\\([%&$#_{}])`)
	controlSymbol  = regexp.MustCompile(`\\.`)
	blankLine      = regexp.MustCompile(`\n[ \t\r]*\n`)
	nonProseBodies []*regexp.Regexp
)

func init() {
	for _, env := range nonProse {
		nonProseBodies = append(nonProseBodies,
			regexp.MustCompile(`(?s)\\begin\{`+env+`\*?\}.*?\\end\{`+env+`\*?\}`))
	}
}

// Extract returns the prose paragraphs of a LaTeX document with more than
// minWords words each. Comments, non-prose environments, and commands are
// removed; text-formatting commands keep their argument.
func Extract(latex string, minWords int) []string {
	if minWords < 0 {
		minWords = DefaultMinWords
	}
	s := strings.ReplaceAll(latex, "\r\n", "\n")
	s = commentLine.ReplaceAllString(s, "")
	s = comment.ReplaceAllString(s, "$1")
	for _, re := range nonProseBodies {
		s = re.ReplaceAllString(s, "")
	}
	s = envMarker.ReplaceAllString(s, "")
	for {
		next := formatting.ReplaceAllString(s, "$1")
		if next == s {
			break
		}
		s = next
	}
	s = command.ReplaceAllString(s, "")
	s = escapedChar.ReplaceAllString(s, "$1")
	s = controlSymbol.ReplaceAllString(s, "")
	s = strings.NewReplacer("~", " ", "{", "", "}", "").Replace(s)

	var out []string
	for _, block := range blankLine.Split(s, -1) {
		words := strings.Fields(block)
		if len(words) > minWords {
			out = append(out, strings.Join(words, " "))
		}
	}
	return out
}

// Parse splits paragraph-file content on blank lines, dropping empty blocks.
func Parse(content string) []string {
	var out []string
	for _, block := range blankLine.Split(strings.ReplaceAll(content, "\r\n", "\n"), -1) {
		if p := strings.TrimSpace(block); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Format renders paragraphs as paragraph-file content.
func Format(paras []string) string {
	var b strings.Builder
	for _, p := range paras {
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Write stores paras at path.
func Write(path string, paras []string) error {
	if err := os.WriteFile(path, []byte(Format(paras)), 0o644); err != nil {
		return fmt.Errorf("writing paragraphs: %w", err)
	}
	return nil
}

// Read loads the paragraphs stored at path.
func Read(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading paragraphs: %w", err)
	}
	return Parse(string(data)), nil
}

// Select returns the paragraphs at the given 1-based positions, in the
// order given. No positions selects all.
func Select(paras []string, positions []int) ([]string, error) {
	if len(positions) == 0 {
		return paras, nil
	}
	out := make([]string, 0, len(positions))
	for _, n := range positions {
		if n < 1 || n > len(paras) {
			return nil, fmt.Errorf("paragraph %d out of range 1-%d", n, len(paras))
		}
		out = append(out, paras[n-1])
	}
	return out, nil
}
