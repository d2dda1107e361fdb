// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/paragraphs"
)

var paragraphsCmd = &cobra.Command{
	Use:   "paragraphs <file.tex>",
	Short: "Split a LaTeX manuscript into paragraphs",
	Long: `Paragraphs strips comments, non-prose environments, and commands from a LaTeX
file and writes the remaining prose paragraphs to a .paragraphs file, one per
blank-line separated block. Edit the file to drop unwanted paragraphs, then
run batch on it.`,
	Args: cobra.ExactArgs(1),
	RunE: runParagraphs,
}

func init() {
	paragraphsCmd.Flags().Int("min-words", paragraphs.DefaultMinWords, "keep paragraphs with more than this many words")
	paragraphsCmd.Flags().String("out", "", "output file (default: input with .paragraphs extension)")

	rootCmd.AddCommand(paragraphsCmd)
}

func runParagraphs(cmd *cobra.Command, args []string) error {
	in := args[0]
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}
	minWords, _ := cmd.Flags().GetInt("min-words")
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + paragraphs.Ext
	}

	paras := paragraphs.Extract(string(data), minWords)
	if err := paragraphs.Write(out, paras); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d paragraphs to %s\n", len(paras), out)
	return nil
}
