// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/internal/paragraphs"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file.paragraphs>",
	Short: "Cite every paragraph of a paragraphs file",
	Long: `Batch runs the pipeline on each paragraph of a .paragraphs file (see the
paragraphs command), or only on those chosen with --only, and writes the
results to a YAML file. A failed paragraph is recorded and the batch goes on.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntSlice("only", nil, "1-based paragraph numbers to process (default all)")
	batchCmd.Flags().String("out", "", "output file (default: input with .citations.yaml extension)")
	batchCmd.Flags().Bool("claims", false, "identify claims first and suggest papers per claim")
	batchCmd.Flags().String("results-dir", "", "directory for staged phase results (default stage.results_dir)")
	batchCmd.Flags().Bool("no-stage", false, "do not write phase results to disk")
	batchCmd.Flags().Int("concurrency", 0, "parallel validation and author searches (default pipeline.concurrency)")

	rootCmd.AddCommand(batchCmd)
}

// batchResult is one paragraph's outcome in the batch output file.
type batchResult struct {
	Paragraph   int      `yaml:"paragraph"`
	Text        string   `yaml:"text"`
	RunID       string   `yaml:"run_id,omitempty"`
	CitedText   string   `yaml:"cited_text,omitempty"`
	BibTeX      []string `yaml:"bibtex_entries,omitempty"`
	StoppedAt   string   `yaml:"stopped_at,omitempty"`
	UnknownKeys []string `yaml:"unknown_keys,omitempty"`
	Error       string   `yaml:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	in := args[0]
	all, err := paragraphs.Read(in)
	if err != nil {
		return err
	}
	only, _ := cmd.Flags().GetIntSlice("only")
	positions := only
	if len(positions) == 0 {
		for i := range all {
			positions = append(positions, i+1)
		}
	}
	selected, err := paragraphs.Select(all, positions)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".citations.yaml"
	}

	c := applyRunFlags(cmd, cfg)
	p, closeArchive, err := buildPipeline(c, logger)
	if err != nil {
		return err
	}
	defer closeArchive()

	claims, _ := cmd.Flags().GetBool("claims")
	run := p.Run
	if claims {
		run = p.RunClaims
	}

	ctx := cmd.Context()
	var results []batchResult
	failed := 0
	for i, text := range selected {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := positions[i]
		fmt.Fprintf(cmd.ErrOrStderr(), "paragraph %d (%d/%d)\n", n, i+1, len(selected))

		res := batchResult{Paragraph: n, Text: text}
		r, err := run(ctx, text)
		if err != nil {
			logger.Error("paragraph failed", zap.Int("paragraph", n), zap.Error(err))
			res.Error = err.Error()
			failed++
		} else {
			res.RunID, res.CitedText, res.BibTeX = r.ID, r.CitedText, r.BibTeX
			res.StoppedAt, res.UnknownKeys = r.StoppedAt, r.UnknownKeys
		}
		results = append(results, res)
	}

	data, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d results to %s\n", len(results), out)
	if failed > 0 {
		return fmt.Errorf("%d of %d paragraph(s) failed", failed, len(results))
	}
	return nil
}

