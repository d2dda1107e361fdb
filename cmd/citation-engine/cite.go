// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/citation-engine/pkg/types"
)

var citeCmd = &cobra.Command{
	Use:   "cite [text]",
	Short: "Find and place citations for one passage",
	Long: `Cite runs the full pipeline for one passage: suggestions, arXiv validation,
author expansion, ranking, key assignment, BibTeX, and citation placement.
The passage comes from --text, --file, the arguments, or standard input.
Phase results are staged under the results directory unless --no-stage is set.`,
	RunE: runCite,
}

func init() {
	citeCmd.Flags().String("text", "", "passage to cite")
	citeCmd.Flags().String("file", "", "read the passage from a file")
	citeCmd.Flags().Bool("claims", false, "identify claims first and suggest papers per claim")
	citeCmd.Flags().Bool("json", false, "print the whole run as JSON")
	citeCmd.Flags().String("results-dir", "", "directory for staged phase results (default stage.results_dir)")
	citeCmd.Flags().Bool("no-stage", false, "do not write phase results to disk")
	citeCmd.Flags().Int("concurrency", 0, "parallel validation and author searches (default pipeline.concurrency)")

	rootCmd.AddCommand(citeCmd)
}

func runCite(cmd *cobra.Command, args []string) error {
	text, err := readPassage(cmd, args)
	if err != nil {
		return err
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
	result, err := run(cmd.Context(), text)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printRun(cmd.OutOrStdout(), cmd.ErrOrStderr(), result)
	return nil
}

// applyRunFlags overrides staging and concurrency settings from flags
// shared by cite and batch.
func applyRunFlags(cmd *cobra.Command, c types.Config) types.Config {
	if dir, _ := cmd.Flags().GetString("results-dir"); dir != "" {
		c.Stage.ResultsDir = dir
	}
	if noStage, _ := cmd.Flags().GetBool("no-stage"); noStage {
		c.Stage.Enabled = false
	}
	if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
		c.Pipeline.Concurrency = n
	}
	return c
}

func readPassage(cmd *cobra.Command, args []string) (string, error) {
	text, _ := cmd.Flags().GetString("text")
	file, _ := cmd.Flags().GetString("file")
	switch {
	case text != "":
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading passage: %w", err)
		}
		text = string(data)
	case len(args) > 0:
		text = strings.Join(args, " ")
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading standard input: %w", err)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("no passage given: use --text, --file, arguments, or standard input")
	}
	return text, nil
}

func printRun(w, errW io.Writer, run *types.Run) {
	if run.Stopped() {
		logger.Warn("no citations found", zap.String("stopped_at", run.StoppedAt), zap.String("run_id", run.ID))
	}
	for _, entry := range run.BibTeX {
		fmt.Fprintf(w, "%s\n\n", entry)
	}
	fmt.Fprintln(w, run.CitedText)
	if len(run.UnknownKeys) > 0 {
		fmt.Fprintf(errW, "warning: cited text uses unknown keys: %s\n", strings.Join(run.UnknownKeys, ", "))
	}
}
