// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/stage"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the archive of finished runs",
	Long: `Runs reads the SQLite run archive configured by stage.database. Every finished
or early-stopped pipeline run is recorded there with its ranked entries.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a run's BibTeX entries and cited text",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")

	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func openArchive() (*stage.Store, error) {
	if cfg.Stage.Database == "" {
		return nil, errors.New("no run archive configured (set stage.database)")
	}
	return stage.NewStore(cfg.Stage.Database)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tMODE\tCANDIDATES\tVALIDATED\tENTRIES\tSTOPPED\tTEXT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Mode,
			r.Candidates, r.Validated, r.Entries, r.StoppedAt, preview(r.Text, 48))
	}
	return tw.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.LoadRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printRun(cmd.OutOrStdout(), cmd.ErrOrStderr(), run)
	return nil
}

// preview shortens s to at most n runes on one line.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
