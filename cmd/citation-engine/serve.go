// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the citation API over HTTP",
	Long: `Serve exposes POST /citations, which takes {"text": "..."} with a bearer token
and returns the cited text and its BibTeX entries. GET /metrics serves
Prometheus metrics and GET /healthz reports liveness. The server stops
gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "listening port (default server.port, or $PORT)")
	serveCmd.Flags().Bool("no-stage", false, "do not write phase results to disk")
	serveCmd.Flags().String("results-dir", "", "directory for staged phase results (default stage.results_dir)")
	serveCmd.Flags().Int("concurrency", 0, "parallel validation and author searches (default pipeline.concurrency)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	c := applyRunFlags(cmd, cfg)
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		c.Server.Port = port
	}

	p, closeArchive, err := buildPipeline(c, logger)
	if err != nil {
		return err
	}
	defer closeArchive()

	srv, err := server.New(c.Server, p, logger.Named("http"))
	if err != nil {
		return err
	}

	return srv.ListenAndServe(cmd.Context())
}
