// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/citation-engine/internal/index"
	"github.com/pdiddy/citation-engine/internal/llm"
	"github.com/pdiddy/citation-engine/internal/pipeline"
	"github.com/pdiddy/citation-engine/internal/stage"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// buildPipeline wires the pipeline from c. The returned closer releases the
// run archive, if one was opened.
func buildPipeline(c types.Config, log *zap.Logger) (*pipeline.Pipeline, func() error, error) {
	backend, err := llm.New(c.AI, &http.Client{})
	if err != nil {
		return nil, nil, fmt.Errorf("configuring %s backend: %w", c.AI.Provider, err)
	}
	idx := index.NewArxiv(c.Index)

	p := pipeline.New(c, idx, backend, log)
	closer := func() error { return nil }

	if c.Stage.Enabled && c.Stage.ResultsDir != "" {
		p.Stager = stage.NewDir(c.Stage.ResultsDir)
	}
	if c.Stage.Database != "" {
		store, err := stage.NewStore(c.Stage.Database)
		if err != nil {
			return nil, nil, err
		}
		p.Archive = store
		closer = store.Close
	}
	return p, closer, nil
}
