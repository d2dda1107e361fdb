// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"strings"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Citation target labels.
const (
	LabelClaim  = "CLAIM:"
	LabelReason = "REASON:"
	LabelPapers = "PAPERS:"
)

// Targets parses CLAIM/REASON/PAPERS blocks into citation targets. Each
// CLAIM line starts a new target; REASON and PAPERS lines attach to the
// current one. Targets with an empty claim are dropped.
func Targets(text string) []types.CitationTarget {
	var (
		out  []types.CitationTarget
		cur  *types.CitationTarget
		emit = func() {
			if cur != nil && cur.Claim != "" {
				out = append(out, *cur)
			}
			cur = nil
		}
	)
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, LabelClaim):
			emit()
			cur = &types.CitationTarget{Claim: strings.TrimSpace(line[len(LabelClaim):])}
		case cur == nil:
		case strings.HasPrefix(line, LabelReason):
			cur.Reason = strings.TrimSpace(line[len(LabelReason):])
		case strings.HasPrefix(line, LabelPapers):
			cur.IdealPapers = strings.TrimSpace(line[len(LabelPapers):])
		}
	}
	emit()
	return out
}
