// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"strings"
	"text/template"

	"github.com/pdiddy/citation-engine/pkg/types"
)

var promptFuncs = template.FuncMap{
	"join": strings.Join,
}

func userTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(promptFuncs).Parse(text))
}

// SuggestPapers asks for candidate papers for a passage. The reply is read
// by parse.Records. Data: string (the passage).
var SuggestPapers = Prompt{
	Name: "suggest papers",
	System: `Suggest real and already published academic papers that would be good citations for this text.
Focus on papers that:
1. Directly support or relate to the key claims and concepts
2. Are foundational works in the field
3. Represent recent developments or state-of-the-art

Format each suggestion as:
Title: <paper title>
Year: <year if known>
Arxiv URL: <arxiv url>
Authors: <main authors>
Relevance: <brief explanation of why this paper is relevant>

Separate suggestions with a blank line.`,
	User: userTemplate("suggest", `{{.}}`),
}

// IdentifyClaims asks which statements in a passage need citations. The
// reply is read by parse.Targets. Data: string (the passage).
var IdentifyClaims = Prompt{
	Name: "identify claims",
	System: `Identify specific claims or statements that should be supported by academic citations.
For each one, respond with:

CLAIM: <text requiring citation>
REASON: <why this needs citation>
PAPERS: <description of ideal supporting papers>`,
	User: userTemplate("claims", `{{.}}`),
}

// PapersForClaim asks for candidate papers supporting one claim. Data:
// types.CitationTarget.
var PapersForClaim = Prompt{
	Name: "papers for claim",
	System: `Suggest specific academic papers that would support this claim.
Focus on papers that are:
1. Directly relevant to the specific claim
2. Foundational works if the claim is about established concepts
3. Recent developments for current state claims

Format each suggestion as:
Title: <paper title>
Year: <year if known>
Arxiv URL: <arxiv url if known>
Authors: <main authors>
Relevance: <brief explanation of why this paper supports the specific claim>`,
	User: userTemplate("claim", `Claim: {{.Claim}}
{{with .Reason}}Why it needs support: {{.}}
{{end}}Ideal papers would be: {{.IdealPapers}}`),
}

// KeyAuthors asks which authors of a paper are likely to have written other
// relevant work. The reply is read by parse.Names. Data: types.ValidatedRecord.
var KeyAuthors = Prompt{
	Name: "key authors",
	System: `Identify the main authors of this paper who are most likely to have written other important papers in this area.
Consider:
1. First author (usually the primary contributor)
2. Last author (often the senior researcher/supervisor)
3. Any particularly notable researchers

Return just the names, one per line.`,
	User: userTemplate("authors", `Paper: {{.Title}}
Authors: {{if .Authors}}{{join .Authors ", "}}{{else}}Unknown{{end}}`),
}

// RankData is the payload of RankPapers.
type RankData struct {
	Text    string
	Records []types.ValidatedRecord
}

// RankPapers asks for the pooled records most relevant to the passage, in
// relevance order, each with a reason. The reply is read by
// parse.Selections. Data: RankData.
var RankPapers = Prompt{
	Name: "rank papers",
	System: `Select the most relevant papers for the research context.
Consider:
1. Direct relevance to the technical concepts and methodologies
2. Balance between foundational papers and recent developments
3. Significance of contributions to the field
4. Complementary perspectives and approaches

List only the papers you select, most relevant first, each as:
ID: <paper id exactly as given>
Reason: <one sentence on how it supports the text>`,
	User: userTemplate("rank", `Original Text:
{{.Text}}

Papers to Consider:
{{range .Records}}
ID: {{.CanonicalID}}
Title: {{.Title}}
Abstract: {{.Abstract}}
Authors: {{join .Authors ", "}}
Year: {{with .EffectiveYear}}{{.}}{{else}}N/A{{end}}
{{end}}`),
}

// PlaceCitations asks for the passage with \cite markers added. Data:
// PlaceData.
var PlaceCitations = Prompt{
	Name: "place citations",
	System: `Add LaTeX citations to the text where appropriate.
Use \cite{key} format for citations.
Available citation keys are provided in the papers list.
Add citations at the end of relevant sentences.
Multiple papers can be cited together using \cite{key1,key2}.
Only cite papers where they directly support the text.
Preserve all original text formatting and return only the text.`,
	User: userTemplate("place", `Text to add citations to:
{{.Text}}

Available Papers and their citation keys:
{{range .Entries}}
- Key: {{.Key}}
  Title: {{.Record.Title}}
  Year: {{with .Record.EffectiveYear}}{{.}}{{else}}N/A{{end}}
  Abstract: {{.Record.Abstract}}
{{- with .RelevanceNote}}
  Relevance: {{.}}{{end}}
{{end}}`),
}

// PlaceData is the payload of PlaceCitations.
type PlaceData struct {
	Text    string
	Entries []types.CitationEntry
}
