package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahmadnish/lets-vibe/internal/jsonutil"
	"github.com/ahmadnish/lets-vibe/internal/llm"
	"github.com/ahmadnish/lets-vibe/internal/llmtool"
	"github.com/ahmadnish/lets-vibe/internal/websearch"
)

// The eight knowledge domains the research agent always covers.
var researchDomains = []Item{
	"architecture_patterns",
	"technology_landscape",
	"market_context",
	"similar_projects",
	"best_practices",
	"common_pitfalls",
	"team_organization",
	"tooling_ecosystem",
}

var researchItemPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Research one knowledge domain for a project idea.",
	Background: "The checklist_item field names the domain; search findings are included when available.",
	OutputFields: []llmtool.PromptField{
		{Name: "findings", Type: "[]string", Required: true},
		{Name: "sources", Type: "[]string", Required: true, Description: "URLs or source descriptions; empty when none."},
		{Name: "relevance", Type: "string", Required: true, Description: "Why this domain matters for the idea."},
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetCautious()))

var researchSynthesisPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose: "Synthesize per-domain research into prioritized guidance for plan generation.",
	OutputFields: []llmtool.PromptField{
		{Name: "insights", Type: "[]string", Required: true, Description: "Most actionable cross-domain insights, ordered."},
		{Name: "recommendations", Type: "[]string", Required: true},
		{Name: "risk_level", Type: "string", Required: true, Description: "low | medium | high."},
		{Name: "confidence", Type: "string", Required: true, Description: "low | medium | high."},
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON()))

// ResearchReport is the synthesized output of one research run.
type ResearchReport struct {
	Insights        []string                   `json:"insights"`
	Recommendations []string                   `json:"recommendations"`
	RiskLevel       string                     `json:"risk_level"`
	Confidence      string                     `json:"confidence"`
	ByDomain        map[Item]json.RawMessage   `json:"by_domain"`
	SearchFindings  *websearch.BatchResponse   `json:"search_findings,omitempty"`
}

// Research runs the checklist fan-out over the eight knowledge domains.
// Market-facing domains consult web search first when it is configured.
type Research struct {
	LLM    llm.Client
	Search *websearch.Client
}

func NewResearch(client llm.Client, search *websearch.Client) *Research {
	return &Research{LLM: client, Search: search}
}

func (a *Research) checklist() *Checklist {
	generic := func(ctx context.Context, input map[string]any) (json.RawMessage, error) {
		ctx = llm.WithStage(ctx, "research:"+input["checklist_item"].(string))
		return a.LLM.GenerateJSON(ctx, researchItemPrompt, input)
	}
	searched := func(ctx context.Context, input map[string]any) (json.RawMessage, error) {
		item := input["checklist_item"].(string)
		if a.Search != nil {
			query := fmt.Sprintf("%s %s", input["idea"], itemQuerySuffix(item))
			resp, err := a.Search.Search(ctx, query, websearch.Options{})
			if err == nil {
				input["search"] = resp
			}
		}
		return generic(ctx, input)
	}
	return &Checklist{
		Items: researchDomains,
		Handlers: map[Item]Handler{
			"market_context":   searched,
			"similar_projects": searched,
			"best_practices":   searched,
		},
		Default: generic,
	}
}

func itemQuerySuffix(item string) string {
	switch item {
	case "market_context":
		return "market size competitors"
	case "similar_projects":
		return "open source alternatives"
	case "best_practices":
		return "engineering best practices"
	default:
		return item
	}
}

// Run fans out, then issues one synthesis call over the combined results.
func (a *Research) Run(ctx context.Context, idea string, brief any) (*ResearchReport, error) {
	input := map[string]any{"idea": idea, "interpretation": brief}
	byDomain, err := a.checklist().Run(ctx, input)
	if err != nil {
		return nil, err
	}

	sctx := llm.WithStage(ctx, "research-synthesis")
	raw, err := a.LLM.GenerateJSON(sctx, researchSynthesisPrompt, map[string]any{
		"idea":       idea,
		"by_domain":  byDomain,
	})
	if err != nil {
		return nil, err
	}
	var report ResearchReport
	if err := jsonutil.UnmarshalRaw(raw, &report); err != nil {
		return nil, fmt.Errorf("research: invalid synthesis: %w", err)
	}
	report.ByDomain = byDomain
	return &report, nil
}
