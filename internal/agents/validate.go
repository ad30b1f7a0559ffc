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

// ImprovementThreshold gates the enhancement phase: a mean criterion score
// below it marks the plan as needing improvement.
const ImprovementThreshold = 75.0

// The eight fixed validation criteria.
var validationCriteria = []Item{
	"feasibility",
	"completeness",
	"timeline_realism",
	"resource_allocation",
	"technical_soundness",
	"risk_coverage",
	"market_alignment",
	"best_practice_compliance",
}

var validateItemPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Score a generated project plan against one validation criterion.",
	Background: "checklist_item names the criterion. Search findings, when present, ground market and best-practice judgments.",
	OutputFields: []llmtool.PromptField{
		{Name: "score", Type: "number", Required: true, Description: "0-100 score for this criterion."},
		{Name: "findings", Type: "[]string", Required: true},
		{Name: "issues", Type: "[]string", Required: true, Description: "Concrete problems found; empty when none."},
		{Name: "recommendations", Type: "[]string", Required: true},
	},
	Constraints: []string{
		"score must be a number between 0 and 100.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetCautious()))

var validateSynthesisPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose: "Summarize per-criterion validation into prioritized, human-actionable findings.",
	OutputFields: []llmtool.PromptField{
		{Name: "insights", Type: "[]string", Required: true},
		{Name: "recommendations", Type: "[]string", Required: true, Description: "Ordered by impact."},
		{Name: "risk_level", Type: "string", Required: true, Description: "low | medium | high."},
		{Name: "confidence", Type: "string", Required: true, Description: "low | medium | high."},
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON()))

// CriterionResult is one criterion's self-reported assessment.
type CriterionResult struct {
	Score           float64  `json:"score"`
	Findings        []string `json:"findings"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// ValidationReport aggregates all criteria plus the synthesis.
type ValidationReport struct {
	OverallScore      float64                  `json:"overall_score"`
	ImprovementNeeded bool                     `json:"improvement_needed"`
	ByCriterion       map[Item]CriterionResult `json:"by_criterion"`
	Insights          []string                 `json:"insights"`
	Recommendations   []string                 `json:"recommendations"`
	RiskLevel         string                   `json:"risk_level"`
	Confidence        string                   `json:"confidence"`
}

// Validation scores a plan against the eight criteria concurrently, then
// synthesizes. OverallScore is the arithmetic mean of the per-criterion
// self-reported scores.
type Validation struct {
	LLM    llm.Client
	Search *websearch.Client
}

func NewValidation(client llm.Client, search *websearch.Client) *Validation {
	return &Validation{LLM: client, Search: search}
}

func (a *Validation) checklist() *Checklist {
	generic := func(ctx context.Context, input map[string]any) (json.RawMessage, error) {
		ctx = llm.WithStage(ctx, "validate:"+input["checklist_item"].(string))
		return a.LLM.GenerateJSON(ctx, validateItemPrompt, input)
	}
	searched := func(ctx context.Context, input map[string]any) (json.RawMessage, error) {
		if a.Search != nil {
			query := fmt.Sprintf("%v %s", input["title"], input["checklist_item"])
			resp, err := a.Search.Search(ctx, query, websearch.Options{})
			if err == nil {
				input["search"] = resp
			}
		}
		return generic(ctx, input)
	}
	return &Checklist{
		Items: validationCriteria,
		Handlers: map[Item]Handler{
			"market_alignment":         searched,
			"best_practice_compliance": searched,
		},
		Default: generic,
	}
}

// Run validates the plan and computes the improvement gate.
func (a *Validation) Run(ctx context.Context, plan any, title string) (*ValidationReport, error) {
	input := map[string]any{"plan": plan, "title": title}
	rawByCriterion, err := a.checklist().Run(ctx, input)
	if err != nil {
		return nil, err
	}

	byCriterion := make(map[Item]CriterionResult, len(rawByCriterion))
	for item, raw := range rawByCriterion {
		var res CriterionResult
		if err := jsonutil.UnmarshalRaw(raw, &res); err != nil {
			return nil, fmt.Errorf("validate: criterion %q: %w", item, err)
		}
		byCriterion[item] = res
	}

	report := &ValidationReport{ByCriterion: byCriterion}
	report.OverallScore = MeanScore(byCriterion)
	report.ImprovementNeeded = report.OverallScore < ImprovementThreshold

	sctx := llm.WithStage(ctx, "validate-synthesis")
	raw, err := a.LLM.GenerateJSON(sctx, validateSynthesisPrompt, map[string]any{
		"by_criterion":  byCriterion,
		"overall_score": report.OverallScore,
	})
	if err != nil {
		return nil, err
	}
	var synthesis struct {
		Insights        []string `json:"insights"`
		Recommendations []string `json:"recommendations"`
		RiskLevel       string   `json:"risk_level"`
		Confidence      string   `json:"confidence"`
	}
	if err := jsonutil.UnmarshalRaw(raw, &synthesis); err != nil {
		return nil, fmt.Errorf("validate: invalid synthesis: %w", err)
	}
	report.Insights = synthesis.Insights
	report.Recommendations = synthesis.Recommendations
	report.RiskLevel = synthesis.RiskLevel
	report.Confidence = synthesis.Confidence
	return report, nil
}

// MeanScore is the arithmetic mean of the per-criterion scores.
func MeanScore(byCriterion map[Item]CriterionResult) float64 {
	if len(byCriterion) == 0 {
		return 0
	}
	var sum float64
	for _, res := range byCriterion {
		sum += res.Score
	}
	return sum / float64(len(byCriterion))
}
