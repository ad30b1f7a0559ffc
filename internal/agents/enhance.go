package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahmadnish/lets-vibe/internal/jsonutil"
	"github.com/ahmadnish/lets-vibe/internal/llm"
	"github.com/ahmadnish/lets-vibe/internal/llmtool"
	t "github.com/ahmadnish/lets-vibe/internal/types"
)

// The eight fixed enhancement categories.
var enhancementCategories = []Item{
	"task_granularity",
	"dependency_ordering",
	"workload_balance",
	"risk_mitigation",
	"testing_coverage",
	"documentation_depth",
	"technology_choices",
	"timeline_buffering",
}

var enhanceItemPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Propose improvements to a project plan within one category.",
	Background: "checklist_item names the category; validation findings point at known weaknesses.",
	OutputFields: []llmtool.PromptField{
		{Name: "changes", Type: "[]string", Required: true, Description: "Concrete, applicable plan changes."},
		{Name: "justification", Type: "string", Required: true},
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetCautious()))

var enhanceApplyPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Apply categorized improvement proposals to a project plan and emit the revised plan.",
	Background: "The revised plan replaces the original wholesale; keep everything not touched by a proposal.",
	OutputFields: []llmtool.PromptField{
		{Name: "interpretation", Type: "Interpretation", Required: true, Description: "Same schema as the input interpretation."},
		{Name: "milestones", Type: "[]Milestone", Required: true},
		{Name: "schedule", Type: "Schedule", Required: true, Description: "{assignments, weekly_schedule, workload_distribution}."},
		{Name: "artifacts", Type: "Artifacts", Required: true, Description: "The six documentation fields, updated where proposals touch them."},
	},
	Constraints: []string{
		"Keep task ids stable unless a proposal splits or merges tasks.",
		"Keep contributor names exactly as provided.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetNoInvent()))

var enhanceComparePrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose: "Compare an original and an enhanced project plan and self-assess the improvement.",
	OutputFields: []llmtool.PromptField{
		{Name: "improvement_score", Type: "number", Required: true, Description: "0-100 self-assessment of how much the enhanced plan improves on the original."},
		{Name: "summary", Type: "string", Required: true},
	},
	Constraints: []string{
		"improvement_score must be a number between 0 and 100.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON()))

// EnhancementReport carries the revised plan plus the model's self-reported
// improvement score. The score is not independently verified.
type EnhancementReport struct {
	Plan             t.Plan                   `json:"plan"`
	ImprovementScore float64                  `json:"improvement_score"`
	Summary          string                   `json:"summary"`
	ByCategory       map[Item]json.RawMessage `json:"by_category"`
}

// Enhancement runs the category fan-out, applies the proposals in one call,
// then asks the model to score its own work.
type Enhancement struct {
	LLM llm.Client
}

func NewEnhancement(client llm.Client) *Enhancement {
	return &Enhancement{LLM: client}
}

func (a *Enhancement) checklist() *Checklist {
	generic := func(ctx context.Context, input map[string]any) (json.RawMessage, error) {
		ctx = llm.WithStage(ctx, "enhance:"+input["checklist_item"].(string))
		return a.LLM.GenerateJSON(ctx, enhanceItemPrompt, input)
	}
	return &Checklist{
		Items:    enhancementCategories,
		Handlers: map[Item]Handler{},
		Default:  generic,
	}
}

// Run produces an enhanced plan from the original plan and the validation
// report that triggered enhancement.
func (a *Enhancement) Run(ctx context.Context, plan t.Plan, validation *ValidationReport) (*EnhancementReport, error) {
	input := map[string]any{"plan": plan, "validation": validation}
	byCategory, err := a.checklist().Run(ctx, input)
	if err != nil {
		return nil, err
	}

	actx := llm.WithStage(ctx, "enhance-apply")
	raw, err := a.LLM.GenerateJSON(actx, enhanceApplyPrompt, map[string]any{
		"plan":      plan,
		"proposals": byCategory,
	})
	if err != nil {
		return nil, err
	}
	var enhanced t.Plan
	if err := jsonutil.UnmarshalRaw(raw, &enhanced); err != nil {
		return nil, fmt.Errorf("enhance: invalid revised plan: %w", err)
	}

	cctx := llm.WithStage(ctx, "enhance-compare")
	raw, err = a.LLM.GenerateJSON(cctx, enhanceComparePrompt, map[string]any{
		"original": plan,
		"enhanced": enhanced,
	})
	if err != nil {
		return nil, err
	}
	var cmp struct {
		ImprovementScore float64 `json:"improvement_score"`
		Summary          string  `json:"summary"`
	}
	if err := jsonutil.UnmarshalRaw(raw, &cmp); err != nil {
		return nil, fmt.Errorf("enhance: invalid comparison: %w", err)
	}

	return &EnhancementReport{
		Plan:             enhanced,
		ImprovementScore: cmp.ImprovementScore,
		Summary:          cmp.Summary,
		ByCategory:       byCategory,
	}, nil
}
