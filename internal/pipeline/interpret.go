package pipeline

import (
	"context"
	"fmt"

	"github.com/ahmadnish/lets-vibe/internal/jsonutil"
	"github.com/ahmadnish/lets-vibe/internal/llm"
	"github.com/ahmadnish/lets-vibe/internal/llmtool"
	t "github.com/ahmadnish/lets-vibe/internal/types"
)

var interpretPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Expand a free-text project idea into a structured project brief.",
	Background: "The brief seeds every downstream stage: milestone planning, task assignment, and documentation generation.",
	OutputFields: []llmtool.PromptField{
		{Name: "title", Type: "string", Required: true, Description: "Concise project title."},
		{Name: "description", Type: "string", Required: true, Description: "2-4 sentence project description."},
		{Name: "objectives", Type: "[]string", Required: true, Description: "Ordered, measurable objectives."},
		{Name: "scope_assumptions", Type: "[]string", Required: true, Description: "Scope boundaries and working assumptions."},
		{Name: "technical_requirements", Type: "[]string", Required: true, Description: "Concrete technical requirements."},
		{Name: "success_criteria", Type: "[]string", Required: true, Description: "How completion is judged."},
		{Name: "estimated_duration", Type: "string", Required: true, Description: "Overall duration estimate, e.g. \"12 weeks\"."},
		{Name: "complexity", Type: "string", Required: true, Description: "One of: Low, Medium, High, Very High."},
		{Name: "tech_stack", Type: "[]string", Required: true, Description: "Recommended technologies by name."},
		{Name: "target_audience", Type: "string", Required: true, Description: "Who the project serves."},
		{Name: "business_value", Type: "string", Required: true, Description: "Why the project is worth building."},
	},
	Constraints: []string{
		"complexity must be exactly one of the four listed values.",
		"Honor special_instructions when present; they override defaults.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetCautious()))

// Interpret is the first pipeline stage: one structured completion call.
type Interpret struct{ LLM llm.Client }

func (s *Interpret) Run(ctx context.Context, idea t.ProjectIdea) (t.Interpretation, error) {
	ctx = llm.WithStage(ctx, "interpret")
	input := map[string]any{
		"project_idea":         idea.Text,
		"special_instructions": idea.SpecialInstructions,
	}
	raw, err := s.LLM.GenerateJSON(ctx, interpretPrompt, input)
	if err != nil {
		return t.Interpretation{}, err
	}
	var out t.Interpretation
	if err := jsonutil.UnmarshalRaw(raw, &out); err != nil {
		return t.Interpretation{}, fmt.Errorf("interpret: invalid stage output: %w", err)
	}
	return out, nil
}
