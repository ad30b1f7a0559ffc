package pipeline

import (
	"context"
	"fmt"

	"github.com/ahmadnish/lets-vibe/internal/jsonutil"
	"github.com/ahmadnish/lets-vibe/internal/llm"
	"github.com/ahmadnish/lets-vibe/internal/llmtool"
	t "github.com/ahmadnish/lets-vibe/internal/types"
)

var planPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Break a project brief into milestones and tasks.",
	Background: "Tasks carry ids that the assignment stage references; ids must be unique across the whole plan.",
	OutputFields: []llmtool.PromptField{
		{Name: "milestones", Type: "[]Milestone", Required: true,
			Description: "Each: {name, description, duration_weeks, dependencies ([]milestone name), deliverables ([]string), tasks ([]Task)}."},
	},
	Constraints: []string{
		"Produce 4-7 milestones with 3-8 tasks each.",
		"Task: {id, title, description, required_expertise ([]string), estimated_hours, priority, parallelizable, dependencies ([]task id)}.",
		"Task ids follow the pattern \"T1\", \"T2\", ... and never repeat.",
		"priority must be one of: Critical, High, Medium, Low.",
		"Task dependencies reference earlier task ids only.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetCautious()))

// Plan is the second pipeline stage.
type Plan struct{ LLM llm.Client }

type planOut struct {
	Milestones []t.Milestone `json:"milestones"`
}

func (s *Plan) Run(ctx context.Context, brief t.Interpretation) ([]t.Milestone, error) {
	ctx = llm.WithStage(ctx, "plan")
	raw, err := s.LLM.GenerateJSON(ctx, planPrompt, map[string]any{"interpretation": brief})
	if err != nil {
		return nil, err
	}
	var out planOut
	if err := jsonutil.UnmarshalRaw(raw, &out); err != nil {
		return nil, fmt.Errorf("plan: invalid stage output: %w", err)
	}
	return out.Milestones, nil
}
