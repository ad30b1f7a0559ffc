package pipeline

import (
	"context"
	"fmt"

	"github.com/ahmadnish/lets-vibe/internal/jsonutil"
	"github.com/ahmadnish/lets-vibe/internal/llm"
	"github.com/ahmadnish/lets-vibe/internal/llmtool"
	t "github.com/ahmadnish/lets-vibe/internal/types"
)

var artifactsPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Write the documentation bundle for a planned project.",
	Background: "Six long-form markdown documents derived from the brief, the milestones, and the assignments.",
	OutputFields: []llmtool.PromptField{
		{Name: "readme", Type: "string", Required: true, Description: "Project README with overview, setup, and usage."},
		{Name: "paper_draft", Type: "string", Required: true, Description: "Academic-style paper draft: abstract, intro, method, expected results."},
		{Name: "code_structure_guide", Type: "string", Required: true, Description: "Proposed repository layout and module responsibilities."},
		{Name: "api_documentation", Type: "string", Required: true, Description: "Planned API surface with request/response examples."},
		{Name: "deployment_guide", Type: "string", Required: true, Description: "Environment setup and deployment steps."},
		{Name: "testing_strategy", Type: "string", Required: true, Description: "Test levels, tooling, and coverage targets."},
	},
	Constraints: []string{
		"Each document is self-contained markdown; no cross-document references.",
		"Ground every document in the provided plan; do not invent milestones or assignees.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON()))

// GenerateArtifacts is the fourth pipeline stage.
type GenerateArtifacts struct{ LLM llm.Client }

func (s *GenerateArtifacts) Run(ctx context.Context, brief t.Interpretation, milestones []t.Milestone, schedule t.Schedule, idea t.ProjectIdea) (t.Artifacts, error) {
	ctx = llm.WithStage(ctx, "artifacts")
	input := map[string]any{
		"original_idea":  idea.Text,
		"interpretation": brief,
		"milestones":     milestones,
		"assignments":    schedule.Assignments,
	}
	raw, err := s.LLM.GenerateJSON(ctx, artifactsPrompt, input)
	if err != nil {
		return t.Artifacts{}, err
	}
	var out t.Artifacts
	if err := jsonutil.UnmarshalRaw(raw, &out); err != nil {
		return t.Artifacts{}, fmt.Errorf("artifacts: invalid stage output: %w", err)
	}
	return out, nil
}
