package pipeline

import (
	"context"
	"fmt"

	"github.com/ahmadnish/lets-vibe/internal/jsonutil"
	"github.com/ahmadnish/lets-vibe/internal/llm"
	"github.com/ahmadnish/lets-vibe/internal/llmtool"
	t "github.com/ahmadnish/lets-vibe/internal/types"
)

var assignPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Map every task to a contributor and lay the work out on a weekly timeline.",
	Background: "Contributors declare expertise as free-text tags. Weeks are 1-based and inclusive.",
	OutputFields: []llmtool.PromptField{
		{Name: "assignments", Type: "[]Assignment", Required: true,
			Description: "Each: {task_id, assignee, start_week, end_week, rationale, collaboration_notes}."},
		{Name: "weekly_schedule", Type: "map[string][]string", Required: true,
			Description: "Week label (\"week_1\", ...) to the task ids active that week."},
		{Name: "workload_distribution", Type: "map[string]number", Required: true,
			Description: "Contributor name to total estimated hours."},
	},
	Constraints: []string{
		"task_id must reference a task from the input milestones.",
		"assignee must be one of the provided contributor names, spelled identically.",
		"Plan for roughly 30-40 hours per contributor per week.",
		"Respect task dependencies: a task never starts before its dependencies end.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetNoInvent()))

// Assign is the third pipeline stage.
type Assign struct{ LLM llm.Client }

func (s *Assign) Run(ctx context.Context, milestones []t.Milestone, contributors []t.Contributor, instructions string) (t.Schedule, error) {
	ctx = llm.WithStage(ctx, "assign")
	input := map[string]any{
		"milestones":           milestones,
		"contributors":         contributors,
		"special_instructions": instructions,
	}
	raw, err := s.LLM.GenerateJSON(ctx, assignPrompt, input)
	if err != nil {
		return t.Schedule{}, err
	}
	var out t.Schedule
	if err := jsonutil.UnmarshalRaw(raw, &out); err != nil {
		return t.Schedule{}, fmt.Errorf("assign: invalid stage output: %w", err)
	}
	return out, nil
}
