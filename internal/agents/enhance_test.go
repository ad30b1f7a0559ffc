package agents

import (
	"context"
	"testing"

	"github.com/ahmadnish/lets-vibe/internal/llm"
	"github.com/ahmadnish/lets-vibe/internal/tester"
	t2 "github.com/ahmadnish/lets-vibe/internal/types"
)

func TestEnhancement_ProducesRevisedPlanAndScore(t *testing.T) {
	original := t2.Plan{
		Interpretation: t2.Interpretation{Title: "Before"},
	}
	fake := llm.NewFakeClient().
		Respond("", map[string]any{
			"changes":       []string{"split T1"},
			"justification": "too coarse",
		}).
		Respond("enhance-apply", map[string]any{
			"interpretation": map[string]any{"title": "After"},
			"milestones":     []map[string]any{{"name": "M1"}},
			"schedule":       map[string]any{},
			"artifacts":      map[string]any{"readme": "# After"},
		}).
		Respond("enhance-compare", map[string]any{
			"improvement_score": 42.5,
			"summary":           "moderately better",
		})

	a := NewEnhancement(fake)
	report, err := a.Run(context.Background(), original, &ValidationReport{OverallScore: 60})
	tester.NoErr(t, err)
	tester.Eq(t, report.Plan.Interpretation.Title, "After")
	tester.Eq(t, report.ImprovementScore, 42.5)
	tester.Eq(t, report.Summary, "moderately better")
	tester.Eq(t, len(report.ByCategory), len(enhancementCategories))

	// 8 category proposals, then apply, then compare.
	tester.Eq(t, len(fake.Calls), len(enhancementCategories)+2)
	tester.Eq(t, fake.Calls[len(fake.Calls)-2], "enhance-apply")
	tester.Eq(t, fake.Calls[len(fake.Calls)-1], "enhance-compare")
}

func TestEnhancement_InvalidRevisedPlan(t *testing.T) {
	fake := llm.NewFakeClient().
		Respond("", map[string]any{"changes": []string{}, "justification": ""}).
		Respond("enhance-apply", "not a plan")
	a := NewEnhancement(fake)
	_, err := a.Run(context.Background(), t2.Plan{}, nil)
	tester.ErrContains(t, err, "invalid revised plan")
}
