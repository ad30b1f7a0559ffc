package publish

import (
	"strings"
	"testing"

	"github.com/ahmadnish/lets-vibe/internal/tester"
	t2 "github.com/ahmadnish/lets-vibe/internal/types"
)

func TestScaffoldFiles_FullBundle(t *testing.T) {
	plan := t2.Plan{
		Interpretation: t2.Interpretation{
			Title:             "Demo",
			Description:       "A demo project.",
			EstimatedDuration: "8 weeks",
			Complexity:        t2.ComplexityMedium,
			Objectives:        []string{"ship"},
		},
		Milestones: []t2.Milestone{{
			Name: "M1", DurationWeeks: 2, Description: "First.",
			Tasks: []t2.Task{{ID: "T1", Title: "Build", Priority: t2.PriorityHigh, EstimatedHours: 8}},
		}},
		Schedule: t2.Schedule{
			Assignments:          []t2.Assignment{{TaskID: "T1", Assignee: "alice", StartWeek: 1, EndWeek: 2}},
			WorkloadDistribution: map[string]float64{"alice": 8},
		},
		Artifacts: t2.Artifacts{Readme: "# Custom Readme"},
	}

	files := ScaffoldFiles(plan)
	tester.Eq(t, files["README.md"], "# Custom Readme")
	tester.Eq(t, files["docs/PAPER_DRAFT.md"], "TBD")

	planDoc := files["docs/PROJECT_PLAN.md"]
	tester.True(t, strings.Contains(planDoc, "# Project Plan: Demo"), "plan heading")
	tester.True(t, strings.Contains(planDoc, "| T1 | Build | alice | 1-2 | High | 8 |"), "task table row")
	tester.True(t, strings.Contains(planDoc, "- alice: 8 hours"), "workload line")
	tester.True(t, strings.Contains(files[".gitignore"], ".env"), "gitignore present")
}

func TestScaffoldFiles_EmptyArtifactsFallBack(t *testing.T) {
	plan := t2.Plan{
		Interpretation: t2.Interpretation{Title: "Bare", Description: "Minimal."},
		Milestones: []t2.Milestone{{
			Name: "M1", Tasks: []t2.Task{{ID: "T1", Title: "Orphan", Priority: t2.PriorityLow}},
		}},
	}
	files := ScaffoldFiles(plan)
	tester.True(t, strings.Contains(files["README.md"], "# Bare"), "generated readme fallback")
	planDoc := files["docs/PROJECT_PLAN.md"]
	tester.True(t, strings.Contains(planDoc, "Unassigned"), "dangling task renders Unassigned")
	tester.True(t, strings.Contains(planDoc, "TBD"), "missing weeks render TBD")
}
