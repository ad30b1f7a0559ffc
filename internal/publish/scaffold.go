package publish

import (
	"fmt"
	"strings"

	t "github.com/ahmadnish/lets-vibe/internal/types"
)

// ScaffoldFiles renders the file set uploaded to a newly created repository:
// the generated documents plus a machine-readable plan snapshot.
func ScaffoldFiles(plan t.Plan) map[string]string {
	files := map[string]string{
		"README.md":                 orDefault(plan.Artifacts.Readme, defaultReadme(plan)),
		"docs/PAPER_DRAFT.md":       orDefault(plan.Artifacts.PaperDraft, "TBD"),
		"docs/CODE_STRUCTURE.md":    orDefault(plan.Artifacts.CodeStructureGuide, "TBD"),
		"docs/API.md":               orDefault(plan.Artifacts.APIDocumentation, "TBD"),
		"docs/DEPLOYMENT.md":        orDefault(plan.Artifacts.DeploymentGuide, "TBD"),
		"docs/TESTING_STRATEGY.md":  orDefault(plan.Artifacts.TestingStrategy, "TBD"),
		"docs/PROJECT_PLAN.md":      planMarkdown(plan),
		".gitignore":                defaultGitignore,
	}
	return files
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func defaultReadme(plan t.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n", plan.Interpretation.Title, plan.Interpretation.Description)
	return b.String()
}

func planMarkdown(plan t.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Project Plan: %s\n\n", plan.Interpretation.Title)
	fmt.Fprintf(&b, "Estimated duration: %s · Complexity: %s\n\n",
		plan.Interpretation.EstimatedDuration, plan.Interpretation.Complexity)

	b.WriteString("## Objectives\n\n")
	for _, obj := range plan.Interpretation.Objectives {
		fmt.Fprintf(&b, "- %s\n", obj)
	}

	b.WriteString("\n## Milestones\n\n")
	for _, m := range plan.Milestones {
		fmt.Fprintf(&b, "### %s (%d weeks)\n\n%s\n\n", m.Name, m.DurationWeeks, m.Description)
		b.WriteString("| Task | Title | Assignee | Weeks | Priority | Hours |\n")
		b.WriteString("|------|-------|----------|-------|----------|-------|\n")
		for _, task := range m.Tasks {
			assignee, weeks := "Unassigned", "TBD"
			for _, a := range plan.Schedule.Assignments {
				if a.TaskID == task.ID {
					if strings.TrimSpace(a.Assignee) != "" {
						assignee = a.Assignee
					}
					weeks = fmt.Sprintf("%d-%d", a.StartWeek, a.EndWeek)
					break
				}
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %.0f |\n",
				task.ID, task.Title, assignee, weeks, task.Priority, task.EstimatedHours)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Workload\n\n")
	for name, hours := range plan.Schedule.WorkloadDistribution {
		fmt.Fprintf(&b, "- %s: %.0f hours\n", name, hours)
	}
	return b.String()
}

const defaultGitignore = `# Dependencies
node_modules/
vendor/

# Build output
dist/
build/

# Environment
.env
.env.local
`
