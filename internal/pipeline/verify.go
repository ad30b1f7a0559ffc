package pipeline

import (
	"fmt"

	t "github.com/ahmadnish/lets-vibe/internal/types"
)

// Verify reports dangling cross-references between assignments and the tasks
// and contributors they name. Findings never reject the plan: publish targets
// render unknown references as "Unassigned"/"TBD", so a mismatch degrades
// the output instead of failing the run.
func Verify(milestones []t.Milestone, schedule t.Schedule, contributors []t.Contributor) []t.IntegrityFinding {
	tasks := map[string]struct{}{}
	for _, m := range milestones {
		for _, task := range m.Tasks {
			tasks[task.ID] = struct{}{}
		}
	}
	names := map[string]struct{}{}
	for _, c := range contributors {
		names[c.Name] = struct{}{}
	}

	var findings []t.IntegrityFinding
	for _, a := range schedule.Assignments {
		if _, ok := tasks[a.TaskID]; !ok {
			findings = append(findings, t.IntegrityFinding{
				Kind:    "unknown_task",
				TaskID:  a.TaskID,
				Message: fmt.Sprintf("assignment references task %q which no milestone contains", a.TaskID),
			})
		}
		if _, ok := names[a.Assignee]; !ok {
			findings = append(findings, t.IntegrityFinding{
				Kind:    "unknown_assignee",
				Name:    a.Assignee,
				TaskID:  a.TaskID,
				Message: fmt.Sprintf("assignment for task %q names %q, not in the contributor list", a.TaskID, a.Assignee),
			})
		}
	}
	return findings
}
