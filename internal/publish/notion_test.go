package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmadnish/lets-vibe/internal/tester"
	t2 "github.com/ahmadnish/lets-vibe/internal/types"
)

func bigPlan(tasks int) t2.Plan {
	plan := t2.Plan{
		Interpretation: t2.Interpretation{
			Title:       "Big Plan",
			Description: "A plan with many tasks.",
			Objectives:  []string{"objective one"},
		},
		Artifacts: t2.Artifacts{Readme: "# Big Plan"},
	}
	m := t2.Milestone{Name: "Everything", DurationWeeks: 4, Description: "All tasks."}
	for i := 1; i <= tasks; i++ {
		m.Tasks = append(m.Tasks, t2.Task{
			ID: fmt.Sprintf("T%d", i), Title: fmt.Sprintf("Task %d", i),
			Priority: t2.PriorityMedium, EstimatedHours: 4,
		})
		plan.Schedule.Assignments = append(plan.Schedule.Assignments, t2.Assignment{
			TaskID: fmt.Sprintf("T%d", i), Assignee: "alice",
		})
	}
	plan.Milestones = []t2.Milestone{m}
	return plan
}

func TestPublishPlan_ChunksBlocksToAPILimit(t *testing.T) {
	appendCalls := 0
	var chunkSizes []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/pages":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"id":  "page-1",
				"url": "https://notion.so/page-1",
			})
		case r.Method == http.MethodPatch && r.URL.Path == "/blocks/page-1/children":
			var body struct {
				Children []map[string]any `json:"children"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			appendCalls++
			chunkSizes = append(chunkSizes, len(body.Children))
			_ = json.NewEncoder(w).Encode(map[string]any{})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	t.Setenv("NOTION_API_URL", srv.URL)

	c := NewNotionClient("secret", "parent-page")
	plan := bigPlan(120)
	tester.True(t, len(PlanBlocks(plan)) > notionBlockLimit, "fixture must exceed one chunk")

	url, err := c.PublishPlan(context.Background(), plan)
	tester.NoErr(t, err)
	tester.Eq(t, url, "https://notion.so/page-1")
	tester.True(t, appendCalls >= 2, "blocks split across append calls")
	for _, size := range chunkSizes {
		tester.True(t, size <= notionBlockLimit, "chunk within the API limit")
	}
}

func TestPublishPlan_WithoutConfiguration(t *testing.T) {
	t.Setenv("NOTION_API_KEY", "")
	t.Setenv("NOTION_PARENT_PAGE_ID", "")
	c := NewNotionClient("", "")
	tester.False(t, c.Available())
	_, err := c.PublishPlan(context.Background(), t2.Plan{})
	tester.ErrContains(t, err, "NOTION_API_KEY")
}

func TestPlanBlocks_DanglingAssigneeRendersUnassigned(t *testing.T) {
	plan := t2.Plan{
		Interpretation: t2.Interpretation{Title: "T", Description: "D"},
		Milestones: []t2.Milestone{{
			Name: "M1", Tasks: []t2.Task{{ID: "T1", Title: "Orphan task"}},
		}},
	}
	blocks := PlanBlocks(plan)
	var joined strings.Builder
	b, _ := json.Marshal(blocks)
	joined.Write(b)
	tester.True(t, strings.Contains(joined.String(), "Unassigned"),
		"task without assignment renders Unassigned")
}

func TestSplitParagraphs(t *testing.T) {
	out := splitParagraphs("first para\n\nsecond para")
	tester.Eq(t, out, []string{"first para", "second para"})

	tester.Eq(t, splitParagraphs("   "), []string{"TBD"})

	long := strings.Repeat("x", notionTextLimit+10)
	chunks := splitParagraphs(long)
	tester.Eq(t, len(chunks), 2)
	tester.Eq(t, len(chunks[0]), notionTextLimit)
}

func TestAssigneeFor(t *testing.T) {
	schedule := t2.Schedule{Assignments: []t2.Assignment{
		{TaskID: "T1", Assignee: "alice"},
		{TaskID: "T2", Assignee: "  "},
	}}
	tester.Eq(t, assigneeFor(schedule, "T1"), "alice")
	tester.Eq(t, assigneeFor(schedule, "T2"), "Unassigned")
	tester.Eq(t, assigneeFor(schedule, "T9"), "Unassigned")
}
