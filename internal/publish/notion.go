package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	t "github.com/ahmadnish/lets-vibe/internal/types"
)

// notionBlockLimit is the API ceiling on blocks per append request.
const notionBlockLimit = 100

// NotionClient creates a workspace page for the plan and appends its content
// as blocks, chunked to the API limit.
type NotionClient struct {
	http       *http.Client
	token      string
	parentPage string
	baseURL    string
}

func NewNotionClient(token, parentPage string) *NotionClient {
	if token == "" {
		token = os.Getenv("NOTION_API_KEY")
	}
	if parentPage == "" {
		parentPage = os.Getenv("NOTION_PARENT_PAGE_ID")
	}
	baseURL := strings.TrimSpace(os.Getenv("NOTION_API_URL"))
	if baseURL == "" {
		baseURL = "https://api.notion.com/v1"
	}
	return &NotionClient{
		http:       &http.Client{Timeout: 30 * time.Second},
		token:      strings.TrimSpace(token),
		parentPage: strings.TrimSpace(parentPage),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *NotionClient) Available() bool { return c.token != "" && c.parentPage != "" }

// PublishPlan creates one page under the configured parent and appends the
// rendered plan. It returns the page URL.
func (c *NotionClient) PublishPlan(ctx context.Context, plan t.Plan) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("notion: missing configuration: NOTION_API_KEY / NOTION_PARENT_PAGE_ID")
	}
	pageID, pageURL, err := c.createPage(ctx, plan.Interpretation.Title)
	if err != nil {
		return "", err
	}
	blocks := PlanBlocks(plan)
	for start := 0; start < len(blocks); start += notionBlockLimit {
		end := start + notionBlockLimit
		if end > len(blocks) {
			end = len(blocks)
		}
		if err := c.appendBlocks(ctx, pageID, blocks[start:end]); err != nil {
			return "", fmt.Errorf("notion: append blocks %d-%d: %w", start, end, err)
		}
	}
	return pageURL, nil
}

func (c *NotionClient) createPage(ctx context.Context, title string) (id, url string, err error) {
	body, _ := json.Marshal(map[string]any{
		"parent": map[string]any{"page_id": c.parentPage},
		"properties": map[string]any{
			"title": map[string]any{
				"title": []map[string]any{{"text": map[string]any{"content": title}}},
			},
		},
	})
	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/pages", body)
	if err != nil {
		return "", "", err
	}
	var out struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		return "", "", fmt.Errorf("notion: unparsable create-page response: %w", err)
	}
	return out.ID, out.URL, nil
}

func (c *NotionClient) appendBlocks(ctx context.Context, pageID string, blocks []map[string]any) error {
	body, _ := json.Marshal(map[string]any{"children": blocks})
	_, err := c.do(ctx, http.MethodPatch, c.baseURL+"/blocks/"+pageID+"/children", body)
	return err
}

func (c *NotionClient) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", "2022-06-28")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("notion: unexpected status %d: %s", resp.StatusCode, firstLine(data))
	}
	return data, nil
}

// PlanBlocks renders the plan as Notion blocks: headings, paragraphs, and
// bullet lists. Assignments with dangling references render as "Unassigned".
func PlanBlocks(plan t.Plan) []map[string]any {
	var blocks []map[string]any
	add := func(b map[string]any) { blocks = append(blocks, b) }

	add(heading(1, plan.Interpretation.Title))
	add(paragraph(plan.Interpretation.Description))

	add(heading(2, "Objectives"))
	for _, obj := range plan.Interpretation.Objectives {
		add(bullet(obj))
	}

	add(heading(2, "Milestones"))
	for _, m := range plan.Milestones {
		add(heading(3, fmt.Sprintf("%s (%d weeks)", m.Name, m.DurationWeeks)))
		add(paragraph(m.Description))
		for _, task := range m.Tasks {
			assignee := assigneeFor(plan.Schedule, task.ID)
			add(bullet(fmt.Sprintf("%s: %s — %s (%s, %.0fh)", task.ID, task.Title, assignee, task.Priority, task.EstimatedHours)))
		}
	}

	add(heading(2, "Documents"))
	for _, doc := range []struct {
		title string
		body  string
	}{
		{"README", plan.Artifacts.Readme},
		{"Paper Draft", plan.Artifacts.PaperDraft},
		{"Code Structure Guide", plan.Artifacts.CodeStructureGuide},
		{"API Documentation", plan.Artifacts.APIDocumentation},
		{"Deployment Guide", plan.Artifacts.DeploymentGuide},
		{"Testing Strategy", plan.Artifacts.TestingStrategy},
	} {
		add(heading(3, doc.title))
		for _, chunk := range splitParagraphs(doc.body) {
			add(paragraph(chunk))
		}
	}
	return blocks
}

func assigneeFor(schedule t.Schedule, taskID string) string {
	for _, a := range schedule.Assignments {
		if a.TaskID == taskID {
			if strings.TrimSpace(a.Assignee) == "" {
				return "Unassigned"
			}
			return a.Assignee
		}
	}
	return "Unassigned"
}

// notionTextLimit is the API ceiling on one rich-text content string.
const notionTextLimit = 2000

func splitParagraphs(body string) []string {
	var out []string
	for _, para := range strings.Split(strings.TrimSpace(body), "\n\n") {
		para = strings.TrimSpace(para)
		for len(para) > notionTextLimit {
			out = append(out, para[:notionTextLimit])
			para = para[notionTextLimit:]
		}
		if para != "" {
			out = append(out, para)
		}
	}
	if len(out) == 0 {
		out = []string{"TBD"}
	}
	return out
}

func heading(level int, text string) map[string]any {
	key := fmt.Sprintf("heading_%d", level)
	return map[string]any{
		"object": "block",
		"type":   key,
		key:      map[string]any{"rich_text": richText(text)},
	}
}

func paragraph(text string) map[string]any {
	return map[string]any{
		"object":    "block",
		"type":      "paragraph",
		"paragraph": map[string]any{"rich_text": richText(text)},
	}
}

func bullet(text string) map[string]any {
	return map[string]any{
		"object":             "block",
		"type":               "bulleted_list_item",
		"bulleted_list_item": map[string]any{"rich_text": richText(text)},
	}
}

func richText(text string) []map[string]any {
	if len(text) > notionTextLimit {
		text = text[:notionTextLimit]
	}
	return []map[string]any{{"text": map[string]any{"content": text}}}
}
