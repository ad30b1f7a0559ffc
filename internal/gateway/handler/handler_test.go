package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmadnish/lets-vibe/internal/knowledge"
	"github.com/ahmadnish/lets-vibe/internal/llm"
	"github.com/ahmadnish/lets-vibe/internal/pipeline"
	"github.com/ahmadnish/lets-vibe/internal/runlog"
)

func pipelineFake() *llm.FakeClient {
	return llm.NewFakeClient().
		Respond("interpret", map[string]any{"title": "Demo", "description": "d", "complexity": "Low", "tech_stack": []string{"Go"}}).
		Respond("plan", map[string]any{"milestones": []map[string]any{{"name": "M1", "tasks": []map[string]any{{"id": "T1", "title": "t"}}}}}).
		Respond("assign", map[string]any{
			"assignments":           []map[string]any{{"task_id": "T1", "assignee": "alice"}},
			"weekly_schedule":       map[string][]string{},
			"workload_distribution": map[string]float64{},
		}).
		Respond("artifacts", map[string]any{"readme": "# Demo"})
}

func newTestHandler(fake *llm.FakeClient) *GenerateHandler {
	return NewGenerateHandler(pipeline.New(fake), nil, nil, nil, knowledge.NewStore(), runlog.New())
}

func postGenerate(h *GenerateHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/generate-project", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)
	return rec
}

func TestHandleGenerate_Success(t *testing.T) {
	h := newTestHandler(pipelineFake())
	rec := postGenerate(h, `{"project_idea":"build a chat app","contributors":[{"name":"alice","expertise":["backend"]}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Demo", resp.Title)
	assert.NotEmpty(t, resp.RunID)
	assert.Len(t, resp.Plan.Milestones, 1)
	assert.False(t, resp.GitHub.OK)
	assert.Contains(t, resp.GitHub.Error, "not configured")
	assert.False(t, resp.Notion.OK)
}

func TestHandleGenerate_BlankIdea(t *testing.T) {
	h := newTestHandler(pipelineFake())
	rec := postGenerate(h, `{"project_idea":"   ","contributors":[{"name":"alice"}]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "project_idea is required", resp["error"])
}

func TestHandleGenerate_EmptyContributors(t *testing.T) {
	h := newTestHandler(pipelineFake())
	rec := postGenerate(h, `{"project_idea":"a real idea","contributors":[]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "at least one contributor is required", resp["error"])
}

func TestHandleGenerate_InvalidBody(t *testing.T) {
	h := newTestHandler(pipelineFake())
	rec := postGenerate(h, `{not json`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid json body")
}

func TestHandleGenerate_PipelineFailure(t *testing.T) {
	fake := pipelineFake()
	fake.Err = errors.New("completion backend unavailable")
	h := newTestHandler(fake)
	rec := postGenerate(h, `{"project_idea":"idea","contributors":[{"name":"alice"}]}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completion backend unavailable", resp["error"])
}

func TestHandleGenerate_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(pipelineFake())
	req := httptest.NewRequest(http.MethodGet, "/api/generate-project", nil)
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleGenerate_LearnsFromPlan(t *testing.T) {
	kb := knowledge.NewStore()
	h := NewGenerateHandler(pipeline.New(pipelineFake()), nil, nil, nil, kb, runlog.New())
	rec := postGenerate(h, `{"project_idea":"idea","contributors":[{"name":"alice"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Greater(t, kb.Len(), 0, "generated plan feeds the knowledge store")
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}
