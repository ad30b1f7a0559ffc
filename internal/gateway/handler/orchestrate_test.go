package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmadnish/lets-vibe/internal/knowledge"
	"github.com/ahmadnish/lets-vibe/internal/llm"
	"github.com/ahmadnish/lets-vibe/internal/orchestrator"
	"github.com/ahmadnish/lets-vibe/internal/pipeline"
	"github.com/ahmadnish/lets-vibe/internal/runlog"
	"github.com/ahmadnish/lets-vibe/internal/websearch"
)

func orchestrateFake() *llm.FakeClient {
	return llm.NewFakeClient().
		Respond("", map[string]any{
			"score":           90,
			"findings":        []string{},
			"issues":          []string{},
			"recommendations": []string{},
		}).
		Respond("orchestrator-analysis", map[string]any{
			"complexity":       "Low",
			"research_topics":  []string{},
			"search_queries":   []string{},
			"validation_focus": []string{},
			"reasoning":        "simple",
		}).
		Respond("orchestrator-generation", map[string]any{
			"interpretation": map[string]any{"title": "Orchestrated"},
			"milestones":     []map[string]any{{"name": "M1"}},
			"schedule":       map[string]any{},
			"artifacts":      map[string]any{},
		}).
		Respond("validate-synthesis", map[string]any{
			"insights": []string{}, "recommendations": []string{},
			"risk_level": "low", "confidence": "high",
		})
}

func newTestOrchestrateHandler(t *testing.T, fake *llm.FakeClient) *OrchestrateHandler {
	t.Helper()
	t.Setenv("SERPER_API_KEY", "")
	runLog := runlog.New()
	search := websearch.NewClient(fake, "")
	generate := NewGenerateHandler(pipeline.New(fake), nil, nil, nil, knowledge.NewStore(), runLog)
	return NewOrchestrateHandler(orchestrator.New(fake, search, runLog), generate, runLog)
}

func TestHandleOrchestrate_Success(t *testing.T) {
	h := newTestOrchestrateHandler(t, orchestrateFake())
	req := httptest.NewRequest(http.MethodPost, "/api/orchestrate-project",
		strings.NewReader(`{"project_idea":"todo app","contributors":[{"name":"alice"}]}`))
	rec := httptest.NewRecorder()
	h.HandleOrchestrate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp orchestrateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Orchestrated", resp.Title)
	assert.NotEmpty(t, resp.RunID)
	require.NotNil(t, resp.Result)
	assert.NotNil(t, resp.Result.Validation)
	assert.NotEmpty(t, resp.Result.Log)
	assert.False(t, resp.GitHub.OK)
	assert.Contains(t, resp.GitHub.Error, "not configured")
}

func TestHandleOrchestrate_ValidationContractShared(t *testing.T) {
	h := newTestOrchestrateHandler(t, orchestrateFake())
	req := httptest.NewRequest(http.MethodPost, "/api/orchestrate-project",
		strings.NewReader(`{"project_idea":"","contributors":[{"name":"alice"}]}`))
	rec := httptest.NewRecorder()
	h.HandleOrchestrate(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "project_idea is required")
}

func TestHandleOrchestrate_RunFailure(t *testing.T) {
	fake := orchestrateFake()
	fake.Respond("orchestrator-analysis", "garbage")
	h := newTestOrchestrateHandler(t, fake)
	req := httptest.NewRequest(http.MethodPost, "/api/orchestrate-project",
		strings.NewReader(`{"project_idea":"x","contributors":[{"name":"a"}]}`))
	rec := httptest.NewRecorder()
	h.HandleOrchestrate(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "invalid analysis output")
}
