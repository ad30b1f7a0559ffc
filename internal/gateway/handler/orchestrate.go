package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ahmadnish/lets-vibe/internal/orchestrator"
	"github.com/ahmadnish/lets-vibe/internal/publish"
	"github.com/ahmadnish/lets-vibe/internal/runlog"
	t "github.com/ahmadnish/lets-vibe/internal/types"
)

// OrchestrateHandler runs the analysis/research/generation/validation flow.
type OrchestrateHandler struct {
	orch     *orchestrator.Orchestrator
	generate *GenerateHandler
	runLog   *runlog.Log
}

func NewOrchestrateHandler(orch *orchestrator.Orchestrator, generate *GenerateHandler, runLog *runlog.Log) *OrchestrateHandler {
	return &OrchestrateHandler{orch: orch, generate: generate, runLog: runLog}
}

type orchestrateResponse struct {
	RunID  string               `json:"run_id"`
	Title  string               `json:"title"`
	Result *orchestrator.Result `json:"result"`
	GitHub publish.Result       `json:"github"`
	Notion publish.Result       `json:"notion"`
}

func (h *OrchestrateHandler) HandleOrchestrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	req, problem := decodeAndValidate(r)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	runID := uuid.NewString()
	idea := t.ProjectIdea{Text: req.ProjectIdea, SpecialInstructions: req.SpecialInstructions}

	result, err := h.orch.Run(r.Context(), runID, idea, req.Contributors)
	if err != nil {
		h.runLog.Append(runID, "orchestrator", "run failed: "+err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := orchestrateResponse{
		RunID:  runID,
		Title:  result.Plan.Interpretation.Title,
		Result: result,
	}
	resp.GitHub, resp.Notion = h.generate.publishBoth(r.Context(), runID, result.Plan)
	writeJSON(w, http.StatusOK, resp)
}
