package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/ahmadnish/lets-vibe/internal/archive"
	"github.com/ahmadnish/lets-vibe/internal/knowledge"
	"github.com/ahmadnish/lets-vibe/internal/pipeline"
	"github.com/ahmadnish/lets-vibe/internal/publish"
	"github.com/ahmadnish/lets-vibe/internal/runlog"
	t "github.com/ahmadnish/lets-vibe/internal/types"
)

// GenerateHandler runs the four-stage pipeline and the two publish steps.
type GenerateHandler struct {
	pipeline  *pipeline.Pipeline
	github    *publish.GitHubClient
	notion    *publish.NotionClient
	archive   *archive.S3Store
	knowledge *knowledge.Store
	runLog    *runlog.Log
}

func NewGenerateHandler(
	p *pipeline.Pipeline,
	github *publish.GitHubClient,
	notion *publish.NotionClient,
	archiveStore *archive.S3Store,
	kb *knowledge.Store,
	runLog *runlog.Log,
) *GenerateHandler {
	return &GenerateHandler{
		pipeline:  p,
		github:    github,
		notion:    notion,
		archive:   archiveStore,
		knowledge: kb,
		runLog:    runLog,
	}
}

type generateResponse struct {
	RunID     string               `json:"run_id"`
	Title     string               `json:"title"`
	Plan      t.Plan               `json:"plan"`
	Integrity []t.IntegrityFinding `json:"integrity,omitempty"`
	GitHub    publish.Result       `json:"github"`
	Notion    publish.Result       `json:"notion"`
	PlanURL   string               `json:"plan_url,omitempty"`
}

func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
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
	ctx := r.Context()
	idea := t.ProjectIdea{Text: req.ProjectIdea, SpecialInstructions: req.SpecialInstructions}

	h.runLog.Append(runID, "pipeline", "starting plan generation")
	plan, findings, err := h.pipeline.Run(ctx, idea, req.Contributors)
	if err != nil {
		h.runLog.Append(runID, "pipeline", "generation failed: "+err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.runLog.Append(runID, "pipeline", "plan generated: "+plan.Interpretation.Title)
	h.learn(plan)

	resp := generateResponse{
		RunID:     runID,
		Title:     plan.Interpretation.Title,
		Plan:      plan,
		Integrity: findings,
	}
	resp.GitHub, resp.Notion = h.publishBoth(ctx, runID, plan)

	if h.archive != nil {
		if err := h.archive.PutPlan(ctx, runID, plan); err != nil {
			log.Printf("archive plan (%s): %v", runID, err)
		} else if url, err := h.archive.PlanURL(ctx, runID); err == nil {
			resp.PlanURL = url
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// publishBoth runs the two publish steps sequentially; each is individually
// caught so one failing never prevents attempting the other.
func (h *GenerateHandler) publishBoth(ctx context.Context, runID string, plan t.Plan) (gh, nt publish.Result) {
	gh = publish.Result{OK: false, Error: "github publishing not configured"}
	if h.github != nil && h.github.Available() {
		url, err := h.github.PublishRepo(ctx, plan.Interpretation.Title, plan.Interpretation.Description, publish.ScaffoldFiles(plan))
		if err != nil {
			log.Printf("github publish (%s): %v", runID, err)
			h.runLog.Append(runID, "publish", "github publish failed: "+err.Error())
			gh = publish.Failure(err)
		} else {
			h.runLog.Append(runID, "publish", "github repository created")
			gh = publish.Success(url)
		}
	}

	nt = publish.Result{OK: false, Error: "notion publishing not configured"}
	if h.notion != nil && h.notion.Available() {
		url, err := h.notion.PublishPlan(ctx, plan)
		if err != nil {
			log.Printf("notion publish (%s): %v", runID, err)
			h.runLog.Append(runID, "publish", "notion publish failed: "+err.Error())
			nt = publish.Failure(err)
		} else {
			h.runLog.Append(runID, "publish", "notion page created")
			nt = publish.Success(url)
		}
	}
	return gh, nt
}

// learn feeds the generated plan back into the knowledge store.
func (h *GenerateHandler) learn(plan t.Plan) {
	if h.knowledge == nil {
		return
	}
	for _, tech := range plan.Interpretation.TechStack {
		_, _ = h.knowledge.Learn(knowledge.KindTechnology, map[string]string{
			"technology": tech,
			"context":    plan.Interpretation.Title,
		})
	}
	_, _ = h.knowledge.Learn(knowledge.KindPattern, map[string]any{
		"complexity": plan.Interpretation.Complexity,
		"milestones": len(plan.Milestones),
	})
}
