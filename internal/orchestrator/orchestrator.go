package orchestrator

import (
	"context"
	"fmt"

	"github.com/ahmadnish/lets-vibe/internal/agents"
	"github.com/ahmadnish/lets-vibe/internal/jsonutil"
	"github.com/ahmadnish/lets-vibe/internal/llm"
	"github.com/ahmadnish/lets-vibe/internal/llmtool"
	"github.com/ahmadnish/lets-vibe/internal/runlog"
	t "github.com/ahmadnish/lets-vibe/internal/types"
	"github.com/ahmadnish/lets-vibe/internal/websearch"
)

// Phase names, strictly sequential. There are no backward transitions,
// retries, or rollbacks.
const (
	PhaseAnalysis   = "analysis"
	PhaseResearch   = "research"
	PhaseGeneration = "generation"
	PhaseValidation = "validation"
	PhaseDone       = "done"
)

var analysisPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Assess a project idea and direct the research that should precede plan generation.",
	Background: "The returned lists are executed verbatim by the research phase; emit only work worth doing for this specific idea.",
	OutputFields: []llmtool.PromptField{
		{Name: "complexity", Type: "string", Required: true, Description: "One of: Low, Medium, High, Very High."},
		{Name: "research_topics", Type: "[]string", Required: true, Description: "Knowledge domains worth researching; empty if none."},
		{Name: "search_queries", Type: "[]string", Required: true, Description: "Literal web search query strings to run; empty if none."},
		{Name: "validation_focus", Type: "[]string", Required: true, Description: "Aspects validation should weigh most."},
		{Name: "reasoning", Type: "string", Required: true},
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetCautious()))

var generationPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Generate a complete project plan in one shot, grounded in prior analysis and research.",
	Background: "Unlike the discrete pipeline, this call emits interpretation, milestones, schedule, and artifacts together.",
	OutputFields: []llmtool.PromptField{
		{Name: "interpretation", Type: "Interpretation", Required: true,
			Description: "{title, description, objectives, scope_assumptions, technical_requirements, success_criteria, estimated_duration, complexity, tech_stack, target_audience, business_value}."},
		{Name: "milestones", Type: "[]Milestone", Required: true,
			Description: "4-7 milestones, each with 3-8 tasks carrying unique \"T<n>\" ids."},
		{Name: "schedule", Type: "Schedule", Required: true,
			Description: "{assignments, weekly_schedule, workload_distribution}; assignees must be provided contributor names."},
		{Name: "artifacts", Type: "Artifacts", Required: true,
			Description: "{readme, paper_draft, code_structure_guide, api_documentation, deployment_guide, testing_strategy}."},
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetNoInvent()))

// Analysis is the phase-1 output; its lists are treated as directives.
type Analysis struct {
	Complexity      t.Complexity `json:"complexity"`
	ResearchTopics  []string     `json:"research_topics"`
	SearchQueries   []string     `json:"search_queries"`
	ValidationFocus []string     `json:"validation_focus"`
	Reasoning       string       `json:"reasoning"`
}

// Result is the full orchestrated outcome.
type Result struct {
	Plan        t.Plan                     `json:"plan"`
	Analysis    Analysis                   `json:"analysis"`
	Research    *agents.ResearchReport     `json:"research,omitempty"`
	Searches    *websearch.BatchResponse   `json:"searches,omitempty"`
	Validation  *agents.ValidationReport   `json:"validation"`
	Enhancement *agents.EnhancementReport  `json:"enhancement,omitempty"`
	Confidence  float64                    `json:"confidence"`
	Log         []string                   `json:"log"`
}

// Orchestrator brackets plan generation with analysis, research, validation,
// and conditional enhancement.
type Orchestrator struct {
	LLM         llm.Client
	Search      *websearch.Client
	Research    *agents.Research
	Validation  *agents.Validation
	Enhancement *agents.Enhancement
	RunLog      *runlog.Log
}

func New(client llm.Client, search *websearch.Client, log *runlog.Log) *Orchestrator {
	return &Orchestrator{
		LLM:         client,
		Search:      search,
		Research:    agents.NewResearch(client, search),
		Validation:  agents.NewValidation(client, search),
		Enhancement: agents.NewEnhancement(client),
		RunLog:      log,
	}
}

// Run executes the four phases in order. Any phase error aborts the run and
// propagates to the caller.
func (o *Orchestrator) Run(ctx context.Context, runID string, idea t.ProjectIdea, contributors []t.Contributor) (*Result, error) {
	result := &Result{}

	// Phase 1: analysis.
	o.log(runID, PhaseAnalysis, "analyzing idea complexity and research needs")
	actx := llm.WithStage(ctx, "orchestrator-analysis")
	raw, err := o.LLM.GenerateJSON(actx, analysisPrompt, map[string]any{
		"project_idea":         idea.Text,
		"special_instructions": idea.SpecialInstructions,
		"contributors":         contributors,
	})
	if err != nil {
		return nil, err
	}
	if err := jsonutil.UnmarshalRaw(raw, &result.Analysis); err != nil {
		return nil, fmt.Errorf("orchestrator: invalid analysis output: %w", err)
	}
	o.log(runID, PhaseAnalysis, fmt.Sprintf("analysis complete: complexity=%s topics=%d queries=%d",
		result.Analysis.Complexity, len(result.Analysis.ResearchTopics), len(result.Analysis.SearchQueries)))

	// Phase 2: research, iterating exactly over the analysis directives.
	if len(result.Analysis.SearchQueries) > 0 {
		o.log(runID, PhaseResearch, fmt.Sprintf("running %d research searches", len(result.Analysis.SearchQueries)))
		batch, err := o.Search.SearchMany(ctx, result.Analysis.SearchQueries, websearch.Options{})
		if err != nil {
			return nil, err
		}
		result.Searches = &batch
	}
	if len(result.Analysis.ResearchTopics) > 0 {
		o.log(runID, PhaseResearch, "running domain research")
		report, err := o.Research.Run(ctx, idea.Text, result.Analysis)
		if err != nil {
			return nil, err
		}
		result.Research = report
		o.log(runID, PhaseResearch, fmt.Sprintf("research synthesis: risk=%s confidence=%s",
			report.RiskLevel, report.Confidence))
	}

	// Phase 3: single-shot generation with full context.
	o.log(runID, PhaseGeneration, "generating plan with research context")
	gctx := llm.WithStage(ctx, "orchestrator-generation")
	raw, err = o.LLM.GenerateJSON(gctx, generationPrompt, map[string]any{
		"project_idea":         idea.Text,
		"special_instructions": idea.SpecialInstructions,
		"contributors":         contributors,
		"analysis":             result.Analysis,
		"research":             result.Research,
		"searches":             result.Searches,
	})
	if err != nil {
		return nil, err
	}
	if err := jsonutil.UnmarshalRaw(raw, &result.Plan); err != nil {
		return nil, fmt.Errorf("orchestrator: invalid generated plan: %w", err)
	}
	o.log(runID, PhaseGeneration, fmt.Sprintf("plan generated: %q", result.Plan.Interpretation.Title))

	// Phase 4: validation, then enhancement only when the score demands it.
	o.log(runID, PhaseValidation, "running validation against the generated plan")
	validation, err := o.Validation.Run(ctx, result.Plan, result.Plan.Interpretation.Title)
	if err != nil {
		return nil, err
	}
	result.Validation = validation
	o.log(runID, PhaseValidation, fmt.Sprintf("validation score %.1f (improvement needed: %v)",
		validation.OverallScore, validation.ImprovementNeeded))

	if validation.ImprovementNeeded {
		o.log(runID, PhaseValidation, "running enhancement pass")
		enhancement, err := o.Enhancement.Run(ctx, result.Plan, validation)
		if err != nil {
			return nil, err
		}
		result.Enhancement = enhancement
		result.Plan = enhancement.Plan
		o.log(runID, PhaseValidation, fmt.Sprintf("enhancement applied: self-reported improvement %.1f",
			enhancement.ImprovementScore))
	}

	o.log(runID, PhaseDone, "orchestration complete")
	result.Log = o.RunLog.Lines(runID)
	result.Confidence = runlog.Confidence(result.Log)
	return result, nil
}

func (o *Orchestrator) log(runID, phase, message string) {
	if o.RunLog != nil {
		o.RunLog.Append(runID, phase, message)
	}
}
