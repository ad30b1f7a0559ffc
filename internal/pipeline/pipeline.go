package pipeline

import (
	"context"

	"github.com/ahmadnish/lets-vibe/internal/llm"
	t "github.com/ahmadnish/lets-vibe/internal/types"
)

// Pipeline chains the four generation stages. Each stage is one structured
// completion call; any stage error aborts the run and propagates unchanged.
type Pipeline struct {
	Interpret *Interpret
	Plan      *Plan
	Assign    *Assign
	Artifacts *GenerateArtifacts
}

func New(client llm.Client) *Pipeline {
	return &Pipeline{
		Interpret: &Interpret{LLM: client},
		Plan:      &Plan{LLM: client},
		Assign:    &Assign{LLM: client},
		Artifacts: &GenerateArtifacts{LLM: client},
	}
}

// Run executes interpret -> plan -> assign -> artifacts.
func (p *Pipeline) Run(ctx context.Context, idea t.ProjectIdea, contributors []t.Contributor) (t.Plan, []t.IntegrityFinding, error) {
	brief, err := p.Interpret.Run(ctx, idea)
	if err != nil {
		return t.Plan{}, nil, err
	}
	milestones, err := p.Plan.Run(ctx, brief)
	if err != nil {
		return t.Plan{}, nil, err
	}
	schedule, err := p.Assign.Run(ctx, milestones, contributors, idea.SpecialInstructions)
	if err != nil {
		return t.Plan{}, nil, err
	}
	artifacts, err := p.Artifacts.Run(ctx, brief, milestones, schedule, idea)
	if err != nil {
		return t.Plan{}, nil, err
	}
	plan := t.Plan{
		Interpretation: brief,
		Milestones:     milestones,
		Schedule:       schedule,
		Artifacts:      artifacts,
	}
	return plan, Verify(milestones, schedule, contributors), nil
}
