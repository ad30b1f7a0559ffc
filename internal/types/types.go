package types

// ProjectIdea is the immutable input of one generation request.
type ProjectIdea struct {
	Text                string `json:"text"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

// Contributor is identified by name only; the name is the join key used by
// assignments.
type Contributor struct {
	Name      string   `json:"name"`
	Expertise []string `json:"expertise"`
}

type Complexity string

const (
	ComplexityLow      Complexity = "Low"
	ComplexityMedium   Complexity = "Medium"
	ComplexityHigh     Complexity = "High"
	ComplexityVeryHigh Complexity = "Very High"
)

type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// Interpretation is the structured project brief expanded from the raw idea.
// Produced once per run and never mutated afterwards.
type Interpretation struct {
	Title                 string     `json:"title"`
	Description           string     `json:"description"`
	Objectives            []string   `json:"objectives"`
	ScopeAssumptions      []string   `json:"scope_assumptions"`
	TechnicalRequirements []string   `json:"technical_requirements"`
	SuccessCriteria       []string   `json:"success_criteria"`
	EstimatedDuration     string     `json:"estimated_duration"`
	Complexity            Complexity `json:"complexity"`
	TechStack             []string   `json:"tech_stack"`
	TargetAudience        string     `json:"target_audience"`
	BusinessValue         string     `json:"business_value"`
}

type Task struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	RequiredExpertise []string `json:"required_expertise"`
	EstimatedHours    float64  `json:"estimated_hours"`
	Priority          Priority `json:"priority"`
	Parallelizable    bool     `json:"parallelizable"`
	Dependencies      []string `json:"dependencies"`
}

type Milestone struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	DurationWeeks int      `json:"duration_weeks"`
	Dependencies  []string `json:"dependencies"`
	Deliverables  []string `json:"deliverables"`
	Tasks         []Task   `json:"tasks"`
}

// Assignment binds a task to a contributor over an inclusive 1-based week
// range. TaskID and Assignee are free-text references; Verify reports the
// dangling ones.
type Assignment struct {
	TaskID             string `json:"task_id"`
	Assignee           string `json:"assignee"`
	StartWeek          int    `json:"start_week"`
	EndWeek            int    `json:"end_week"`
	Rationale          string `json:"rationale"`
	CollaborationNotes string `json:"collaboration_notes,omitempty"`
}

// Schedule is the assignment stage output.
type Schedule struct {
	Assignments          []Assignment        `json:"assignments"`
	WeeklySchedule       map[string][]string `json:"weekly_schedule"`
	WorkloadDistribution map[string]float64  `json:"workload_distribution"`
}

// Artifacts is the fixed bundle of long-form documents.
type Artifacts struct {
	Readme             string `json:"readme"`
	PaperDraft         string `json:"paper_draft"`
	CodeStructureGuide string `json:"code_structure_guide"`
	APIDocumentation   string `json:"api_documentation"`
	DeploymentGuide    string `json:"deployment_guide"`
	TestingStrategy    string `json:"testing_strategy"`
}

// Plan aggregates everything one generation request produces.
type Plan struct {
	Interpretation Interpretation `json:"interpretation"`
	Milestones     []Milestone    `json:"milestones"`
	Schedule       Schedule       `json:"schedule"`
	Artifacts      Artifacts      `json:"artifacts"`
}

// IntegrityFinding reports a dangling cross-reference between assignments
// and tasks or contributors. Findings are informational; the plan is kept.
type IntegrityFinding struct {
	Kind    string `json:"kind"` // "unknown_task" | "unknown_assignee"
	TaskID  string `json:"task_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}
