package plan

// RepairPlan is the normalized, bounded repair plan returned to the
// frontend and attached to a session. It is always safe to render:
// every field is defaulted, every step has a non-empty command, and
// free-text fields are length-capped.
type RepairPlan struct {
	Software             string       `json:"software"`
	Issue                string       `json:"issue"`
	Summary              string       `json:"summary"`
	Steps                []RepairStep `json:"steps"`
	EstimatedTimeMinutes int          `json:"estimated_time_minutes"`
	NeedsReboot          bool         `json:"needs_reboot"`
}

// RepairStep is a single repair instruction.
type RepairStep struct {
	Description  string `json:"description"`
	Command      string `json:"command"`
	RequiresSudo bool   `json:"requires_sudo"`
}

const (
	maxSteps              = 6
	maxDescriptionLen     = 300
	maxCommandLen         = 500
	defaultTimeMinutes    = 10
	errorTimeMinutes      = 5
	defaultSoftware       = "Unknown"
	defaultSummary        = "Repair steps"
	defaultStepDesc       = "No description"
	placeholderStepDesc   = "No repair steps generated"
	placeholderStepCmd    = "echo No steps available"
	parseFailureSummary   = "Failed to parse AI response"
	parseFailureStepDesc  = "AI returned invalid format"
	parseFailureStepCmd   = "echo Invalid response"
	serviceErrorSummary   = "AI service error"
	serviceErrorStepCmd   = "echo AI error occurred"
)
