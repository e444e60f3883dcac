// Package stage runs one investigation stage: N parallel branches over the
// same alert, policy-driven aggregation, and a synthesis pass that combines
// the branch analyses. Supports partial resume of paused branches.
package stage

import (
	"time"

	"github.com/codeready-toolchain/inquest/pkg/agent"
)

// BranchMetadata identifies one branch of a parallel stage.
type BranchMetadata struct {
	// Display name. Matches the agent name for multi-agent stages;
	// replicas get "{Base}-1".."{Base}-N".
	Name string

	// Launch index (0-based). Result ordering follows launch ordering.
	Index int

	// Resolved provider key and model, carried for reporting.
	LLMProvider string
	Model       string

	StartedAt   time.Time
	CompletedAt time.Time
}

// BranchResult is one branch's outcome plus its identity.
type BranchResult struct {
	Metadata  BranchMetadata
	Execution *agent.ExecutionResult
}

// Result is the aggregated outcome of one stage run.
type Result struct {
	StageName string

	// Aggregate status per the stage's success policy. Paused if any
	// branch paused, regardless of policy.
	Status agent.ExecutionStatus

	// Set when Status is not Completed. Describes every non-successful
	// branch for multi-branch stages.
	Error error

	// All branch results in launch order, always populated even on
	// failure or pause.
	Branches []BranchResult

	// Combined analysis. Produced by synthesis for multi-branch stages,
	// taken directly from the branch for single-branch stages. Empty
	// unless Status is Completed.
	FinalAnalysis string
}

// PausedBranches returns the launch indexes of branches that paused.
func (r *Result) PausedBranches() []int {
	var paused []int
	for _, b := range r.Branches {
		if b.Execution != nil && b.Execution.Status == agent.ExecutionStatusPaused {
			paused = append(paused, b.Metadata.Index)
		}
	}
	return paused
}

// Input carries the per-run parameters for a stage execution.
type Input struct {
	SessionID string
	StageName string
	AlertType string

	// Opaque alert text. Not parsed.
	AlertData string

	// Runbook content for the alert, already fetched by the caller.
	Runbook string
}
