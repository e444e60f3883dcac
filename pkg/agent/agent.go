// Package agent provides the core types for inquest investigations.
// An investigation drives an LLM through a bounded reason/act loop,
// optionally calling MCP tools, until it produces a final analysis or
// has to hand back control.
package agent

// ExecutionStatus represents the terminal status of one investigation run.
type ExecutionStatus string

const (
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusPaused    ExecutionStatus = "paused"
	ExecutionStatusTimedOut  ExecutionStatus = "timed_out"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// IsTerminalSuccess reports whether the status counts as a success for
// stage aggregation purposes.
func (s ExecutionStatus) IsTerminalSuccess() bool {
	return s == ExecutionStatusCompleted
}

// ExecutionResult is the terminal outcome of one controller run.
// Results are immutable once produced; persistence is the caller's concern.
type ExecutionResult struct {
	Status ExecutionStatus

	// ResultSummary is the full last assistant message on completion,
	// kept intact for downstream consumers.
	ResultSummary string

	// FinalAnalysis is the user-facing extract of the final answer.
	FinalAnalysis string

	// PausedConversation carries the full conversation when Status is
	// Paused, and must be nil otherwise. It is the only state the caller
	// needs to persist to resume the run.
	PausedConversation *Conversation

	Error      error
	TokensUsed TokenUsage
}

// ErrorMessage returns the error text, or "" when the run succeeded.
func (r *ExecutionResult) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Error()
}

// TokenUsage aggregates token consumption across multiple LLM calls.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Add accumulates usage from a single LLM call.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}
