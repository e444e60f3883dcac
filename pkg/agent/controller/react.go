package controller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codeready-toolchain/inquest/pkg/agent"
)

// ReActController drives one investigation through the Reason + Act loop
// with text-based tool calling. It is stateless — all loop state lives in
// locals so concurrent branch runs cannot interfere.
type ReActController struct{}

// NewReActController creates a new ReAct controller.
func NewReActController() *ReActController {
	return &ReActController{}
}

// Run executes the iteration loop from a fresh conversation to a terminal
// ExecutionResult. See Resume for continuing a paused run.
//
// Returns (nil, error) only for infrastructure failures where no meaningful
// result exists (e.g., tools cannot be listed); agent-level failures are
// reported inside the result.
func (c *ReActController) Run(ctx context.Context, execCtx *agent.ExecutionContext) (*agent.ExecutionResult, error) {
	tools, err := execCtx.ToolExecutor.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	if execCtx.Strategy == nil {
		return nil, fmt.Errorf("Strategy is nil: cannot build opening conversation")
	}

	conversation := execCtx.Strategy.BuildConversation(execCtx, tools)
	return c.iterate(ctx, execCtx, conversation, tools)
}

// Resume continues a previously paused run from its serialized conversation.
// The iteration budget starts fresh; only conversation content persists
// across the pause.
func (c *ReActController) Resume(ctx context.Context, execCtx *agent.ExecutionContext, prior *agent.Conversation) (*agent.ExecutionResult, error) {
	if prior == nil || prior.Len() == 0 {
		return nil, fmt.Errorf("cannot resume: no prior conversation")
	}
	tools, err := execCtx.ToolExecutor.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return c.iterate(ctx, execCtx, prior, tools)
}

// iterate is the shared loop body for fresh and resumed runs.
func (c *ReActController) iterate(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	conversation *agent.Conversation,
	tools []agent.ToolDefinition,
) (*agent.ExecutionResult, error) {
	logger := slog.With(
		"session_id", execCtx.SessionID,
		"execution_id", execCtx.ExecutionID,
		"agent_name", execCtx.AgentName,
	)

	maxIter := execCtx.Config.MaxIterations
	totalUsage := agent.TokenUsage{}
	state := &agent.IterationState{MaxIterations: maxIter}
	toolSet := NewToolSet(tools)

	for iteration := 0; iteration < maxIter; iteration++ {
		state.CurrentIteration = iteration + 1

		// Circuit breaker: two consecutive timeout-classified failures
		// indicate a dependency unlikely to heal within the budget.
		if state.ShouldAbortOnTimeouts() {
			logger.Warn("Aborting on consecutive timeouts",
				"consecutive_timeouts", state.ConsecutiveTimeoutFailures,
				"iteration", state.CurrentIteration)
			return failedResult(state, totalUsage), nil
		}

		// Cancellation is observed between iterations, never by tearing
		// down an in-flight tool call.
		if r := mapCancellation(ctx, state, totalUsage); r != nil {
			return r, nil
		}

		// Each iteration gets an independent deadline.
		iterCtx, iterCancel := context.WithTimeout(ctx, execCtx.Config.IterationTimeout)

		resp, err := collectResponse(iterCtx, execCtx.LLMClient, &agent.GenerateInput{
			SessionID: execCtx.SessionID,
			Messages:  conversation.Messages,
			Config:    execCtx.Config.LLMProvider,
		})
		if err != nil {
			iterCancel()
			state.RecordFailure(err.Error(), isTimeoutError(err))
			logger.Warn("LLM call failed", "iteration", state.CurrentIteration, "error", err)
			conversation.Append(agent.RoleUser, FormatErrorObservation(err))
			continue
		}

		if resp.Usage != nil {
			totalUsage.Add(*resp.Usage)
		}
		conversation.Append(agent.RoleAssistant, resp.Text)

		// The call succeeded but produced nothing processable: drop the
		// broken assistant message (never show the model its own broken
		// output) and ask for the correct format instead of a generic error.
		if resp.Text == "" {
			conversation.DropLast()
			state.RecordFailure("empty LLM response", false)
			conversation.Append(agent.RoleUser, GetFormatCorrectionReminder())
			iterCancel()
			continue
		}

		parsed := Parse(resp.Text, toolSet)
		state.RecordSuccess()

		switch parsed.Type {
		case ActionFinalAnswer:
			iterCancel()
			return &agent.ExecutionResult{
				Status: agent.ExecutionStatusCompleted,
				// Full last assistant message, kept intact for downstream consumers
				ResultSummary: resp.Text,
				FinalAnalysis: execCtx.Strategy.ExtractSummary(parsed.FinalAnswer),
				TokensUsed:    totalUsage,
			}, nil

		case ActionTool:
			result, toolErr := execCtx.ToolExecutor.Execute(iterCtx, agent.ToolCall{
				ID:         generateCallID(),
				Server:     parsed.Server,
				Tool:       parsed.Tool,
				Parameters: parsed.Parameters,
			})
			if toolErr != nil {
				state.RecordFailure(toolErr.Error(), isTimeoutError(toolErr))
				logger.Warn("Tool call failed",
					"iteration", state.CurrentIteration,
					"tool", parsed.Server+"."+parsed.Tool,
					"error", toolErr)
				conversation.Append(agent.RoleUser, FormatToolErrorObservation(toolErr))
			} else {
				conversation.Append(agent.RoleUser, FormatObservation(result))
			}

		case ActionUnknownTool:
			conversation.Append(agent.RoleUser, FormatUnknownToolError(parsed.ErrorMessage, tools))

		default:
			// Malformed — the broken text stays visible for self-correction
			conversation.Append(agent.RoleUser, GetFormatErrorFeedback(parsed))
		}

		iterCancel()
	}

	// Budget exhausted without a final answer.
	if state.LastInteractionFailed {
		return &agent.ExecutionResult{
			Status: agent.ExecutionStatusFailed,
			Error: fmt.Errorf("max iterations (%d) reached with last interaction failed: %s",
				state.MaxIterations, state.LastErrorMessage),
			TokensUsed: totalUsage,
		}, nil
	}

	// The accumulated reasoning and observations are worth keeping:
	// pause, carrying the full conversation for a later resume.
	logger.Info("Pausing after iteration budget",
		"iterations", maxIter, "messages", conversation.Len())
	return &agent.ExecutionResult{
		Status:             agent.ExecutionStatusPaused,
		ResultSummary:      fmt.Sprintf("paused after %d iterations without a final answer", maxIter),
		PausedConversation: conversation,
		TokensUsed:         totalUsage,
	}, nil
}

// mapCancellation converts an expired or cancelled run context into the
// matching terminal result, or nil if the context is still active.
func mapCancellation(ctx context.Context, state *agent.IterationState, usage agent.TokenUsage) *agent.ExecutionResult {
	switch {
	case ctx.Err() == nil:
		return nil
	case ctx.Err() == context.DeadlineExceeded:
		return &agent.ExecutionResult{
			Status:     agent.ExecutionStatusTimedOut,
			Error:      fmt.Errorf("run timed out at iteration %d: %w", state.CurrentIteration, ctx.Err()),
			TokensUsed: usage,
		}
	default:
		return &agent.ExecutionResult{
			Status:     agent.ExecutionStatusCancelled,
			Error:      context.Canceled,
			TokensUsed: usage,
		}
	}
}
