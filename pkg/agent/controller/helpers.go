package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/inquest/pkg/agent"
)

// collectResponse performs one LLM call and drains the chunk stream into a
// full response. An ErrorChunk or a completely empty stream is reported as
// an error; the iteration deadline surfaces through ctx.
func collectResponse(ctx context.Context, client agent.LLMClient, input *agent.GenerateInput) (*agent.LLMResponse, error) {
	// Derive a cancellable context so the producer goroutine is always
	// cleaned up when we return early on an ErrorChunk.
	llmCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, err := client.Generate(llmCtx, input)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}

	var sb strings.Builder
	var usage *agent.TokenUsage
	for {
		select {
		case chunk, ok := <-ch:
			if !ok {
				return &agent.LLMResponse{Text: sb.String(), Usage: usage}, nil
			}
			switch c := chunk.(type) {
			case *agent.TextChunk:
				sb.WriteString(c.Content)
			case *agent.UsageChunk:
				usage = &agent.TokenUsage{
					InputTokens:  c.InputTokens,
					OutputTokens: c.OutputTokens,
					TotalTokens:  c.TotalTokens,
				}
			case *agent.ErrorChunk:
				return nil, fmt.Errorf("LLM error: %s", c.Message)
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("LLM call aborted: %w", ctx.Err())
		}
	}
}

// isTimeoutError checks if an error is a context deadline timeout.
// Used for consecutive timeout tracking. Only matches errors that wrap
// context.DeadlineExceeded — callers propagate the original error chain.
func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// generateCallID creates a unique ID for a tool call.
func generateCallID() string {
	return uuid.New().String()
}

// failedResult creates the generic non-resumable failure after the
// consecutive-timeout circuit breaker trips.
func failedResult(state *agent.IterationState, totalUsage agent.TokenUsage) *agent.ExecutionResult {
	return &agent.ExecutionResult{
		Status: agent.ExecutionStatusFailed,
		Error: fmt.Errorf("aborted after %d consecutive timeouts (iteration %d/%d): %s",
			state.ConsecutiveTimeoutFailures, state.CurrentIteration, state.MaxIterations, state.LastErrorMessage),
		TokensUsed: totalUsage,
	}
}
