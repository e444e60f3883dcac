package agent

import (
	"time"

	"github.com/codeready-toolchain/inquest/pkg/config"
)

// ExecutionContext carries all dependencies and state needed by a controller
// during one run. Created by the stage executor for each branch; everything
// mutable in it is branch-local.
type ExecutionContext struct {
	// Identity
	SessionID   string
	ExecutionID string
	AgentName   string
	AgentIndex  int

	// Alert data under investigation. Arbitrary text — not parsed,
	// not assumed to be JSON.
	AlertData string

	// Alert type (routing label from the caller)
	AlertType string

	// Runbook content for this alert, already fetched. Empty when no
	// runbook applies.
	Runbook string

	// Configuration (resolved from hierarchy)
	Config *ResolvedAgentConfig

	// Dependencies (injected by the stage executor)
	LLMClient    LLMClient
	ToolExecutor ToolExecutor

	// Strategy builds the opening conversation and extracts the user-facing
	// summary. Implemented in pkg/agent/prompt; interface here avoids an
	// agent↔prompt import cycle.
	Strategy Strategy
}

// Clone returns a copy of the context safe to hand to a concurrent branch.
// Shared read-only dependencies (clients, config) are carried by reference;
// everything the branch may mutate is value-copied.
func (c *ExecutionContext) Clone() *ExecutionContext {
	clone := *c
	if c.Config != nil {
		cfg := *c.Config
		if c.Config.MCPServers != nil {
			cfg.MCPServers = append([]string(nil), c.Config.MCPServers...)
		}
		clone.Config = &cfg
	}
	return &clone
}

// ResolvedAgentConfig is the fully-resolved configuration for one run.
// All hierarchy levels (defaults → stage → agent) have been applied.
type ResolvedAgentConfig struct {
	AgentName          string
	LLMProvider        *config.LLMProviderConfig
	LLMProviderName    string // resolved provider key, for branch metadata
	MaxIterations      int
	IterationTimeout   time.Duration
	MCPServers         []string
	CustomInstructions string
}

// Strategy parameterizes the controller for its run variants (investigation,
// synthesis). The loop body is identical across variants; only the opening
// message(s) and the summary extraction differ.
type Strategy interface {
	// BuildConversation builds the opening conversation for a fresh run.
	BuildConversation(execCtx *ExecutionContext, tools []ToolDefinition) *Conversation

	// ExtractSummary produces the user-facing analysis from the final
	// answer text.
	ExtractSummary(finalAnswer string) string
}
