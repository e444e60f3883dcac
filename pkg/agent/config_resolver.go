package agent

import (
	"fmt"

	"github.com/codeready-toolchain/inquest/pkg/config"
)

// ResolveAgentConfig flattens the configuration hierarchy for one branch:
// system defaults, then the agent definition, then per-stage overrides
// (later values win). The result is self-contained — controllers never
// consult the hierarchy again.
func ResolveAgentConfig(
	cfg *config.Config,
	stageConfig *config.StageConfig,
	agentConfig config.StageAgentConfig,
) (*ResolvedAgentConfig, error) {
	if stageConfig == nil {
		return nil, fmt.Errorf("stage configuration cannot be nil")
	}

	agentDef, err := cfg.GetAgent(agentConfig.Name)
	if err != nil {
		return nil, fmt.Errorf("agent %q not found: %w", agentConfig.Name, err)
	}

	// Resolve LLM provider (stage-agent > agent-def > defaults)
	providerName := cfg.Defaults.LLMProvider
	if agentDef.LLMProvider != "" {
		providerName = agentDef.LLMProvider
	}
	if agentConfig.LLMProvider != "" {
		providerName = agentConfig.LLMProvider
	}
	provider, err := cfg.GetLLMProvider(providerName)
	if err != nil {
		return nil, fmt.Errorf("LLM provider %q not found: %w", providerName, err)
	}

	// Resolve max iterations (stage-agent > agent-def > defaults)
	maxIter := cfg.Defaults.ResolvedMaxIterations()
	if agentDef.MaxIterations != nil {
		maxIter = *agentDef.MaxIterations
	}
	if agentConfig.MaxIterations != nil {
		maxIter = *agentConfig.MaxIterations
	}
	if maxIter <= 0 {
		return nil, fmt.Errorf("agent %q resolved max iterations must be positive, got %d", agentConfig.Name, maxIter)
	}

	// Resolve iteration timeout (agent-def > defaults)
	iterTimeout := cfg.Defaults.ResolvedIterationTimeout()
	if agentDef.IterationTimeout != nil {
		iterTimeout = agentDef.IterationTimeout.Std()
	}

	return &ResolvedAgentConfig{
		AgentName:          agentConfig.Name,
		LLMProvider:        provider,
		LLMProviderName:    providerName,
		MaxIterations:      maxIter,
		IterationTimeout:   iterTimeout,
		MCPServers:         append([]string(nil), agentDef.MCPServers...),
		CustomInstructions: agentDef.CustomInstructions,
	}, nil
}
