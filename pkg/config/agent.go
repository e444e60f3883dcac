// Package config provides configuration management for the inquest engine,
// including agent, stage, MCP server, and LLM provider configurations.
package config

import (
	"fmt"
	"sync"
)

// AgentConfig defines a named investigation agent configuration.
type AgentConfig struct {
	// Human-readable description
	Description string `yaml:"description,omitempty"`

	// LLM provider name (falls back to defaults.llm_provider)
	LLMProvider string `yaml:"llm_provider,omitempty"`

	// MCP servers this agent uses
	MCPServers []string `yaml:"mcp_servers,omitempty"`

	// Custom instructions appended to the system prompt
	CustomInstructions string `yaml:"custom_instructions,omitempty"`

	// Max iterations for this agent (pauses when reached without a final answer)
	MaxIterations *int `yaml:"max_iterations,omitempty"`

	// Per-iteration timeout (falls back to defaults.iteration_timeout)
	IterationTimeout *Duration `yaml:"iteration_timeout,omitempty"`
}

// AgentRegistry stores agent configurations in memory with thread-safe access
type AgentRegistry struct {
	agents map[string]*AgentConfig
	mu     sync.RWMutex
}

// NewAgentRegistry creates a new agent registry
func NewAgentRegistry(agents map[string]*AgentConfig) *AgentRegistry {
	// Defensive copy to prevent external mutation
	copied := make(map[string]*AgentConfig, len(agents))
	for k, v := range agents {
		copied[k] = v
	}
	return &AgentRegistry{agents: copied}
}

// Get retrieves an agent configuration by name (thread-safe)
func (r *AgentRegistry) Get(name string) (*AgentConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, exists := r.agents[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return agent, nil
}

// Has reports whether an agent is registered (thread-safe)
func (r *AgentRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.agents[name]
	return exists
}
