package config

import "fmt"

// Config is the fully-loaded, validated engine configuration.
type Config struct {
	Defaults          Defaults
	Agents            *AgentRegistry
	Stages            map[string]*StageConfig
	LLMProviders      *LLMProviderRegistry
	MCPServerRegistry *MCPServerRegistry
	Runbook           *RunbookConfig
	Slack             *SlackConfig
}

// GetStage retrieves a stage configuration by name.
func (c *Config) GetStage(name string) (*StageConfig, error) {
	stage, exists := c.Stages[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrStageNotFound, name)
	}
	return stage, nil
}

// GetLLMProvider retrieves an LLM provider configuration by name.
func (c *Config) GetLLMProvider(name string) (*LLMProviderConfig, error) {
	return c.LLMProviders.Get(name)
}

// GetAgent retrieves an agent configuration by name.
func (c *Config) GetAgent(name string) (*AgentConfig, error) {
	return c.Agents.Get(name)
}
