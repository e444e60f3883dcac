package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// InquestYAMLConfig represents the complete inquest.yaml file structure
type InquestYAMLConfig struct {
	MCPServers map[string]*MCPServerConfig `yaml:"mcp_servers"`
	Agents     map[string]*AgentConfig     `yaml:"agents"`
	Stages     map[string]*StageConfig     `yaml:"stages"`
	Defaults   *Defaults                   `yaml:"defaults"`
	Runbook    *RunbookConfig              `yaml:"runbook"`
	Slack      *SlackConfig                `yaml:"slack"`
}

// LLMProvidersYAMLConfig represents the complete llm-providers.yaml file structure
type LLMProvidersYAMLConfig struct {
	LLMProviders map[string]*LLMProviderConfig `yaml:"llm_providers"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
func Initialize(configDir string) (*Config, error) {
	mainPath := filepath.Join(configDir, "inquest.yaml")
	providersPath := filepath.Join(configDir, "llm-providers.yaml")

	main, err := loadMainConfig(mainPath)
	if err != nil {
		return nil, err
	}

	providers, err := loadProvidersConfig(providersPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Agents:            NewAgentRegistry(main.Agents),
		Stages:            main.Stages,
		LLMProviders:      NewLLMProviderRegistry(providers),
		MCPServerRegistry: NewMCPServerRegistry(main.MCPServers),
		Runbook:           main.Runbook,
		Slack:             main.Slack,
	}
	if main.Defaults != nil {
		cfg.Defaults = *main.Defaults
	}
	if cfg.Stages == nil {
		cfg.Stages = map[string]*StageConfig{}
	}
	// Stage names come from the map keys
	for name, s := range cfg.Stages {
		if s != nil && s.Name == "" {
			s.Name = name
		}
	}

	if err := validate(cfg, main, providers); err != nil {
		return nil, err
	}

	slog.Info("Configuration loaded",
		"agents", len(main.Agents),
		"stages", len(main.Stages),
		"mcp_servers", len(main.MCPServers),
		"llm_providers", len(providers),
	)
	return cfg, nil
}

func loadMainConfig(path string) (*InquestYAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewLoadError(path, ErrConfigNotFound)
		}
		return nil, NewLoadError(path, err)
	}

	var main InquestYAMLConfig
	if err := yaml.Unmarshal(ExpandEnv(data), &main); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}
	return &main, nil
}

func loadProvidersConfig(path string) (map[string]*LLMProviderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewLoadError(path, ErrConfigNotFound)
		}
		return nil, NewLoadError(path, err)
	}

	var parsed LLMProvidersYAMLConfig
	if err := yaml.Unmarshal(ExpandEnv(data), &parsed); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}
	return parsed.LLMProviders, nil
}

// validate cross-checks registries: every agent's provider and MCP server
// references must resolve, every stage must reference registered agents.
func validate(cfg *Config, main *InquestYAMLConfig, providers map[string]*LLMProviderConfig) error {
	for name, p := range providers {
		if err := p.Validate(name); err != nil {
			return err
		}
	}
	for id, s := range main.MCPServers {
		if err := s.Validate(id); err != nil {
			return err
		}
	}
	for name, a := range main.Agents {
		if a.LLMProvider != "" && !cfg.LLMProviders.Has(a.LLMProvider) {
			return NewValidationError("agent", name, "llm_provider", ErrInvalidReference)
		}
		for _, serverID := range a.MCPServers {
			if !cfg.MCPServerRegistry.Has(serverID) {
				return NewValidationError("agent", name, "mcp_servers", ErrInvalidReference)
			}
		}
	}
	if cfg.Defaults.LLMProvider != "" && !cfg.LLMProviders.Has(cfg.Defaults.LLMProvider) {
		return NewValidationError("defaults", "defaults", "llm_provider", ErrInvalidReference)
	}
	if cfg.Defaults.SuccessPolicy != "" && !cfg.Defaults.SuccessPolicy.IsValid() {
		return NewValidationError("defaults", "defaults", "success_policy", ErrInvalidValue)
	}
	for _, s := range main.Stages {
		if err := s.Validate(cfg.Agents); err != nil {
			return err
		}
	}
	return nil
}
