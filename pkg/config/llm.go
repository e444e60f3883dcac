package config

import (
	"fmt"
	"sync"
)

// LLMProviderConfig defines LLM provider configuration
type LLMProviderConfig struct {
	// Provider type (required)
	Type LLMProviderType `yaml:"type"`

	// Model name (required)
	Model string `yaml:"model"`

	// Environment variable name for API key
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// Optional custom endpoint/base URL (OpenAI-compatible gateways)
	BaseURL string `yaml:"base_url,omitempty"`

	// Sampling temperature (nil = provider default)
	Temperature *float64 `yaml:"temperature,omitempty"`

	// Maximum tokens per response (0 = provider default)
	MaxTokens int `yaml:"max_tokens,omitempty"`
}

// Validate checks required fields.
func (c *LLMProviderConfig) Validate(name string) error {
	if c.Type == "" {
		return NewValidationError("llm_provider", name, "type", ErrMissingRequiredField)
	}
	if !c.Type.IsValid() {
		return NewValidationError("llm_provider", name, "type", ErrInvalidValue)
	}
	if c.Model == "" {
		return NewValidationError("llm_provider", name, "model", ErrMissingRequiredField)
	}
	return nil
}

// LLMProviderRegistry stores LLM provider configurations in memory with thread-safe access
type LLMProviderRegistry struct {
	providers map[string]*LLMProviderConfig
	mu        sync.RWMutex
}

// NewLLMProviderRegistry creates a new LLM provider registry
func NewLLMProviderRegistry(providers map[string]*LLMProviderConfig) *LLMProviderRegistry {
	// Defensive copy to prevent external mutation
	copied := make(map[string]*LLMProviderConfig, len(providers))
	for k, v := range providers {
		copied[k] = v
	}
	return &LLMProviderRegistry{
		providers: copied,
	}
}

// Get retrieves an LLM provider configuration by name (thread-safe)
func (r *LLMProviderRegistry) Get(name string) (*LLMProviderConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrLLMProviderNotFound, name)
	}
	return provider, nil
}

// Has reports whether a provider is registered (thread-safe)
func (r *LLMProviderRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.providers[name]
	return exists
}

// Names returns all registered provider names (thread-safe)
func (r *LLMProviderRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
