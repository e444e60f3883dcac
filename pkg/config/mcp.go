package config

import (
	"fmt"
	"sync"
)

// TransportConfig defines how to reach an MCP server.
type TransportConfig struct {
	Type TransportType `yaml:"type"`

	// stdio transport
	Command string            `yaml:"command,omitempty"`
	Args    []string          `yaml:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`

	// http/sse transports
	URL         string   `yaml:"url,omitempty"`
	BearerToken string   `yaml:"bearer_token,omitempty"`
	Timeout     Duration `yaml:"timeout,omitempty"`
}

// MaskingPattern defines a regex-based masking pattern.
type MaskingPattern struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
	Description string `yaml:"description,omitempty"`
}

// MaskingConfig selects which masking patterns apply to a server's tool results.
type MaskingConfig struct {
	Enabled        bool             `yaml:"enabled"`
	PatternGroups  []string         `yaml:"pattern_groups,omitempty"`
	Patterns       []string         `yaml:"patterns,omitempty"`
	CustomPatterns []MaskingPattern `yaml:"custom_patterns,omitempty"`
}

// MCPServerConfig defines a tool server available to investigation agents.
type MCPServerConfig struct {
	// Human-readable description (rendered in tool catalogs)
	Description string `yaml:"description,omitempty"`

	// Server-specific guidance injected into agent system prompts
	Instructions string `yaml:"instructions,omitempty"`

	Transport TransportConfig `yaml:"transport"`

	// Optional allow-list of tool names. Empty means all tools.
	AllowedTools []string `yaml:"allowed_tools,omitempty"`

	// Optional masking applied to this server's tool results.
	DataMasking *MaskingConfig `yaml:"data_masking,omitempty"`
}

// Validate checks the server configuration.
func (c *MCPServerConfig) Validate(id string) error {
	if !c.Transport.Type.IsValid() {
		return NewValidationError("mcp_server", id, "transport.type", ErrInvalidValue)
	}
	switch c.Transport.Type {
	case TransportTypeStdio:
		if c.Transport.Command == "" {
			return NewValidationError("mcp_server", id, "transport.command", ErrMissingRequiredField)
		}
	case TransportTypeHTTP, TransportTypeSSE:
		if c.Transport.URL == "" {
			return NewValidationError("mcp_server", id, "transport.url", ErrMissingRequiredField)
		}
	}
	return nil
}

// MCPServerRegistry stores MCP server configurations in memory with thread-safe access
type MCPServerRegistry struct {
	servers map[string]*MCPServerConfig
	mu      sync.RWMutex
}

// NewMCPServerRegistry creates a new MCP server registry
func NewMCPServerRegistry(servers map[string]*MCPServerConfig) *MCPServerRegistry {
	copied := make(map[string]*MCPServerConfig, len(servers))
	for k, v := range servers {
		copied[k] = v
	}
	return &MCPServerRegistry{servers: copied}
}

// Get retrieves an MCP server configuration by ID (thread-safe)
func (r *MCPServerRegistry) Get(id string) (*MCPServerConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	server, exists := r.servers[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMCPServerNotFound, id)
	}
	return server, nil
}

// Has reports whether a server is registered (thread-safe)
func (r *MCPServerRegistry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.servers[id]
	return exists
}

// GetAll returns a snapshot of all registered servers (thread-safe)
func (r *MCPServerRegistry) GetAll() map[string]*MCPServerConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	copied := make(map[string]*MCPServerConfig, len(r.servers))
	for k, v := range r.servers {
		copied[k] = v
	}
	return copied
}

// IDs returns all registered server IDs (thread-safe)
func (r *MCPServerRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.servers))
	for id := range r.servers {
		ids = append(ids, id)
	}
	return ids
}
