package config

// SuccessPolicy defines success criteria for parallel stages
type SuccessPolicy string

const (
	// SuccessPolicyAll requires all branches to complete
	SuccessPolicyAll SuccessPolicy = "all"
	// SuccessPolicyAny requires at least one branch to complete (default)
	SuccessPolicyAny SuccessPolicy = "any"
)

// IsValid checks if the success policy is valid
func (p SuccessPolicy) IsValid() bool {
	return p == SuccessPolicyAll || p == SuccessPolicyAny
}

// ParallelType describes how a stage fans out branches
type ParallelType string

const (
	// ParallelTypeMultiAgent runs N distinct agent configurations (domain coverage)
	ParallelTypeMultiAgent ParallelType = "multi_agent"
	// ParallelTypeReplica runs N copies of one agent configuration (redundancy)
	ParallelTypeReplica ParallelType = "replica"
)

// TransportType defines MCP server transport types
type TransportType string

const (
	// TransportTypeStdio uses subprocess communication via stdin/stdout
	TransportTypeStdio TransportType = "stdio"
	// TransportTypeHTTP uses streamable HTTP JSON-RPC
	TransportTypeHTTP TransportType = "http"
	// TransportTypeSSE uses Server-Sent Events
	TransportTypeSSE TransportType = "sse"
)

// IsValid checks if the transport type is valid
func (t TransportType) IsValid() bool {
	return t == TransportTypeStdio || t == TransportTypeHTTP || t == TransportTypeSSE
}

// LLMProviderType defines supported LLM providers
type LLMProviderType string

const (
	// LLMProviderOpenAI covers OpenAI and OpenAI-compatible endpoints
	LLMProviderOpenAI LLMProviderType = "openai"
	// LLMProviderGoogle covers Google Gemini models
	LLMProviderGoogle LLMProviderType = "google"
	// LLMProviderAnthropic covers Anthropic Claude models
	LLMProviderAnthropic LLMProviderType = "anthropic"
)

// IsValid checks if the provider type is valid
func (t LLMProviderType) IsValid() bool {
	switch t {
	case LLMProviderOpenAI, LLMProviderGoogle, LLMProviderAnthropic:
		return true
	default:
		return false
	}
}
