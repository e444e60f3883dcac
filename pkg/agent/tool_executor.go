package agent

import (
	"context"
	"fmt"
)

// ToolDefinition describes a tool available to the LLM.
type ToolDefinition struct {
	Server           string // MCP server ID
	Name             string // Tool name within the server
	Description      string
	ParametersSchema string // JSON Schema
}

// FullName returns the canonical "server.tool" name used in prompts
// and parsed from model responses.
func (d ToolDefinition) FullName() string {
	return d.Server + "." + d.Name
}

// ToolCall represents a validated request to invoke one tool.
type ToolCall struct {
	ID         string
	Server     string
	Tool       string
	Parameters map[string]any
}

// ToolResult represents the output of a tool execution.
type ToolResult struct {
	CallID  string // Matches the ToolCall.ID
	Server  string
	Tool    string
	Content string // Tool output (text)
	IsError bool   // Whether the tool returned an error
}

// ToolExecutor abstracts tool invocation for iteration controllers.
// The real MCP-backed implementation is in pkg/mcp.
type ToolExecutor interface {
	// Execute runs a single tool call and returns the result.
	// Tool-level failures are reported via ToolResult.IsError; a Go error
	// means the call itself could not be made (transport, timeout).
	Execute(ctx context.Context, call ToolCall) (*ToolResult, error)

	// ListTools returns available tool definitions for the current execution.
	// Returns nil if no tools are configured.
	ListTools(ctx context.Context) ([]ToolDefinition, error)

	// Close releases resources (MCP transports, subprocesses).
	Close() error
}

// StubToolExecutor returns canned responses for testing and for runs
// with no tools bound (synthesis).
type StubToolExecutor struct {
	tools []ToolDefinition
}

// NewStubToolExecutor creates a stub executor with the given tool definitions.
func NewStubToolExecutor(tools []ToolDefinition) *StubToolExecutor {
	return &StubToolExecutor{tools: tools}
}

func (s *StubToolExecutor) Execute(_ context.Context, call ToolCall) (*ToolResult, error) {
	return &ToolResult{
		CallID:  call.ID,
		Server:  call.Server,
		Tool:    call.Tool,
		Content: fmt.Sprintf("[stub] Tool %q called with %d parameters", call.Server+"."+call.Tool, len(call.Parameters)),
		IsError: false,
	}, nil
}

func (s *StubToolExecutor) ListTools(_ context.Context) ([]ToolDefinition, error) {
	return s.tools, nil
}

func (s *StubToolExecutor) Close() error { return nil }
