package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codeready-toolchain/inquest/pkg/agent"
	"github.com/codeready-toolchain/inquest/pkg/config"
)

// Compile-time check that ToolExecutor implements agent.ToolExecutor.
var _ agent.ToolExecutor = (*ToolExecutor)(nil)

// ResultMasker scrubs sensitive data from tool result content before it
// enters agent conversations. Implemented by masking.Service.
type ResultMasker interface {
	MaskToolResult(content string, serverID string) string
}

// ToolExecutor implements agent.ToolExecutor backed by real MCP servers.
// Created per-branch by the Factory; owns its Client.
type ToolExecutor struct {
	client   *Client
	registry *config.MCPServerRegistry
	masker   ResultMasker // nil disables masking

	// Resolved list of server IDs this executor can access.
	serverIDs []string
}

// NewToolExecutor creates an executor for the given servers.
func NewToolExecutor(client *Client, registry *config.MCPServerRegistry, serverIDs []string, masker ResultMasker) *ToolExecutor {
	return &ToolExecutor{
		client:    client,
		registry:  registry,
		masker:    masker,
		serverIDs: serverIDs,
	}
}

// Execute runs a validated tool call via MCP. The server/tool split was
// already done by the response parser; this validates the call against the
// executor's configuration and the server's allow-list. Tool-level failures
// come back as IsError results, not Go errors (MCP convention).
func (e *ToolExecutor) Execute(ctx context.Context, call agent.ToolCall) (*agent.ToolResult, error) {
	if err := e.validateToolCall(call.Server, call.Tool); err != nil {
		return &agent.ToolResult{
			CallID:  call.ID,
			Server:  call.Server,
			Tool:    call.Tool,
			Content: err.Error(),
			IsError: true,
		}, nil
	}

	result, err := e.client.CallTool(ctx, call.Server, call.Tool, call.Parameters)
	if err != nil {
		return nil, fmt.Errorf("MCP tool execution failed for %s.%s: %w", call.Server, call.Tool, err)
	}

	content := extractTextContent(result)
	if e.masker != nil {
		content = e.masker.MaskToolResult(content, call.Server)
	}

	return &agent.ToolResult{
		CallID:  call.ID,
		Server:  call.Server,
		Tool:    call.Tool,
		Content: content,
		IsError: result.IsError,
	}, nil
}

// ListTools returns available tool definitions from all configured servers,
// honoring each server's allow-list. Partial results are returned when some
// servers fail.
func (e *ToolExecutor) ListTools(ctx context.Context) ([]agent.ToolDefinition, error) {
	var allTools []agent.ToolDefinition

	for _, serverID := range e.serverIDs {
		tools, err := e.client.ListTools(ctx, serverID)
		if err != nil {
			slog.Warn("Failed to list tools from MCP server",
				"server", serverID, "error", err)
			continue
		}

		allowed := e.allowedTools(serverID)
		for _, tool := range tools {
			if len(allowed) > 0 && !slices.Contains(allowed, tool.Name) {
				continue
			}
			allTools = append(allTools, agent.ToolDefinition{
				Server:           serverID,
				Name:             tool.Name,
				Description:      tool.Description,
				ParametersSchema: marshalSchema(tool.InputSchema),
			})
		}
	}

	if len(allTools) == 0 {
		return nil, nil
	}
	return allTools, nil
}

// Close releases resources (MCP transports, subprocesses).
func (e *ToolExecutor) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// validateToolCall checks the call against the executor's server list and
// the server's allow-list.
func (e *ToolExecutor) validateToolCall(serverID, toolName string) error {
	if !slices.Contains(e.serverIDs, serverID) {
		return fmt.Errorf(
			"MCP server %q is not available for this execution. "+
				"Available servers: %s", serverID, strings.Join(e.serverIDs, ", "))
	}

	allowed := e.allowedTools(serverID)
	if len(allowed) > 0 && !slices.Contains(allowed, toolName) {
		return fmt.Errorf(
			"tool %q is not available on server %q. "+
				"Available tools: %s", toolName, serverID, strings.Join(allowed, ", "))
	}
	return nil
}

// allowedTools returns the server's tool allow-list, or nil when all tools
// are permitted.
func (e *ToolExecutor) allowedTools(serverID string) []string {
	serverCfg, err := e.registry.Get(serverID)
	if err != nil {
		return nil
	}
	return serverCfg.AllowedTools
}

// extractTextContent extracts text from an MCP CallToolResult. Concatenates
// all TextContent items; non-text content is logged at debug level and skipped.
func extractTextContent(result *mcpsdk.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			parts = append(parts, tc.Text)
		} else {
			slog.Debug("MCP tool returned non-text content, skipping",
				"content_type", fmt.Sprintf("%T", c))
		}
	}
	return strings.Join(parts, "\n")
}

// marshalSchema serializes a tool's InputSchema to a JSON string.
func marshalSchema(schema any) string {
	if schema == nil {
		return ""
	}
	data, err := json.Marshal(schema)
	if err != nil {
		slog.Debug("Failed to marshal tool input schema", "error", err)
		return ""
	}
	return string(data)
}
