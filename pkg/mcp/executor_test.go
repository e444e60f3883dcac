package mcp

import (
	"context"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/inquest/pkg/agent"
	"github.com/codeready-toolchain/inquest/pkg/config"
)

func newTestExecutor(t *testing.T) *ToolExecutor {
	t.Helper()
	registry := config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{
		"kubernetes-server": {
			Transport:    config.TransportConfig{Type: config.TransportTypeStdio, Command: "kubectl-mcp"},
			AllowedTools: []string{"resources_get", "pods_list"},
		},
		"open-server": {
			Transport: config.TransportConfig{Type: config.TransportTypeStdio, Command: "open-mcp"},
		},
	})
	return NewToolExecutor(nil, registry, []string{"kubernetes-server", "open-server"}, nil)
}

func TestValidateToolCall(t *testing.T) {
	e := newTestExecutor(t)

	t.Run("allowed tool passes", func(t *testing.T) {
		assert.NoError(t, e.validateToolCall("kubernetes-server", "pods_list"))
	})

	t.Run("any tool on server without allow-list", func(t *testing.T) {
		assert.NoError(t, e.validateToolCall("open-server", "anything"))
	})

	t.Run("unknown server", func(t *testing.T) {
		err := e.validateToolCall("ghost-server", "pods_list")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"ghost-server" is not available`)
		assert.Contains(t, err.Error(), "kubernetes-server")
	})

	t.Run("tool outside allow-list", func(t *testing.T) {
		err := e.validateToolCall("kubernetes-server", "secrets_get")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"secrets_get" is not available on server`)
		assert.Contains(t, err.Error(), "resources_get, pods_list")
	})
}

func TestExecuteRejectsInvalidCallAsToolError(t *testing.T) {
	e := newTestExecutor(t)

	// Validation failures surface as IsError results so the agent sees them
	// as observations, not execution failures.
	result, err := e.Execute(context.Background(), agent.ToolCall{
		ID:     "call-1",
		Server: "ghost-server",
		Tool:   "pods_list",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Equal(t, "call-1", result.CallID)
	assert.Contains(t, result.Content, "ghost-server")
}

func TestExtractTextContent(t *testing.T) {
	t.Run("concatenates text items", func(t *testing.T) {
		result := &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: "line one"},
				&mcpsdk.TextContent{Text: "line two"},
			},
		}
		assert.Equal(t, "line one\nline two", extractTextContent(result))
	})

	t.Run("skips non-text content", func(t *testing.T) {
		result := &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{
				&mcpsdk.ImageContent{MIMEType: "image/png"},
				&mcpsdk.TextContent{Text: "text"},
			},
		}
		assert.Equal(t, "text", extractTextContent(result))
	})

	t.Run("empty result", func(t *testing.T) {
		assert.Equal(t, "", extractTextContent(&mcpsdk.CallToolResult{}))
	})
}

func TestMarshalSchema(t *testing.T) {
	assert.Equal(t, "", marshalSchema(nil))

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"namespace": map[string]any{"type": "string"},
		},
	}
	out := marshalSchema(schema)
	assert.Contains(t, out, `"type":"object"`)
	assert.Contains(t, out, `"namespace"`)
}

func TestCloseWithoutClient(t *testing.T) {
	e := NewToolExecutor(nil, config.NewMCPServerRegistry(nil), nil, nil)
	assert.NoError(t, e.Close())
}
