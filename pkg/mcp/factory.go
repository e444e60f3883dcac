package mcp

import (
	"context"

	"github.com/codeready-toolchain/inquest/pkg/agent"
	"github.com/codeready-toolchain/inquest/pkg/config"
)

// Factory creates per-branch tool executors. Implements the stage
// executor's ToolExecutorFactory.
type Factory struct {
	registry *config.MCPServerRegistry
	masker   ResultMasker
}

// NewFactory creates a new factory. masker may be nil to disable result
// masking.
func NewFactory(registry *config.MCPServerRegistry, masker ResultMasker) *Factory {
	return &Factory{registry: registry, masker: masker}
}

// NewToolExecutor connects a fresh Client to the given servers and wraps it
// in a ToolExecutor. The executor owns the client; Close tears both down.
// Individual server connection failures are tolerated (partial tools are
// better than none); the client records them in FailedServers.
func (f *Factory) NewToolExecutor(ctx context.Context, serverIDs []string) (agent.ToolExecutor, error) {
	client := newClient(f.registry)
	if err := client.Initialize(ctx, serverIDs); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewToolExecutor(client, f.registry, serverIDs, f.masker), nil
}
