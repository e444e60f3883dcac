package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/inquest/pkg/config"
)

func intPtr(i int) *int { return &i }
func durPtr(d time.Duration) *config.Duration {
	cd := config.Duration(d)
	return &cd
}

func resolverTestConfig() *config.Config {
	return &config.Config{
		Defaults: config.Defaults{
			LLMProvider:   "default-provider",
			MaxIterations: intPtr(10),
		},
		Agents: config.NewAgentRegistry(map[string]*config.AgentConfig{
			"BaseAgent": {
				MCPServers: []string{"kubernetes-server"},
			},
			"TunedAgent": {
				LLMProvider:        "tuned-provider",
				MaxIterations:      intPtr(5),
				IterationTimeout:   durPtr(30 * time.Second),
				CustomInstructions: "Focus on pod restarts first.",
			},
		}),
		LLMProviders: config.NewLLMProviderRegistry(map[string]*config.LLMProviderConfig{
			"default-provider": {Type: config.LLMProviderOpenAI, Model: "gpt-4o"},
			"tuned-provider":   {Type: config.LLMProviderAnthropic, Model: "claude-sonnet"},
			"stage-provider":   {Type: config.LLMProviderGoogle, Model: "gemini-pro"},
		}),
	}
}

func TestResolveAgentConfigDefaults(t *testing.T) {
	cfg := resolverTestConfig()
	stage := &config.StageConfig{Name: "investigate"}

	resolved, err := ResolveAgentConfig(cfg, stage, config.StageAgentConfig{Name: "BaseAgent"})
	require.NoError(t, err)

	assert.Equal(t, "BaseAgent", resolved.AgentName)
	assert.Equal(t, "default-provider", resolved.LLMProviderName)
	assert.Equal(t, 10, resolved.MaxIterations)
	assert.Equal(t, config.DefaultIterationTimeout, resolved.IterationTimeout)
	assert.Equal(t, []string{"kubernetes-server"}, resolved.MCPServers)
}

func TestResolveAgentConfigAgentOverrides(t *testing.T) {
	cfg := resolverTestConfig()
	stage := &config.StageConfig{Name: "investigate"}

	resolved, err := ResolveAgentConfig(cfg, stage, config.StageAgentConfig{Name: "TunedAgent"})
	require.NoError(t, err)

	assert.Equal(t, "tuned-provider", resolved.LLMProviderName)
	assert.Equal(t, "claude-sonnet", resolved.LLMProvider.Model)
	assert.Equal(t, 5, resolved.MaxIterations)
	assert.Equal(t, 30*time.Second, resolved.IterationTimeout)
	assert.Equal(t, "Focus on pod restarts first.", resolved.CustomInstructions)
}

func TestResolveAgentConfigStageOverridesWin(t *testing.T) {
	cfg := resolverTestConfig()
	stage := &config.StageConfig{Name: "investigate"}

	resolved, err := ResolveAgentConfig(cfg, stage, config.StageAgentConfig{
		Name:          "TunedAgent",
		LLMProvider:   "stage-provider",
		MaxIterations: intPtr(3),
	})
	require.NoError(t, err)

	assert.Equal(t, "stage-provider", resolved.LLMProviderName)
	assert.Equal(t, 3, resolved.MaxIterations)
	// Timeout has no per-stage override; the agent definition still applies
	assert.Equal(t, 30*time.Second, resolved.IterationTimeout)
}

func TestResolveAgentConfigErrors(t *testing.T) {
	cfg := resolverTestConfig()
	stage := &config.StageConfig{Name: "investigate"}

	t.Run("nil stage config", func(t *testing.T) {
		_, err := ResolveAgentConfig(cfg, nil, config.StageAgentConfig{Name: "BaseAgent"})
		assert.Error(t, err)
	})

	t.Run("unknown agent", func(t *testing.T) {
		_, err := ResolveAgentConfig(cfg, stage, config.StageAgentConfig{Name: "GhostAgent"})
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := ResolveAgentConfig(cfg, stage, config.StageAgentConfig{
			Name:        "BaseAgent",
			LLMProvider: "missing-provider",
		})
		assert.ErrorContains(t, err, "missing-provider")
	})

	t.Run("non-positive max iterations", func(t *testing.T) {
		_, err := ResolveAgentConfig(cfg, stage, config.StageAgentConfig{
			Name:          "BaseAgent",
			MaxIterations: intPtr(-1),
		})
		assert.ErrorContains(t, err, "must be positive")
	})
}

func TestResolveAgentConfigCopiesMCPServers(t *testing.T) {
	cfg := resolverTestConfig()
	stage := &config.StageConfig{Name: "investigate"}

	resolved, err := ResolveAgentConfig(cfg, stage, config.StageAgentConfig{Name: "BaseAgent"})
	require.NoError(t, err)

	resolved.MCPServers[0] = "mutated"
	agentDef, err := cfg.GetAgent("BaseAgent")
	require.NoError(t, err)
	assert.Equal(t, "kubernetes-server", agentDef.MCPServers[0])
}
