package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/inquest/pkg/config"
)

func newTestService(t *testing.T, alertCfg config.AlertMaskingConfig) *Service {
	t.Helper()
	registry := config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{
		"kubernetes-server": {
			Transport: config.TransportConfig{Type: config.TransportTypeStdio, Command: "kubectl-mcp"},
			DataMasking: &config.MaskingConfig{
				Enabled:       true,
				PatternGroups: []string{"kubernetes"},
				Patterns:      []string{"token"},
				CustomPatterns: []config.MaskingPattern{
					{Pattern: `employee-\d{4}`, Replacement: "EMPLOYEE_REDACTED"},
				},
			},
		},
		"plain-server": {
			Transport: config.TransportConfig{Type: config.TransportTypeStdio, Command: "plain-mcp"},
		},
	})
	return NewService(registry, alertCfg)
}

func TestMaskToolResultRegexPatterns(t *testing.T) {
	s := newTestService(t, config.AlertMaskingConfig{})

	content := "connection config:\napi_key=abcdefghij0123456789\ntoken: eyJhbGciOiJIUzI1NiJ9abc"
	masked := s.MaskToolResult(content, "kubernetes-server")

	assert.Contains(t, masked, "__MASKED_API_KEY__")
	assert.Contains(t, masked, "__MASKED_TOKEN__")
	assert.NotContains(t, masked, "abcdefghij0123456789")
	assert.NotContains(t, masked, "eyJhbGciOiJIUzI1NiJ9abc")
}

func TestMaskToolResultSecretManifest(t *testing.T) {
	s := newTestService(t, config.AlertMaskingConfig{})

	content := `apiVersion: v1
kind: Secret
metadata:
  name: db-credentials
data:
  db-password: cGFzc3dvcmQxMjM=
  db-user: YWRtaW4=
`
	masked := s.MaskToolResult(content, "kubernetes-server")

	assert.NotContains(t, masked, "cGFzc3dvcmQxMjM=")
	assert.NotContains(t, masked, "YWRtaW4=")
	assert.Contains(t, masked, "db-credentials")
}

func TestMaskToolResultCustomPattern(t *testing.T) {
	s := newTestService(t, config.AlertMaskingConfig{})

	masked := s.MaskToolResult("assigned to employee-1234", "kubernetes-server")
	assert.Equal(t, "assigned to EMPLOYEE_REDACTED", masked)
}

func TestMaskToolResultPassthrough(t *testing.T) {
	s := newTestService(t, config.AlertMaskingConfig{})

	t.Run("server without masking", func(t *testing.T) {
		content := "api_key=abcdefghij0123456789"
		assert.Equal(t, content, s.MaskToolResult(content, "plain-server"))
	})

	t.Run("unknown server", func(t *testing.T) {
		content := "api_key=abcdefghij0123456789"
		assert.Equal(t, content, s.MaskToolResult(content, "ghost-server"))
	})

	t.Run("empty content", func(t *testing.T) {
		assert.Equal(t, "", s.MaskToolResult("", "kubernetes-server"))
	})
}

func TestMaskAlertData(t *testing.T) {
	t.Run("enabled group masks secrets", func(t *testing.T) {
		s := newTestService(t, config.AlertMaskingConfig{Enabled: true, PatternGroup: "secrets"})
		masked := s.MaskAlertData("deploy failed: password: hunter2secret")
		assert.Contains(t, masked, "__MASKED_PASSWORD__")
		assert.NotContains(t, masked, "hunter2secret")
	})

	t.Run("disabled returns original", func(t *testing.T) {
		s := newTestService(t, config.AlertMaskingConfig{})
		data := "password: hunter2secret"
		assert.Equal(t, data, s.MaskAlertData(data))
	})

	t.Run("unknown group returns original", func(t *testing.T) {
		s := newTestService(t, config.AlertMaskingConfig{Enabled: true, PatternGroup: "nope"})
		data := "password: hunter2secret"
		assert.Equal(t, data, s.MaskAlertData(data))
	})
}

func TestInvalidCustomPatternSkipped(t *testing.T) {
	registry := config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{
		"broken-server": {
			Transport: config.TransportConfig{Type: config.TransportTypeStdio, Command: "x"},
			DataMasking: &config.MaskingConfig{
				Enabled: true,
				CustomPatterns: []config.MaskingPattern{
					{Pattern: `([unclosed`, Replacement: "X"},
					{Pattern: `good-\d+`, Replacement: "GOOD_REDACTED"},
				},
			},
		},
	})
	s := NewService(registry, config.AlertMaskingConfig{})

	// The invalid pattern is skipped at compile time; the valid one still works.
	require.Len(t, s.serverCustomPatterns["broken-server"], 1)
	assert.Equal(t, "GOOD_REDACTED", s.MaskToolResult("good-42", "broken-server"))
}

func TestResolvePatternsDeduplicates(t *testing.T) {
	s := newTestService(t, config.AlertMaskingConfig{})

	// "api_key" appears in the kubernetes group and as an explicit pattern.
	resolved := s.resolvePatterns(&config.MaskingConfig{
		Enabled:       true,
		PatternGroups: []string{"kubernetes"},
		Patterns:      []string{"api_key"},
	}, "")

	names := make(map[string]int)
	for _, p := range resolved.regexPatterns {
		names[p.Name]++
	}
	assert.Equal(t, 1, names["api_key"])
	assert.Contains(t, resolved.codeMaskerNames, "kubernetes_secret")
}
