package masking

import (
	"log/slog"

	"github.com/codeready-toolchain/inquest/pkg/config"
)

// Service applies data masking to MCP tool results and alert payloads.
// Created once at startup; thread-safe and stateless aside from compiled
// patterns.
type Service struct {
	registry             *config.MCPServerRegistry
	patterns             map[string]*CompiledPattern
	codeMaskers          map[string]Masker
	alertMasking         config.AlertMaskingConfig
	serverCustomPatterns map[string][]string // serverID -> custom pattern keys
}

// NewService creates a masking service with compiled patterns and registered
// maskers. All patterns are compiled eagerly; invalid ones are logged and
// skipped.
func NewService(registry *config.MCPServerRegistry, alertCfg config.AlertMaskingConfig) *Service {
	s := &Service{
		registry:             registry,
		patterns:             make(map[string]*CompiledPattern),
		codeMaskers:          make(map[string]Masker),
		alertMasking:         alertCfg,
		serverCustomPatterns: make(map[string][]string),
	}

	s.registerMasker(&KubernetesSecretMasker{})
	s.compileBuiltinPatterns()
	s.compileCustomPatterns()

	slog.Info("Masking service initialized",
		"compiled_patterns", len(s.patterns),
		"code_maskers", len(s.codeMaskers),
		"alert_masking_enabled", alertCfg.Enabled)

	return s
}

// MaskToolResult applies server-specific masking to MCP tool result content.
// On masking failure the content is replaced with a redaction notice
// (fail-closed).
func (s *Service) MaskToolResult(content string, serverID string) string {
	if content == "" {
		return content
	}

	serverCfg, err := s.registry.Get(serverID)
	if err != nil || serverCfg.DataMasking == nil || !serverCfg.DataMasking.Enabled {
		return content
	}

	resolved := s.resolvePatterns(serverCfg.DataMasking, serverID)
	if len(resolved.codeMaskerNames) == 0 && len(resolved.regexPatterns) == 0 {
		return content
	}

	masked, err := s.applyMasking(content, resolved)
	if err != nil {
		slog.Error("Masking failed, redacting content",
			"server", serverID, "error", err)
		return "[REDACTED: data masking failure, tool result could not be safely processed]"
	}

	return masked
}

// MaskAlertData applies the configured pattern group to alert payload data.
// On masking failure the original data is returned (fail-open: the alert
// must still reach the investigating agent).
func (s *Service) MaskAlertData(data string) string {
	if !s.alertMasking.Enabled || data == "" {
		return data
	}

	resolved := s.resolvePatternsFromGroup(s.alertMasking.PatternGroup)
	if len(resolved.codeMaskerNames) == 0 && len(resolved.regexPatterns) == 0 {
		return data
	}

	masked, err := s.applyMasking(data, resolved)
	if err != nil {
		slog.Error("Alert masking failed, continuing with unmasked data", "error", err)
		return data
	}

	return masked
}

// applyMasking runs code-based maskers first (structural awareness), then
// regex patterns as a general sweep.
func (s *Service) applyMasking(content string, resolved *resolvedPatterns) (string, error) {
	masked := content

	for _, maskerName := range resolved.codeMaskerNames {
		masker, ok := s.codeMaskers[maskerName]
		if !ok {
			continue
		}
		if masker.AppliesTo(masked) {
			masked = masker.Mask(masked)
		}
	}

	for _, pattern := range resolved.regexPatterns {
		masked = pattern.Regex.ReplaceAllString(masked, pattern.Replacement)
	}

	return masked, nil
}

func (s *Service) registerMasker(m Masker) {
	s.codeMaskers[m.Name()] = m
}
