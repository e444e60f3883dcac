package config

import "time"

// Built-in fallbacks applied when defaults are not set in YAML.
const (
	DefaultMaxIterations    = 10
	DefaultIterationTimeout = 120 * time.Second
)

// Defaults contains system-wide default configurations.
// These values are used when specific components don't specify their own.
type Defaults struct {
	// LLM provider default for all agents
	LLMProvider string `yaml:"llm_provider,omitempty"`

	// Max iterations default (run pauses when reached without a final answer)
	MaxIterations *int `yaml:"max_iterations,omitempty"`

	// Per-iteration timeout default
	IterationTimeout *Duration `yaml:"iteration_timeout,omitempty"`

	// Success policy default for parallel stages
	SuccessPolicy SuccessPolicy `yaml:"success_policy,omitempty"`

	// Masking applied to alert payload data before it reaches prompts
	AlertMasking *AlertMaskingConfig `yaml:"alert_masking,omitempty"`
}

// AlertMaskingConfig holds alert payload masking settings.
type AlertMaskingConfig struct {
	Enabled      bool   `yaml:"enabled"`
	PatternGroup string `yaml:"pattern_group,omitempty"`
}

// ResolvedAlertMasking returns the alert masking settings, zero value when unset.
func (d *Defaults) ResolvedAlertMasking() AlertMaskingConfig {
	if d != nil && d.AlertMasking != nil {
		return *d.AlertMasking
	}
	return AlertMaskingConfig{}
}

// ResolvedMaxIterations returns the default max iterations with built-in fallback.
func (d *Defaults) ResolvedMaxIterations() int {
	if d != nil && d.MaxIterations != nil && *d.MaxIterations > 0 {
		return *d.MaxIterations
	}
	return DefaultMaxIterations
}

// ResolvedIterationTimeout returns the default iteration timeout with built-in fallback.
func (d *Defaults) ResolvedIterationTimeout() time.Duration {
	if d != nil && d.IterationTimeout != nil && *d.IterationTimeout > 0 {
		return d.IterationTimeout.Std()
	}
	return DefaultIterationTimeout
}

// ResolvedSuccessPolicy returns the default success policy with built-in fallback.
func (d *Defaults) ResolvedSuccessPolicy() SuccessPolicy {
	if d != nil && d.SuccessPolicy != "" {
		return d.SuccessPolicy
	}
	return SuccessPolicyAny
}
