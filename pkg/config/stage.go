package config

// StageAgentConfig references an agent within a stage, with per-stage overrides.
type StageAgentConfig struct {
	// Registered agent name (required)
	Name string `yaml:"name"`

	// Per-stage LLM provider override
	LLMProvider string `yaml:"llm_provider,omitempty"`

	// Per-stage max iterations override
	MaxIterations *int `yaml:"max_iterations,omitempty"`
}

// SynthesisConfig customizes the synthesis pass after a parallel stage.
// All fields optional; defaults apply when omitted.
type SynthesisConfig struct {
	Agent       string `yaml:"agent,omitempty"`
	LLMProvider string `yaml:"llm_provider,omitempty"`
}

// StageConfig defines one parallel investigation stage.
// Either multiple agents (multi-agent fan-out) or replicas > 1 on a single
// agent (replica fan-out). A single agent with replicas <= 1 is just N=1.
type StageConfig struct {
	Name string `yaml:"name"`

	// Branches: one entry per distinct agent
	Agents []StageAgentConfig `yaml:"agents"`

	// Replica count — replicates Agents[0] N times
	Replicas int `yaml:"replicas,omitempty"`

	// Success policy for aggregation (falls back to defaults.success_policy)
	SuccessPolicy SuccessPolicy `yaml:"success_policy,omitempty"`

	// Synthesis customization (optional)
	Synthesis *SynthesisConfig `yaml:"synthesis,omitempty"`
}

// ParallelType classifies the fan-out mode of the stage.
// Returns "" for single-branch stages (mode is irrelevant).
func (s *StageConfig) ParallelType() ParallelType {
	if s.Replicas > 1 {
		return ParallelTypeReplica
	}
	if len(s.Agents) > 1 {
		return ParallelTypeMultiAgent
	}
	return ""
}

// BranchCount returns the number of branches this stage fans out.
func (s *StageConfig) BranchCount() int {
	if s.Replicas > 1 {
		return s.Replicas
	}
	return len(s.Agents)
}

// Validate checks the stage configuration against the agent registry.
func (s *StageConfig) Validate(agents *AgentRegistry) error {
	if s.Name == "" {
		return NewValidationError("stage", s.Name, "name", ErrMissingRequiredField)
	}
	if len(s.Agents) == 0 {
		return NewValidationError("stage", s.Name, "agents", ErrMissingRequiredField)
	}
	if s.Replicas > 1 && len(s.Agents) > 1 {
		return NewValidationError("stage", s.Name, "replicas", ErrInvalidValue)
	}
	if s.SuccessPolicy != "" && !s.SuccessPolicy.IsValid() {
		return NewValidationError("stage", s.Name, "success_policy", ErrInvalidValue)
	}
	for _, a := range s.Agents {
		if a.Name == "" {
			return NewValidationError("stage", s.Name, "agents.name", ErrMissingRequiredField)
		}
		if agents != nil && !agents.Has(a.Name) {
			return NewValidationError("stage", s.Name, "agents.name", ErrInvalidReference)
		}
	}
	return nil
}
