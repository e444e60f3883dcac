package prompt

import (
	"strings"

	"github.com/codeready-toolchain/inquest/pkg/agent"
)

// BranchAnalysis is one named parallel investigation output handed to
// synthesis.
type BranchAnalysis struct {
	Name     string
	Analysis string
}

// InvestigationStrategy runs the standard tool-driven investigation loop.
type InvestigationStrategy struct {
	builder *PromptBuilder
}

// NewInvestigationStrategy creates the default investigation strategy.
func NewInvestigationStrategy(builder *PromptBuilder) *InvestigationStrategy {
	return &InvestigationStrategy{builder: builder}
}

func (s *InvestigationStrategy) BuildConversation(execCtx *agent.ExecutionContext, tools []agent.ToolDefinition) *agent.Conversation {
	return s.builder.BuildInvestigationConversation(execCtx, tools)
}

func (s *InvestigationStrategy) ExtractSummary(finalAnswer string) string {
	return strings.TrimSpace(finalAnswer)
}

// SynthesisStrategy runs the tool-less synthesis step that combines
// completed branch analyses. The analyses are fixed at construction;
// the stage executor builds one strategy per synthesis run.
type SynthesisStrategy struct {
	builder  *PromptBuilder
	analyses []BranchAnalysis
}

// NewSynthesisStrategy creates a synthesis strategy over the given
// branch analyses.
func NewSynthesisStrategy(builder *PromptBuilder, analyses []BranchAnalysis) *SynthesisStrategy {
	return &SynthesisStrategy{builder: builder, analyses: analyses}
}

func (s *SynthesisStrategy) BuildConversation(execCtx *agent.ExecutionContext, _ []agent.ToolDefinition) *agent.Conversation {
	return s.builder.BuildSynthesisConversation(execCtx, s.analyses)
}

func (s *SynthesisStrategy) ExtractSummary(finalAnswer string) string {
	return strings.TrimSpace(finalAnswer)
}
