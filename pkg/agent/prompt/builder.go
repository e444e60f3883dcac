package prompt

import (
	"strings"

	"github.com/codeready-toolchain/inquest/pkg/agent"
	"github.com/codeready-toolchain/inquest/pkg/config"
)

// PromptBuilder builds all prompt text for agent controllers.
// Stateless — all state comes from parameters. Thread-safe.
type PromptBuilder struct {
	mcpRegistry *config.MCPServerRegistry
}

// NewPromptBuilder creates a PromptBuilder with access to MCP server configs.
// Panics if mcpRegistry is nil — callers must provide a valid registry.
func NewPromptBuilder(mcpRegistry *config.MCPServerRegistry) *PromptBuilder {
	if mcpRegistry == nil {
		panic("prompt.NewPromptBuilder: mcpRegistry must not be nil")
	}
	return &PromptBuilder{
		mcpRegistry: mcpRegistry,
	}
}

// BuildInvestigationConversation builds the opening conversation for an
// investigation run.
func (b *PromptBuilder) BuildInvestigationConversation(
	execCtx *agent.ExecutionContext,
	tools []agent.ToolDefinition,
) *agent.Conversation {
	composed := b.ComposeInstructions(execCtx)
	systemContent := composed + "\n\n" + reactFormatInstructions + "\n\n" + taskFocus

	conversation := agent.NewConversation(systemContent)
	conversation.Append(agent.RoleUser, b.buildInvestigationUserMessage(execCtx, tools))
	return conversation
}

// BuildSynthesisConversation builds the conversation for a synthesis step.
// Synthesis combines parallel branch results into one analysis; it still
// runs through the standard loop, so the format instructions stay (the
// expected output is an immediate Final Answer).
func (b *PromptBuilder) BuildSynthesisConversation(
	execCtx *agent.ExecutionContext,
	analyses []BranchAnalysis,
) *agent.Conversation {
	systemContent := b.composeSynthesisInstructions(execCtx) + "\n\n" + reactFormatInstructions

	conversation := agent.NewConversation(systemContent)
	conversation.Append(agent.RoleUser, b.buildSynthesisUserMessage(execCtx, analyses))
	return conversation
}

// buildInvestigationUserMessage builds the user message for an investigation.
func (b *PromptBuilder) buildInvestigationUserMessage(
	execCtx *agent.ExecutionContext,
	tools []agent.ToolDefinition,
) string {
	var sb strings.Builder

	if len(tools) > 0 {
		sb.WriteString("Investigate the following alert using the available tools.\n\n")
		sb.WriteString("Available tools:\n\n")
		sb.WriteString(FormatToolDescriptions(tools))
		sb.WriteString("\n\n")
	}

	sb.WriteString(FormatAlertSection(execCtx.AlertType, execCtx.AlertData))
	sb.WriteString("\n")

	if execCtx.Runbook != "" {
		sb.WriteString(FormatRunbookSection(execCtx.Runbook))
		sb.WriteString("\n")
	}

	sb.WriteString(analysisTask)

	return sb.String()
}

// buildSynthesisUserMessage builds the user message for synthesis.
func (b *PromptBuilder) buildSynthesisUserMessage(
	execCtx *agent.ExecutionContext,
	analyses []BranchAnalysis,
) string {
	var sb strings.Builder

	sb.WriteString("Synthesize the investigation results and provide recommendations.\n\n")

	// alertType intentionally omitted for synthesis; the synthesizer
	// combines parallel results rather than re-analyzing alert metadata.
	sb.WriteString(FormatAlertSection("", execCtx.AlertData))
	sb.WriteString("\n")

	sb.WriteString(FormatBranchResults(analyses))
	sb.WriteString("\n")

	sb.WriteString(synthesisTask)

	return sb.String()
}
