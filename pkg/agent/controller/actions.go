package controller

import "github.com/codeready-toolchain/inquest/pkg/agent"

// ActionType discriminates the variants of a parsed model response.
type ActionType string

const (
	// ActionFinalAnswer — the model concluded the investigation.
	ActionFinalAnswer ActionType = "final_answer"
	// ActionTool — the model requested a tool invocation.
	ActionTool ActionType = "tool"
	// ActionUnknownTool — the model named a tool not in the available set.
	ActionUnknownTool ActionType = "unknown_tool"
	// ActionMalformed — no recognizable structure.
	ActionMalformed ActionType = "malformed"
)

// ParsedAction is the result of parsing one LLM response. Exactly one
// variant applies, selected by Type; the other variant fields are zero.
type ParsedAction struct {
	Type ActionType

	// Thought is the reasoning text preceding the action, when present.
	// For Malformed responses it is the salvageable partial content.
	Thought string

	// FinalAnswer variant
	FinalAnswer string

	// Tool variant
	Server     string
	Tool       string
	Parameters map[string]any
	RawInput   string // the unparsed Action Input text, for observability

	// UnknownTool variant
	AttemptedName string
	ErrorMessage  string

	// FoundSections tracks which sections were detected during parsing,
	// used to build specific format-error feedback.
	FoundSections map[string]bool
}

// IsFinalAnswer reports whether the model concluded.
func (p *ParsedAction) IsFinalAnswer() bool { return p.Type == ActionFinalAnswer }

// IsToolAction reports whether the model requested a valid tool call.
func (p *ParsedAction) IsToolAction() bool { return p.Type == ActionTool }

// ToolSet is the available-tools lookup backing the Tool/UnknownTool
// distinction. Keys are canonical "server.tool" names.
type ToolSet map[string]bool

// NewToolSet builds a lookup set from tool definitions.
func NewToolSet(tools []agent.ToolDefinition) ToolSet {
	set := make(ToolSet, len(tools))
	for _, t := range tools {
		set[t.FullName()] = true
	}
	return set
}
