package controller

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/codeready-toolchain/inquest/pkg/agent"
)

func testToolSet() ToolSet {
	return NewToolSet([]agent.ToolDefinition{
		{Server: "kubernetes-server", Name: "resources_get"},
		{Server: "kubernetes-server", Name: "cluster_info"},
		{Server: "kubectl", Name: "get_pods"},
	})
}

func TestParse_FinalAnswer(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantThought string
		wantAnswer  string
	}{
		{
			name:        "standard final answer",
			input:       "Thought: I have enough info.\nFinal Answer: The root cause is OOM.",
			wantThought: "I have enough info.",
			wantAnswer:  "The root cause is OOM.",
		},
		{
			name:       "final answer without thought",
			input:      "Final Answer: Everything looks fine.",
			wantAnswer: "Everything looks fine.",
		},
		{
			name:        "multi-line final answer",
			input:       "Thought: Done.\nFinal Answer: Line one.\nLine two.\nLine three.",
			wantThought: "Done.",
			wantAnswer:  "Line one.\nLine two.\nLine three.",
		},
		{
			name:       "final answer wins over complete tool call",
			input:      "Thought: Both.\nAction: kubectl.get_pods\nAction Input: {}\nFinal Answer: All pods healthy.",
			wantAnswer: "All pods healthy.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := Parse(tt.input, testToolSet())
			if parsed.Type != ActionFinalAnswer {
				t.Fatalf("Type = %q, want %q", parsed.Type, ActionFinalAnswer)
			}
			if tt.wantThought != "" && parsed.Thought != tt.wantThought {
				t.Errorf("Thought = %q, want %q", parsed.Thought, tt.wantThought)
			}
			if parsed.FinalAnswer != tt.wantAnswer {
				t.Errorf("FinalAnswer = %q, want %q", parsed.FinalAnswer, tt.wantAnswer)
			}
		})
	}
}

func TestParse_ToolAction(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantThought string
		wantServer  string
		wantTool    string
		wantRaw     string
	}{
		{
			name:        "standard action",
			input:       "Thought: I need pods.\nAction: kubernetes-server.resources_get\nAction Input: {\"resource\": \"pods\"}",
			wantThought: "I need pods.",
			wantServer:  "kubernetes-server",
			wantTool:    "resources_get",
			wantRaw:     "{\"resource\": \"pods\"}",
		},
		{
			name:       "action without thought",
			input:      "Action: kubernetes-server.resources_get\nAction Input: {\"resource\": \"pods\"}",
			wantServer: "kubernetes-server",
			wantTool:   "resources_get",
			wantRaw:    "{\"resource\": \"pods\"}",
		},
		{
			name:        "empty action input",
			input:       "Thought: Check health.\nAction: kubernetes-server.cluster_info\nAction Input:",
			wantThought: "Check health.",
			wantServer:  "kubernetes-server",
			wantTool:    "cluster_info",
			wantRaw:     "",
		},
		{
			name:        "multi-line action input",
			input:       "Thought: Check pods.\nAction: kubectl.get_pods\nAction Input: namespace: default\nlabel: app=web",
			wantThought: "Check pods.",
			wantServer:  "kubectl",
			wantTool:    "get_pods",
			wantRaw:     "namespace: default\nlabel: app=web",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := Parse(tt.input, testToolSet())
			if parsed.Type != ActionTool {
				t.Fatalf("Type = %q, want %q", parsed.Type, ActionTool)
			}
			if parsed.Thought != tt.wantThought {
				t.Errorf("Thought = %q, want %q", parsed.Thought, tt.wantThought)
			}
			if parsed.Server != tt.wantServer {
				t.Errorf("Server = %q, want %q", parsed.Server, tt.wantServer)
			}
			if parsed.Tool != tt.wantTool {
				t.Errorf("Tool = %q, want %q", parsed.Tool, tt.wantTool)
			}
			if parsed.RawInput != tt.wantRaw {
				t.Errorf("RawInput = %q, want %q", parsed.RawInput, tt.wantRaw)
			}
		})
	}
}

func TestParse_MidlineHeaders(t *testing.T) {
	t.Run("action after sentence boundary", func(t *testing.T) {
		input := "Thought: The pod is crashing. Action: kubectl.get_pods\nAction Input: {}"
		parsed := Parse(input, testToolSet())
		if parsed.Type != ActionTool {
			t.Fatalf("Type = %q, want %q", parsed.Type, ActionTool)
		}
		if parsed.Thought != "The pod is crashing." {
			t.Errorf("Thought = %q, want sentence before mid-line action", parsed.Thought)
		}
		if parsed.Server != "kubectl" || parsed.Tool != "get_pods" {
			t.Errorf("got %s.%s, want kubectl.get_pods", parsed.Server, parsed.Tool)
		}
	})

	t.Run("action runs into thought without space", func(t *testing.T) {
		input := "Thought: What should I do?Action: kubectl.get_pods\nAction Input: {}"
		parsed := Parse(input, testToolSet())
		if parsed.Type != ActionTool {
			t.Fatalf("Type = %q, want %q", parsed.Type, ActionTool)
		}
		if parsed.Thought != "What should I do?" {
			t.Errorf("Thought = %q", parsed.Thought)
		}
	})

	t.Run("action on thought continuation line", func(t *testing.T) {
		input := "Thought: first line\nMore digging needed. Action: kubectl.get_pods\nAction Input: {}"
		parsed := Parse(input, testToolSet())
		if parsed.Type != ActionTool {
			t.Fatalf("Type = %q, want %q", parsed.Type, ActionTool)
		}
		if parsed.Thought != "first line\nMore digging needed." {
			t.Errorf("Thought = %q", parsed.Thought)
		}
	})

	t.Run("narrative mention of action does not match", func(t *testing.T) {
		input := "Thought: the Action: field seems wrong here"
		parsed := Parse(input, testToolSet())
		if parsed.Type != ActionMalformed {
			t.Fatalf("Type = %q, want %q", parsed.Type, ActionMalformed)
		}
		if parsed.FoundSections[sectionAction] {
			t.Errorf("action section should not match without a sentence boundary")
		}
	})

	t.Run("final answer is never matched mid-line", func(t *testing.T) {
		input := "Thought: I am done. Final Answer: all good"
		parsed := Parse(input, testToolSet())
		if parsed.Type != ActionMalformed {
			t.Fatalf("Type = %q, want %q", parsed.Type, ActionMalformed)
		}
		if parsed.FoundSections[sectionFinalAnswer] {
			t.Errorf("final_answer must not be detected mid-line")
		}
	})

	t.Run("action input midline requires preceding action", func(t *testing.T) {
		input := "Thought: See params. Action Input: {\"x\": 1}"
		parsed := Parse(input, testToolSet())
		if parsed.FoundSections[sectionActionInput] {
			t.Errorf("action_input must not match mid-line before any action")
		}
	})
}

func TestParse_DuplicateSections(t *testing.T) {
	t.Run("final answer first wins", func(t *testing.T) {
		input := "Final Answer: first\nFinal Answer: second"
		parsed := Parse(input, testToolSet())
		if parsed.Type != ActionFinalAnswer {
			t.Fatalf("Type = %q, want %q", parsed.Type, ActionFinalAnswer)
		}
		// The second header is not re-matched; it becomes content.
		if parsed.FinalAnswer != "first\nFinal Answer: second" {
			t.Errorf("FinalAnswer = %q", parsed.FinalAnswer)
		}
	})

	t.Run("later empty action does not blank earlier content", func(t *testing.T) {
		input := "Action: kubectl.get_pods\nAction Input: {}\nAction:"
		parsed := Parse(input, testToolSet())
		if parsed.Type != ActionTool {
			t.Fatalf("Type = %q, want %q", parsed.Type, ActionTool)
		}
		if parsed.Server != "kubectl" || parsed.Tool != "get_pods" {
			t.Errorf("got %s.%s, empty duplicate must not blank the action", parsed.Server, parsed.Tool)
		}
	})

	t.Run("action latest wins", func(t *testing.T) {
		input := "Action: kubernetes-server.cluster_info\nAction Input: {}\n" +
			"Action: kubectl.get_pods\nAction Input: {\"namespace\": \"default\"}"
		parsed := Parse(input, testToolSet())
		if parsed.Type != ActionTool {
			t.Fatalf("Type = %q, want %q", parsed.Type, ActionTool)
		}
		if parsed.Server != "kubectl" || parsed.Tool != "get_pods" {
			t.Errorf("got %s.%s, want latest action kubectl.get_pods", parsed.Server, parsed.Tool)
		}
		if parsed.RawInput != "{\"namespace\": \"default\"}" {
			t.Errorf("RawInput = %q, want latest input", parsed.RawInput)
		}
	})

}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "whitespace only", input: "   \n\t  "},
		{name: "no sections", input: "Just some narrative text without structure."},
		{name: "thought only", input: "Thought: I should look at the pods next."},
		{name: "action without input", input: "Thought: t\nAction: kubectl.get_pods"},
		{name: "empty final answer", input: "Thought: t\nFinal Answer:"},
		{name: "action without dot", input: "Action: getpods\nAction Input: {}"},
		{name: "action with empty server", input: "Action: .get_pods\nAction Input: {}"},
		{name: "action with empty tool", input: "Action: kubectl.\nAction Input: {}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := Parse(tt.input, testToolSet())
			if parsed.Type != ActionMalformed {
				t.Errorf("Type = %q, want %q", parsed.Type, ActionMalformed)
			}
		})
	}
}

func TestParse_UnknownTool(t *testing.T) {
	input := "Thought: t\nAction: other-server.some_tool\nAction Input: {}"
	parsed := Parse(input, testToolSet())
	if parsed.Type != ActionUnknownTool {
		t.Fatalf("Type = %q, want %q", parsed.Type, ActionUnknownTool)
	}
	if parsed.AttemptedName != "other-server.some_tool" {
		t.Errorf("AttemptedName = %q", parsed.AttemptedName)
	}
	if parsed.ErrorMessage == "" {
		t.Errorf("ErrorMessage must name the unknown tool")
	}
}

func TestParse_RecoverMissingAction(t *testing.T) {
	input := "Thought: checking\nAction kubectl.get_pods\nAction Input: {\"namespace\": \"kube-system\"}"
	parsed := Parse(input, testToolSet())
	if parsed.Type != ActionTool {
		t.Fatalf("Type = %q, want recovered tool action", parsed.Type)
	}
	if parsed.Server != "kubectl" || parsed.Tool != "get_pods" {
		t.Errorf("got %s.%s, want kubectl.get_pods", parsed.Server, parsed.Tool)
	}
}

func TestParse_StopsAtFabricatedObservation(t *testing.T) {
	input := "Thought: t\nAction: kubectl.get_pods\nAction Input: {}\nObservation: pod-a Running"
	parsed := Parse(input, testToolSet())
	if parsed.Type != ActionTool {
		t.Fatalf("Type = %q, want %q", parsed.Type, ActionTool)
	}
	if parsed.RawInput != "{}" {
		t.Errorf("RawInput = %q, fabricated observation must not leak into input", parsed.RawInput)
	}
}

// renderToolAction writes a parsed tool action back as ReAct text with
// canonical JSON parameters.
func renderToolAction(p *ParsedAction) string {
	params, _ := json.Marshal(p.Parameters)
	return fmt.Sprintf("Action: %s.%s\nAction Input: %s", p.Server, p.Tool, string(params))
}

func TestParse_ToolActionRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "json parameters",
			input: "Thought: need pods\nAction: kubernetes-server.resources_get\nAction Input: {\"resource\": \"pods\", \"limit\": 5, \"all_namespaces\": true}",
		},
		{
			name:  "key value parameters",
			input: "Action: kubectl.get_pods\nAction Input: namespace: default\nlabel: app=web",
		},
		{
			name:  "bare string parameter",
			input: "Action: kubernetes-server.cluster_info\nAction Input: production",
		},
		{
			name:  "empty parameters",
			input: "Action: kubernetes-server.cluster_info\nAction Input: {}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := Parse(tt.input, testToolSet())
			if first.Type != ActionTool {
				t.Fatalf("Type = %q, want %q", first.Type, ActionTool)
			}

			second := Parse(renderToolAction(first), testToolSet())
			if second.Type != ActionTool {
				t.Fatalf("re-parsed Type = %q, want %q", second.Type, ActionTool)
			}
			if second.Server != first.Server || second.Tool != first.Tool {
				t.Errorf("re-parsed %s.%s, want %s.%s", second.Server, second.Tool, first.Server, first.Tool)
			}
			if !reflect.DeepEqual(second.Parameters, first.Parameters) {
				t.Errorf("re-parsed Parameters = %#v, want %#v", second.Parameters, first.Parameters)
			}
		})
	}
}

func TestParse_FoundSectionsTracking(t *testing.T) {
	parsed := Parse("Thought: alone", testToolSet())
	if !parsed.FoundSections[sectionThought] {
		t.Errorf("thought should be tracked as found")
	}
	if parsed.FoundSections[sectionAction] || parsed.FoundSections[sectionActionInput] || parsed.FoundSections[sectionFinalAnswer] {
		t.Errorf("only thought should be found, got %v", parsed.FoundSections)
	}
}
