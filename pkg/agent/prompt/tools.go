package prompt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/codeready-toolchain/inquest/pkg/agent"
)

// FormatToolDescriptions formats the tool catalog for prompt injection.
// Tool names are rendered fully qualified (server.tool) so the model emits
// names the parser can split. Includes JSON Schema parameter details.
func FormatToolDescriptions(tools []agent.ToolDefinition) string {
	if len(tools) == 0 {
		return "No tools available."
	}

	var sb strings.Builder
	for i, tool := range tools {
		sb.WriteString(fmt.Sprintf("%d. **%s**: %s\n", i+1, tool.FullName(), tool.Description))

		var schema map[string]any
		if tool.ParametersSchema != "" {
			if err := json.Unmarshal([]byte(tool.ParametersSchema), &schema); err != nil {
				slog.Debug("failed to parse tool ParametersSchema",
					"tool", tool.FullName(), "error", err)
			}
		}

		params := extractParameters(schema)
		if len(params) > 0 {
			sb.WriteString("    **Parameters**:\n")
			for _, p := range params {
				sb.WriteString("    - ")
				sb.WriteString(p)
				sb.WriteString("\n")
			}
		} else {
			sb.WriteString("    **Parameters**: None\n")
		}

		if i < len(tools)-1 {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// extractParameters extracts rich parameter info from a JSON Schema.
func extractParameters(schema map[string]any) []string {
	if schema == nil {
		return nil
	}

	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}

	required := make(map[string]bool)
	if reqList, ok := schema["required"].([]any); ok {
		for _, r := range reqList {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	// Sorted for deterministic prompt text
	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var params []string
	for _, name := range keys {
		prop, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}

		reqLabel := "optional"
		if required[name] {
			reqLabel = "required"
		}
		typeSuffix := ""
		if t, ok := prop["type"].(string); ok {
			typeSuffix = ", " + t
		}

		var sb strings.Builder
		sb.WriteString(name)
		sb.WriteString(fmt.Sprintf(" (%s%s)", reqLabel, typeSuffix))

		if desc, ok := prop["description"].(string); ok && desc != "" {
			sb.WriteString(": " + desc)
		}

		var hints []string
		if def, ok := prop["default"]; ok {
			hints = append(hints, fmt.Sprintf("default: %v", def))
		}
		if enum, ok := prop["enum"].([]any); ok {
			vals := make([]string, 0, len(enum))
			for _, v := range enum {
				vals = append(vals, fmt.Sprintf("%q", v))
			}
			hints = append(hints, "choices: ["+strings.Join(vals, ", ")+"]")
		}
		if len(hints) > 0 {
			sb.WriteString(" [" + strings.Join(hints, "; ") + "]")
		}

		params = append(params, sb.String())
	}

	return params
}
