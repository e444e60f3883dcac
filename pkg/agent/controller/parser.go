package controller

import (
	"fmt"
	"strings"
)

// Parse converts one block of model output into exactly one ParsedAction.
// The available set backs the Tool/UnknownTool distinction — an unknown
// tool drives different corrective feedback than a malformed response.
//
// Parsing is total: any input, however broken, degrades to ActionMalformed
// rather than an error. The parser is intentionally forgiving and tries
// the recovery tiers in matchers.go before declaring a response malformed.
func Parse(text string, available ToolSet) *ParsedAction {
	if strings.TrimSpace(text) == "" {
		return &ParsedAction{
			Type:          ActionMalformed,
			FoundSections: emptyFoundSections(),
		}
	}

	sections := extractSections(text)

	foundSections := map[string]bool{
		sectionThought:     sections[sectionThought] != nil,
		sectionAction:      sections[sectionAction] != nil,
		sectionActionInput: sections[sectionActionInput] != nil,
		sectionFinalAnswer: sections[sectionFinalAnswer] != nil,
	}
	thought := deref(sections[sectionThought])

	// Non-empty final answer is terminal and wins classification.
	if fa := sections[sectionFinalAnswer]; fa != nil && *fa != "" {
		return &ParsedAction{
			Type:          ActionFinalAnswer,
			Thought:       thought,
			FinalAnswer:   *fa,
			FoundSections: foundSections,
		}
	}

	// A tool request needs both Action and Action Input — the input may be
	// an empty string (no-parameter tools) but must be present.
	action := strings.TrimSpace(deref(sections[sectionAction]))
	actionInput := sections[sectionActionInput]
	if action != "" && actionInput != nil {
		server, tool, ok := splitToolName(action)
		if !ok {
			return &ParsedAction{
				Type:          ActionMalformed,
				Thought:       thought,
				FoundSections: foundSections,
			}
		}

		if !available[action] {
			return &ParsedAction{
				Type:          ActionUnknownTool,
				Thought:       thought,
				AttemptedName: action,
				RawInput:      deref(actionInput),
				ErrorMessage: fmt.Sprintf(
					"Unknown tool '%s'. Please check the list of available tools provided in the prompt.", action),
				FoundSections: foundSections,
			}
		}

		return &ParsedAction{
			Type:          ActionTool,
			Thought:       thought,
			Server:        server,
			Tool:          tool,
			Parameters:    ParseActionInput(deref(actionInput)),
			RawInput:      deref(actionInput),
			FoundSections: foundSections,
		}
	}

	return &ParsedAction{
		Type:          ActionMalformed,
		Thought:       thought,
		FoundSections: foundSections,
	}
}

// extractSections runs the line-by-line state machine over the response,
// accumulating content under the current section until the next header or
// terminator. Duplicate policy: Final Answer is first-wins (enforced by the
// matcher), Action/Thought are latest-wins, and a later empty header never
// blanks earlier content (enforced by finalizeSection).
func extractSections(text string) map[string]*string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	parsed := map[string]*string{
		sectionThought:     nil,
		sectionAction:      nil,
		sectionActionInput: nil,
		sectionFinalAnswer: nil,
	}

	currentSection := sectionNone
	var contentLines []string
	found := map[string]bool{}

	for _, rawLine := range lines {
		line := strings.TrimSpace(rawLine)

		// Skip empty lines when not in a section
		if line == "" && currentSection == sectionNone {
			continue
		}

		// Fabricated observation: the model is hallucinating its own tool
		// result. Finalize the open section and stop scanning.
		if shouldStopParsing(line) {
			finalizeSection(parsed, currentSection, contentLines)
			break
		}

		matched := false
		for _, m := range headerMatchers {
			hm, ok := m.match(line, found)
			if !ok {
				continue
			}
			// Mid-line match: the text before the header still belongs to
			// the section that was open.
			if hm.before != "" && currentSection != sectionNone {
				contentLines = append(contentLines, hm.before)
			}
			finalizeSection(parsed, currentSection, contentLines)
			currentSection = m.section
			found[m.section] = true
			if m.section == sectionAction {
				// Re-arm Action Input matching for the new action
				delete(found, sectionActionInput)
			}
			contentLines = []string{hm.content}

			// Reasoning can run straight into an action on the same line
			// ("Thought: I will proceed.Action: server.tool"). The thought
			// matcher claims the whole line, so split its content here.
			if m.section == sectionThought {
				if loc := midlineActionPattern.FindStringIndex(hm.content); loc != nil {
					if idx := strings.Index(hm.content[loc[0]:], "Action:"); idx != -1 {
						before := strings.TrimSpace(hm.content[:loc[0]+1])
						actionVal := strings.TrimSpace(hm.content[loc[0]+idx+len("Action:"):])
						finalizeSection(parsed, sectionThought, []string{before})
						finalizeSection(parsed, sectionAction, []string{actionVal})
						found[sectionAction] = true
						delete(found, sectionActionInput)
						currentSection = sectionNone
						contentLines = nil
					}
				}
			}
			matched = true
			break
		}
		if !matched && currentSection != sectionNone {
			contentLines = append(contentLines, line)
		}
	}

	finalizeSection(parsed, currentSection, contentLines)

	// Recovery: Action Input without Action — backtrack through the raw
	// text for a server.tool-shaped name after an "Action" marker.
	if parsed[sectionActionInput] != nil && parsed[sectionAction] == nil {
		if recovered := recoverMissingAction(text); recovered != "" {
			parsed[sectionAction] = &recovered
		}
	}

	return parsed
}

// finalizeSection joins content lines and stores them in the parsed map.
// A later empty section must not blank earlier non-empty content.
func finalizeSection(parsed map[string]*string, section string, contentLines []string) {
	if section == sectionNone || contentLines == nil {
		return
	}
	content := strings.TrimSpace(strings.Join(contentLines, "\n"))
	if content != "" || parsed[section] == nil {
		parsed[section] = &content
	}
}

// splitToolName splits an action name on the first dot into server and tool.
// Both parts must be non-empty after trimming.
func splitToolName(name string) (server, tool string, ok bool) {
	idx := strings.Index(name, ".")
	if idx == -1 {
		return "", "", false
	}
	server = strings.TrimSpace(name[:idx])
	tool = strings.TrimSpace(name[idx+1:])
	if server == "" || tool == "" {
		return "", "", false
	}
	return server, tool, true
}

// recoverMissingAction attempts to recover a missing action when Action Input
// exists but Action doesn't. Searches backwards from "Action Input:" for
// "Action:" or "Action".
func recoverMissingAction(response string) string {
	// Case-insensitive regex keeps byte indices valid on the original
	// string (strings.ToLower can shift offsets on multi-byte runes).
	loc := recoverActionInputPattern.FindStringIndex(response)
	if loc == nil {
		return ""
	}

	textBefore := response[:loc[0]]

	// Try "Action:" first (more specific)
	matches := recoverActionColonPattern.FindAllStringIndex(textBefore, -1)
	if len(matches) > 0 {
		lastMatch := matches[len(matches)-1]
		if validated := validateToolName(textBefore[lastMatch[1]:]); validated != "" {
			return validated
		}
	}

	// Try "Action" without colon
	matches = recoverActionWordPattern.FindAllStringIndex(textBefore, -1)
	if len(matches) > 0 {
		lastMatch := matches[len(matches)-1]
		if validated := validateToolName(textBefore[lastMatch[1]:]); validated != "" {
			return validated
		}
	}

	return ""
}

// validateToolName checks if text looks like a valid tool name (server.tool format).
func validateToolName(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	// Take only the first line
	firstLine := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	if toolNamePattern.MatchString(firstLine) {
		return firstLine
	}
	return ""
}

func emptyFoundSections() map[string]bool {
	return map[string]bool{
		sectionThought:     false,
		sectionAction:      false,
		sectionActionInput: false,
		sectionFinalAnswer: false,
	}
}

// deref safely dereferences a *string, returning "" if nil.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
