package controller

import (
	"regexp"
	"strings"
)

// Section names used by the parser state machine.
const (
	sectionNone        = ""
	sectionThought     = "thought"
	sectionAction      = "action"
	sectionActionInput = "action_input"
	sectionFinalAnswer = "final_answer"
)

// Mid-line detection: a header is recognized mid-line only immediately after
// sentence-ending punctuation, optionally followed by whitespace, backticks,
// or closing markup. This recovers responses where reasoning and an action
// run together on one line without misfiring on narrative text.
var (
	midlineActionPattern      = regexp.MustCompile("[.!?][`\\s*]*Action:")
	midlineActionInputPattern = regexp.MustCompile("[.!?][`\\s*]*Action Input:")

	// server.tool format validation for action recovery
	toolNamePattern = regexp.MustCompile(`^([\w\-]+)\.([\w\-]+)$`)

	// Recovery patterns for recoverMissingAction
	recoverActionColonPattern = regexp.MustCompile(`(?i)\bAction:`)
	recoverActionWordPattern  = regexp.MustCompile(`(?i)\bAction(?:\s|$)`)
	recoverActionInputPattern = regexp.MustCompile(`(?i)Action Input:`)
)

// headerMatch is the outcome of testing one line against one matcher.
type headerMatch struct {
	// content is the text following the header on the same line.
	content string
	// before is the text preceding a mid-line header (sentence boundary
	// included); empty for exact-prefix matches.
	before string
}

// headerMatcher recognizes one section header in two tiers: an exact line
// prefix, and (for action/action_input only) a sentence-boundary mid-line
// fallback. Matchers are tried in a fixed order so the tie-break rules stay
// auditable and independently testable.
type headerMatcher struct {
	section string
	prefix  string
	// midline enables the sentence-boundary fallback tier. Final Answer
	// deliberately has none — narrative text mentioning a final answer
	// must not be misclassified.
	midline *regexp.Regexp
	// firstWins suppresses re-matching once the section has been seen.
	firstWins bool
	// requires names a section that must already have been found for the
	// mid-line tier to apply (action_input only follows an action).
	requires string
}

// headerMatchers is the ordered matcher list. Order matters: the most
// specific literal ("Action Input:") is tested before "Action:" so the
// shorter prefix cannot shadow the longer one.
var headerMatchers = []headerMatcher{
	{section: sectionFinalAnswer, prefix: "Final Answer:", firstWins: true},
	{section: sectionThought, prefix: "Thought:"},
	{section: sectionActionInput, prefix: "Action Input:", midline: midlineActionInputPattern, requires: sectionAction},
	{section: sectionAction, prefix: "Action:", midline: midlineActionPattern},
}

// match tests a line against this matcher. found tracks sections already
// seen; the mid-line tier never applies when the line starts with any
// known header literal.
func (m headerMatcher) match(line string, found map[string]bool) (headerMatch, bool) {
	if line == "" {
		return headerMatch{}, false
	}
	if m.firstWins && found[m.section] {
		return headerMatch{}, false
	}

	// Tier 1: exact prefix
	if strings.HasPrefix(line, m.prefix) {
		return headerMatch{content: strings.TrimSpace(line[len(m.prefix):])}, true
	}

	// Tier 2: sentence-boundary mid-line fallback
	if m.midline == nil || !strings.Contains(line, m.prefix) {
		return headerMatch{}, false
	}
	if m.requires != "" && !found[m.requires] {
		return headerMatch{}, false
	}
	if startsWithAnyHeader(line) {
		return headerMatch{}, false
	}
	loc := m.midline.FindStringIndex(line)
	if loc == nil {
		return headerMatch{}, false
	}
	idx := strings.Index(line[loc[0]:], m.prefix)
	if idx == -1 {
		return headerMatch{}, false
	}
	return headerMatch{
		before:  strings.TrimSpace(line[:loc[0]+1]),
		content: strings.TrimSpace(line[loc[0]+idx+len(m.prefix):]),
	}, true
}

// startsWithAnyHeader reports whether the line opens with one of the known
// header literals, which disqualifies mid-line detection on that line.
func startsWithAnyHeader(line string) bool {
	for _, m := range headerMatchers {
		if strings.HasPrefix(line, m.prefix) {
			return true
		}
	}
	return strings.HasPrefix(line, "Thought ") || line == "Thought"
}

// shouldStopParsing checks if scanning must stop because the model started
// fabricating its own tool output.
func shouldStopParsing(line string) bool {
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "[Based on") {
		return true
	}
	if strings.HasPrefix(line, "Observation:") {
		// Don't stop on continuation prompts echoed back by the model
		if strings.Contains(line, "Please specify") || strings.Contains(line, "what Action you want to take") {
			return false
		}
		if strings.Contains(line, "Error in reasoning") {
			return false
		}
		return true
	}
	return false
}
