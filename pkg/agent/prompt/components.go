package prompt

import "strings"

// FormatAlertSection builds the alert details section.
// alertType may be empty; alertData is opaque text from the caller.
func FormatAlertSection(alertType, alertData string) string {
	var sb strings.Builder
	sb.WriteString("## Alert Details\n\n")

	if alertType != "" {
		sb.WriteString("### Alert Metadata\n")
		sb.WriteString("**Alert Type:** ")
		sb.WriteString(alertType)
		sb.WriteString("\n\n")
	}

	// Alert data (opaque text, passed as-is)
	sb.WriteString("### Alert Data\n")
	if alertData == "" {
		sb.WriteString("No additional alert data provided.\n")
		return sb.String()
	}

	sb.WriteString("<!-- ALERT_DATA_START -->\n")
	sb.WriteString(alertData)
	sb.WriteString("\n<!-- ALERT_DATA_END -->\n")

	return sb.String()
}

// FormatRunbookSection builds the runbook section. runbookContent is the
// raw runbook text (typically markdown).
func FormatRunbookSection(runbookContent string) string {
	if runbookContent == "" {
		return "## Runbook Content\nNo runbook available.\n"
	}

	var sb strings.Builder
	sb.WriteString("## Runbook Content\n")
	sb.WriteString("<!-- RUNBOOK START -->\n")
	sb.WriteString(runbookContent)
	sb.WriteString("\n<!-- RUNBOOK END -->\n")
	return sb.String()
}

// FormatBranchResults renders named parallel investigation outputs for
// the synthesis user message.
func FormatBranchResults(analyses []BranchAnalysis) string {
	if len(analyses) == 0 {
		return "## Parallel Investigation Results\nNo investigation results are available.\n"
	}

	var sb strings.Builder
	sb.WriteString("## Parallel Investigation Results\n\n")
	for i, a := range analyses {
		sb.WriteString("### ")
		sb.WriteString(a.Name)
		sb.WriteString("\n\n")
		if a.Analysis == "" {
			sb.WriteString("No analysis produced.\n")
		} else {
			sb.WriteString(a.Analysis)
			sb.WriteString("\n")
		}
		if i < len(analyses)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
