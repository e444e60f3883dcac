package slack

import (
	"fmt"

	goslack "github.com/slack-go/slack"
)

const maxBlockTextLength = 2900

var statusEmoji = map[string]string{
	"completed": ":white_check_mark:",
	"failed":    ":x:",
	"timed_out": ":hourglass:",
	"cancelled": ":no_entry_sign:",
	"paused":    ":double_vertical_bar:",
}

var statusLabel = map[string]string{
	"completed": "Investigation Complete",
	"failed":    "Investigation Failed",
	"timed_out": "Investigation Timed Out",
	"cancelled": "Investigation Cancelled",
	"paused":    "Investigation Paused",
}

// BuildResultMessage creates Block Kit blocks for an investigation result.
func BuildResultMessage(input NotificationInput) []goslack.Block {
	emoji := statusEmoji[input.Status]
	if emoji == "" {
		emoji = ":question:"
	}
	label := statusLabel[input.Status]
	if label == "" {
		label = "Investigation " + input.Status
	}

	headerText := fmt.Sprintf("%s *%s* — stage `%s`", emoji, label, input.StageName)
	if input.AlertType != "" {
		headerText += fmt.Sprintf(" (%s)", input.AlertType)
	}

	blocks := []goslack.Block{
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, headerText, false, false),
			nil, nil,
		),
	}

	if input.Status == "completed" && input.FinalAnalysis != "" {
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, truncateForSlack(input.FinalAnalysis), false, false),
			nil, nil,
		))
	}

	if input.Status != "completed" && input.ErrorMessage != "" {
		errText := fmt.Sprintf("*Error:*\n%s", truncateForSlack(input.ErrorMessage))
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, errText, false, false),
			nil, nil,
		))
	}

	footer := fmt.Sprintf("session `%s`", input.SessionID)
	blocks = append(blocks, goslack.NewContextBlock("",
		goslack.NewTextBlockObject(goslack.MarkdownType, footer, false, false)))

	return blocks
}

func truncateForSlack(text string) string {
	if len(text) <= maxBlockTextLength {
		return text
	}
	return text[:maxBlockTextLength] + "\n\n_... (truncated)_"
}
