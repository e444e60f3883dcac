package slack

import (
	"strings"
	"testing"

	goslack "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockText(t *testing.T, block goslack.Block) string {
	t.Helper()
	switch b := block.(type) {
	case *goslack.SectionBlock:
		return b.Text.Text
	case *goslack.ContextBlock:
		var parts []string
		for _, el := range b.ContextElements.Elements {
			if text, ok := el.(*goslack.TextBlockObject); ok {
				parts = append(parts, text.Text)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

func TestBuildResultMessageCompleted(t *testing.T) {
	blocks := BuildResultMessage(NotificationInput{
		SessionID:     "sess-1",
		StageName:     "investigate",
		AlertType:     "PodCrashLoop",
		Status:        "completed",
		FinalAnalysis: "The pod is crashing because of a missing ConfigMap.",
	})

	require.Len(t, blocks, 3)
	header := blockText(t, blocks[0])
	assert.Contains(t, header, ":white_check_mark:")
	assert.Contains(t, header, "Investigation Complete")
	assert.Contains(t, header, "investigate")
	assert.Contains(t, header, "PodCrashLoop")

	assert.Contains(t, blockText(t, blocks[1]), "missing ConfigMap")
	assert.Contains(t, blockText(t, blocks[2]), "sess-1")
}

func TestBuildResultMessageFailed(t *testing.T) {
	blocks := BuildResultMessage(NotificationInput{
		SessionID:    "sess-2",
		StageName:    "investigate",
		Status:       "failed",
		ErrorMessage: "2/2 branches failed",
	})

	require.Len(t, blocks, 3)
	assert.Contains(t, blockText(t, blocks[0]), ":x:")
	assert.Contains(t, blockText(t, blocks[1]), "2/2 branches failed")
}

func TestBuildResultMessageUnknownStatus(t *testing.T) {
	blocks := BuildResultMessage(NotificationInput{
		SessionID: "sess-3",
		StageName: "investigate",
		Status:    "exploded",
	})

	header := blockText(t, blocks[0])
	assert.Contains(t, header, ":question:")
	assert.Contains(t, header, "Investigation exploded")
}

func TestTruncateForSlack(t *testing.T) {
	short := "short analysis"
	assert.Equal(t, short, truncateForSlack(short))

	long := strings.Repeat("x", maxBlockTextLength+100)
	truncated := truncateForSlack(long)
	assert.Contains(t, truncated, "truncated")
	assert.Less(t, len(truncated), len(long))
}
