package slack

import (
	"context"
	"log/slog"
	"time"
)

// NotificationInput carries the result fields rendered into the message.
type NotificationInput struct {
	SessionID     string
	StageName     string
	AlertType     string
	Status        string // completed, failed, timed_out, cancelled, paused
	FinalAnalysis string
	ErrorMessage  string
}

// Service posts investigation results to Slack.
// Nil-safe: all methods are no-ops on a nil receiver.
type Service struct {
	client *Client
	logger *slog.Logger
}

// NewService creates a notification service. Returns nil when token or
// channel is empty, which disables notifications entirely.
func NewService(token, channel string) *Service {
	if token == "" || channel == "" {
		return nil
	}
	return NewServiceWithClient(NewClient(token, channel))
}

// NewServiceWithClient creates a Service backed by a pre-built Client.
func NewServiceWithClient(client *Client) *Service {
	return &Service{
		client: client,
		logger: slog.Default().With("component", "slack-service"),
	}
}

// NotifyResult posts the investigation outcome. Errors are logged, never
// returned.
func (s *Service) NotifyResult(ctx context.Context, input NotificationInput) {
	if s == nil {
		return
	}

	blocks := BuildResultMessage(input)
	if err := s.client.PostMessage(ctx, blocks, 10*time.Second); err != nil {
		s.logger.Error("Failed to send Slack notification",
			"session_id", input.SessionID,
			"status", input.Status,
			"error", err)
	}
}
