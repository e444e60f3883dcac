package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceRequiresTokenAndChannel(t *testing.T) {
	assert.Nil(t, NewService("", "C123"))
	assert.Nil(t, NewService("xoxb-token", ""))
	assert.NotNil(t, NewService("xoxb-token", "C123"))
}

func TestNilServiceIsNoOp(t *testing.T) {
	var s *Service
	// Must not panic.
	s.NotifyResult(context.Background(), NotificationInput{Status: "completed"})
}

func TestNotifyResultPostsMessage(t *testing.T) {
	var gotPath string
	var gotChannel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotChannel = r.Form.Get("channel")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	defer server.Close()

	client := NewClientWithAPIURL("xoxb-test", "C123", server.URL+"/")
	svc := NewServiceWithClient(client)

	svc.NotifyResult(context.Background(), NotificationInput{
		SessionID:     "sess-1",
		StageName:     "investigate",
		Status:        "completed",
		FinalAnalysis: "all good",
	})

	assert.Equal(t, "/chat.postMessage", gotPath)
	assert.Equal(t, "C123", gotChannel)
}
