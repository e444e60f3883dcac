package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeNetError implements net.Error for classification tests.
type fakeNetError struct {
	timeout bool
}

func (e *fakeNetError) Error() string   { return "fake network error" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return false }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want RecoveryAction
	}{
		{name: "nil error", err: nil, want: NoRetry},
		{name: "context canceled", err: context.Canceled, want: NoRetry},
		{name: "context deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: NoRetry},
		{name: "network timeout", err: &fakeNetError{timeout: true}, want: NoRetry},
		{name: "network failure", err: &fakeNetError{}, want: RetryNewSession},
		{name: "eof", err: io.EOF, want: RetryNewSession},
		{name: "wrapped eof", err: fmt.Errorf("read: %w", io.ErrUnexpectedEOF), want: RetryNewSession},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:8080: connection refused"), want: RetryNewSession},
		{name: "broken pipe", err: errors.New("write: Broken Pipe"), want: RetryNewSession},
		{name: "protocol error", err: errors.New("jsonrpc: method not found"), want: NoRetry},
		{name: "invalid params", err: errors.New("jsonrpc: Invalid Params"), want: NoRetry},
		{name: "unknown error", err: errors.New("something unexpected"), want: NoRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}
