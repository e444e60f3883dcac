package agent

import (
	"context"

	"github.com/codeready-toolchain/inquest/pkg/config"
)

// LLMClient abstracts the model provider behind a narrow streaming interface.
// Implementations may retry at the transport level internally; callers only
// observe success or error.
type LLMClient interface {
	// Generate sends a conversation to the LLM and returns a stream of chunks.
	// The returned channel is closed when the stream completes.
	// Errors are delivered as ErrorChunk values in the channel.
	Generate(ctx context.Context, input *GenerateInput) (<-chan Chunk, error)

	// Close releases underlying connections.
	Close() error
}

// GenerateInput is one LLM call request.
type GenerateInput struct {
	SessionID string
	Messages  []Message
	Config    *config.LLMProviderConfig
}

// Chunk is the interface for all streaming chunk types.
type Chunk interface {
	chunkType() ChunkType
}

// ChunkType identifies the kind of streaming chunk.
type ChunkType string

const (
	ChunkTypeText  ChunkType = "text"
	ChunkTypeUsage ChunkType = "usage"
	ChunkTypeError ChunkType = "error"
)

// TextChunk is a chunk of the LLM's text response.
type TextChunk struct{ Content string }

// UsageChunk reports token consumption for this LLM call.
type UsageChunk struct{ InputTokens, OutputTokens, TotalTokens int }

// ErrorChunk signals an error from the LLM provider.
type ErrorChunk struct {
	Message   string
	Retryable bool
}

func (c *TextChunk) chunkType() ChunkType  { return ChunkTypeText }
func (c *UsageChunk) chunkType() ChunkType { return ChunkTypeUsage }
func (c *ErrorChunk) chunkType() ChunkType { return ChunkTypeError }

// LLMResponse is a fully-collected (non-streamed) model response.
type LLMResponse struct {
	Text  string
	Usage *TokenUsage
}
