// Package llm implements the provider-facing LLM client on top of
// langchaingo. One Client serves all configured providers; underlying
// model handles are constructed lazily and cached per provider config.
package llm

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/codeready-toolchain/inquest/pkg/agent"
	"github.com/codeready-toolchain/inquest/pkg/config"
)

// Client implements agent.LLMClient over langchaingo provider backends.
// Safe for concurrent use by parallel branches.
type Client struct {
	mu     sync.Mutex
	models map[string]llms.Model
}

// NewClient creates an empty client. Models are built on first use.
func NewClient() *Client {
	return &Client{models: make(map[string]llms.Model)}
}

// Generate sends the conversation to the configured provider and streams
// the response. The returned channel closes when the stream completes;
// errors arrive as ErrorChunk values.
func (c *Client) Generate(ctx context.Context, input *agent.GenerateInput) (<-chan agent.Chunk, error) {
	if input == nil || input.Config == nil {
		return nil, fmt.Errorf("generate input requires a provider config")
	}

	model, err := c.modelFor(input.Config)
	if err != nil {
		return nil, err
	}

	messages := toMessageContent(input.Messages)
	baseOpts := callOptions(input.Config)

	ch := make(chan agent.Chunk, 64)
	go func() {
		defer close(ch)

		streamed := false
		opts := append(baseOpts, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			streamed = true
			select {
			case ch <- &agent.TextChunk{Content: string(chunk)}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}))

		resp, err := model.GenerateContent(ctx, messages, opts...)
		if err != nil {
			ch <- &agent.ErrorChunk{Message: err.Error()}
			return
		}
		if len(resp.Choices) == 0 {
			ch <- &agent.ErrorChunk{Message: "provider returned no choices"}
			return
		}
		choice := resp.Choices[0]

		// Providers without streaming support deliver only the final
		// content. Emit it once, never in addition to streamed chunks.
		if !streamed && choice.Content != "" {
			ch <- &agent.TextChunk{Content: choice.Content}
		}

		if usage := usageFromInfo(choice.GenerationInfo); usage != nil {
			ch <- usage
		}
	}()

	return ch, nil
}

// Close releases cached model handles. langchaingo models hold no
// persistent connections, so this only clears the cache.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = make(map[string]llms.Model)
	return nil
}

// modelFor returns the cached model for a provider config, building it
// on first use.
func (c *Client) modelFor(cfg *config.LLMProviderConfig) (llms.Model, error) {
	key := fmt.Sprintf("%s|%s|%s", cfg.Type, cfg.Model, cfg.BaseURL)

	c.mu.Lock()
	defer c.mu.Unlock()
	if model, ok := c.models[key]; ok {
		return model, nil
	}

	model, err := buildModel(cfg)
	if err != nil {
		return nil, err
	}
	c.models[key] = model
	return model, nil
}

// buildModel constructs the langchaingo backend for one provider config.
func buildModel(cfg *config.LLMProviderConfig) (llms.Model, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key environment variable %q is not set", cfg.APIKeyEnv)
	}

	switch cfg.Type {
	case config.LLMProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(apiKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)

	case config.LLMProviderAnthropic:
		opts := []anthropic.Option{
			anthropic.WithToken(apiKey),
			anthropic.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(opts...)

	case config.LLMProviderGoogle:
		// Construction context only; request contexts are passed per call.
		return googleai.New(context.Background(),
			googleai.WithAPIKey(apiKey),
			googleai.WithDefaultModel(cfg.Model))

	default:
		return nil, fmt.Errorf("unsupported LLM provider type %q", cfg.Type)
	}
}

// callOptions maps provider tuning knobs onto langchaingo call options.
func callOptions(cfg *config.LLMProviderConfig) []llms.CallOption {
	var opts []llms.CallOption
	if cfg.Temperature != nil {
		opts = append(opts, llms.WithTemperature(*cfg.Temperature))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(cfg.MaxTokens))
	}
	return opts
}

// toMessageContent converts conversation messages to langchaingo parts.
func toMessageContent(messages []agent.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var role llms.ChatMessageType
		switch m.Role {
		case agent.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case agent.RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		out = append(out, llms.TextParts(role, m.Content))
	}
	return out
}

// usageFromInfo extracts token usage from provider generation info.
// Key names follow the langchaingo provider conventions; absent or
// non-integer values mean no usage reporting for this call.
func usageFromInfo(info map[string]any) *agent.UsageChunk {
	if info == nil {
		return nil
	}
	input := intFromInfo(info, "PromptTokens", "input_tokens")
	output := intFromInfo(info, "CompletionTokens", "output_tokens")
	total := intFromInfo(info, "TotalTokens")
	if total == 0 {
		total = input + output
	}
	if input == 0 && output == 0 && total == 0 {
		return nil
	}
	return &agent.UsageChunk{InputTokens: input, OutputTokens: output, TotalTokens: total}
}

func intFromInfo(info map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
