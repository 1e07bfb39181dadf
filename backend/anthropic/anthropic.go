// Package anthropic provides a completion backend for the Anthropic Claude API.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/agentrouter/backend"
)

// Options configures the Anthropic backend adapter (model id, temperature,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Backend wraps the Anthropic Messages API behind the generic backend.Backend
// interface.
type Backend struct {
	client *anthropic.Client
	opts   Options
}

var _ backend.Backend = (*Backend)(nil)

// New creates a new Anthropic backend using the official client.
func New(optFns ...func(o *Options)) *Backend {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Backend{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic backend from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Backend {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Backend{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5SonnetLatest,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Complete implements backend.Backend using the non-streaming Messages API.
func (b *Backend) Complete(ctx context.Context, req backend.Request) (*backend.Response, error) {
	params := anthropic.MessageNewParams{
		Model:       b.opts.Model,
		Messages:    buildMessages(req.Messages),
		MaxTokens:   b.opts.MaxTokens,
		Temperature: anthropic.Float(b.opts.Temperature),
	}
	if req.Model != "" {
		params.Model = anthropic.Model(req.Model)
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = req.MaxTokens
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}

	return &backend.Response{
		Text:  text,
		Model: string(resp.Model),
		Usage: &backend.Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// Info returns metadata describing this Anthropic backend.
func (b *Backend) Info() backend.Info {
	return backend.Info{Name: string(b.opts.Model), Provider: "anthropic"}
}

// buildMessages converts normalized messages to Anthropic message params.
func buildMessages(msgs []backend.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		switch m.Role {
		case "assistant":
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out
}

// mapError normalizes SDK failures into the backend error taxonomy.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", backend.ErrTimeout, err)
	}
	return fmt.Errorf("%w: anthropic api error: %w", backend.ErrUnavailable, err)
}
