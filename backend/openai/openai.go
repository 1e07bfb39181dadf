// Package openai provides a completion backend for the OpenAI Chat
// Completions API. It adapts the normalized backend.Request/Response shapes
// into the SDK's message format and back.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/agentrouter/backend"
)

// Options configure the OpenAI backend adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Backend wraps the OpenAI Chat Completions API behind the generic
// backend.Backend interface.
type Backend struct {
	client *openai.Client
	opts   Options
}

var _ backend.Backend = (*Backend)(nil)

// New creates a new OpenAI backend using the official client.
func New(optFns ...func(o *Options)) *Backend {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI backend from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Backend {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Backend{client: client, opts: opts}
}

// Complete implements backend.Backend using a non-streaming chat completion.
func (b *Backend) Complete(ctx context.Context, req backend.Request) (*backend.Response, error) {
	params := b.buildParams(req)

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai returned no choices", backend.ErrUnavailable)
	}

	return &backend.Response{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: &backend.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// Info returns metadata describing this OpenAI backend.
func (b *Backend) Info() backend.Info {
	return backend.Info{Name: b.opts.Model, Provider: "openai"}
}

// buildParams assembles the request parameters, letting per-request overrides
// win over adapter defaults.
func (b *Backend) buildParams(req backend.Request) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Content == "" {
			continue
		}
		switch m.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               b.opts.Model,
		Temperature:         openai.Float(b.opts.Temperature),
		MaxCompletionTokens: openai.Int(b.opts.MaxCompletionTokens),
	}
	if req.Model != "" {
		params.Model = req.Model
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(req.MaxTokens)
	}
	return params
}

// mapError normalizes SDK failures into the backend error taxonomy.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", backend.ErrTimeout, err)
	}
	return fmt.Errorf("%w: openai api error: %w", backend.ErrUnavailable, err)
}
