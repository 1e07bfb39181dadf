// Package bedrock provides a completion backend for AWS Bedrock via the
// Converse API.
package bedrock

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"github.com/hupe1980/agentrouter/backend"
)

// converseAPI abstracts the Bedrock runtime method used here for testability.
type converseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Options configures the Bedrock backend adapter.
type Options struct {
	Model       string
	Region      string
	Temperature float64
	MaxTokens   int64
}

// Backend wraps the Bedrock Converse API behind the generic backend.Backend
// interface.
type Backend struct {
	client converseAPI
	opts   Options
}

var _ backend.Backend = (*Backend)(nil)

// New creates a Bedrock backend using the default AWS credential chain.
func New(ctx context.Context, optFns ...func(o *Options)) (*Backend, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Backend{client: bedrockruntime.NewFromConfig(awsCfg), opts: opts}, nil
}

// NewFromClient creates a Bedrock backend with an injected Converse client.
func NewFromClient(client converseAPI, optFns ...func(o *Options)) *Backend {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Backend{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       "anthropic.claude-3-haiku-20240307-v1:0",
		Region:      "us-east-1",
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Complete implements backend.Backend via a single Converse call.
func (b *Backend) Complete(ctx context.Context, req backend.Request) (*backend.Response, error) {
	input := b.buildInput(req)

	output, err := b.client.Converse(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	var text string
	if outMsg, ok := output.Output.(*types.ConverseOutputMemberMessage); ok {
		for _, block := range outMsg.Value.Content {
			if tb, ok := block.(*types.ContentBlockMemberText); ok {
				text += tb.Value
			}
		}
	}

	resp := &backend.Response{Text: text, Model: aws.ToString(input.ModelId)}
	if output.Usage != nil {
		in := int(aws.ToInt32(output.Usage.InputTokens))
		out := int(aws.ToInt32(output.Usage.OutputTokens))
		resp.Usage = &backend.Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out}
	}
	return resp, nil
}

// Info returns metadata describing this Bedrock backend.
func (b *Backend) Info() backend.Info {
	return backend.Info{Name: b.opts.Model, Provider: "bedrock"}
}

func (b *Backend) buildInput(req backend.Request) *bedrockruntime.ConverseInput {
	model := b.opts.Model
	if req.Model != "" {
		model = req.Model
	}

	maxTokens := b.opts.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	temperature := b.opts.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(model),
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(maxTokens)),
			Temperature: aws.Float32(float32(temperature)),
		},
	}
	if req.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		}
	}

	for _, m := range req.Messages {
		if m.Content == "" {
			continue
		}
		role := types.ConversationRoleUser
		if m.Role == "assistant" {
			role = types.ConversationRoleAssistant
		}
		input.Messages = append(input.Messages, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
		})
	}

	return input
}

// mapError normalizes SDK failures into the backend error taxonomy.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", backend.ErrTimeout, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode() == "ModelTimeoutException" {
			return fmt.Errorf("%w: %w", backend.ErrTimeout, err)
		}
	}

	return fmt.Errorf("%w: bedrock api error: %w", backend.ErrUnavailable, err)
}
