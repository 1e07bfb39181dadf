package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/hupe1980/agentrouter/core"
)

// selectAgentToolName is the forced tool the model must call to emit its
// routing decision.
const selectAgentToolName = "select_agent"

// AnthropicOptions configures the Anthropic classifier (model id, sampling,
// history window, API key).
type AnthropicOptions struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	// HistoryWindow bounds the number of trailing turns handed to the model
	// as context. Zero means the full history.
	HistoryWindow int
}

// Anthropic classifies requests with a single Claude call, forcing a
// select_agent tool invocation so the decision comes back structured instead
// of as free text.
type Anthropic struct {
	client *anthropic.Client
	opts   AnthropicOptions
}

var _ Classifier = (*Anthropic)(nil)

// NewAnthropic creates an Anthropic classifier using the official client.
func NewAnthropic(optFns ...func(o *AnthropicOptions)) *Anthropic {
	opts := defaultAnthropicOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Anthropic{client: &client, opts: opts}
}

// NewAnthropicFromClient creates an Anthropic classifier from an existing client.
func NewAnthropicFromClient(client *anthropic.Client, optFns ...func(o *AnthropicOptions)) *Anthropic {
	opts := defaultAnthropicOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Anthropic{client: client, opts: opts}
}

func defaultAnthropicOptions() AnthropicOptions {
	return AnthropicOptions{
		Model:         anthropic.ModelClaude3_5SonnetLatest,
		Temperature:   0.0,
		MaxTokens:     512,
		HistoryWindow: 20,
	}
}

// Classify implements Classifier. A transport failure or an unparsable reply
// surfaces as core.ErrClassification with the cause attached; the method
// never substitutes a guess of its own.
func (c *Anthropic) Classify(ctx context.Context, input string, history []core.Turn, agents []core.Descriptor) (core.Decision, error) {
	if len(agents) == 0 {
		return core.Decision{}, fmt.Errorf("%w: no agents available", core.ErrClassification)
	}

	params := anthropic.MessageNewParams{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: buildCatalogPrompt(agents)}},
		Messages:    buildClassifierMessages(core.Window(history, c.opts.HistoryWindow), input),
		Tools:       []anthropic.ToolUnionParam{buildSelectAgentTool(agents)},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: selectAgentToolName},
		},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return core.Decision{}, fmt.Errorf("%w: %w", core.ErrClassification, err)
	}

	// The model may emit several tool_use blocks; the first one in its own
	// ranked order wins so results are reproducible for a fixed response.
	for _, block := range resp.Content {
		if block.Type != "tool_use" {
			continue
		}
		toolBlock := block.AsToolUse()
		raw, err := json.Marshal(toolBlock.Input)
		if err != nil {
			return core.Decision{}, fmt.Errorf("%w: invalid tool input: %w", core.ErrClassification, err)
		}
		return parseDecision(raw, agents)
	}

	return core.Decision{}, fmt.Errorf("%w: model returned no %s call", core.ErrClassification, selectAgentToolName)
}

// parseDecision validates the structured tool input against the available
// agents. "none" (or empty) defers to the default agent; any other unknown id
// is an error.
func parseDecision(raw []byte, agents []core.Descriptor) (core.Decision, error) {
	var out struct {
		AgentID    string  `json:"agent_id"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return core.Decision{}, fmt.Errorf("%w: unparsable decision %q: %w", core.ErrClassification, raw, err)
	}

	id := strings.ToLower(strings.TrimSpace(out.AgentID))
	if id == "" || id == "none" {
		return core.Decision{Confidence: out.Confidence, Raw: string(raw)}, nil
	}
	for _, d := range agents {
		if strings.ToLower(d.ID) == id {
			return core.Decision{AgentID: id, Confidence: out.Confidence, Raw: string(raw)}, nil
		}
	}
	return core.Decision{}, fmt.Errorf("%w: decision names unknown agent %q", core.ErrClassification, out.AgentID)
}

// buildCatalogPrompt renders the agent catalog the model chooses from.
func buildCatalogPrompt(agents []core.Descriptor) string {
	var sb strings.Builder
	sb.WriteString("You are a request router. Select the single best agent for the user's request ")
	sb.WriteString("by calling the select_agent tool. If no listed agent fits, use agent_id \"none\".\n\n")
	sb.WriteString("Available agents:\n")
	for _, d := range agents {
		fmt.Fprintf(&sb, "- %s: %s\n", d.ID, d.Description)
	}
	return sb.String()
}

// buildClassifierMessages renders the windowed history plus the new input.
func buildClassifierMessages(history []core.Turn, input string) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, turn := range history {
		if turn.Content == "" {
			continue
		}
		if turn.Role == core.RoleAgent {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}
	return append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(input)))
}

// buildSelectAgentTool declares the forced decision tool with the agent ids
// as an enum so the model cannot invent identifiers.
func buildSelectAgentTool(agents []core.Descriptor) anthropic.ToolUnionParam {
	ids := make([]string, 0, len(agents)+1)
	for _, d := range agents {
		ids = append(ids, d.ID)
	}
	ids = append(ids, "none")

	schema := anthropic.ToolInputSchemaParam{
		Type: constant.Object("object"),
		Properties: map[string]any{
			"agent_id": map[string]any{
				"type":        "string",
				"enum":        ids,
				"description": "Identifier of the selected agent, or \"none\" to defer to the default agent.",
			},
			"confidence": map[string]any{
				"type":        "number",
				"description": "Confidence in the selection between 0 and 1.",
			},
		},
		Required: []string{"agent_id"},
	}

	return anthropic.ToolUnionParamOfTool(schema, selectAgentToolName)
}
