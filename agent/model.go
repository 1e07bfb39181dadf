package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrouter/backend"
	"github.com/hupe1980/agentrouter/core"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	// Instruction is the system prompt sent with every completion.
	Instruction string
	// Description is the classifier-facing description of the agent.
	Description string
	// HistoryWindow bounds the trailing turns handed to the backend as
	// context. Zero means the full history.
	HistoryWindow int
	// Model overrides the backend's default model id when non-empty.
	Model string
}

// ModelAgent is the generic backend-driven agent: it renders the session
// history plus the new input into a completion request and returns the
// backend's reply. Domain specialists are thin configurations of it.
type ModelAgent struct {
	BaseAgent
	backend       backend.Backend
	instruction   string
	historyWindow int
	model         string
}

var _ core.Agent = (*ModelAgent)(nil)

// NewModelAgent creates a backend-driven agent with sensible defaults: a
// plain assistant instruction and a 20-turn history window.
func NewModelAgent(name string, b backend.Backend, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:   fmt.Sprintf("You are %s, a helpful AI assistant.", name),
		HistoryWindow: 20,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ModelAgent{
		BaseAgent:     NewBaseAgent(name),
		backend:       b,
		instruction:   opts.Instruction,
		historyWindow: opts.HistoryWindow,
		model:         opts.Model,
	}
	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}
	return a
}

// Backend returns the underlying completion backend.
func (a *ModelAgent) Backend() backend.Backend { return a.backend }

// Respond implements core.Agent. Recognized params: "temperature" (float),
// "max_tokens" (integer), "model" (string); unrecognized keys are ignored and
// passed through untouched on the request.
func (a *ModelAgent) Respond(ctx context.Context, req core.Request) (*core.Response, error) {
	resp, err := a.complete(ctx, req, "")
	if err != nil {
		return nil, err
	}
	return a.buildResponse(resp), nil
}

// complete runs the backend call, prefixing the user input with extraContext
// when non-empty. Shared by ModelAgent and the enriching specialists.
func (a *ModelAgent) complete(ctx context.Context, req core.Request, extraContext string) (*backend.Response, error) {
	input := req.Input
	if extraContext != "" {
		input = extraContext + "\n\n" + input
	}

	breq := backend.Request{
		System:   a.instruction,
		Messages: buildMessages(core.Window(req.History, a.historyWindow), input),
		Model:    a.model,
	}
	applyParams(&breq, req.Params)

	resp, err := a.backend.Complete(ctx, breq)
	if err != nil {
		return nil, fmt.Errorf("%w: agent %s: %w", core.ErrAgentExecution, a.Name(), err)
	}
	return resp, nil
}

func (a *ModelAgent) buildResponse(resp *backend.Response) *core.Response {
	meta := map[string]any{"model": resp.Model}
	if resp.Usage != nil {
		meta["total_tokens"] = resp.Usage.TotalTokens
	}
	return &core.Response{
		AgentName: a.Name(),
		Content:   resp.Text,
		Metadata:  meta,
	}
}

// buildMessages converts the windowed history plus the new input into
// backend messages.
func buildMessages(history []core.Turn, input string) []backend.Message {
	msgs := make([]backend.Message, 0, len(history)+1)
	for _, turn := range history {
		if turn.Content == "" {
			continue
		}
		role := "user"
		if turn.Role == core.RoleAgent {
			role = "assistant"
		}
		msgs = append(msgs, backend.Message{Role: role, Content: turn.Content})
	}
	return append(msgs, backend.Message{Role: "user", Content: input})
}

// applyParams maps the recognized keys of the open params bag onto the
// backend request.
func applyParams(breq *backend.Request, params map[string]any) {
	if v, ok := paramFloat(params, "temperature"); ok {
		breq.Temperature = &v
	}
	if v, ok := paramInt(params, "max_tokens"); ok {
		breq.MaxTokens = v
	}
	if v, ok := params["model"].(string); ok && v != "" {
		breq.Model = v
	}
}

func paramFloat(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func paramInt(params map[string]any, key string) (int64, bool) {
	switch v := params[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
