package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnavailable is returned when the remote completion service cannot be
	// reached or rejects the request.
	ErrUnavailable = errors.New("completion backend unavailable")

	// ErrTimeout is returned when the remote completion call exceeds its
	// deadline or is cancelled.
	ErrTimeout = errors.New("completion backend timeout")
)

// Message is a single role-attributed message handed to a backend.
// Role is "user" or "assistant"; system instructions travel separately.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request captures the normalized completion input produced by agents and
// classifiers. Model, Temperature and MaxTokens override the adapter's
// defaults only when set.
type Request struct {
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int64     `json:"max_tokens,omitempty"`
}

// Usage captures token usage statistics for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the final completion result of a backend call.
type Response struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
	Usage *Usage `json:"usage,omitempty"`
}

// Info contains metadata about a backend implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "anthropic", "openai", "bedrock", "mock"
}

// Backend is the minimal interface agents and classifiers use to drive text
// generation. Implementations must honor context cancellation.
type Backend interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Info() Info
}

// Mock is a lightweight in-memory Backend useful for tests and examples. It
// replies with a canned completion keyed on the last message, records every
// request it receives and can be forced into a failure mode.
type Mock struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	requests  []Request
	err       error
}

// NewMock constructs a Mock backend.
func NewMock(name string) *Mock {
	return &Mock{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input.
func (m *Mock) AddResponse(input, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = response
}

// Fail forces all subsequent Complete calls to return err. Pass nil to clear.
func (m *Mock) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Requests returns a copy of all requests received so far.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Complete implements Backend.
func (m *Mock) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if m.err != nil {
		return nil, m.err
	}

	var input string
	if len(req.Messages) > 0 {
		input = req.Messages[len(req.Messages)-1].Content
	}
	text, ok := m.responses[input]
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", input)
	}
	return &Response{Text: text, Model: m.info.Name}, nil
}

// Info implements Backend.
func (m *Mock) Info() Info { return m.info }
