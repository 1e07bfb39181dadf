package core

import "context"

// Descriptor carries the identifying details of a registered agent. It is
// immutable once registered; the registry enforces id uniqueness.
type Descriptor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Agent is the capability every routable agent must implement: turn a user
// message plus conversational context into a response, typically by calling a
// completion backend.
//
// Implementations must respect context cancellation and must not mutate the
// request's history slice.
type Agent interface {
	Name() string
	Description() string
	Respond(ctx context.Context, req Request) (*Response, error)
}

// Request is the input handed to an agent's Respond call. Params is an open
// configuration bag; recognized keys (e.g. "temperature", "max_tokens") are
// agent specific, unrecognized keys are passed through untouched.
type Request struct {
	Input   string
	History []Turn
	Params  map[string]any
}

// Response is the structured result of a routed request. It is not mutated
// after creation.
type Response struct {
	AgentID   string         `json:"agent_id"`
	AgentName string         `json:"agent_name"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Decision is the transient result of a classification step. An empty AgentID
// is the sentinel meaning "defer to the default agent".
type Decision struct {
	AgentID    string  `json:"agent_id"`
	Confidence float64 `json:"confidence"`
	Raw        string  `json:"raw,omitempty"`
}

// Deferred reports whether the decision defers to the default agent.
func (d Decision) Deferred() bool { return d.AgentID == "" }
