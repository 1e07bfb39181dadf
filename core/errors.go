package core

import "errors"

var (
	// ErrAgentNotFound is returned when an agent id does not resolve to a
	// registered agent and no default agent is configured.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrClassification is returned when the classifier backend fails or
	// produces an unparsable decision. The orchestrator decides whether the
	// condition is recoverable via the default agent.
	ErrClassification = errors.New("classification failed")

	// ErrRouting is returned when no viable agent exists for a request:
	// classification failed and no default agent is configured.
	ErrRouting = errors.New("no viable agent for request")

	// ErrAgentExecution is returned when the selected agent's underlying call
	// fails. The session history is left untouched in that case.
	ErrAgentExecution = errors.New("agent execution failed")
)
