package agent

import "fmt"

// BaseAgent bundles the identity helpers shared by all agent
// implementations. Embed it in concrete agents and supply a Respond method to
// satisfy the core.Agent interface.
type BaseAgent struct {
	name        string
	description string
}

// NewBaseAgent constructs a BaseAgent with a generated description
// (customizable via SetDescription).
func NewBaseAgent(name string) BaseAgent {
	return BaseAgent{name: name, description: fmt.Sprintf("Agent %s", name)}
}

// Name returns the human-readable name for this agent.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose. The
// classifier relies on it, so it should say what the agent is for.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }
