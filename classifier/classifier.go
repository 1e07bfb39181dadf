package classifier

import (
	"context"

	"github.com/hupe1980/agentrouter/core"
)

// Classifier selects exactly one agent id from the available descriptors, or
// returns the defer-to-default sentinel (empty Decision.AgentID).
type Classifier interface {
	Classify(ctx context.Context, input string, history []core.Turn, agents []core.Descriptor) (core.Decision, error)
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, input string, history []core.Turn, agents []core.Descriptor) (core.Decision, error)

// Classify implements Classifier.
func (f Func) Classify(ctx context.Context, input string, history []core.Turn, agents []core.Descriptor) (core.Decision, error) {
	return f(ctx, input, history, agents)
}

// Static always selects the given agent id. Useful for tests and single-agent
// deployments.
func Static(agentID string) Classifier {
	return Func(func(context.Context, string, []core.Turn, []core.Descriptor) (core.Decision, error) {
		return core.Decision{AgentID: agentID, Confidence: 1.0, Raw: "static"}, nil
	})
}
