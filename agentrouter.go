// Package agentrouter provides a high-level façade over the orchestrator and
// service abstractions (registry, classifier, sessions & logging) enabling
// rapid construction of request-routing agent systems. Most applications
// interact with this package by:
//  1. Creating an AgentRouter via New() with a classifier (optionally
//     overriding the default in-memory session store)
//  2. Registering one or more agents and designating a default
//  3. Routing user input with Route()
//
// The façade delegates the routing cycle to orchestrator.Orchestrator while
// keeping setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a durable
// session store and a structured logger.
package agentrouter

import (
	"context"
	"time"

	"github.com/hupe1980/agentrouter/classifier"
	"github.com/hupe1980/agentrouter/core"
	"github.com/hupe1980/agentrouter/logging"
	"github.com/hupe1980/agentrouter/orchestrator"
	"github.com/hupe1980/agentrouter/session"
)

// Options configures the AgentRouter instance.
type Options struct {
	// SessionStore persists conversation state (defaults to an in-memory
	// implementation if not provided).
	SessionStore core.SessionStore

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// HistoryWindow bounds the trailing turns handed to the classifier and
	// agents as conversational context. The stored history itself is never
	// truncated.
	HistoryWindow int

	// ClassifyTimeout bounds each classification call when non-zero.
	ClassifyTimeout time.Duration

	// DispatchTimeout bounds each agent dispatch when non-zero.
	DispatchTimeout time.Duration
}

// AgentRouter is the high-level façade aggregating the underlying
// orchestrator and services.
type AgentRouter struct {
	opts Options
	orch *orchestrator.Orchestrator
}

// New creates a new AgentRouter around the given classifier with optional
// overrides. Any unset service is initialized with an in-memory
// implementation.
func New(c classifier.Classifier, optFns ...func(o *Options)) *AgentRouter {
	opts := Options{
		SessionStore:  session.NewInMemoryStore(),
		Logger:        logging.NoOpLogger{},
		HistoryWindow: 20,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	orch := orchestrator.New(c, func(o *orchestrator.Options) {
		o.SessionStore = opts.SessionStore
		o.Logger = opts.Logger
		o.HistoryWindow = opts.HistoryWindow
		o.ClassifyTimeout = opts.ClassifyTimeout
		o.DispatchTimeout = opts.DispatchTimeout
	})

	return &AgentRouter{opts: opts, orch: orch}
}

// AddAgent registers an agent under the descriptor's id. Re-registration
// with the same id replaces the prior entry.
func (r *AgentRouter) AddAgent(desc core.Descriptor, impl core.Agent) error {
	return r.orch.AddAgent(desc, impl)
}

// GetAllAgents returns a snapshot of the registered agent descriptors keyed
// by id.
func (r *AgentRouter) GetAllAgents() map[string]core.Descriptor {
	return r.orch.GetAllAgents()
}

// SetDefaultAgent designates the fallback agent used when classification is
// inconclusive or fails.
func (r *AgentRouter) SetDefaultAgent(id string) error {
	return r.orch.SetDefaultAgent(id)
}

// GetDefaultAgent returns the configured default agent id, if any.
func (r *AgentRouter) GetDefaultAgent() (string, bool) {
	return r.orch.GetDefaultAgent()
}

// GetSession returns a snapshot of the session for the given key, creating
// it lazily.
func (r *AgentRouter) GetSession(userID, sessionID string) (*core.Session, error) {
	return r.orch.GetSession(userID, sessionID)
}

// Route classifies the input, dispatches it to the selected agent and
// commits the completed exchange to the session identified by userID and
// sessionID. params are forwarded verbatim to the agent.
func (r *AgentRouter) Route(ctx context.Context, input, userID, sessionID string, params map[string]any) (*core.Response, error) {
	return r.orch.Route(ctx, input, userID, sessionID, params)
}
