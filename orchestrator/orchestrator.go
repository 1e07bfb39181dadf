package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentrouter/classifier"
	"github.com/hupe1980/agentrouter/core"
	"github.com/hupe1980/agentrouter/logging"
	"github.com/hupe1980/agentrouter/registry"
	"github.com/hupe1980/agentrouter/session"
)

// Options configures an Orchestrator instance using the functional options
// pattern.
type Options struct {
	// SessionStore persists conversation state. Defaults to the in-memory
	// implementation.
	SessionStore core.SessionStore

	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger

	// HistoryWindow bounds the trailing turns handed to the classifier and
	// the dispatched agent as context. The stored history itself is never
	// truncated. Zero means the full history.
	HistoryWindow int

	// ClassifyTimeout bounds the classification call when non-zero.
	ClassifyTimeout time.Duration

	// DispatchTimeout bounds the agent dispatch when non-zero.
	DispatchTimeout time.Duration
}

// Orchestrator coordinates the complete routing cycle for incoming requests.
// It owns the agent registry and consults the classifier and session store;
// it is the only component callers interact with.
//
// Registration and default designation are administrative operations expected
// before steady-state traffic, but all methods are safe for concurrent use.
type Orchestrator struct {
	registry        *registry.Registry
	classifier      classifier.Classifier
	sessions        core.SessionStore
	logger          logging.Logger
	historyWindow   int
	classifyTimeout time.Duration
	dispatchTimeout time.Duration
}

// New creates an Orchestrator around the given classifier. Unset services
// default to in-memory implementations.
func New(c classifier.Classifier, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		SessionStore:  session.NewInMemoryStore(),
		Logger:        logging.NoOpLogger{},
		HistoryWindow: 20,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Orchestrator{
		registry:        registry.New(),
		classifier:      c,
		sessions:        opts.SessionStore,
		logger:          opts.Logger,
		historyWindow:   opts.HistoryWindow,
		classifyTimeout: opts.ClassifyTimeout,
		dispatchTimeout: opts.DispatchTimeout,
	}
}

// AddAgent registers an agent under the descriptor's id. Re-registration
// with the same id replaces the prior entry.
func (o *Orchestrator) AddAgent(desc core.Descriptor, impl core.Agent) error {
	return o.registry.Register(desc, impl)
}

// GetAllAgents returns a snapshot of the registered agent descriptors keyed
// by id.
func (o *Orchestrator) GetAllAgents() map[string]core.Descriptor {
	return o.registry.List()
}

// SetDefaultAgent designates the fallback agent used when classification is
// inconclusive or fails.
func (o *Orchestrator) SetDefaultAgent(id string) error {
	return o.registry.SetDefault(id)
}

// GetDefaultAgent returns the configured default agent id, if any.
func (o *Orchestrator) GetDefaultAgent() (string, bool) {
	return o.registry.Default()
}

// GetSession returns a snapshot of the session for the given key, creating
// it lazily. Primarily useful for debugging and UIs.
func (o *Orchestrator) GetSession(userID, sessionID string) (*core.Session, error) {
	return o.sessions.Get(userID, sessionID)
}

// Route is the single primary entry point: classify the input, dispatch to
// the selected agent and commit the completed exchange.
//
// Calls sharing a session key are serialized; the session is only mutated
// after a successful dispatch, so a failing call leaves history exactly as
// it was. The returned error wraps core.ErrRouting, core.ErrAgentNotFound or
// core.ErrAgentExecution for callers to discriminate with errors.Is.
func (o *Orchestrator) Route(ctx context.Context, input, userID, sessionID string, params map[string]any) (*core.Response, error) {
	if o.classifier == nil {
		return nil, fmt.Errorf("%w: no classifier configured", core.ErrRouting)
	}

	var resp *core.Response
	err := o.sessions.WithLock(userID, sessionID, func() error {
		var err error
		resp, err = o.routeLocked(ctx, input, userID, sessionID, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// routeLocked runs one routing cycle; the caller holds the session key lock.
func (o *Orchestrator) routeLocked(ctx context.Context, input, userID, sessionID string, params map[string]any) (*core.Response, error) {
	requestID := core.NewID()

	sess, err := o.sessions.Get(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	history := core.Window(sess.History(), o.historyWindow)

	decision, fallbackReason, err := o.classify(ctx, input, history)
	if err != nil {
		return nil, err
	}

	agent, agentID, fellBack, err := o.resolve(decision)
	if err != nil {
		return nil, err
	}
	fellBack = fellBack || fallbackReason != ""

	response, err := o.dispatch(ctx, agent, core.Request{Input: input, History: history, Params: params})
	if err != nil {
		// Session state stays untouched on a failed dispatch.
		return nil, err
	}

	if err := o.sessions.AppendExchange(userID, sessionID,
		core.NewUserTurn(input),
		core.NewAgentTurn(agentID, response.Content),
	); err != nil {
		return nil, fmt.Errorf("append exchange: %w", err)
	}

	metadata := make(map[string]any, len(response.Metadata)+4)
	for k, v := range response.Metadata {
		metadata[k] = v
	}
	metadata["request_id"] = requestID
	if decision.AgentID != "" || decision.Confidence > 0 {
		metadata["confidence"] = decision.Confidence
	}
	if fellBack {
		metadata["fallback"] = true
		if fallbackReason != "" {
			metadata["fallback_reason"] = fallbackReason
		}
	}

	o.logger.Info("request routed",
		"request_id", requestID,
		"user_id", userID,
		"session_id", sessionID,
		"agent_id", agentID,
		"fallback", fellBack,
	)

	return &core.Response{
		AgentID:   agentID,
		AgentName: agent.Name(),
		Content:   response.Content,
		Metadata:  metadata,
	}, nil
}

// classify runs the classifier, translating a classification failure into a
// recoverable deferral when a default agent is configured.
func (o *Orchestrator) classify(ctx context.Context, input string, history []core.Turn) (core.Decision, string, error) {
	cctx := ctx
	if o.classifyTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, o.classifyTimeout)
		defer cancel()
	}

	start := time.Now()
	decision, err := o.classifier.Classify(cctx, input, history, o.registry.Descriptors())
	if err != nil {
		if ctx.Err() != nil {
			// Caller cancelled; do not mask it as a routing condition.
			return core.Decision{}, "", fmt.Errorf("classification aborted: %w", ctx.Err())
		}
		if _, ok := o.registry.Default(); ok {
			o.logger.Warn("classification failed, falling back to default agent",
				"error", err.Error(),
				"duration", time.Since(start),
			)
			return core.Decision{}, err.Error(), nil
		}
		return core.Decision{}, "", fmt.Errorf("%w: %w", core.ErrRouting, err)
	}

	o.logger.Debug("classification completed",
		"agent_id", decision.AgentID,
		"confidence", decision.Confidence,
		"duration", time.Since(start),
	)
	return decision, "", nil
}

// resolve maps a decision to a concrete agent, honoring the default-agent
// fallback explicitly.
func (o *Orchestrator) resolve(decision core.Decision) (core.Agent, string, bool, error) {
	if decision.Deferred() {
		defaultID, ok := o.registry.Default()
		if !ok {
			return nil, "", false, fmt.Errorf("%w: classifier deferred and no default agent is set", core.ErrRouting)
		}
		agent, err := o.registry.Lookup(defaultID)
		if err != nil {
			return nil, "", false, fmt.Errorf("%w: %w", core.ErrRouting, err)
		}
		return agent, defaultID, true, nil
	}

	agent, fellBack, err := o.registry.Resolve(decision.AgentID)
	if err != nil {
		return nil, "", false, fmt.Errorf("%w: %w", core.ErrRouting, err)
	}
	agentID := registry.NormalizeID(decision.AgentID)
	if fellBack {
		agentID, _ = o.registry.Default()
	}
	return agent, agentID, fellBack, nil
}

// dispatch invokes the selected agent, never retrying, and guarantees the
// returned error wraps core.ErrAgentExecution.
func (o *Orchestrator) dispatch(ctx context.Context, agent core.Agent, req core.Request) (*core.Response, error) {
	dctx := ctx
	if o.dispatchTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, o.dispatchTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := agent.Respond(dctx, req)
	if err != nil {
		o.logger.Error("agent dispatch failed",
			"agent", agent.Name(),
			"duration", time.Since(start),
			"error", err.Error(),
		)
		if errors.Is(err, core.ErrAgentExecution) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: agent %s: %w", core.ErrAgentExecution, agent.Name(), err)
	}
	return resp, nil
}
