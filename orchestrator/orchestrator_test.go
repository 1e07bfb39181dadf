package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrouter/classifier"
	"github.com/hupe1980/agentrouter/core"
)

// stubAgent is a minimal core.Agent returning a fixed reply or error.
type stubAgent struct {
	name  string
	reply string
	err   error

	mu    sync.Mutex
	calls []core.Request
}

func (a *stubAgent) Name() string        { return a.name }
func (a *stubAgent) Description() string { return "stub agent" }

func (a *stubAgent) Respond(ctx context.Context, req core.Request) (*core.Response, error) {
	a.mu.Lock()
	a.calls = append(a.calls, req)
	a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.err != nil {
		return nil, a.err
	}
	return &core.Response{AgentName: a.name, Content: a.reply}, nil
}

func (a *stubAgent) requests() []core.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]core.Request(nil), a.calls...)
}

func newTestOrchestrator(t *testing.T, c classifier.Classifier) *Orchestrator {
	t.Helper()

	o := New(c)
	require.NoError(t, o.AddAgent(core.Descriptor{ID: "joe", Name: "Joe", Description: "Tells jokes"}, &stubAgent{name: "Joe", reply: "why did the chicken cross the road"}))
	require.NoError(t, o.AddAgent(core.Descriptor{ID: "cathy", Name: "Cathy", Description: "Loves cats"}, &stubAgent{name: "Cathy", reply: "cats are the best"}))
	return o
}

func TestRouteHappyPath(t *testing.T) {
	o := newTestOrchestrator(t, classifier.Static("joe"))

	resp, err := o.Route(context.Background(), "tell me a joke", "user123", "s1", nil)
	require.NoError(t, err)

	assert.Equal(t, "joe", resp.AgentID)
	assert.Equal(t, "Joe", resp.AgentName)
	assert.Equal(t, "why did the chicken cross the road", resp.Content)
	assert.NotEmpty(t, resp.Metadata["request_id"])
	assert.NotContains(t, resp.Metadata, "fallback")
}

func TestRouteCommitsExchangePair(t *testing.T) {
	o := newTestOrchestrator(t, classifier.Static("joe"))

	_, err := o.Route(context.Background(), "first", "user123", "s1", nil)
	require.NoError(t, err)
	_, err = o.Route(context.Background(), "second", "user123", "s1", nil)
	require.NoError(t, err)

	sess, err := o.GetSession("user123", "s1")
	require.NoError(t, err)

	turns := sess.History()
	require.Len(t, turns, 4)
	assert.Equal(t, core.RoleUser, turns[0].Role)
	assert.Equal(t, "first", turns[0].Content)
	assert.Equal(t, core.RoleAgent, turns[1].Role)
	assert.Equal(t, "joe", turns[1].AgentID)
	assert.Equal(t, core.RoleUser, turns[2].Role)
	assert.Equal(t, "second", turns[2].Content)

	last, ok := sess.LastAgent()
	require.True(t, ok)
	assert.Equal(t, "joe", last)
}

func TestRouteHistoryHandedToAgent(t *testing.T) {
	joe := &stubAgent{name: "Joe", reply: "ha"}

	o := New(classifier.Static("joe"))
	require.NoError(t, o.AddAgent(core.Descriptor{ID: "joe", Name: "Joe"}, joe))

	_, err := o.Route(context.Background(), "first", "u", "s", nil)
	require.NoError(t, err)
	_, err = o.Route(context.Background(), "second", "u", "s", nil)
	require.NoError(t, err)

	calls := joe.requests()
	require.Len(t, calls, 2)
	assert.Empty(t, calls[0].History)
	require.Len(t, calls[1].History, 2)
	assert.Equal(t, "first", calls[1].History[0].Content)
}

func TestRouteDeferredFallsBackToDefault(t *testing.T) {
	deferred := classifier.Func(func(_ context.Context, _ string, _ []core.Turn, _ []core.Descriptor) (core.Decision, error) {
		return core.Decision{}, nil
	})

	o := newTestOrchestrator(t, deferred)
	require.NoError(t, o.SetDefaultAgent("joe"))

	resp, err := o.Route(context.Background(), "hmm", "u", "s", nil)
	require.NoError(t, err)

	assert.Equal(t, "joe", resp.AgentID)
	assert.Equal(t, true, resp.Metadata["fallback"])
	assert.NotContains(t, resp.Metadata, "confidence")
}

func TestRouteClassifierErrorFallsBackToDefault(t *testing.T) {
	failing := classifier.Func(func(_ context.Context, _ string, _ []core.Turn, _ []core.Descriptor) (core.Decision, error) {
		return core.Decision{}, errors.New("model unavailable")
	})

	o := newTestOrchestrator(t, failing)
	require.NoError(t, o.SetDefaultAgent("Joe"))

	resp, err := o.Route(context.Background(), "anything", "u", "s", nil)
	require.NoError(t, err)

	assert.Equal(t, "joe", resp.AgentID)
	assert.Equal(t, true, resp.Metadata["fallback"])
	assert.Contains(t, resp.Metadata["fallback_reason"], "model unavailable")
}

func TestRouteClassifierErrorWithoutDefault(t *testing.T) {
	failing := classifier.Func(func(_ context.Context, _ string, _ []core.Turn, _ []core.Descriptor) (core.Decision, error) {
		return core.Decision{}, errors.New("model unavailable")
	})

	o := newTestOrchestrator(t, failing)

	_, err := o.Route(context.Background(), "anything", "u", "s", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRouting)

	// Nothing was committed.
	sess, err := o.GetSession("u", "s")
	require.NoError(t, err)
	assert.Equal(t, 0, sess.Len())
}

func TestRouteDeferredWithoutDefault(t *testing.T) {
	deferred := classifier.Func(func(_ context.Context, _ string, _ []core.Turn, _ []core.Descriptor) (core.Decision, error) {
		return core.Decision{}, nil
	})

	o := newTestOrchestrator(t, deferred)

	_, err := o.Route(context.Background(), "hmm", "u", "s", nil)
	assert.ErrorIs(t, err, core.ErrRouting)
}

func TestRouteUnknownAgentFallsBackToDefault(t *testing.T) {
	o := newTestOrchestrator(t, classifier.Static("nonexistent"))
	require.NoError(t, o.SetDefaultAgent("cathy"))

	resp, err := o.Route(context.Background(), "hi", "u", "s", nil)
	require.NoError(t, err)

	assert.Equal(t, "cathy", resp.AgentID)
	assert.Equal(t, true, resp.Metadata["fallback"])
}

func TestRouteUnknownAgentWithoutDefault(t *testing.T) {
	o := newTestOrchestrator(t, classifier.Static("nonexistent"))

	_, err := o.Route(context.Background(), "hi", "u", "s", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRouting)
	assert.ErrorIs(t, err, core.ErrAgentNotFound)
}

func TestRouteFailedDispatchLeavesHistoryUntouched(t *testing.T) {
	broken := &stubAgent{name: "Joe", err: errors.New("backend exploded")}

	o := New(classifier.Static("joe"))
	require.NoError(t, o.AddAgent(core.Descriptor{ID: "joe", Name: "Joe"}, broken))

	_, err := o.Route(context.Background(), "hi", "u", "s", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrAgentExecution)

	sess, err := o.GetSession("u", "s")
	require.NoError(t, err)
	assert.Equal(t, 0, sess.Len())

	// A later successful call starts from a clean slate.
	require.NoError(t, o.AddAgent(core.Descriptor{ID: "joe", Name: "Joe"}, &stubAgent{name: "Joe", reply: "ok"}))
	_, err = o.Route(context.Background(), "again", "u", "s", nil)
	require.NoError(t, err)

	sess, err = o.GetSession("u", "s")
	require.NoError(t, err)
	require.Equal(t, 2, sess.Len())
	assert.Equal(t, "again", sess.History()[0].Content)
}

func TestRouteParamsPassthrough(t *testing.T) {
	joe := &stubAgent{name: "Joe", reply: "ok"}

	o := New(classifier.Static("joe"))
	require.NoError(t, o.AddAgent(core.Descriptor{ID: "joe", Name: "Joe"}, joe))

	params := map[string]any{"temperature": 0.2}
	_, err := o.Route(context.Background(), "hi", "u", "s", params)
	require.NoError(t, err)

	calls := joe.requests()
	require.Len(t, calls, 1)
	assert.Equal(t, params, calls[0].Params)
}

func TestRouteConcurrentSameSession(t *testing.T) {
	o := newTestOrchestrator(t, classifier.Static("joe"))

	const workers = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := o.Route(context.Background(), "hi", "u", "shared", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := o.GetSession("u", "shared")
	require.NoError(t, err)
	require.Equal(t, workers*2, sess.Len())

	// Turns always alternate user/agent within a session.
	for i, turn := range sess.History() {
		if i%2 == 0 {
			assert.Equal(t, core.RoleUser, turn.Role)
		} else {
			assert.Equal(t, core.RoleAgent, turn.Role)
		}
	}
}

func TestRouteSessionIsolation(t *testing.T) {
	o := newTestOrchestrator(t, classifier.Static("joe"))

	_, err := o.Route(context.Background(), "hi", "u1", "s1", nil)
	require.NoError(t, err)
	_, err = o.Route(context.Background(), "hi", "u1", "s2", nil)
	require.NoError(t, err)
	_, err = o.Route(context.Background(), "hi", "u2", "s1", nil)
	require.NoError(t, err)

	for _, key := range [][2]string{{"u1", "s1"}, {"u1", "s2"}, {"u2", "s1"}} {
		sess, err := o.GetSession(key[0], key[1])
		require.NoError(t, err)
		assert.Equal(t, 2, sess.Len())
	}
}

func TestRouteCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(t, classifier.Static("joe"))

	_, err := o.Route(ctx, "hi", "u", "s", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	sess, err := o.GetSession("u", "s")
	require.NoError(t, err)
	assert.Equal(t, 0, sess.Len())
}

func TestRouteDispatchTimeout(t *testing.T) {
	slow := &stubAgent{name: "Joe", reply: "late"}

	o := New(classifier.Static("joe"), func(opts *Options) {
		opts.DispatchTimeout = time.Nanosecond
	})
	require.NoError(t, o.AddAgent(core.Descriptor{ID: "joe", Name: "Joe"}, slow))

	// The nanosecond deadline expires before Respond checks the context.
	time.Sleep(time.Millisecond)

	_, err := o.Route(context.Background(), "hi", "u", "s", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrAgentExecution)
}

func TestRouteNilClassifier(t *testing.T) {
	o := New(nil)

	_, err := o.Route(context.Background(), "hi", "u", "s", nil)
	assert.ErrorIs(t, err, core.ErrRouting)
}

func TestAgentManagement(t *testing.T) {
	o := newTestOrchestrator(t, classifier.Static("joe"))

	agents := o.GetAllAgents()
	require.Len(t, agents, 2)
	assert.Equal(t, "Joe", agents["joe"].Name)
	assert.Equal(t, "Cathy", agents["cathy"].Name)

	_, ok := o.GetDefaultAgent()
	assert.False(t, ok)

	require.NoError(t, o.SetDefaultAgent("Joe"))
	id, ok := o.GetDefaultAgent()
	require.True(t, ok)
	assert.Equal(t, "joe", id)

	assert.ErrorIs(t, o.SetDefaultAgent("nope"), core.ErrAgentNotFound)
}
