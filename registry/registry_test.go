package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrouter/core"
)

// staticAgent is a minimal core.Agent returning a fixed reply.
type staticAgent struct {
	name  string
	reply string
}

func (a *staticAgent) Name() string        { return a.name }
func (a *staticAgent) Description() string { return "static test agent" }

func (a *staticAgent) Respond(_ context.Context, _ core.Request) (*core.Response, error) {
	return &core.Response{AgentID: NormalizeID(a.name), AgentName: a.name, Content: a.reply}, nil
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(core.Descriptor{ID: "Cathy", Name: "Cathy"}, &staticAgent{name: "Cathy"}))

	// Lookup is case-insensitive.
	a, err := r.Lookup("cathy")
	require.NoError(t, err)
	assert.Equal(t, "Cathy", a.Name())

	a, err = r.Lookup("CATHY")
	require.NoError(t, err)
	assert.Equal(t, "Cathy", a.Name())
}

func TestRegisterLastWriteWins(t *testing.T) {
	r := New()
	first := &staticAgent{name: "Cathy", reply: "first"}
	second := &staticAgent{name: "Cathy", reply: "second"}

	require.NoError(t, r.Register(core.Descriptor{ID: "cathy", Name: "Cathy"}, first))
	require.NoError(t, r.Register(core.Descriptor{ID: "Cathy", Name: "Cathy"}, second))

	assert.Equal(t, 1, r.Len())

	a, err := r.Lookup("cathy")
	require.NoError(t, err)
	assert.Same(t, second, a)
}

func TestRegisterValidation(t *testing.T) {
	r := New()
	assert.Error(t, r.Register(core.Descriptor{ID: "  "}, &staticAgent{name: "x"}))
	assert.Error(t, r.Register(core.Descriptor{ID: "x"}, nil))
}

func TestLookupUnknown(t *testing.T) {
	r := New()
	_, err := r.Lookup("ghost")
	assert.ErrorIs(t, err, core.ErrAgentNotFound)
}

func TestResolveFallbackIsExplicit(t *testing.T) {
	r := New()
	joe := &staticAgent{name: "Joe"}
	require.NoError(t, r.Register(core.Descriptor{ID: "joe", Name: "Joe"}, joe))

	// No default configured: unknown id fails.
	_, _, err := r.Resolve("ghost")
	assert.ErrorIs(t, err, core.ErrAgentNotFound)

	require.NoError(t, r.SetDefault("joe"))

	// Known id resolves without fallback.
	a, fellBack, err := r.Resolve("joe")
	require.NoError(t, err)
	assert.False(t, fellBack)
	assert.Same(t, joe, a)

	// Unknown id falls back to the default, reported explicitly.
	a, fellBack, err = r.Resolve("ghost")
	require.NoError(t, err)
	assert.True(t, fellBack)
	assert.Same(t, joe, a)
}

func TestSetDefaultUnknown(t *testing.T) {
	r := New()
	assert.ErrorIs(t, r.SetDefault("ghost"), core.ErrAgentNotFound)

	_, ok := r.Default()
	assert.False(t, ok)
}

func TestListSnapshot(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(core.Descriptor{ID: "cathy", Name: "Cathy"}, &staticAgent{name: "Cathy"}))

	listed := r.List()
	require.Contains(t, listed, "cathy")
	assert.Equal(t, "Cathy", listed["cathy"].Name)

	// Mutating the snapshot does not affect the registry.
	delete(listed, "cathy")
	_, err := r.Lookup("cathy")
	assert.NoError(t, err)
}

func TestDescriptorsStableOrder(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(core.Descriptor{ID: "joe", Name: "Joe"}, &staticAgent{name: "Joe"}))
	require.NoError(t, r.Register(core.Descriptor{ID: "cathy", Name: "Cathy"}, &staticAgent{name: "Cathy"}))
	// Re-registration keeps the original position.
	require.NoError(t, r.Register(core.Descriptor{ID: "joe", Name: "Joe v2"}, &staticAgent{name: "Joe v2"}))

	descs := r.Descriptors()
	require.Len(t, descs, 2)
	assert.Equal(t, "joe", descs[0].ID)
	assert.Equal(t, "Joe v2", descs[0].Name)
	assert.Equal(t, "cathy", descs[1].ID)
}
