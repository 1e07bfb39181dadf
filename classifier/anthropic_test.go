package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrouter/core"
)

func TestParseDecision(t *testing.T) {
	agents := []core.Descriptor{{ID: "joe"}, {ID: "cathy"}}

	d, err := parseDecision([]byte(`{"agent_id":"Cathy","confidence":0.9}`), agents)
	require.NoError(t, err)
	assert.Equal(t, "cathy", d.AgentID)
	assert.InDelta(t, 0.9, d.Confidence, 0.001)
}

func TestParseDecisionDefers(t *testing.T) {
	agents := []core.Descriptor{{ID: "joe"}}

	d, err := parseDecision([]byte(`{"agent_id":"none"}`), agents)
	require.NoError(t, err)
	assert.True(t, d.Deferred())

	d, err = parseDecision([]byte(`{"agent_id":""}`), agents)
	require.NoError(t, err)
	assert.True(t, d.Deferred())
}

func TestParseDecisionUnknownAgent(t *testing.T) {
	agents := []core.Descriptor{{ID: "joe"}}

	_, err := parseDecision([]byte(`{"agent_id":"ghost"}`), agents)
	assert.ErrorIs(t, err, core.ErrClassification)
}

func TestParseDecisionUnparsable(t *testing.T) {
	_, err := parseDecision([]byte(`not json`), nil)
	assert.ErrorIs(t, err, core.ErrClassification)
}

func TestBuildCatalogPrompt(t *testing.T) {
	prompt := buildCatalogPrompt([]core.Descriptor{
		{ID: "joe", Description: "a stand-up comedian"},
		{ID: "cathy", Description: "another stand-up comedian"},
	})

	assert.Contains(t, prompt, "- joe: a stand-up comedian")
	assert.Contains(t, prompt, "- cathy: another stand-up comedian")
	assert.Contains(t, prompt, "select_agent")
}

func TestBuildClassifierMessages(t *testing.T) {
	history := []core.Turn{
		core.NewUserTurn("tell me a joke"),
		core.NewAgentTurn("joe", "here is one"),
		{Role: core.RoleUser}, // empty content is skipped
	}

	msgs := buildClassifierMessages(history, "another one please")
	// Two history turns plus the new input; the empty turn is dropped.
	require.Len(t, msgs, 3)
}

func TestBuildSelectAgentToolEnumeratesIDs(t *testing.T) {
	tool := buildSelectAgentTool([]core.Descriptor{{ID: "joe"}, {ID: "cathy"}})

	require.NotNil(t, tool.OfTool)
	assert.Equal(t, selectAgentToolName, tool.OfTool.Name)

	props, ok := tool.OfTool.InputSchema.Properties.(map[string]any)
	require.True(t, ok)
	agentProp, ok := props["agent_id"].(map[string]any)
	require.True(t, ok)
	ids, ok := agentProp["enum"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"joe", "cathy", "none"}, ids)
	assert.True(t, strings.Contains(strings.Join(ids, ","), "none"))
}
