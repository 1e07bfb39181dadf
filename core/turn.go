package core

import "time"

// Role identifies the author side of a conversation turn.
type Role string

const (
	// RoleUser marks a turn authored by the end user.
	RoleUser Role = "user"
	// RoleAgent marks a turn authored by a routed agent.
	RoleAgent Role = "agent"
)

// Turn is a single entry in a session's ordered, append-only history.
// AgentID is set only on agent-authored turns.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	AgentID   string    `json:"agent_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserTurn creates a user-authored turn stamped with the current UTC time.
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content, Timestamp: time.Now().UTC()}
}

// NewAgentTurn creates an agent-authored turn stamped with the current UTC time.
func NewAgentTurn(agentID, content string) Turn {
	return Turn{Role: RoleAgent, Content: content, AgentID: agentID, Timestamp: time.Now().UTC()}
}

// Window returns the trailing n turns of history. It never copies more than
// needed and returns the input slice unchanged when it already fits. A zero or
// negative n means no windowing.
func Window(turns []Turn, n int) []Turn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
