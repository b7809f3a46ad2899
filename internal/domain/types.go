package domain

import "fmt"

type UserID string
type ThreadID string

// AgentMode selects which graph answers a summary request.
type AgentMode string

const (
	ModeDeterministic AgentMode = "deterministic" // fetch -> kpis -> conclude, no branching
	ModeAgentic       AgentMode = "agentic"       // llm <-> tools loop
)

// NewThreadID derives the checkpoint key for a conversation.
// Requests over the same (user, range) share checkpointed state and resume each other.
func NewThreadID(userID UserID, start, end string) ThreadID {
	return ThreadID(fmt.Sprintf("%s:%s:%s", userID, start, end))
}
