package domain

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by CheckpointStore.Load when no state exists for a thread.
var ErrNotFound = errors.New("checkpoint not found")

// ToolSpec declares one tool to the model: name, description and a JSON
// schema for its parameters.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// LLMClient defines how the core interacts with a tool-calling model service.
// The returned message is the model's AI response: text content, tool call
// requests, or both ("has tool calls" takes priority downstream).
type LLMClient interface {
	Chat(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error)
}

// StatsSource retrieves raw training rows for a user over an inclusive date range.
type StatsSource interface {
	FetchStats(ctx context.Context, userID UserID, start, end string) ([]Row, error)
}

// PromptStore looks up a prompt template by name, with optional variable
// substitution. Absence and any error are non-fatal: ok is false and the
// caller degrades to its built-in default.
type PromptStore interface {
	Retrieve(ctx context.Context, name string, variables map[string]string) (prompt string, ok bool)
}

// CheckpointStore persists conversation state keyed by thread identity so a
// repeated invocation with the same identity resumes instead of restarting.
type CheckpointStore interface {
	Load(ctx context.Context, id ThreadID) (*State, error)
	Save(ctx context.Context, id ThreadID, state *State) error
}

// Reformatter optionally rewrites the deterministic pipeline's advice into a
// nicer shape. Implementations must degrade to the raw advice on failure; a
// no-op implementation is valid.
type Reformatter interface {
	Reformat(ctx context.Context, goal string, kpis *KPIReport, advice string) (string, error)
}
