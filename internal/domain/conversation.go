package domain

import (
	"encoding/json"
	"strings"
)

// MessageKind tags the variants of a conversation message.
type MessageKind string

const (
	KindSystem MessageKind = "system"
	KindHuman  MessageKind = "human"
	KindAI     MessageKind = "ai"
	KindTool   MessageKind = "tool"
)

// ToolCall is a structured request emitted by the model: a tool name plus
// its raw JSON arguments, correlated to its result by ID.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Message is one entry of the conversation history. ToolCalls is only set on
// AI messages; ToolCallID only on tool results.
type Message struct {
	Kind       MessageKind `json:"kind"`
	Content    string      `json:"content"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
}

func SystemMessage(content string) Message {
	return Message{Kind: KindSystem, Content: content}
}

func HumanMessage(content string) Message {
	return Message{Kind: KindHuman, Content: content}
}

func AIMessage(content string, calls ...ToolCall) Message {
	return Message{Kind: KindAI, Content: content, ToolCalls: calls}
}

func ToolResultMessage(callID, content string) Message {
	return Message{Kind: KindTool, Content: content, ToolCallID: callID}
}

// HasToolCalls reports whether the message requests at least one tool call.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// HasContent reports whether the message carries non-blank text.
func (m Message) HasContent() bool {
	return strings.TrimSpace(m.Content) != ""
}

// State is the orchestrator's working memory for one thread. Rows and KPIs
// are populated progressively by tools; Answer, once set, ends the run.
// The whole struct is what the checkpoint store persists.
type State struct {
	Input  string `json:"input"`
	UserID UserID `json:"user_id"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Goal   string `json:"goal"`

	Rows []Row      `json:"rows,omitempty"`
	KPIs *KPIReport `json:"kpis,omitempty"`

	Answer   string    `json:"answer,omitempty"`
	Messages []Message `json:"messages,omitempty"`
}

// LastAI returns the most recent AI message, or nil if there is none.
func (s *State) LastAI() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Kind == KindAI {
			return &s.Messages[i]
		}
	}
	return nil
}
