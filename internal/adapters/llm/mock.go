package llm

import (
	"context"
	"sync"

	"github.com/nmoreno/gymstats-agent/internal/domain"
)

// MockLLM is a trivial client for local runs without credentials: it always
// answers with canned text and never requests tools.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Chat(_ context.Context, _ []domain.Message, _ []domain.ToolSpec) (domain.Message, error) {
	return domain.AIMessage("Respuesta simulada: configura un proveedor LLM real para obtener análisis."), nil
}

// ScriptedLLM replays a fixed sequence of AI messages, recording every
// history it was invoked with. Used by tests to drive the agent loop
// through specific tool-call scenarios.
type ScriptedLLM struct {
	mu      sync.Mutex
	replies []domain.Message

	// Histories holds a snapshot of the messages received per call.
	Histories [][]domain.Message
}

func NewScriptedLLM(replies ...domain.Message) *ScriptedLLM {
	return &ScriptedLLM{replies: replies}
}

func (s *ScriptedLLM) Chat(_ context.Context, messages []domain.Message, _ []domain.ToolSpec) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]domain.Message, len(messages))
	copy(snapshot, messages)
	s.Histories = append(s.Histories, snapshot)

	if len(s.replies) == 0 {
		// Keep answering with empty content: lets tests exercise the
		// re-prompt path and the turn ceiling.
		return domain.AIMessage(""), nil
	}
	next := s.replies[0]
	s.replies = s.replies[1:]
	return next, nil
}
