package agentflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nmoreno/gymstats-agent/internal/adapters/checkpoint/memory"
	"github.com/nmoreno/gymstats-agent/internal/adapters/llm"
	"github.com/nmoreno/gymstats-agent/internal/app/agentflow"
	"github.com/nmoreno/gymstats-agent/internal/domain"
)

// fakeStats is a canned statistics source.
type fakeStats struct {
	rows []domain.Row
	err  error
}

func (f *fakeStats) FetchStats(_ context.Context, _ domain.UserID, _, _ string) ([]domain.Row, error) {
	return f.rows, f.err
}

// noPrompts always reports absence, forcing the built-in system prompt.
type noPrompts struct{}

func (noPrompts) Retrieve(_ context.Context, _ string, _ map[string]string) (string, bool) {
	return "", false
}

func newState() *domain.State {
	return &domain.State{
		Input:  "Resumen del periodo",
		UserID: "u1",
		Start:  "2025-09-01",
		End:    "2025-09-30",
		Goal:   "fuerza",
	}
}

func newLoop(scripted *llm.ScriptedLLM, stats *fakeStats, maxTurns int) *agentflow.Loop {
	return agentflow.NewLoop(scripted, stats, noPrompts{}, memory.NewStore(), "agent-gym", maxTurns)
}

func TestLoopDirectAnswer(t *testing.T) {
	scripted := llm.NewScriptedLLM(
		domain.AIMessage("No puedo ayudar con eso."),
	)
	loop := newLoop(scripted, &fakeStats{}, 8)

	st := newState()
	if err := loop.Run(context.Background(), "u1:2025-09-01:2025-09-30", st); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if st.Answer != "No puedo ayudar con eso." {
		t.Fatalf("expected direct answer, got %q", st.Answer)
	}
	// system + human + ai
	if len(st.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(st.Messages))
	}
	if st.Messages[0].Kind != domain.KindSystem || st.Messages[1].Kind != domain.KindHuman {
		t.Fatalf("conversation not seeded with system+human pair: %+v", st.Messages)
	}
}

func TestLoopKPIsBeforeFetchYieldsPreconditionError(t *testing.T) {
	scripted := llm.NewScriptedLLM(
		domain.AIMessage("", domain.ToolCall{ID: "call-1", Name: "compute_kpis"}),
		domain.AIMessage("Necesito los datos primero."),
	)
	loop := newLoop(scripted, &fakeStats{}, 8)

	st := newState()
	if err := loop.Run(context.Background(), "u1:2025-09-01:2025-09-30", st); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if st.KPIs != nil {
		t.Fatalf("kpis must stay unset after a precondition error, got %+v", st.KPIs)
	}

	result := findToolResult(t, st.Messages, "call-1")
	if result.Content != agentflow.ContentErrKPIsRequireRows {
		t.Fatalf("expected precondition error, got %q", result.Content)
	}
}

func TestLoopFullToolSequence(t *testing.T) {
	rows := []domain.Row{
		{Date: "2025-09-01", MuscleGroup: "legs", Weight: 100, Reps: 10, Set: 3, RPE: 8, RIR: 2},
	}
	scripted := llm.NewScriptedLLM(
		domain.AIMessage("", domain.ToolCall{ID: "c1", Name: "fetch_stats"}),
		domain.AIMessage("", domain.ToolCall{ID: "c2", Name: "compute_kpis"}),
		domain.AIMessage("", domain.ToolCall{ID: "c3", Name: "compute_conclusions", Arguments: json.RawMessage(`{"goal":"fuerza"}`)}),
		domain.AIMessage(""),
	)
	loop := newLoop(scripted, &fakeStats{rows: rows}, 8)

	st := newState()
	if err := loop.Run(context.Background(), "u1:2025-09-01:2025-09-30", st); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(st.Rows) != 1 {
		t.Fatalf("expected 1 row in state, got %d", len(st.Rows))
	}
	if st.KPIs == nil || st.KPIs.Summary != domain.SummaryOK {
		t.Fatalf("expected kpis in state, got %+v", st.KPIs)
	}
	if !strings.Contains(st.Answer, "Para fuerza") {
		t.Fatalf("expected strength advice as answer, got %q", st.Answer)
	}

	// fetch_stats observation is a compact summary, not the rows.
	fetchResult := findToolResult(t, st.Messages, "c1")
	var obs struct {
		RowsPreviewCount int `json:"rows_preview_count"`
		Count            int `json:"count"`
	}
	if err := json.Unmarshal([]byte(fetchResult.Content), &obs); err != nil {
		t.Fatalf("fetch observation is not JSON: %v (%q)", err, fetchResult.Content)
	}
	if obs.Count != 1 || obs.RowsPreviewCount != 1 {
		t.Fatalf("unexpected fetch observation: %+v", obs)
	}

	// compute_conclusions observation is the advice text itself.
	conclResult := findToolResult(t, st.Messages, "c3")
	if conclResult.Content != st.Answer {
		t.Fatalf("conclusions observation %q != answer %q", conclResult.Content, st.Answer)
	}
}

func TestLoopToolFailureIsNonFatal(t *testing.T) {
	scripted := llm.NewScriptedLLM(
		domain.AIMessage("", domain.ToolCall{ID: "c1", Name: "fetch_stats"}),
		domain.AIMessage("La fuente de datos no está disponible."),
	)
	loop := newLoop(scripted, &fakeStats{err: errors.New("connection refused")}, 8)

	st := newState()
	if err := loop.Run(context.Background(), "u1:2025-09-01:2025-09-30", st); err != nil {
		t.Fatalf("tool failure must not abort the run: %v", err)
	}

	result := findToolResult(t, st.Messages, "c1")
	if !strings.HasPrefix(result.Content, "ERROR: ") {
		t.Fatalf("expected ERROR observation, got %q", result.Content)
	}
	if st.Answer != "La fuente de datos no está disponible." {
		t.Fatalf("unexpected answer: %q", st.Answer)
	}
}

func TestLoopUnknownToolYieldsError(t *testing.T) {
	scripted := llm.NewScriptedLLM(
		domain.AIMessage("", domain.ToolCall{ID: "c1", Name: "delete_everything"}),
		domain.AIMessage("listo"),
	)
	loop := newLoop(scripted, &fakeStats{}, 8)

	st := newState()
	if err := loop.Run(context.Background(), "u1:2025-09-01:2025-09-30", st); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	result := findToolResult(t, st.Messages, "c1")
	if !strings.HasPrefix(result.Content, "ERROR: ") {
		t.Fatalf("expected ERROR observation for unknown tool, got %q", result.Content)
	}
}

func TestLoopMaxTurnsCeiling(t *testing.T) {
	// An exhausted script keeps answering with empty content: no tool
	// calls, no answer, so the loop re-prompts until the ceiling.
	scripted := llm.NewScriptedLLM()
	loop := newLoop(scripted, &fakeStats{}, 3)

	st := newState()
	err := loop.Run(context.Background(), "u1:2025-09-01:2025-09-30", st)
	if !errors.Is(err, agentflow.ErrMaxTurns) {
		t.Fatalf("expected ErrMaxTurns, got %v", err)
	}
	if len(scripted.Histories) != 3 {
		t.Fatalf("expected exactly 3 llm invocations, got %d", len(scripted.Histories))
	}
}

func TestLoopCheckpointsAfterEachStep(t *testing.T) {
	store := memory.NewStore()
	scripted := llm.NewScriptedLLM(
		domain.AIMessage("", domain.ToolCall{ID: "c1", Name: "fetch_stats"}),
		domain.AIMessage("hecho"),
	)
	rows := []domain.Row{{Date: "2025-09-01", MuscleGroup: "legs", Weight: 100, Reps: 10, Set: 3}}
	loop := agentflow.NewLoop(scripted, &fakeStats{rows: rows}, noPrompts{}, store, "agent-gym", 8)

	id := domain.ThreadID("u1:2025-09-01:2025-09-30")
	st := newState()
	if err := loop.Run(context.Background(), id, st); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	saved, err := store.Load(context.Background(), id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if saved.Answer != "hecho" || len(saved.Rows) != 1 {
		t.Fatalf("checkpoint does not hold the final state: %+v", saved)
	}
	if len(saved.Messages) != len(st.Messages) {
		t.Fatalf("checkpointed %d messages, state has %d", len(saved.Messages), len(st.Messages))
	}
}

func findToolResult(t *testing.T, messages []domain.Message, callID string) domain.Message {
	t.Helper()
	for _, m := range messages {
		if m.Kind == domain.KindTool && m.ToolCallID == callID {
			return m
		}
	}
	t.Fatalf("no tool result for call %q in %+v", callID, messages)
	return domain.Message{}
}
