// Package agentflow contains the two graphs that answer a summary request:
// a deterministic fetch->kpis->conclude pipeline and an agentic loop where
// the model decides which tool to call next. Both persist the full
// conversation state after every completed step so a run can resume from its
// last checkpoint.
package agentflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nmoreno/gymstats-agent/internal/app/advice"
	"github.com/nmoreno/gymstats-agent/internal/app/kpi"
	"github.com/nmoreno/gymstats-agent/internal/app/tools"
	"github.com/nmoreno/gymstats-agent/internal/domain"
	"github.com/nmoreno/gymstats-agent/internal/observability"
)

// ErrMaxTurns reports that the llm<->tools cycle hit its turn ceiling
// without the model producing a final answer.
var ErrMaxTurns = errors.New("agent exceeded maximum turns")

// Tool-result errors surfaced to the model so it can self-correct by calling
// the missing prerequisite tool first.
const (
	ContentErrKPIsRequireRows   = "ERROR: compute_kpis requiere 'rows' (llama antes a fetch_stats)."
	ContentErrAdviceRequireKPIs = "ERROR: compute_conclusions requiere 'kpis' (llama antes a compute_kpis)."
)

// previewCap bounds the row preview count reported back to the model after
// a fetch, keeping observations compact.
const previewCap = 5

// Loop runs the agentic state machine: the model is invoked with the full
// message history and the declared tool set, requested tools are executed in
// call order, and the observations are fed back until the model answers.
type Loop struct {
	llm         domain.LLMClient
	stats       domain.StatsSource
	prompts     domain.PromptStore
	checkpoints domain.CheckpointStore
	promptName  string
	maxTurns    int
}

func NewLoop(
	llm domain.LLMClient,
	stats domain.StatsSource,
	prompts domain.PromptStore,
	checkpoints domain.CheckpointStore,
	promptName string,
	maxTurns int,
) *Loop {
	return &Loop{
		llm:         llm,
		stats:       stats,
		prompts:     prompts,
		checkpoints: checkpoints,
		promptName:  promptName,
		maxTurns:    maxTurns,
	}
}

// Run drives the loop until the model produces a final answer with no
// pending tool calls, or the turn ceiling is hit. State is checkpointed
// after the llm step and again after the tools step.
func (l *Loop) Run(ctx context.Context, id domain.ThreadID, st *domain.State) error {
	log := observability.LoggerFromContext(ctx).With("thread_id", id)

	for turn := 0; ; turn++ {
		if turn >= l.maxTurns {
			log.Error("turn ceiling hit", "max_turns", l.maxTurns)
			return fmt.Errorf("%w (%d)", ErrMaxTurns, l.maxTurns)
		}

		l.ensureMessages(ctx, st)

		start := time.Now()
		ai, err := l.llm.Chat(ctx, st.Messages, tools.Specs())
		if err != nil {
			return fmt.Errorf("llm chat: %w", err)
		}
		log.Info("llm turn done",
			"turn", turn,
			"tool_calls", len(ai.ToolCalls),
			"elapsed_ms", time.Since(start).Milliseconds())

		st.Messages = append(st.Messages, ai)
		if !ai.HasToolCalls() && ai.HasContent() {
			st.Answer = ai.Content
		}
		if err := l.save(ctx, id, st); err != nil {
			return err
		}

		switch {
		case ai.HasToolCalls():
			l.runTools(ctx, st)
			if err := l.save(ctx, id, st); err != nil {
				return err
			}
		case st.Answer != "":
			log.Info("loop finished", "turns", turn+1)
			return nil
		default:
			// No tool calls and no answer yet: re-prompt the model.
			log.Info("llm returned neither tools nor answer, re-prompting", "turn", turn)
		}
	}
}

// runTools executes every tool call of the most recent AI message, in call
// order. Each call yields exactly one tool-result message correlated by its
// ID. Failures are local: they become error observations and the turn goes
// on. When several calls in one turn write the same field, the last one
// processed wins.
func (l *Loop) runTools(ctx context.Context, st *domain.State) {
	last := st.LastAI()
	if last == nil || !last.HasToolCalls() {
		return
	}

	log := observability.LoggerFromContext(ctx)

	var pending toolUpdates

	for _, call := range last.ToolCalls {
		kind, known := tools.ParseKind(call.Name)
		if !known {
			st.Messages = append(st.Messages, domain.ToolResultMessage(
				call.ID, fmt.Sprintf("ERROR: herramienta desconocida: %q", call.Name)))
			continue
		}

		// Preconditions look at the state as it was when the turn
		// started: updates from earlier calls of the same turn are
		// applied only after the whole turn.
		switch kind {
		case tools.KindComputeKPIs:
			if len(st.Rows) == 0 {
				st.Messages = append(st.Messages, domain.ToolResultMessage(call.ID, ContentErrKPIsRequireRows))
				continue
			}
		case tools.KindComputeConclusions:
			if st.KPIs == nil {
				st.Messages = append(st.Messages, domain.ToolResultMessage(call.ID, ContentErrAdviceRequireKPIs))
				continue
			}
		}

		obs, err := l.execute(ctx, st, kind, call.Arguments, &pending)
		if err != nil {
			log.Warn("tool failed", "tool", call.Name, "error", err)
			st.Messages = append(st.Messages, domain.ToolResultMessage(call.ID, toolError(err)))
			continue
		}

		st.Messages = append(st.Messages, domain.ToolResultMessage(call.ID, obs))
	}

	pending.applyTo(st)
}

// toolUpdates accumulates the state writes of one tools turn. They are
// applied after every call ran, so preconditions inside the turn observe the
// pre-turn state.
type toolUpdates struct {
	rows      []domain.Row
	hasRows   bool
	kpis      *domain.KPIReport
	answer    string
	hasAnswer bool
}

func (u *toolUpdates) applyTo(st *domain.State) {
	if u.hasRows {
		st.Rows = u.rows
	}
	if u.kpis != nil {
		st.KPIs = u.kpis
	}
	if u.hasAnswer {
		st.Answer = u.answer
	}
}

// execute dispatches one call over the closed tool enumeration and returns
// the observation fed back to the model.
func (l *Loop) execute(
	ctx context.Context,
	st *domain.State,
	kind tools.Kind,
	rawArgs json.RawMessage,
	pending *toolUpdates,
) (string, error) {
	switch kind {
	case tools.KindFetchStats:
		var args tools.FetchStatsArgs
		if err := unmarshalArgs(rawArgs, &args); err != nil {
			return "", err
		}
		userID := st.UserID
		if args.UserID != "" {
			userID = domain.UserID(args.UserID)
		}
		start, end := st.Start, st.End
		if args.Start != "" {
			start = args.Start
		}
		if args.End != "" {
			end = args.End
		}

		rows, err := l.stats.FetchStats(ctx, userID, start, end)
		if err != nil {
			return "", err
		}
		pending.rows = rows
		pending.hasRows = true

		obs, _ := json.Marshal(struct {
			RowsPreviewCount int `json:"rows_preview_count"`
			Count            int `json:"count"`
		}{
			RowsPreviewCount: min(previewCap, len(rows)),
			Count:            len(rows),
		})
		return string(obs), nil

	case tools.KindComputeKPIs:
		report := kpi.Compute(st.Rows)
		pending.kpis = report

		obs, _ := json.Marshal(struct {
			KPIs *domain.KPIReport `json:"kpis"`
		}{KPIs: report})
		return string(obs), nil

	case tools.KindComputeConclusions:
		var args tools.ComputeConclusionsArgs
		if err := unmarshalArgs(rawArgs, &args); err != nil {
			return "", err
		}
		goal := st.Goal
		if args.Goal != "" {
			goal = args.Goal
		}

		out := advice.Compute(st.KPIs, goal)
		answer := out.Advice
		if answer == "" {
			answer = "ok"
		}
		pending.answer = answer
		pending.hasAnswer = true
		return answer, nil
	}

	return "", fmt.Errorf("unhandled tool kind %q", kind)
}

func (l *Loop) save(ctx context.Context, id domain.ThreadID, st *domain.State) error {
	if err := l.checkpoints.Save(ctx, id, st); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", id, err)
	}
	return nil
}

func unmarshalArgs(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("decode tool arguments: %w", err)
	}
	return nil
}

// toolError renders an execution failure the way the model sees it: the
// error's kind plus its message.
func toolError(err error) string {
	return fmt.Sprintf("ERROR: %T: %v", err, err)
}
