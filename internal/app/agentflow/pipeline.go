package agentflow

import (
	"context"
	"fmt"

	"github.com/nmoreno/gymstats-agent/internal/app/advice"
	"github.com/nmoreno/gymstats-agent/internal/app/kpi"
	"github.com/nmoreno/gymstats-agent/internal/domain"
	"github.com/nmoreno/gymstats-agent/internal/observability"
)

// Pipeline is the deterministic graph: fetch -> kpis -> conclude, no
// branching. Once started it always runs to completion; the only fatal
// failure is the data fetch itself.
type Pipeline struct {
	stats       domain.StatsSource
	checkpoints domain.CheckpointStore
	reformat    domain.Reformatter
}

func NewPipeline(stats domain.StatsSource, checkpoints domain.CheckpointStore, reformat domain.Reformatter) *Pipeline {
	if reformat == nil {
		reformat = NopReformatter{}
	}
	return &Pipeline{
		stats:       stats,
		checkpoints: checkpoints,
		reformat:    reformat,
	}
}

// Run executes the three stages in order, checkpointing after each one.
func (p *Pipeline) Run(ctx context.Context, id domain.ThreadID, st *domain.State) error {
	log := observability.LoggerFromContext(ctx).With("thread_id", id)

	// fetch_rows
	rows, err := p.stats.FetchStats(ctx, st.UserID, st.Start, st.End)
	if err != nil {
		return fmt.Errorf("fetch stats: %w", err)
	}
	st.Rows = rows
	log.Info("rows fetched", "count", len(rows))
	if err := p.save(ctx, id, st); err != nil {
		return err
	}

	// calc_kpis
	st.KPIs = kpi.Compute(st.Rows)
	if err := p.save(ctx, id, st); err != nil {
		return err
	}

	// conclude
	goal := st.Goal
	if goal == "" {
		goal = "general"
	}
	out := advice.Compute(st.KPIs, goal)
	answer := out.Advice
	if answer == "" {
		answer = "Sin conclusiones."
	}

	// Reformatting is best effort: the raw advice stands when the model
	// is unavailable or fails.
	reformatted, err := p.reformat.Reformat(ctx, st.Goal, st.KPIs, answer)
	if err != nil {
		log.Warn("advice reformat failed, keeping raw advice", "error", err)
	} else if reformatted != "" {
		answer = reformatted
	}

	st.Answer = answer
	if err := p.save(ctx, id, st); err != nil {
		return err
	}

	log.Info("pipeline finished")
	return nil
}

func (p *Pipeline) save(ctx context.Context, id domain.ThreadID, st *domain.State) error {
	if err := p.checkpoints.Save(ctx, id, st); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", id, err)
	}
	return nil
}

// NopReformatter leaves the advice untouched. It is the default when no
// model is configured for the deterministic pipeline.
type NopReformatter struct{}

func (NopReformatter) Reformat(_ context.Context, _ string, _ *domain.KPIReport, advice string) (string, error) {
	return advice, nil
}
