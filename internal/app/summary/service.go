// Package summary is the application service behind the summary endpoint:
// it derives the thread identity, resumes checkpointed state, runs the
// configured graph and shapes the response.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nmoreno/gymstats-agent/internal/app/agentflow"
	"github.com/nmoreno/gymstats-agent/internal/domain"
	"github.com/nmoreno/gymstats-agent/internal/observability"
)

// DefaultQuestion is used when the request leaves the question blank.
const DefaultQuestion = "Resumen del periodo"

type Request struct {
	UserID   string
	Start    string
	End      string
	Goal     string
	Question string
}

type Source struct {
	Type     string `json:"type"`
	Endpoint string `json:"endpoint"`
}

type Response struct {
	Answer   string            `json:"answer"`
	Evidence *domain.KPIReport `json:"evidence,omitempty"`
	Sources  []Source          `json:"sources,omitempty"`
	Usage    map[string]string `json:"usage,omitempty"`
}

type Service struct {
	mode        domain.AgentMode
	loop        *agentflow.Loop
	pipeline    *agentflow.Pipeline
	checkpoints domain.CheckpointStore

	// One mutex per thread identity: two runs on the same thread never
	// interleave, distinct threads run concurrently.
	locks sync.Map // domain.ThreadID -> *sync.Mutex
}

func NewService(
	mode domain.AgentMode,
	loop *agentflow.Loop,
	pipeline *agentflow.Pipeline,
	checkpoints domain.CheckpointStore,
) *Service {
	return &Service{
		mode:        mode,
		loop:        loop,
		pipeline:    pipeline,
		checkpoints: checkpoints,
	}
}

// Summarize answers one summary request. A repeated request with the same
// (user, range) resumes the persisted conversation instead of restarting.
func (s *Service) Summarize(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, errors.New("user_id is required")
	}
	if req.Start == "" || req.End == "" {
		return nil, errors.New("start and end are required")
	}
	if strings.TrimSpace(req.Question) == "" {
		req.Question = DefaultQuestion
	}

	id := domain.NewThreadID(domain.UserID(req.UserID), req.Start, req.End)
	mu := s.threadLock(id)
	mu.Lock()
	defer mu.Unlock()

	log := observability.LoggerFromContext(ctx).With(
		"thread_id", id,
		"mode", s.mode,
	)

	st, err := s.checkpoints.Load(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		st = &domain.State{}
	case err != nil:
		return nil, fmt.Errorf("load checkpoint %s: %w", id, err)
	default:
		log.Info("resuming thread",
			"messages", len(st.Messages),
			"has_rows", len(st.Rows) > 0,
			"has_kpis", st.KPIs != nil)
	}

	// The inbound request always refreshes the input fields; progress
	// (rows, kpis, messages) carries over from the checkpoint.
	st.Input = req.Question
	st.UserID = domain.UserID(req.UserID)
	st.Start = req.Start
	st.End = req.End
	st.Goal = req.Goal

	switch s.mode {
	case domain.ModeAgentic:
		err = s.loop.Run(ctx, id, st)
	default:
		err = s.pipeline.Run(ctx, id, st)
	}
	if err != nil {
		log.Error("graph execution failed", "error", err)
		return nil, fmt.Errorf("graph execution failed: %w", err)
	}

	return &Response{
		Answer:   st.Answer,
		Evidence: st.KPIs,
		Sources:  []Source{{Type: "api", Endpoint: "/stats"}},
		Usage:    map[string]string{"mode": string(s.mode)},
	}, nil
}

func (s *Service) threadLock(id domain.ThreadID) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Mode reports which graph answers requests, for the health surface.
func (s *Service) Mode() domain.AgentMode {
	return s.mode
}
