package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nmoreno/gymstats-agent/internal/app/summary"
	"github.com/nmoreno/gymstats-agent/internal/domain"
)

// HealthInfo is what /healthz reports about the running configuration.
type HealthInfo struct {
	DataSource        string
	AgentMode         domain.AgentMode
	LLMProvider       string
	CheckpointBackend string
}

type Server struct {
	svc    *summary.Service
	health HealthInfo
}

func NewServer(svc *summary.Service, health HealthInfo) http.Handler {
	s := &Server{svc: svc, health: health}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/agent/summary", s.handleSummary)

	return chainMiddlewares(mux, withLogging, withCORS, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type summaryRequest struct {
	UserID   string `json:"user_id"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Goal     string `json:"goal,omitempty"`
	Question string `json:"question,omitempty"`
}

type summaryResponse struct {
	Answer   string            `json:"answer"`
	Evidence *domain.KPIReport `json:"evidence,omitempty"`
	Sources  []summary.Source  `json:"sources,omitempty"`
	Usage    map[string]string `json:"usage,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type healthResponse struct {
	OK                bool   `json:"ok"`
	DataSource        string `json:"data_source"`
	AgentMode         string `json:"agent_mode"`
	LLM               string `json:"llm"`
	CheckpointBackend string `json:"checkpoint_backend"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		OK:                true,
		DataSource:        s.health.DataSource,
		AgentMode:         string(s.health.AgentMode),
		LLM:               s.health.LLMProvider,
		CheckpointBackend: s.health.CheckpointBackend,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		badRequest(w, "user_id is required")
		return
	}
	if req.Start == "" || req.End == "" {
		badRequest(w, "start and end are required")
		return
	}

	out, err := s.svc.Summarize(r.Context(), summary.Request{
		UserID:   req.UserID,
		Start:    req.Start,
		End:      req.End,
		Goal:     req.Goal,
		Question: req.Question,
	})
	if err != nil {
		// Never a silent empty answer: the cause travels with the error.
		writeJSON(w, http.StatusInternalServerError, summaryResponse{
			Error: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Answer:   out.Answer,
		Evidence: out.Evidence,
		Sources:  out.Sources,
		Usage:    out.Usage,
	})
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
