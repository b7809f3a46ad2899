package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nmoreno/gymstats-agent/internal/domain"
)

const reformatPrompt = "Eres un analista de entrenamiento. Con base en estos KPIs, " +
	"responde en 5 bullets claros y accionables. No inventes datos.\n\n" +
	"OBJETIVO: %s\n\nKPIS:\n%s\n\n"

// Reformatter rewrites the deterministic pipeline's advice into a short
// bullet structure using a model. Callers keep the raw advice when this
// fails.
type Reformatter struct {
	llm domain.LLMClient
}

func NewReformatter(llm domain.LLMClient) *Reformatter {
	return &Reformatter{llm: llm}
}

func (r *Reformatter) Reformat(ctx context.Context, goal string, kpis *domain.KPIReport, advice string) (string, error) {
	kpisJSON, err := json.Marshal(kpis)
	if err != nil {
		return "", fmt.Errorf("encode kpis: %w", err)
	}

	prompt := fmt.Sprintf(reformatPrompt, goal, kpisJSON)
	msg, err := r.llm.Chat(ctx, []domain.Message{domain.HumanMessage(prompt)}, nil)
	if err != nil {
		return "", err
	}
	if !msg.HasContent() {
		return "", fmt.Errorf("model returned empty reformatted advice")
	}
	return msg.Content, nil
}
