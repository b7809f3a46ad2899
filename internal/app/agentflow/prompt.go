package agentflow

import (
	"context"
	"fmt"

	"github.com/nmoreno/gymstats-agent/internal/domain"
	"github.com/nmoreno/gymstats-agent/internal/observability"
)

// systemPrompt is the built-in instruction used whenever the prompt store
// cannot provide one. It restricts the agent to personal training-metric
// questions tied to a time period.
const systemPrompt = `Eres un analista especializado en entrenamiento personal.
- SOLO puedes usar herramientas cuando la pregunta se refiera a las MÉTRICAS PERSONALES del usuario (volumen, series, repeticiones, RIR, RPE, KPIs) y estén asociadas a un período de tiempo.
- Usa las herramientas que verdaderamente necesites para responder a la pregunta, no utilices todas, solo las necesarias.
- Si la pregunta NO está relacionada con entrenamiento, responde que no puedes ayudar (no inventes respuestas).
- Si la pregunta NO se refiere al usuario ni a sus métricas personales, responde que no puedes ayudar (no inventes respuestas).
- No proporciones información inventada ni supongas datos que el usuario no ha dado.
- Sé conciso y directo en tus respuestas.
`

// ensureMessages seeds the conversation on the first llm turn: the system
// prompt (remote template when available, built-in otherwise) plus a human
// message restating the question, scope and which data is already loaded.
func (l *Loop) ensureMessages(ctx context.Context, st *domain.State) {
	if len(st.Messages) > 0 {
		return
	}

	prompt, ok := l.prompts.Retrieve(ctx, l.promptName, nil)
	if !ok || prompt == "" {
		observability.LoggerFromContext(ctx).Info(
			"prompt retrieval failed, using built-in prompt",
			"prompt_name", l.promptName)
		prompt = systemPrompt
	}

	userText := fmt.Sprintf(
		"Pregunta: %s\nUsuario=%s, rango=%s..%s, objetivo=%s\nEstado: rows=%t, kpis=%t",
		st.Input, st.UserID, st.Start, st.End, st.Goal,
		len(st.Rows) > 0, st.KPIs != nil,
	)

	st.Messages = []domain.Message{
		domain.SystemMessage(prompt),
		domain.HumanMessage(userText),
	}
}
