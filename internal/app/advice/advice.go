// Package advice turns a KPI report plus the user's stated goal into a
// deterministic natural-language recommendation.
package advice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nmoreno/gymstats-agent/internal/domain"
)

const (
	// NoDataAdvice is returned whenever there are no KPIs to reason about.
	NoDataAdvice = "No hay datos disponibles para el periodo."

	// AllNormalAdvice is the fallback when nothing is worth flagging.
	AllNormalAdvice = "Todo parece normal. Mantén tu rutina actual."

	strengthHeader = "Para fuerza, enfócate en los músculos con mayor volumen:"
)

// Compute builds the advice text. Given identical input it always produces
// identical output: lines are appended in a fixed order and joined with "\n".
func Compute(kpis *domain.KPIReport, goal string) domain.Advice {
	if !kpis.HasData() {
		return domain.Advice{Advice: NoDataAdvice}
	}

	var lines []string

	if strings.Contains(strings.ToLower(goal), "fuerza") {
		lines = append(lines, strengthHeader)
		top := kpis.ByMuscle
		if len(top) > 3 {
			top = top[:3]
		}
		for _, m := range top {
			lines = append(lines, fmt.Sprintf("- %s: %s kg en %s series.",
				m.MuscleGroup, formatNumber(m.Kg), formatNumber(m.Series)))
		}
	}

	for _, a := range kpis.Alerts {
		lines = append(lines, fmt.Sprintf("Alerta el %s en %s: %s (ACWR=%s)",
			a.Date, a.MuscleGroup, a.Msg, formatNumber(a.ACWR)))
	}

	if len(lines) == 0 {
		lines = append(lines, AllNormalAdvice)
	}

	return domain.Advice{Advice: strings.Join(lines, "\n")}
}

// formatNumber renders floats without a trailing ".0" for whole values,
// so "1000 kg" instead of "1000.00 kg".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
