package advice_test

import (
	"strings"
	"testing"

	"github.com/nmoreno/gymstats-agent/internal/app/advice"
	"github.com/nmoreno/gymstats-agent/internal/domain"
)

func TestComputeNoData(t *testing.T) {
	kpis := &domain.KPIReport{Summary: domain.SummaryNoData}

	// The goal is irrelevant without data.
	for _, goal := range []string{"", "fuerza", "hipertrofia"} {
		got := advice.Compute(kpis, goal)
		if got.Advice != "No hay datos disponibles para el periodo." {
			t.Fatalf("goal %q: expected no-data advice, got %q", goal, got.Advice)
		}
	}
}

func TestComputeNilKPIs(t *testing.T) {
	got := advice.Compute(nil, "fuerza")
	if got.Advice != advice.NoDataAdvice {
		t.Fatalf("expected no-data advice for nil kpis, got %q", got.Advice)
	}
}

func TestComputeStrengthGoalListsTopThree(t *testing.T) {
	kpis := &domain.KPIReport{
		Summary: domain.SummaryOK,
		ByMuscle: []domain.MuscleKPI{
			{MuscleGroup: "legs", Kg: 4800, Series: 12},
			{MuscleGroup: "back", Kg: 3200, Series: 10},
			{MuscleGroup: "chest", Kg: 2400, Series: 9},
			{MuscleGroup: "arms", Kg: 900, Series: 6},
		},
	}

	got := advice.Compute(kpis, "quiero ganar FUERZA")
	lines := strings.Split(got.Advice, "\n")

	if lines[0] != "Para fuerza, enfócate en los músculos con mayor volumen:" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	want := []string{
		"- legs: 4800 kg en 12 series.",
		"- back: 3200 kg en 10 series.",
		"- chest: 2400 kg en 9 series.",
	}
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 muscles, got %d lines: %q", len(lines), got.Advice)
	}
	for i, w := range want {
		if lines[i+1] != w {
			t.Errorf("line %d: got %q, want %q", i+1, lines[i+1], w)
		}
	}
}

func TestComputeAlertLines(t *testing.T) {
	kpis := &domain.KPIReport{
		Summary: domain.SummaryOK,
		ByMuscle: []domain.MuscleKPI{
			{MuscleGroup: "legs", Kg: 1000, Series: 3},
		},
		Alerts: []domain.Alert{
			{Date: "2025-09-01", MuscleGroup: "legs", ACWR: 1.75, Msg: "ACWR>1.5 (salto de volumen)"},
		},
	}

	got := advice.Compute(kpis, "")
	want := "Alerta el 2025-09-01 en legs: ACWR>1.5 (salto de volumen) (ACWR=1.75)"
	if got.Advice != want {
		t.Fatalf("got %q, want %q", got.Advice, want)
	}
}

func TestComputeFallbackWhenNothingToSay(t *testing.T) {
	kpis := &domain.KPIReport{
		Summary: domain.SummaryOK,
		ByMuscle: []domain.MuscleKPI{
			{MuscleGroup: "legs", Kg: 1000, Series: 3},
		},
	}

	got := advice.Compute(kpis, "hipertrofia")
	if got.Advice != advice.AllNormalAdvice {
		t.Fatalf("expected fallback advice, got %q", got.Advice)
	}
}

func TestComputeDeterministic(t *testing.T) {
	kpis := &domain.KPIReport{
		Summary: domain.SummaryOK,
		ByMuscle: []domain.MuscleKPI{
			{MuscleGroup: "legs", Kg: 4800, Series: 12},
			{MuscleGroup: "back", Kg: 3200, Series: 10},
		},
		Alerts: []domain.Alert{
			{Date: "2025-09-01", MuscleGroup: "legs", ACWR: 1.6, Msg: "ACWR>1.5 (salto de volumen)"},
		},
	}

	first := advice.Compute(kpis, "fuerza")
	second := advice.Compute(kpis, "fuerza")
	if first.Advice != second.Advice {
		t.Fatalf("advice not deterministic:\n%q\n%q", first.Advice, second.Advice)
	}
}
