// Package kpi turns raw training rows into aggregated metrics and load-spike
// alerts. Everything here is pure computation: no external calls, no errors.
package kpi

import (
	"math"
	"sort"
	"time"

	"github.com/nmoreno/gymstats-agent/internal/domain"
)

// AlertMsg is the fixed message attached to every ACWR alert.
const AlertMsg = "ACWR>1.5 (salto de volumen)"

// acwrThreshold is the acute:chronic ratio above which an alert fires.
const acwrThreshold = 1.5

// maxAlerts caps the alert list to the most recent entries.
const maxAlerts = 10

// Compute aggregates rows into a KPI report. Empty input yields the
// "sin datos" report. Malformed numeric fields have already been coerced to
// zero during decoding, so this never fails.
func Compute(rows []domain.Row) *domain.KPIReport {
	if len(rows) == 0 {
		return &domain.KPIReport{
			Summary:  domain.SummaryNoData,
			ByMuscle: []domain.MuscleKPI{},
			Alerts:   []domain.Alert{},
		}
	}

	return &domain.KPIReport{
		Summary:  domain.SummaryOK,
		ByMuscle: byMuscle(rows),
		Alerts:   acwrAlerts(rows),
	}
}

type muscleAgg struct {
	kg     float64
	series float64
	reps   float64
	rpeSum float64
	rirSum float64
	n      int
}

func byMuscle(rows []domain.Row) []domain.MuscleKPI {
	groups := make(map[string]*muscleAgg)
	for _, r := range rows {
		g := groups[r.MuscleGroup]
		if g == nil {
			g = &muscleAgg{}
			groups[r.MuscleGroup] = g
		}
		g.kg += float64(r.Weight) * float64(r.Reps)
		g.series += float64(r.Set)
		g.reps += float64(r.Reps)
		g.rpeSum += float64(r.RPE)
		g.rirSum += float64(r.RIR)
		g.n++
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.MuscleKPI, 0, len(names))
	for _, name := range names {
		g := groups[name]
		out = append(out, domain.MuscleKPI{
			MuscleGroup: name,
			Kg:          g.kg,
			Series:      g.series,
			Reps:        g.reps,
			RPEMean:     g.rpeSum / float64(g.n),
			RIRMean:     g.rirSum / float64(g.n),
		})
	}

	// Descending by kg; the alphabetical pre-sort keeps ties stable.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kg > out[j].Kg
	})
	return out
}

// acwrAlerts computes the Acute:Chronic Workload Ratio per muscle group per
// date and flags every point where the trailing 7-day volume exceeds 1.5x
// its share of the trailing 28-day volume. Windows are calendar-day based
// (inclusive of the current date), so sparse or irregular dates are handled
// by summing whatever falls inside the window.
type dayVolume struct {
	date   time.Time
	volume float64
}

func acwrAlerts(rows []domain.Row) []domain.Alert {
	// Daily volume per (muscle group, date). Rows whose date cannot be
	// parsed carry no usable position on the timeline and are skipped.
	daily := make(map[string]map[time.Time]float64)
	for _, r := range rows {
		d, ok := parseDate(r.Date)
		if !ok {
			continue
		}
		byDate := daily[r.MuscleGroup]
		if byDate == nil {
			byDate = make(map[time.Time]float64)
			daily[r.MuscleGroup] = byDate
		}
		byDate[d] += float64(r.Weight) * float64(r.Reps)
	}

	muscles := make([]string, 0, len(daily))
	for m := range daily {
		muscles = append(muscles, m)
	}
	sort.Strings(muscles)

	var alerts []domain.Alert
	for _, muscle := range muscles {
		byDate := daily[muscle]
		series := make([]dayVolume, 0, len(byDate))
		for d, v := range byDate {
			series = append(series, dayVolume{date: d, volume: v})
		}
		sort.Slice(series, func(i, j int) bool {
			return series[i].date.Before(series[j].date)
		})

		for i, cur := range series {
			v7 := trailingSum(series[:i+1], cur.date, 7)
			v28 := trailingSum(series[:i+1], cur.date, 28)

			var acwr float64
			if v28 > 0 {
				acwr = v7 / v28
			}
			if acwr > acwrThreshold {
				alerts = append(alerts, domain.Alert{
					Date:        cur.date.Format("2006-01-02"),
					MuscleGroup: muscle,
					ACWR:        round2(acwr),
					Msg:         AlertMsg,
				})
			}
		}
	}

	if len(alerts) > maxAlerts {
		alerts = alerts[len(alerts)-maxAlerts:]
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	return alerts
}

// trailingSum adds the volumes whose date falls within the `days` calendar
// days ending at (and including) `end`.
func trailingSum(series []dayVolume, end time.Time, days int) float64 {
	lo := end.AddDate(0, 0, -(days - 1))
	var sum float64
	for _, p := range series {
		if !p.date.Before(lo) && !p.date.After(end) {
			sum += p.volume
		}
	}
	return sum
}

func parseDate(s string) (time.Time, bool) {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
