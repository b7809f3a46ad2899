package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Flex is a float64 that tolerates the loose typing of the statistics source:
// numeric fields may arrive as JSON numbers, numeric strings, null or garbage.
// Anything that cannot be parsed decodes as 0.
type Flex float64

func (f *Flex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = Flex(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = 0
		return nil
	}
	*f = Flex(v)
	return nil
}

// Row is one training-set record as returned by the statistics source.
type Row struct {
	Date        string `json:"date"`
	Exercise    string `json:"exercise"`
	MuscleGroup string `json:"muscle_group"`
	Weight      Flex   `json:"weight"`
	Reps        Flex   `json:"reps"`
	Set         Flex   `json:"set"`
	RPE         Flex   `json:"rpe"`
	RIR         Flex   `json:"rir"`
}

const (
	SummaryOK     = "ok"
	SummaryNoData = "sin datos"
)

// MuscleKPI aggregates one muscle group over the requested period.
type MuscleKPI struct {
	MuscleGroup string  `json:"muscle_group"`
	Kg          float64 `json:"kg"`
	Series      float64 `json:"series"`
	Reps        float64 `json:"reps"`
	RPEMean     float64 `json:"rpe_mean"`
	RIRMean     float64 `json:"rir_mean"`
}

// Alert flags a workload spike for a muscle group on a given date.
type Alert struct {
	Date        string  `json:"date"`
	MuscleGroup string  `json:"muscle_group"`
	ACWR        float64 `json:"acwr"`
	Msg         string  `json:"msg"`
}

// KPIReport is the output of the KPI engine.
// ByMuscle is sorted by kg descending; Alerts keeps at most the 10 most recent.
type KPIReport struct {
	Summary  string      `json:"summary"`
	ByMuscle []MuscleKPI `json:"by_muscle"`
	Alerts   []Alert     `json:"alerts"`
}

// HasData reports whether the KPI report was computed from at least one row.
func (r *KPIReport) HasData() bool {
	return r != nil && r.Summary != SummaryNoData
}

// Advice is the output of the advice engine.
type Advice struct {
	Advice string `json:"advice"`
}
