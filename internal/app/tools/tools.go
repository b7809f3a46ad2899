// Package tools declares the closed set of tools the agent can dispatch.
// The model requests tools by name; dispatch happens over the Kind
// enumeration so the compiler keeps the set in sync with the executor.
package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/nmoreno/gymstats-agent/internal/domain"
)

// Kind identifies one of the known tools.
type Kind string

const (
	KindFetchStats         Kind = "fetch_stats"
	KindComputeKPIs        Kind = "compute_kpis"
	KindComputeConclusions Kind = "compute_conclusions"
)

// ParseKind maps a model-requested tool name onto the closed enumeration.
func ParseKind(name string) (Kind, bool) {
	switch Kind(name) {
	case KindFetchStats, KindComputeKPIs, KindComputeConclusions:
		return Kind(name), true
	}
	return "", false
}

// FetchStatsArgs are the model-supplied arguments for fetch_stats. Empty
// fields fall back to the values of the current conversation state.
type FetchStatsArgs struct {
	UserID string `json:"user_id,omitempty" jsonschema_description:"User identifier. Defaults to the user of the conversation."`
	Start  string `json:"start,omitempty" jsonschema_description:"Inclusive start date (YYYY-MM-DD). Defaults to the range of the conversation."`
	End    string `json:"end,omitempty" jsonschema_description:"Inclusive end date (YYYY-MM-DD). Defaults to the range of the conversation."`
}

// ComputeKPIsArgs is empty: the tool operates on the rows already fetched
// into the conversation state.
type ComputeKPIsArgs struct{}

// ComputeConclusionsArgs are the model-supplied arguments for
// compute_conclusions.
type ComputeConclusionsArgs struct {
	Goal string `json:"goal,omitempty" jsonschema_description:"Training goal, e.g. fuerza. Defaults to the goal of the conversation."`
}

// GenerateSchema reflects a JSON schema for the given argument struct.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var (
	fetchStatsSchema         = mustMarshal(GenerateSchema[FetchStatsArgs]())
	computeKPIsSchema        = mustMarshal(GenerateSchema[ComputeKPIsArgs]())
	computeConclusionsSchema = mustMarshal(GenerateSchema[ComputeConclusionsArgs]())
)

// Specs returns the declared tool set handed to the model on every turn.
func Specs() []domain.ToolSpec {
	return []domain.ToolSpec{
		{
			Name:        string(KindFetchStats),
			Description: "Fetch the user's raw training rows from the statistics API for the date range.",
			Parameters:  fetchStatsSchema,
		},
		{
			Name:        string(KindComputeKPIs),
			Description: "Compute KPIs (volume, series, reps, RPE/RIR means, ACWR alerts) from the fetched rows.",
			Parameters:  computeKPIsSchema,
		},
		{
			Name:        string(KindComputeConclusions),
			Description: "Generate training advice from the computed KPIs and the user's goal.",
			Parameters:  computeConclusionsSchema,
		},
	}
}

func mustMarshal(s *jsonschema.Schema) json.RawMessage {
	b, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return b
}
