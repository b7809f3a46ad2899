package tools_test

import (
	"encoding/json"
	"testing"

	"github.com/nmoreno/gymstats-agent/internal/app/tools"
)

func TestParseKind(t *testing.T) {
	for _, name := range []string{"fetch_stats", "compute_kpis", "compute_conclusions"} {
		kind, ok := tools.ParseKind(name)
		if !ok {
			t.Fatalf("expected %q to parse", name)
		}
		if string(kind) != name {
			t.Fatalf("expected kind %q, got %q", name, kind)
		}
	}

	if _, ok := tools.ParseKind("delete_everything"); ok {
		t.Fatal("expected unknown tool name to be rejected")
	}
}

func TestSpecs(t *testing.T) {
	specs := tools.Specs()
	if len(specs) != 3 {
		t.Fatalf("expected 3 tool specs, got %d", len(specs))
	}

	for _, spec := range specs {
		if spec.Description == "" {
			t.Fatalf("tool %s has no description", spec.Name)
		}

		var schema map[string]any
		if err := json.Unmarshal(spec.Parameters, &schema); err != nil {
			t.Fatalf("tool %s has an invalid schema: %v", spec.Name, err)
		}
		if schema["type"] != "object" {
			t.Fatalf("tool %s schema is not an object: %v", spec.Name, schema["type"])
		}
		if schema["additionalProperties"] != false {
			t.Fatalf("tool %s schema allows extra properties", spec.Name)
		}
	}

	var fetchSchema map[string]any
	if err := json.Unmarshal(specs[0].Parameters, &fetchSchema); err != nil {
		t.Fatalf("invalid fetch_stats schema: %v", err)
	}
	props, ok := fetchSchema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("fetch_stats schema has no properties: %v", fetchSchema)
	}
	for _, field := range []string{"user_id", "start", "end"} {
		if _, ok := props[field]; !ok {
			t.Fatalf("fetch_stats schema is missing %q", field)
		}
	}
}
