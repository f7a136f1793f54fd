package normalize

import (
	"testing"

	"github.com/skriv/kontrakt/internal/models"
)

func TestRisk_EnumAndRangeClamping(t *testing.T) {
	raw := parseRaw(t, `{
		"level": "катастрофический",
		"score": "250",
		"risks": [
			{"type": "financial", "severity": "high", "description": "пеня", "probability": 42},
			{"type": "неведомый", "severity": "?", "probability": "-5"}
		],
		"recommendations": ["проверить сроки", "", "   ", 42, "согласовать с юристом"]
	}`)
	ra, err := New(nil).Risk(raw)
	if err != nil {
		t.Fatalf("Risk: %v", err)
	}
	if ra.Level != models.RiskMedium {
		t.Errorf("unknown level should clamp to medium, got %q", ra.Level)
	}
	if ra.Score != 100 {
		t.Errorf("score should clamp to 100, got %v", ra.Score)
	}
	if ra.Risks[0].Type != models.RiskFinancial || ra.Risks[0].Probability != 42 {
		t.Errorf("valid risk mangled: %+v", ra.Risks[0])
	}
	if ra.Risks[1].Type != models.RiskLegal || ra.Risks[1].Severity != models.RiskMedium {
		t.Errorf("unknown enums should clamp: %+v", ra.Risks[1])
	}
	if ra.Risks[1].Probability != 0 {
		t.Errorf("negative probability should clamp to 0, got %v", ra.Risks[1].Probability)
	}
	want := []string{"проверить сроки", "согласовать с юристом"}
	if len(ra.Recommendations) != len(want) {
		t.Fatalf("blank/non-string recommendations should be dropped: %v", ra.Recommendations)
	}
	for i := range want {
		if ra.Recommendations[i] != want[i] {
			t.Errorf("recommendation %d: got %q, want %q", i, ra.Recommendations[i], want[i])
		}
	}
}

func TestRisk_DependencyGraphAllOrNothing(t *testing.T) {
	complete := parseRaw(t, `{
		"dependencyGraph": {
			"nodes": [{"id": "n1", "label": "Пеня", "level": "high"}],
			"edges": [{"from": "n1", "to": "n1"}]
		}
	}`)
	ra, err := New(nil).Risk(complete)
	if err != nil {
		t.Fatalf("Risk: %v", err)
	}
	if ra.DependencyGraph == nil || len(ra.DependencyGraph.Nodes) != 1 {
		t.Fatalf("complete graph should be kept: %+v", ra.DependencyGraph)
	}

	partials := []string{
		`{"dependencyGraph": {"nodes": [], "edges": [{"from": "a", "to": "b"}]}}`,
		`{"dependencyGraph": {"nodes": [{"id": "n1", "label": "x"}], "edges": []}}`,
		`{"dependencyGraph": {"nodes": [{"id": "", "label": "x"}], "edges": [{"from": "a", "to": "b"}]}}`,
		`{"dependencyGraph": {"nodes": [{"id": "n1", "label": "x"}], "edges": [{"from": "a"}]}}`,
	}
	for i, fixture := range partials {
		ra, err := New(nil).Risk(parseRaw(t, fixture))
		if err != nil {
			t.Fatalf("partial %d: %v", i, err)
		}
		if ra.DependencyGraph != nil {
			t.Errorf("partial graph %d must be omitted entirely, got %+v", i, ra.DependencyGraph)
		}
	}
}

func TestRisk_NilRaw(t *testing.T) {
	if _, err := New(nil).Risk(nil); err == nil {
		t.Fatal("nil raw must be an error")
	}
}
