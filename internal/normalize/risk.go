package normalize

import (
	"fmt"

	"github.com/skriv/kontrakt/internal/models"
)

var (
	riskLevels = []string{models.RiskLow, models.RiskMedium, models.RiskHigh, models.RiskCritical}
	riskTypes  = []string{models.RiskFinancial, models.RiskLegal, models.RiskOperational, models.RiskReputational}
)

// Risk normalizes a raw risk-analysis result. Level, type, and severity are
// clamped to their value sets; probabilities and scores to [0,100]; string
// arrays are coerced element-wise with blanks dropped. The dependency graph
// is all-or-nothing: it is kept only when nodes and edges are both non-empty
// and every element carries its required fields, otherwise it is omitted
// entirely, because a partial graph is not meaningful.
func (n *Normalizer) Risk(raw map[string]interface{}) (*models.RiskAnalysis, error) {
	if raw == nil {
		return nil, fmt.Errorf("risk analysis result is not an object")
	}
	ra := &models.RiskAnalysis{
		Level:           clampEnum(str(raw["level"]), riskLevels, models.RiskMedium),
		Score:           clampRange(numOr(raw["score"], 0), 0, 100),
		Summary:         str(raw["summary"]),
		Risks:           []models.RiskItem{},
		Recommendations: stringSlice(raw["recommendations"]),
	}
	for _, item := range asSlice(raw["risks"]) {
		m := asMap(item)
		if m == nil {
			continue
		}
		ra.Risks = append(ra.Risks, models.RiskItem{
			Type:        clampEnum(str(m["type"]), riskTypes, models.RiskLegal),
			Severity:    clampEnum(str(m["severity"]), riskLevels, models.RiskMedium),
			Description: str(m["description"]),
			Probability: clampRange(numOr(m["probability"], 0), 0, 100),
			Mitigation:  str(m["mitigation"]),
		})
	}
	if graph := n.riskGraph(asMap(raw["dependencyGraph"])); graph != nil {
		ra.DependencyGraph = graph
	}
	return ra, nil
}

func (n *Normalizer) riskGraph(m map[string]interface{}) *models.RiskGraph {
	if m == nil {
		return nil
	}
	nodeItems := asSlice(m["nodes"])
	edgeItems := asSlice(m["edges"])
	if len(nodeItems) == 0 || len(edgeItems) == 0 {
		return nil
	}
	graph := &models.RiskGraph{}
	for _, item := range nodeItems {
		nm := asMap(item)
		if nm == nil {
			return nil
		}
		id, label := str(nm["id"]), str(nm["label"])
		if id == "" || label == "" {
			return nil
		}
		graph.Nodes = append(graph.Nodes, models.RiskNode{
			ID:    id,
			Label: label,
			Level: clampEnum(str(nm["level"]), riskLevels, models.RiskMedium),
		})
	}
	for _, item := range edgeItems {
		em := asMap(item)
		if em == nil {
			return nil
		}
		from, to := str(em["from"]), str(em["to"])
		if from == "" || to == "" {
			return nil
		}
		graph.Edges = append(graph.Edges, models.RiskEdge{
			From:  from,
			To:    to,
			Label: str(em["label"]),
		})
	}
	return graph
}
