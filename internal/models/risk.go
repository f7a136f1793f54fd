package models

// Risk levels and severities.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Risk types.
const (
	RiskFinancial   = "financial"
	RiskLegal       = "legal"
	RiskOperational = "operational"
	RiskReputational = "reputational"
)

// RiskItem is a single identified risk within a clause.
type RiskItem struct {
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
	Probability float64 `json:"probability"` // 0..100
	Mitigation  string  `json:"mitigation,omitempty"`
}

// RiskNode is one node of a risk dependency graph.
type RiskNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Level string `json:"level"`
}

// RiskEdge connects two risk nodes.
type RiskEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// RiskGraph is a dependency graph between identified risks. A graph is only
// meaningful when both nodes and edges are present; partial graphs are never
// surfaced.
type RiskGraph struct {
	Nodes []RiskNode `json:"nodes"`
	Edges []RiskEdge `json:"edges"`
}

// RiskAnalysis is the validated result of the independent risk-analysis
// pathway over a single clause.
type RiskAnalysis struct {
	Level           string     `json:"level"`
	Score           float64    `json:"score"` // 0..100
	Summary         string     `json:"summary,omitempty"`
	Risks           []RiskItem `json:"risks"`
	Recommendations []string   `json:"recommendations"`
	DependencyGraph *RiskGraph `json:"dependencyGraph,omitempty"`
}

// ProvisionStub is the reduced provision context sent with risk-analysis
// requests instead of the full document, to bound request size.
type ProvisionStub struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}
