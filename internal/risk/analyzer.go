// Package risk provides the independent risk-analysis pathway over single
// contract clauses, memoized behind the risk cache.
package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skriv/kontrakt/internal/models"
	"github.com/skriv/kontrakt/internal/normalize"
	"github.com/skriv/kontrakt/internal/oracle"
	"github.com/skriv/kontrakt/internal/riskcache"
)

// DefaultTTL is how long a risk analysis stays memoized when not configured.
const DefaultTTL = 30 * time.Minute

const instruction = `Ты — система оценки рисков в договорах. Проанализируй фрагмент договора ` +
	`и ответь строго одним JSON-объектом по схеме:
{"level": "low"|"medium"|"high"|"critical", "score": number,
"summary": string,
"risks": [{"type": "financial"|"legal"|"operational"|"reputational",
"severity": "low"|"medium"|"high"|"critical", "description": string,
"probability": number, "mitigation": string}],
"recommendations": [string],
"dependencyGraph": {"nodes": [{"id": string, "label": string, "level": string}],
"edges": [{"from": string, "to": string, "label": string}]}}`

// Analyzer runs clause-level risk analysis with cache-first lookups.
type Analyzer struct {
	oracle     oracle.Oracle
	cache      riskcache.Cache
	normalizer *normalize.Normalizer
	ttl        time.Duration
	logger     *zap.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithTTL overrides the memoization TTL.
func WithTTL(ttl time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// WithLogger sets a logger for cache and extraction diagnostics.
func WithLogger(l *zap.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer creates an analyzer. cache may be nil to use a fresh TTL cache.
func NewAnalyzer(orc oracle.Oracle, cache riskcache.Cache, opts ...AnalyzerOption) *Analyzer {
	if cache == nil {
		cache = riskcache.New()
	}
	a := &Analyzer{
		oracle:     orc,
		cache:      cache,
		normalizer: normalize.New(nil),
		ttl:        DefaultTTL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns the risk analysis for a clause, consulting the cache
// before calling the Oracle. docCtx, when given, is reduced to provision
// id/title/category stubs so the request stays bounded regardless of
// document size.
func (a *Analyzer) Analyze(ctx context.Context, clauseText, provisionID, category string, docCtx *models.ContractDocument) (*models.RiskAnalysis, error) {
	if strings.TrimSpace(clauseText) == "" {
		return nil, fmt.Errorf("clause text is empty")
	}
	key := riskcache.Fingerprint(clauseText, provisionID, category)
	if cached, ok := a.cache.Get(key); ok {
		if ra, ok := cached.(*models.RiskAnalysis); ok {
			if a.logger != nil {
				a.logger.Debug("risk cache hit", zap.String("key", key))
			}
			return ra, nil
		}
	}

	response, err := a.oracle.Invoke(ctx, instruction, a.buildInput(clauseText, category, docCtx))
	if err != nil {
		return nil, fmt.Errorf("risk analysis: %w", err)
	}
	raw := response
	if !json.Valid([]byte(raw)) {
		raw = oracle.ExtractJSON(response)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("risk analysis: unusable response: %w", err)
	}
	ra, err := a.normalizer.Risk(decoded)
	if err != nil {
		return nil, fmt.Errorf("risk analysis: %w", err)
	}
	a.cache.Set(key, ra, a.ttl)
	return ra, nil
}

// buildInput renders the clause plus the reduced contract context.
func (a *Analyzer) buildInput(clauseText, category string, docCtx *models.ContractDocument) string {
	var b strings.Builder
	b.WriteString("Фрагмент договора:\n")
	b.WriteString(clauseText)
	if category != "" {
		b.WriteString("\n\nКатегория положения: ")
		b.WriteString(category)
	}
	if docCtx != nil && len(docCtx.KeyProvisions) > 0 {
		stubs := make([]models.ProvisionStub, 0, len(docCtx.KeyProvisions))
		for _, kp := range docCtx.KeyProvisions {
			stubs = append(stubs, models.ProvisionStub{ID: kp.ID, Title: kp.Title, Category: kp.Category})
		}
		if payload, err := json.Marshal(stubs); err == nil {
			b.WriteString("\n\nКонтекст договора (положения): ")
			b.Write(payload)
		}
	}
	return b.String()
}
